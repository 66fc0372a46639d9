package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rookgm/streetmart/internal/app"
	"github.com/rookgm/streetmart/internal/auth"
	"github.com/rookgm/streetmart/internal/logger"
	"github.com/rookgm/streetmart/internal/service"
	"github.com/spf13/cobra"
)

var errNoDSN = errors.New("database DSN is required, set --dsn or DATABASE_URI")

type options struct {
	dsn      string
	tokenKey string
	currency string
	json     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "smctl",
		Short:         "Streetmart admin tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.dsn == "" {
				opts.dsn = os.Getenv("DATABASE_URI")
			}
			return logger.Initialize("warn")
		},
	}

	root.PersistentFlags().StringVarP(&opts.dsn, "dsn", "d", "", "database DSN (default $DATABASE_URI)")
	root.PersistentFlags().StringVar(&opts.tokenKey, "token-key", "streetmart-dev-key", "auth token signing key")
	root.PersistentFlags().StringVar(&opts.currency, "currency", service.DefaultCurrency, "ISO 4217 currency of prices")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "output JSON")

	root.AddCommand(migrateCmd(opts))
	root.AddCommand(seedCmd(opts))
	root.AddCommand(catalogCmd(opts))
	root.AddCommand(ordersCmd(opts))
	root.AddCommand(ratingsCmd(opts))

	return root
}

// withServices opens postgres stores and runs fn with services on them
func withServices(ctx context.Context, opts *options, fn func(ctx context.Context, st *app.Stores, svc *app.Services) error) error {
	if opts.dsn == "" {
		return errNoDSN
	}

	st, err := app.OpenPostgres(ctx, opts.dsn)
	if err != nil {
		return err
	}
	defer st.Close()

	money, err := service.NewMoneyFormatter(opts.currency)
	if err != nil {
		return err
	}

	tokens := auth.NewAuthToken([]byte(opts.tokenKey), time.Hour)
	return fn(ctx, st, app.NewServices(st, tokens, nil, money, nil))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(header)
	return tw
}

func migrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			// opening postgres stores applies pending migrations
			return withServices(cmd.Context(), opts, func(context.Context, *app.Stores, *app.Services) error {
				fmt.Println("migrations applied")
				return nil
			})
		},
	}
}

func seedCmd(opts *options) *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Register actors and their catalog items from YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), opts, func(ctx context.Context, _ *app.Stores, svc *app.Services) error {
				res, err := seed(ctx, svc, data)
				if err != nil {
					return err
				}
				if opts.json {
					return printJSON(res)
				}
				fmt.Printf("seeded %d actors and %d items\n", res.Actors, res.Items)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to YAML seed file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rookgm/streetmart/internal/app"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/spf13/cobra"
)

func catalogCmd(opts *options) *cobra.Command {
	catalog := &cobra.Command{Use: "catalog", Short: "Inspect catalog"}

	var filter models.CatalogFilter
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List catalog items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), opts, func(ctx context.Context, _ *app.Stores, svc *app.Services) error {
				items, err := svc.Catalog.ListAvailable(ctx, filter)
				if err != nil {
					return err
				}
				if opts.json {
					return printJSON(items)
				}
				tw := newTable(table.Row{"ID", "Owner", "Name", "Unit", "Price", "Stock", "Available"})
				for _, it := range items {
					tw.AppendRow(table.Row{it.ID, it.OwnerID, it.Name, it.Unit, it.Price.StringFixed(2), it.Stock, it.Available()})
				}
				tw.Render()
				return nil
			})
		},
	}
	ls.Flags().StringVar(&filter.OwnerID, "owner", "", "owner actor id")
	ls.Flags().StringVar(&filter.Category, "category", "", "category filter")
	ls.Flags().BoolVar(&filter.IncludeUnavailable, "all", false, "include out of stock and disabled items")
	ls.Flags().IntVar(&filter.Limit, "limit", 50, "page size")

	catalog.AddCommand(ls)
	return catalog
}

func ordersCmd(opts *options) *cobra.Command {
	orders := &cobra.Command{Use: "orders", Short: "Inspect orders"}

	var (
		filter models.OrderFilter
		status string
	)
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.Status = models.OrderStatus(status)
			if status != "" && !filter.Status.Valid() {
				return fmt.Errorf("unknown order status %q", status)
			}
			return withServices(cmd.Context(), opts, func(ctx context.Context, st *app.Stores, _ *app.Services) error {
				list, err := st.Orders.ListOrders(ctx, filter)
				if err != nil {
					return err
				}
				if opts.json {
					return printJSON(list)
				}
				tw := newTable(table.Row{"ID", "Requester", "Fulfiller", "Status", "Total", "Voice", "Created"})
				for _, o := range list {
					fulfiller := ""
					if o.FulfillerID != nil {
						fulfiller = *o.FulfillerID
					}
					tw.AppendRow(table.Row{o.ID, o.RequesterID, fulfiller, o.Status, o.Total.StringFixed(2), o.VoiceOrder,
						o.CreatedAt.Format("2006-01-02 15:04")})
				}
				tw.Render()
				return nil
			})
		},
	}
	ls.Flags().StringVar(&filter.RequesterID, "requester", "", "requester actor id")
	ls.Flags().StringVar(&filter.FulfillerID, "fulfiller", "", "fulfiller actor id")
	ls.Flags().StringVar(&status, "status", "", "status filter")
	ls.Flags().IntVar(&filter.Limit, "limit", 50, "page size")

	orders.AddCommand(ls)
	return orders
}

func ratingsCmd(opts *options) *cobra.Command {
	ratings := &cobra.Command{Use: "ratings", Short: "Maintain actor ratings"}

	recompute := &cobra.Command{
		Use:   "recompute ACTOR_ID...",
		Short: "Recompute aggregate rating of actors from stored ratings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), opts, func(ctx context.Context, _ *app.Stores, svc *app.Services) error {
				tw := newTable(table.Row{"Actor", "Rating", "Ratings"})
				for _, id := range args {
					mean, count, err := svc.Ratings.Recompute(ctx, id)
					if err != nil {
						return fmt.Errorf("recompute %s: %w", id, err)
					}
					tw.AppendRow(table.Row{id, mean.StringFixed(1), count})
				}
				tw.Render()
				return nil
			})
		},
	}

	ratings.AddCommand(recompute)
	return ratings
}

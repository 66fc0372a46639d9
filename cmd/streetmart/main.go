package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rookgm/streetmart/config"
	"github.com/rookgm/streetmart/internal/app"
	"github.com/rookgm/streetmart/internal/auth"
	"github.com/rookgm/streetmart/internal/broker"
	"github.com/rookgm/streetmart/internal/logger"
	"github.com/rookgm/streetmart/internal/metrics"
	"github.com/rookgm/streetmart/internal/service"
	"github.com/rookgm/streetmart/internal/telemetry"
	"github.com/rookgm/streetmart/internal/worker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	if err := run(cfg); err != nil {
		logger.Log.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, "streetmart")
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Log.Warn("Error flushing traces", zap.Error(err))
		}
	}()

	// initialize store, postgres when DSN is set
	stores, err := app.OpenStores(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer stores.Close()
	if cfg.DatabaseDSN == "" {
		logger.Log.Warn("Database DSN is empty, using in-memory store")
	}

	money, err := service.NewMoneyFormatter(cfg.Currency)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	token := auth.NewAuthToken([]byte(cfg.TokenKey), cfg.TokenTTL)

	// order events go to kafka only when brokers are configured
	var publisher service.Publisher
	if brokers := broker.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		p := broker.NewPublisher(brokers, cfg.KafkaTopic)
		defer p.Close()
		publisher = p
	}

	// dependency injection
	svc := app.NewServices(stores, token, publisher, money, m)
	router := app.NewRouter(svc, token, stores, m, reg, logger.Log)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if svc.Events != nil {
		relay := worker.NewOutboxRelay(svc.Events, cfg.OutboxInterval)
		g.Go(func() error {
			relay.Run(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

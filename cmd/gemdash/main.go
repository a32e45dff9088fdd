package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gemdash/internal/amqp"
	"gemdash/internal/backend"
	"gemdash/internal/cli"
	"gemdash/internal/dashboard"
	apphttp "gemdash/internal/http"
	"gemdash/internal/ledger"
	applog "gemdash/internal/log"
)

func main() {
	cfg, logger := cli.Setup(applog.ComponentApp)

	if err := cfg.Validate(); err != nil {
		cli.Exit(logger, "Configuration validation failed", err)
	}

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Exit(logger, "Invalid backend configuration", err)
	}
	store, err := backend.NewFactory(logger).CreateStore(ctx, backendCfg)
	if err != nil {
		cli.Exit(logger, "Failed to initialize store", err, applog.FieldBackend, cfg.DataBackend)
	}
	defer store.Close()

	registry, err := dashboard.Load(cfg.DashboardRegistryFile)
	if err != nil {
		cli.Exit(logger, "Failed to load dashboard registry", err, "path", cfg.DashboardRegistryFile)
	}

	assembler := dashboard.NewAssembler(registry, ledger.NewReader(store.Store, logger), logger,
		dashboard.Options{Fanout: cfg.FanoutLimit})

	srv := apphttp.NewServer(":"+cfg.Port, assembler, logger, apphttp.Options{
		CacheSize:          cfg.CacheSize,
		CacheTTL:           cfg.CacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Store:              store.Store,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	// Tab-change events are optional; without them results live for CACHE_TTL.
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			cli.Exit(logger, "Failed to initialize AMQP client", err)
		}
		defer client.Close()

		go func() {
			err := client.ConsumeTabChanged(ctx, func(ctx context.Context, msg *amqp.TabChangedMessage) error {
				srv.InvalidateTab(ctx, msg.Key)
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Tab change consumer stopped", applog.FieldError, err.Error())
			}
		}()
		logger.Info("Listening for tab changes", "exchange", cfg.AMQPExchange)
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
	}()

	logger.Info("Starting gemdash server",
		"port", cfg.Port,
		applog.FieldBackend, store.Type.String(),
		"dashboards", len(registry.Configs()),
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Exit(logger, "Server error", err, "port", cfg.Port)
	}

	<-drained
	logger.Info("Server stopped gracefully")
}

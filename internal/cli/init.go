// Package cli holds the start-up steps shared by cmd/gemdash and
// cmd/gemdash-sync.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gemdash/internal/config"
	applog "gemdash/internal/log"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// Setup loads .env and the environment configuration, then installs a
// logger for component at the configured level as the default.
func Setup(component string) (*config.Config, *applog.Logger) {
	LoadEnvFile()
	cfg := config.Load()
	logger := NewLogger(cfg, component)
	applog.SetDefault(logger)
	return cfg, logger
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg *config.Config, component string) *applog.Logger {
	return applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: component,
		Output:    os.Stdout,
	})
}

// Exit logs err and terminates the process.
func Exit(logger *applog.Logger, msg string, err error, args ...any) {
	logger.Error(msg, append([]any{applog.FieldError, err.Error()}, args...)...)
	os.Exit(1)
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM. The
// received signal is logged.
func ShutdownContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), applog.FieldOperation, applog.OpShutdown)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

package main

import (
	"time"
	_ "time/tzdata"

	"gemdash/internal/amqp"
	"gemdash/internal/cli"
	"gemdash/internal/ledger/google"
	applog "gemdash/internal/log"
	"gemdash/internal/storage"
	"gemdash/internal/worker"
)

// gemdash-sync mirrors the Google Sheets key/value store into sqlite and
// announces changed tabs so API replicas can drop stale results.
func main() {
	cfg, logger := cli.Setup(applog.ComponentWorker)

	if err := cfg.ValidateWorker(); err != nil {
		cli.Exit(logger, "Configuration validation failed", err)
	}

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	sheets, err := google.New(ctx, google.Options{
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		Sheet:         cfg.GoogleStoreSheet,
		Logger:        logger,
	})
	if err != nil {
		cli.Exit(logger, "Failed to initialize Google Sheets client", err)
	}

	db, err := storage.NewSQLiteStore(cfg.SQLiteDBPath, logger)
	if err != nil {
		cli.Exit(logger, "Failed to initialize SQLite store", err, "path", cfg.SQLiteDBPath)
	}
	defer db.Close()

	var publisher worker.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, "", logger)
		if err != nil {
			cli.Exit(logger, "Failed to initialize AMQP client", err)
		}
		defer client.Close()
		publisher = client
	} else {
		logger.Info("AMQP disabled - tab changes will not be announced")
	}

	logger.Info("Starting gemdash-sync",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"interval", cfg.SyncInterval.String(),
		"schedule", cfg.SyncSchedule,
		applog.FieldOperation, applog.OpStartup)

	w := worker.NewSyncWorker(sheets, db, publisher, logger)
	if cfg.SyncSchedule != "" {
		loc, err := time.LoadLocation(cfg.SyncTimezone)
		if err != nil {
			cli.Exit(logger, "Invalid sync timezone", err)
		}
		err = w.RunSchedule(ctx, cfg.SyncSchedule, loc)
		if err != nil {
			cli.Exit(logger, "Sync worker failed", err)
		}
	} else if err := w.Run(ctx, cfg.SyncInterval); err != nil {
		cli.Exit(logger, "Sync worker failed", err)
	}
	logger.Info("Worker shutdown complete")
}

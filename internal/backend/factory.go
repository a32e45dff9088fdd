package backend

import (
	"context"
	"fmt"

	"gemdash/internal/ledger/google"
	"gemdash/internal/ledger/memory"
	applog "gemdash/internal/log"
	"gemdash/internal/storage"
)

// DefaultFactory builds the stores shipped with gemdash.
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// CreateStore implements Factory.
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Type {
	case SQLite:
		return f.createSQLite(config)
	case Sheets:
		return f.createSheets(ctx, config)
	case Memory:
		return f.createMemory(config)
	}
	return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
}

func (f *DefaultFactory) createSQLite(config Config) (*Result, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite store: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &Result{Store: store, Lister: store, Cleanup: store.Close, Type: SQLite}, nil
}

func (f *DefaultFactory) createSheets(ctx context.Context, config Config) (*Result, error) {
	cli, err := google.New(ctx, google.Options{
		SpreadsheetID: config.GoogleSpreadsheetID,
		Sheet:         config.GoogleStoreSheet,
		CacheTTL:      config.GoogleCacheTTL,
		Logger:        f.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets store: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleStoreSheet)
	return &Result{Store: cli, Lister: cli, Type: Sheets}, nil
}

func (f *DefaultFactory) createMemory(config Config) (*Result, error) {
	store, err := memory.NewFromFile(config.MemorySeedFile)
	if err != nil {
		return nil, fmt.Errorf("initialize memory store: %w", err)
	}
	keys, _ := store.Keys(context.Background())
	f.logger.Info("Initialized memory backend", "seed_file", config.MemorySeedFile, "keys", len(keys))
	return &Result{Store: store, Lister: store, Type: Memory}, nil
}

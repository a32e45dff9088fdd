package backend

import (
	"context"
	"time"

	"gemdash/internal/ledger"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result is a ready-to-use store and its cleanup.
type Result struct {
	Store ledger.Store
	// Lister is nil when the store cannot enumerate its keys.
	Lister  ledger.Lister
	Cleanup CleanupFunc
	Type    Type
}

// Close runs Cleanup if set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates the store the dashboard reads from.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Config holds what store creation needs.
type Config struct {
	Type Type

	SQLiteDBPath   string
	MemorySeedFile string

	GoogleSpreadsheetID string
	GoogleStoreSheet    string
	GoogleCacheTTL      time.Duration
}

// Type names a store implementation.
type Type string

const (
	SQLite Type = "sqlite"
	Sheets Type = "sheets"
	Memory Type = "memory"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case SQLite, Sheets, Memory:
		return true
	}
	return false
}

// Package storage persists tab payloads in sqlite. It is the local mirror the
// sync worker fills from Google Sheets and the dashboard API reads from.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	applog "gemdash/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements ledger.Store, ledger.Writer and ledger.Lister over
// the tab_blobs table.
type SQLiteStore struct {
	db     *sql.DB
	logger *applog.Logger
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// migrates it.
func NewSQLiteStore(dbPath string, logger *applog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Writers serialize in sqlite; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger.WithComponent(applog.ComponentStorage)}
	s.logger.Info("SQLite store ready", "path", dbPath)
	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get implements ledger.Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM tab_blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Put implements ledger.Writer. An identical value is not rewritten and
// reports changed=false.
func (s *SQLiteStore) Put(ctx context.Context, key, value string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin put %s: %w", key, err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT value FROM tab_blobs WHERE key = ?`, key).Scan(&current)
	switch {
	case err == nil && current == value:
		return false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("read %s: %w", key, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tab_blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("upsert %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit put %s: %w", key, err)
	}

	s.logger.DebugContext(ctx, "Tab payload stored", applog.FieldKey, key, "bytes", len(value))
	return true, nil
}

// Delete removes key and reports whether it existed.
func (s *SQLiteStore) Delete(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tab_blobs WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", key, err)
	}
	return n > 0, nil
}

// Keys implements ledger.Lister.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM tab_blobs ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Ping checks the database connection for health probes.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

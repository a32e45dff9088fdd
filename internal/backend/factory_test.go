package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gemdash/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", GoogleStoreSheet: "Store"}
	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, SQLite, cfg.Type)
	assert.Equal(t, "x.db", cfg.SQLiteDBPath)

	_, err = FromAppConfig(&config.Config{DataBackend: "redis"})
	assert.Error(t, err)
	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: Memory}, false},
		{"sqlite", Config{Type: SQLite, SQLiteDBPath: "a.db"}, false},
		{"sqlite without path", Config{Type: SQLite}, true},
		{"sheets without id", Config{Type: Sheets}, true},
		{"unknown", Config{Type: "nope"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() = %v", err)
		})
	}
}

func TestCreateMemoryStore(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seed, []byte(`{"inventory_sl_Cut": [{"cost": 1}]}`), 0o600))

	res, err := NewFactory(nil).CreateStore(context.Background(), Config{Type: Memory, MemorySeedFile: seed})
	require.NoError(t, err)
	defer res.Close()

	v, ok, err := res.Store.Get(context.Background(), "inventory_sl_Cut")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"cost": 1}]`, v)
	assert.Equal(t, Memory, res.Type)
}

func TestCreateSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gemdash.db")
	res, err := NewFactory(nil).CreateStore(context.Background(), Config{Type: SQLite, SQLiteDBPath: path})
	require.NoError(t, err)
	require.NotNil(t, res.Lister)
	keys, err := res.Lister.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.NoError(t, res.Close())
}

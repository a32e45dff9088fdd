package backend

import (
	"fmt"

	"gemdash/internal/config"
)

// FromAppConfig derives the store configuration from the application config.
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	t := Type(app.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", app.DataBackend)
	}
	return Config{
		Type:                t,
		SQLiteDBPath:        app.SQLiteDBPath,
		MemorySeedFile:      app.MemorySeedFile,
		GoogleSpreadsheetID: app.GoogleSpreadsheetID,
		GoogleStoreSheet:    app.GoogleStoreSheet,
		GoogleCacheTTL:      app.GoogleCacheTTL,
	}, nil
}

// Validate checks the settings the selected type needs.
func (c Config) Validate() error {
	switch c.Type {
	case SQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case Sheets:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
	case Memory:
	default:
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	return nil
}

// Types returns every valid backend type.
func Types() []Type {
	return []Type{SQLite, Sheets, Memory}
}

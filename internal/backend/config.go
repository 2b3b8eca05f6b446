package backend

import (
	"errors"
	"fmt"

	"opsboard/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	c := Config{
		Type:          BackendType(appConfig.DataBackend),
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		SeedDir:       appConfig.SeedDir,
		Views:         ViewStoreType(appConfig.ViewStore),
		ViewStorePath: appConfig.ViewStorePath,
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if !c.Views.IsValid() {
		return fmt.Errorf("invalid view store type: %s", c.Views)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return errors.New("SQLite database path is required for sqlite backend")
	}
	if c.Views == SQLiteViews && c.Type != SQLiteBackend {
		return errors.New("sqlite view store requires the sqlite backend")
	}
	if c.Views == FileViews && c.ViewStorePath == "" {
		return errors.New("view store path is required for file view store")
	}
	return nil
}

package backend

import (
	"errors"
	"fmt"
	"strings"

	"finsimples/internal/config"
)

var errNoAppConfig = errors.New("app config is nil")

// FromAppConfig selects the store named by DATA_BACKEND.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errNoAppConfig
	}
	c := Config{
		Type:         BackendType(strings.ToLower(strings.TrimSpace(appConfig.DataBackend))),
		SQLiteDBPath: appConfig.SQLiteDBPath,
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks that the type is known and that sqlite has a path.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type %q: must be %s or %s", c.Type, MemoryBackend, SQLiteBackend)
	}
	if c.Type == SQLiteBackend && strings.TrimSpace(c.SQLiteDBPath) == "" {
		return errors.New("sqlite backend requires SQLITE_DB_PATH")
	}
	return nil
}

// Package storage persists finished screenings.
package storage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"

	DefaultPath = "simulated_db.json"
)

type Config struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// Open returns the sink selected by cfg. The json driver also handles YAML files.
func Open(ctx context.Context, cfg *Config, logger *zap.Logger) (Sink, error) {
	driver := DriverJSON
	path := DefaultPath
	if cfg != nil {
		if d := strings.ToLower(strings.TrimSpace(cfg.Driver)); d != "" {
			driver = d
		}
		if p := strings.TrimSpace(cfg.Path); p != "" {
			path = p
		}
	}

	switch driver {
	case DriverJSON, "yaml", "file":
		return NewFileSink(path, logger), nil
	case DriverSQLite:
		return NewSQLiteSink(ctx, path, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", driver)
	}
}

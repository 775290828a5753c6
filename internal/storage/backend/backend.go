// Package backend opens the storage implementation named in the config.
package backend

import (
	"context"
	"fmt"

	"github.com/mmynk/splitr/internal/config"
	"github.com/mmynk/splitr/internal/storage"
	"github.com/mmynk/splitr/internal/storage/postgres"
	"github.com/mmynk/splitr/internal/storage/sqlite"
)

// Open returns a migrated store for cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.New(cfg.Path)
	case "postgres":
		return postgres.Open(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

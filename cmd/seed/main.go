// Command seed inserts the demo users. Running it twice is harmless.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/mmynk/splitr/internal/config"
	"github.com/mmynk/splitr/internal/models"
	"github.com/mmynk/splitr/internal/storage/backend"
	"github.com/mmynk/splitr/pkg/logging"
)

var demoUsers = []struct{ name, email string }{
	{"Alice", "alice@demo.com"},
	{"Bob", "bob@demo.com"},
	{"Charlie", "charlie@demo.com"},
	{"Diana", "diana@demo.com"},
	{"John", "john@demo.com"},
	{"Sarah", "sarah@demo.com"},
	{"Mike", "mike@demo.com"},
}

func main() {
	logging.Setup()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := backend.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	created := 0
	for _, d := range demoUsers {
		existing, err := store.GetUserByEmail(ctx, d.email)
		if err != nil {
			slog.Error("Lookup failed", "email", d.email, "error", err)
			os.Exit(1)
		}
		if existing != nil {
			continue
		}
		if err := store.CreateUser(ctx, models.NewUser(d.email, d.name, "")); err != nil {
			slog.Error("Create failed", "email", d.email, "error", err)
			os.Exit(1)
		}
		created++
	}
	slog.Info("Demo users seeded", "created", created, "total", len(demoUsers))
}

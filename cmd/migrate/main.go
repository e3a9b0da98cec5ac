package main

import (
	"context"
	"os"

	"voucher-engine/internal/config"
	"voucher-engine/internal/db"
)

func main() {
	cfg, err := config.Load()
	logger := config.NewLogger("info")
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger = config.NewLogger(cfg.LogLevel)

	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	migrations, err := db.DiscoverMigrations(os.DirFS("."), dir)
	if err != nil {
		logger.Fatalf("discover: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, migrations, logger); err != nil {
		logger.Fatalf("migrate: %v", err)
	}
	logger.Info("all migrations processed")
}

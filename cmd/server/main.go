package main

import (
	"context"
	"net/http"

	webAdapter "voucher-engine/internal/adapters/web"
	"voucher-engine/internal/app"
	"voucher-engine/internal/config"
	"voucher-engine/internal/core"
	"voucher-engine/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.NewLogger("info").Fatalf("config: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer pool.Close()

	svc := app.NewVoucherService(
		core.NewBalancer(cfg.DefaultGLAccountID),
		core.NewReferenceService(pool),
		core.NewSettingsService(pool),
		core.NewVoucherQueryService(pool),
		cfg.OpeningDifferenceSetting,
		logger,
	)

	handler := webAdapter.NewHandler(svc, cfg.AllowedOrigins, cfg.JWTSecret, logger)

	logger.Infof("server starting on :%s", cfg.ServerPort)
	if err := http.ListenAndServe(":"+cfg.ServerPort, handler); err != nil {
		logger.Fatalf("server: %v", err)
	}
}

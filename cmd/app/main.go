package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"voucher-engine/internal/adapters/cli"
	"voucher-engine/internal/adapters/repl"
	"voucher-engine/internal/app"
	"voucher-engine/internal/config"
	"voucher-engine/internal/core"
	"voucher-engine/internal/db"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "schema" {
		name := "payload"
		if len(args) > 1 {
			name = args[1]
		}
		if err := cli.PrintSchema(os.Stdout, name); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	// Logs go to stderr so stdout stays pure JSON.
	logger := config.NewLogger(cfg.LogLevel)
	logger.SetOutput(os.Stderr)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	balancer := core.NewBalancer(cfg.DefaultGLAccountID)
	svc := app.NewVoucherService(
		balancer,
		core.NewReferenceService(pool),
		core.NewSettingsService(pool),
		core.NewVoucherQueryService(pool),
		cfg.OpeningDifferenceSetting,
		logger,
	)
	sess := app.Session{UserID: cfg.CLIUserID, CompanyID: cfg.CLICompanyID}

	if len(args) == 0 {
		repl.Run(ctx, svc, balancer, sess, os.Stdin, os.Stdout)
		return
	}

	if err := cli.Run(ctx, svc, sess, args, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		pool.Close()
		if errors.Is(err, cli.ErrUnbalanced) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

// Package main runs the vocabquest review API: it loads configuration,
// connects to PostgreSQL, optionally applies migrations, and serves HTTP
// until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/phrazzld/vocabquest-api/internal/config"
	"github.com/phrazzld/vocabquest-api/internal/platform/logger"
	"github.com/phrazzld/vocabquest-api/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, reset, status, version) and exit")
	flag.Parse()

	if err := run(context.Background(), *migrateCmd); err != nil {
		log.Fatalf("vocabquest-api: %v", err)
	}
}

func run(ctx context.Context, migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("review_timezone", cfg.Review.Timezone))

	db, err := setupAppDatabase(ctx, cfg, l)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		l.Info("running migrations", slog.String("command", migrateCmd))
		return postgres.Migrate(ctx, db, migrateCmd, l)
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

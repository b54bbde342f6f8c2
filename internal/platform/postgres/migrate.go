package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// MigrationTableName is the goose version table.
const MigrationTableName = "schema_migrations"

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements goose.Logger. It does not exit; the error is returned
// to the caller instead.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Migrate runs a goose command (up, down, reset, status, version) against db
// using the migrations embedded in the binary.
func Migrate(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "migrations"))

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetTableName(MigrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	log.Info("running migration command", slog.String("command", command))

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, migrationsDir)
	case "down":
		err = goose.DownContext(ctx, db, migrationsDir)
	case "reset":
		err = goose.ResetContext(ctx, db, migrationsDir)
	case "status":
		err = goose.StatusContext(ctx, db, migrationsDir)
	case "version":
		err = goose.VersionContext(ctx, db, migrationsDir)
	default:
		return fmt.Errorf(
			"unknown migration command: %s (expected up, down, reset, status, or version)",
			command,
		)
	}

	if err != nil {
		log.Error("migration command failed",
			slog.String("command", command),
			slog.String("error", err.Error()))
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	log.Info("migration command completed", slog.String("command", command))
	return nil
}

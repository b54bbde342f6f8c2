package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vocabquest-api/internal/config"
	"github.com/phrazzld/vocabquest-api/internal/domain/srs"
	"github.com/phrazzld/vocabquest-api/internal/events"
	"github.com/phrazzld/vocabquest-api/internal/platform/postgres"
	"github.com/phrazzld/vocabquest-api/internal/scheduler"
	"github.com/phrazzld/vocabquest-api/internal/service/review"
	"github.com/phrazzld/vocabquest-api/internal/store"
)

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	stateStore    store.WordStateStore
	srsService    srs.Service
	reviewService review.Service
	eventEmitter  *events.InMemoryEmitter
	reminders     *scheduler.Scheduler
}

// newApplication wires stores, services and the reminder job.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	loc, err := cfg.Review.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load review timezone: %w", err)
	}

	app.srsService, err = srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{Location: loc}))
	if err != nil {
		return nil, fmt.Errorf("failed to create SRS service: %w", err)
	}

	app.stateStore = postgres.NewPostgresWordStateStore(db, logger)

	app.eventEmitter = events.NewInMemoryEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewLogHandler(logger))

	app.reviewService, err = review.NewReviewService(
		db,
		app.stateStore,
		app.srsService,
		logger,
		review.WithEmitter(app.eventEmitter),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review service: %w", err)
	}

	if cfg.Scheduler.Enabled {
		app.reminders, err = scheduler.New(
			app.stateStore,
			scheduler.NewLogNotifier(logger),
			cfg.Scheduler.ReminderInterval,
			loc,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create reminder scheduler: %w", err)
		}
	}

	logger.Info("application initialized",
		slog.Bool("reminders_enabled", cfg.Scheduler.Enabled))
	return app, nil
}

// Run starts background jobs and serves HTTP until ctx ends or a signal arrives.
func (app *application) Run(ctx context.Context) error {
	if app.reminders != nil {
		if err := app.reminders.Start(); err != nil {
			app.cleanup()
			return err
		}
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background jobs and closes the database.
func (app *application) cleanup() {
	if app.reminders != nil {
		app.reminders.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}

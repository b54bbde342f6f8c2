package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/vocabquest-api/internal/domain"
	"github.com/phrazzld/vocabquest-api/internal/platform/logger"
	"github.com/phrazzld/vocabquest-api/internal/store"
)

const wordStatesTable = "user_word_states"

var wordStateColumns = []string{
	"user_id",
	"word_id",
	"repetitions",
	"interval_days",
	"ease_factor",
	"due_at",
	"last_reviewed_at",
	"lapses",
	"created_at",
	"updated_at",
}

// psql builds queries with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// dueCondition matches words that were never scheduled or whose due date has passed.
func dueCondition(now time.Time) squirrel.Sqlizer {
	return squirrel.Or{
		squirrel.Eq{"due_at": nil},
		squirrel.LtOrEq{"due_at": now},
	}
}

// PostgresWordStateStore implements the store.WordStateStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWordStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWordStateStore creates a new PostgreSQL implementation of the WordStateStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresWordStateStore(db store.DBTX, logger *slog.Logger) *PostgresWordStateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWordStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_state_store")),
	}
}

// Ensure PostgresWordStateStore implements store.WordStateStore interface
var _ store.WordStateStore = (*PostgresWordStateStore)(nil)

// WithTx implements store.WordStateStore.WithTx
func (s *PostgresWordStateStore) WithTx(tx *sql.Tx) store.WordStateStore {
	return &PostgresWordStateStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWordState(row rowScanner) (*domain.WordState, error) {
	var (
		state          domain.WordState
		dueAt          sql.NullTime
		lastReviewedAt sql.NullTime
	)

	if err := row.Scan(
		&state.UserID,
		&state.WordID,
		&state.Repetitions,
		&state.IntervalDays,
		&state.EaseFactor,
		&dueAt,
		&lastReviewedAt,
		&state.Lapses,
		&state.CreatedAt,
		&state.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if dueAt.Valid {
		t := dueAt.Time
		state.DueAt = &t
	}
	if lastReviewedAt.Valid {
		t := lastReviewedAt.Time
		state.LastReviewedAt = &t
	}

	return &state, nil
}

// Create implements store.WordStateStore.Create
func (s *PostgresWordStateStore) Create(ctx context.Context, state *domain.WordState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("word state validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("word_id", state.WordID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	now := time.Now().UTC()
	createdAt, updatedAt := state.CreatedAt, state.UpdatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if updatedAt.IsZero() {
		updatedAt = now
	}

	query := `
		INSERT INTO user_word_states (
			user_id, word_id, repetitions, interval_days, ease_factor,
			due_at, last_reviewed_at, lapses, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		state.UserID,
		state.WordID,
		state.Repetitions,
		state.IntervalDays,
		state.EaseFactor,
		state.DueAt,
		state.LastReviewedAt,
		state.Lapses,
		createdAt,
		updatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("word state already exists",
				slog.String("user_id", state.UserID.String()),
				slog.String("word_id", state.WordID.String()))
			return store.ErrWordStateExists
		}

		log.Error("failed to create word state",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("word_id", state.WordID.String()))
		return MapError(err)
	}

	log.Debug("word state created",
		slog.String("user_id", state.UserID.String()),
		slog.String("word_id", state.WordID.String()))
	return nil
}

// Get implements store.WordStateStore.Get
func (s *PostgresWordStateStore) Get(
	ctx context.Context,
	userID, wordID uuid.UUID,
) (*domain.WordState, error) {
	return s.get(ctx, userID, wordID, false)
}

// GetForUpdate implements store.WordStateStore.GetForUpdate
func (s *PostgresWordStateStore) GetForUpdate(
	ctx context.Context,
	userID, wordID uuid.UUID,
) (*domain.WordState, error) {
	return s.get(ctx, userID, wordID, true)
}

func (s *PostgresWordStateStore) get(
	ctx context.Context,
	userID, wordID uuid.UUID,
	forUpdate bool,
) (*domain.WordState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, word_id, repetitions, interval_days, ease_factor,
		       due_at, last_reviewed_at, lapses, created_at, updated_at
		FROM user_word_states
		WHERE user_id = $1 AND word_id = $2
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	state, err := scanWordState(s.db.QueryRowContext(ctx, query, userID, wordID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("word state not found",
				slog.String("user_id", userID.String()),
				slog.String("word_id", wordID.String()))
			return nil, store.ErrWordStateNotFound
		}
		log.Error("failed to get word state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("word_id", wordID.String()),
			slog.Bool("for_update", forUpdate))
		return nil, MapError(err)
	}

	return state, nil
}

// Update implements store.WordStateStore.Update
func (s *PostgresWordStateStore) Update(ctx context.Context, state *domain.WordState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("word state validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("word_id", state.WordID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	updatedAt := state.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	query := `
		UPDATE user_word_states
		SET repetitions = $1,
		    interval_days = $2,
		    ease_factor = $3,
		    due_at = $4,
		    last_reviewed_at = $5,
		    lapses = $6,
		    updated_at = $7
		WHERE user_id = $8 AND word_id = $9
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		state.Repetitions,
		state.IntervalDays,
		state.EaseFactor,
		state.DueAt,
		state.LastReviewedAt,
		state.Lapses,
		updatedAt,
		state.UserID,
		state.WordID,
	)
	if err != nil {
		log.Error("failed to update word state",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("word_id", state.WordID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrWordStateNotFound); err != nil {
		log.Debug("word state update touched no rows",
			slog.String("user_id", state.UserID.String()),
			slog.String("word_id", state.WordID.String()))
		return err
	}

	log.Debug("word state updated",
		slog.String("user_id", state.UserID.String()),
		slog.String("word_id", state.WordID.String()),
		slog.Int("interval_days", state.IntervalDays))
	return nil
}

// ListDue implements store.WordStateStore.ListDue
func (s *PostgresWordStateStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.WordState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return []*domain.WordState{}, nil
	}

	query, args, err := psql.
		Select(wordStateColumns...).
		From(wordStatesTable).
		Where(squirrel.Eq{"user_id": userID}).
		Where(dueCondition(now)).
		OrderBy("due_at ASC NULLS FIRST", "word_id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, store.NewStoreError("word_state", "list_due", "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query due word states",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	states := make([]*domain.WordState, 0, limit)
	for rows.Next() {
		state, err := scanWordState(rows)
		if err != nil {
			log.Error("failed to scan due word state",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, MapError(err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("listed due word states",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(states)))
	return states, nil
}

// Stats implements store.WordStateStore.Stats
func (s *PostgresWordStateStore) Stats(
	ctx context.Context,
	userID uuid.UUID,
	now, dayStart time.Time,
) (*domain.ReviewStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.
		Select().
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE due_at IS NULL OR due_at <= ?)", now)).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE last_reviewed_at >= ?)", dayStart)).
		Column("COUNT(*)").
		From(wordStatesTable).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, store.NewStoreError("word_state", "stats", "failed to build query", err)
	}

	var stats domain.ReviewStats
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&stats.DueCount,
		&stats.ReviewedToday,
		&stats.TotalWords,
	); err != nil {
		log.Error("failed to compute review stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return &stats, nil
}

// UsersWithDue implements store.WordStateStore.UsersWithDue
func (s *PostgresWordStateStore) UsersWithDue(ctx context.Context, now time.Time) ([]store.UserDueCount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.
		Select("user_id", "COUNT(*)").
		From(wordStatesTable).
		Where(dueCondition(now)).
		GroupBy("user_id").
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, store.NewStoreError("word_state", "users_with_due", "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query users with due words", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var counts []store.UserDueCount
	for rows.Next() {
		var c store.UserDueCount
		if err := rows.Scan(&c.UserID, &c.DueCount); err != nil {
			return nil, MapError(err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return counts, nil
}

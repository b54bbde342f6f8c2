//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/phrazzld/vocabquest-api/internal/domain"
	"github.com/phrazzld/vocabquest-api/internal/domain/srs"
	"github.com/phrazzld/vocabquest-api/internal/platform/postgres"
	"github.com/phrazzld/vocabquest-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

// setupTestDB starts one PostgreSQL container for the package run, applies
// the embedded migrations and returns a fresh connection pool.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	once.Do(func() {
		sharedDSN, initErr = startContainerAndMigrate()
	})
	if initErr != nil {
		t.Fatalf("failed to setup test DB: %v", initErr)
	}

	db, err := sql.Open("pgx", sharedDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func startContainerAndMigrate() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return "", fmt.Errorf("sql.Open: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return "", fmt.Errorf("db ping: %w", err)
	}

	if err := postgres.Migrate(ctx, db, "up", nil); err != nil {
		return "", err
	}

	return dsn, nil
}

func TestWordStateStore_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := postgres.NewPostgresWordStateStore(db, nil)
	svc := srs.NewDefaultService()

	userID, wordID := uuid.New(), uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	seed := svc.SeedFromQuest(userID, wordID, true, now)
	require.NoError(t, s.Create(ctx, seed))
	assert.ErrorIs(t, s.Create(ctx, seed), store.ErrWordStateExists)

	got, err := s.Get(ctx, userID, wordID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Repetitions)
	assert.True(t, seed.DueAt.Equal(*got.DueAt))

	next, err := svc.ProcessReview(got, 4, *got.DueAt)
	require.NoError(t, err)

	err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.WithTx(tx)
		if _, err := txStore.GetForUpdate(ctx, userID, wordID); err != nil {
			return err
		}
		return txStore.Update(ctx, next)
	})
	require.NoError(t, err)

	got, err = s.Get(ctx, userID, wordID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Repetitions)
	assert.Equal(t, 6, got.IntervalDays)

	_, err = s.Get(ctx, userID, uuid.New())
	assert.ErrorIs(t, err, store.ErrWordStateNotFound)
}

func TestWordStateStore_DueQueries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := postgres.NewPostgresWordStateStore(db, nil)

	userID := uuid.New()
	now := time.Date(2030, 5, 10, 12, 0, 0, 0, time.UTC)
	dayStart := time.Date(2030, 5, 10, 0, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(72 * time.Hour)
	reviewedToday := now.Add(-time.Hour)

	mk := func(due, reviewed *time.Time) *domain.WordState {
		return &domain.WordState{
			UserID:         userID,
			WordID:         uuid.New(),
			EaseFactor:     2.5,
			DueAt:          due,
			LastReviewedAt: reviewed,
		}
	}

	unscheduled := mk(nil, nil)
	overdue := mk(&past, &reviewedToday)
	upcoming := mk(&future, &past)
	for _, st := range []*domain.WordState{upcoming, overdue, unscheduled} {
		require.NoError(t, s.Create(ctx, st))
	}

	due, err := s.ListDue(ctx, userID, now, 20)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, unscheduled.WordID, due[0].WordID, "unscheduled words come first")
	assert.Equal(t, overdue.WordID, due[1].WordID)

	limited, err := s.ListDue(ctx, userID, now, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	stats, err := s.Stats(ctx, userID, now, dayStart)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStats{DueCount: 2, ReviewedToday: 1, TotalWords: 3}, *stats)

	counts, err := s.UsersWithDue(ctx, now)
	require.NoError(t, err)
	assert.Contains(t, counts, store.UserDueCount{UserID: userID, DueCount: 2})
}

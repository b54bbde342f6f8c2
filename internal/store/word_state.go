package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocabquest-api/internal/domain"
)

// UserDueCount is the number of due words for one user.
type UserDueCount struct {
	UserID   uuid.UUID
	DueCount int
}

// WordStateStore defines the interface for word learning state persistence.
type WordStateStore interface {
	// Create saves a new word state. Zero timestamps are stored as the current
	// time; state itself is not modified.
	// Returns ErrInvalidEntity if the state fails domain validation.
	// Returns ErrWordStateExists if a state for the (user, word) pair already exists.
	Create(ctx context.Context, state *domain.WordState) error

	// Get retrieves the state for a (user, word) pair.
	// Returns ErrWordStateNotFound if it does not exist.
	// NOTE: no row lock is taken; use GetForUpdate before read-modify-write.
	Get(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordState, error)

	// GetForUpdate retrieves the state with a row-level lock (SELECT ... FOR UPDATE).
	// Must be called inside a transaction.
	// Returns ErrWordStateNotFound if it does not exist.
	GetForUpdate(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordState, error)

	// Update overwrites the scheduling fields of an existing state. A zero
	// UpdatedAt is stored as the current time; state itself is not modified.
	// Returns ErrWordStateNotFound if it does not exist.
	Update(ctx context.Context, state *domain.WordState) error

	// ListDue returns up to limit states whose due_at is null or <= now,
	// ordered by due_at (nulls first) then word ID.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.WordState, error)

	// Stats summarizes the user's queue. Words reviewed at or after dayStart
	// count as reviewed today.
	Stats(ctx context.Context, userID uuid.UUID, now, dayStart time.Time) (*domain.ReviewStats, error)

	// UsersWithDue returns every user with at least one due word at now.
	UsersWithDue(ctx context.Context, now time.Time) ([]UserDueCount, error)

	// WithTx returns a store bound to the given transaction.
	WithTx(tx *sql.Tx) WordStateStore
}

package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MinEaseFactor is the hard floor for a word's ease factor.
const MinEaseFactor = 1.3

// Validation errors for WordState
var (
	ErrEmptyStateUserID  = errors.New("word state user ID cannot be empty")
	ErrEmptyStateWordID  = errors.New("word state word ID cannot be empty")
	ErrInvalidRepetition = errors.New("repetitions must be greater than or equal to 0")
	ErrInvalidInterval   = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")
	ErrInvalidLapses     = errors.New("lapses must be greater than or equal to 0")
)

// WordState is a user's spaced repetition learning state for one word.
// A nil DueAt means the word has never been scheduled and is due now.
type WordState struct {
	UserID         uuid.UUID  `json:"user_id"`
	WordID         uuid.UUID  `json:"word_id"`
	Repetitions    int        `json:"repetitions"`   // Consecutive passes since the last lapse
	IntervalDays   int        `json:"interval_days"` // Days until next review, 0 = due immediately
	EaseFactor     float64    `json:"ease_factor"`
	DueAt          *time.Time `json:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	Lapses         int        `json:"lapses"` // Lifetime failed reviews, never reset
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Validate checks the invariants every persisted WordState must satisfy.
func (s *WordState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}

	if s.WordID == uuid.Nil {
		return ErrEmptyStateWordID
	}

	if s.Repetitions < 0 {
		return ErrInvalidRepetition
	}

	if s.IntervalDays < 0 {
		return ErrInvalidInterval
	}

	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if s.Lapses < 0 {
		return ErrInvalidLapses
	}

	return nil
}

// Clone returns a deep copy, including the nullable timestamps.
func (s *WordState) Clone() *WordState {
	c := *s
	if s.DueAt != nil {
		due := *s.DueAt
		c.DueAt = &due
	}
	if s.LastReviewedAt != nil {
		last := *s.LastReviewedAt
		c.LastReviewedAt = &last
	}
	return &c
}

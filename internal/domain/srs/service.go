package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocabquest-api/internal/domain"
)

// Common errors
var (
	ErrNilState       = errors.New("word state cannot be nil")
	ErrInvalidQuality = domain.ErrInvalidQuality
	ErrInvalidLabel   = domain.ErrInvalidReviewLabel
	ErrInvalidDays    = errors.New("postpone days out of range")
)

// Service defines the interface for SM-2 scheduling operations.
// Implementations are pure and safe for concurrent use.
type Service interface {
	// ProcessReview computes the next word state for a review graded with quality
	ProcessReview(
		state *domain.WordState,
		quality domain.Quality,
		now time.Time,
	) (*domain.WordState, error)

	// Transition applies the SM-2 update to the numeric schedule only
	Transition(s Schedule, quality domain.Quality) (Schedule, error)

	// DueDate projects an interval onto the start of a calendar day
	DueDate(intervalDays int, ref time.Time) time.Time

	// StartOfDay returns midnight of t's day in the scheduler's location
	StartOfDay(t time.Time) time.Time

	// IsDue reports whether the word should be offered for review at now
	IsDue(state *domain.WordState, now time.Time) bool

	// SeedFromQuest builds the first state for a word answered in a quest
	SeedFromQuest(userID, wordID uuid.UUID, correct bool, now time.Time) *domain.WordState

	// PostponeReview pushes the due date forward by a number of days
	PostponeReview(
		state *domain.WordState,
		days int,
		now time.Time,
	) (*domain.WordState, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: params cannot be nil", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{
		params: params,
	}, nil
}

// QualityFromLabel maps a UI label onto the 0..5 quality scale.
func QualityFromLabel(label string) (domain.Quality, error) {
	return domain.ReviewLabel(label).Quality()
}

func (s *defaultService) ProcessReview(
	state *domain.WordState,
	quality domain.Quality,
	now time.Time,
) (*domain.WordState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if err := quality.Validate(); err != nil {
		return nil, err
	}

	return processReview(state, quality, now, s.params), nil
}

func (s *defaultService) Transition(sched Schedule, quality domain.Quality) (Schedule, error) {
	if err := quality.Validate(); err != nil {
		return Schedule{}, err
	}
	return transition(sched, quality, s.params), nil
}

func (s *defaultService) DueDate(intervalDays int, ref time.Time) time.Time {
	return projectDueDate(intervalDays, ref, s.params)
}

func (s *defaultService) StartOfDay(t time.Time) time.Time {
	return startOfDay(t, s.params)
}

func (s *defaultService) IsDue(state *domain.WordState, now time.Time) bool {
	if state == nil || state.DueAt == nil {
		return true
	}
	return !state.DueAt.After(now)
}

func (s *defaultService) SeedFromQuest(
	userID, wordID uuid.UUID,
	correct bool,
	now time.Time,
) *domain.WordState {
	reviewed := now
	state := &domain.WordState{
		UserID:         userID,
		WordID:         wordID,
		EaseFactor:     s.params.InitialEaseFactor,
		LastReviewedAt: &reviewed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var due time.Time
	if correct {
		state.Repetitions = 1
		state.IntervalDays = s.params.FirstInterval
		due = projectDueDate(state.IntervalDays, now, s.params)
	} else {
		state.Lapses = 1
		due = projectDueDate(0, now, s.params)
	}
	state.DueAt = &due

	return state
}

// PostponeReview moves the due date forward from whichever is later: the current
// due date or the start of today. Scheduling fields are left untouched.
func (s *defaultService) PostponeReview(
	state *domain.WordState,
	days int,
	now time.Time,
) (*domain.WordState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if days < 1 || days > s.params.MaxInterval {
		return nil, ErrInvalidDays
	}

	base := startOfDay(now, s.params)
	if state.DueAt != nil && state.DueAt.After(base) {
		base = *state.DueAt
	}

	next := state.Clone()
	due := projectDueDate(days, base, s.params)
	next.DueAt = &due
	next.UpdatedAt = now

	return next, nil
}

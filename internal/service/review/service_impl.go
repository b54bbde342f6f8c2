package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocabquest-api/internal/domain"
	"github.com/phrazzld/vocabquest-api/internal/domain/srs"
	"github.com/phrazzld/vocabquest-api/internal/events"
	"github.com/phrazzld/vocabquest-api/internal/platform/logger"
	"github.com/phrazzld/vocabquest-api/internal/redact"
	"github.com/phrazzld/vocabquest-api/internal/store"
)

var _ Service = (*reviewServiceImpl)(nil)

// Option configures a review service.
type Option func(*reviewServiceImpl)

// WithClock replaces time.Now as the source of the review time.
func WithClock(now func() time.Time) Option {
	return func(s *reviewServiceImpl) {
		s.now = now
	}
}

// WithEmitter publishes review and quest events after each commit.
func WithEmitter(emitter events.Emitter) Option {
	return func(s *reviewServiceImpl) {
		s.emitter = emitter
	}
}

type reviewServiceImpl struct {
	db         *sql.DB
	stateStore store.WordStateStore
	srsService srs.Service
	emitter    events.Emitter
	now        func() time.Time
	logger     *slog.Logger
}

// NewReviewService creates a review service. db, stateStore and srsService are required.
func NewReviewService(
	db *sql.DB,
	stateStore store.WordStateStore,
	srsService srs.Service,
	log *slog.Logger,
	opts ...Option,
) (Service, error) {
	if db == nil {
		return nil, NewServiceError("new_review_service", "db cannot be nil", nil)
	}
	if stateStore == nil {
		return nil, NewServiceError("new_review_service", "stateStore cannot be nil", nil)
	}
	if srsService == nil {
		return nil, NewServiceError("new_review_service", "srsService cannot be nil", nil)
	}
	if log == nil {
		log = slog.Default()
	}

	s := &reviewServiceImpl{
		db:         db,
		stateStore: stateStore,
		srsService: srsService,
		now:        time.Now,
		logger:     log.With(slog.String("component", "review_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID, wordID uuid.UUID,
	answer ReviewAnswer,
) (*domain.WordState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID.String()))

	quality, err := resolveQuality(answer)
	if err != nil {
		log.Debug("rejected review answer", slog.String("error", err.Error()))
		return nil, err
	}

	now := s.now().UTC()
	var updated *domain.WordState
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.stateStore.WithTx(tx)

		current, err := txStore.GetForUpdate(ctx, userID, wordID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrWordStateNotFound
			}
			return fmt.Errorf("failed to load word state: %w", err)
		}

		next, err := s.srsService.ProcessReview(current, quality, now)
		if err != nil {
			return fmt.Errorf("failed to process review: %w", err)
		}

		if err := txStore.Update(ctx, next); err != nil {
			return fmt.Errorf("failed to save word state: %w", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		if isClientError(err) {
			return nil, err
		}
		log.Error("failed to submit review", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("submit_review", "failed to submit review", err)
	}

	log.Debug("review submitted",
		slog.Int("quality", int(quality)),
		slog.Int("repetitions", updated.Repetitions),
		slog.Int("interval_days", updated.IntervalDays),
		slog.Float64("ease_factor", updated.EaseFactor))

	s.emit(ctx, events.TypeReviewSubmitted, events.ReviewSubmitted{
		UserID:       userID,
		WordID:       wordID,
		Quality:      int(quality),
		Passed:       quality.Passed(),
		IntervalDays: updated.IntervalDays,
		DueAt:        updated.DueAt,
	})

	return updated, nil
}

func (s *reviewServiceImpl) AnswerQuest(
	ctx context.Context,
	userID, wordID uuid.UUID,
	correct bool,
) (*QuestResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID.String()))

	now := s.now().UTC()
	var result *QuestResult
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.stateStore.WithTx(tx)

		existing, err := txStore.GetForUpdate(ctx, userID, wordID)
		if err == nil {
			result = &QuestResult{State: existing}
			return nil
		}
		if !store.IsNotFoundError(err) {
			return fmt.Errorf("failed to load word state: %w", err)
		}

		seed := s.srsService.SeedFromQuest(userID, wordID, correct, now)
		if err := txStore.Create(ctx, seed); err != nil {
			return fmt.Errorf("failed to create word state: %w", err)
		}

		result = &QuestResult{State: seed, Seeded: true}
		return nil
	})

	// A concurrent first answer won the insert; report its state.
	if errors.Is(err, store.ErrWordStateExists) {
		log.Debug("word state seeded concurrently")
		existing, getErr := s.stateStore.Get(ctx, userID, wordID)
		if getErr != nil {
			err = fmt.Errorf("failed to reload word state: %w", getErr)
		} else {
			result, err = &QuestResult{State: existing}, nil
		}
	}

	if err != nil {
		log.Error("failed to record quest answer", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("answer_quest", "failed to record quest answer", err)
	}

	log.Debug("quest answer recorded",
		slog.Bool("correct", correct),
		slog.Bool("seeded", result.Seeded))

	s.emit(ctx, events.TypeQuestAnswered, events.QuestAnswered{
		UserID:  userID,
		WordID:  wordID,
		Correct: correct,
		Seeded:  result.Seeded,
	})

	return result, nil
}

func (s *reviewServiceImpl) Postpone(
	ctx context.Context,
	userID, wordID uuid.UUID,
	days int,
) (*domain.WordState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("word_id", wordID.String()))

	if days < 1 {
		return nil, srs.ErrInvalidDays
	}

	now := s.now().UTC()
	var updated *domain.WordState
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.stateStore.WithTx(tx)

		current, err := txStore.GetForUpdate(ctx, userID, wordID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrWordStateNotFound
			}
			return fmt.Errorf("failed to load word state: %w", err)
		}

		next, err := s.srsService.PostponeReview(current, days, now)
		if err != nil {
			return err
		}

		if err := txStore.Update(ctx, next); err != nil {
			return fmt.Errorf("failed to save word state: %w", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		if isClientError(err) {
			return nil, err
		}
		log.Error("failed to postpone review", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("postpone", "failed to postpone review", err)
	}

	log.Debug("review postponed", slog.Int("days", days), slog.Time("due_at", *updated.DueAt))
	return updated, nil
}

func (s *reviewServiceImpl) DueWords(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.WordState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	states, err := s.stateStore.ListDue(ctx, userID, s.now().UTC(), limit)
	if err != nil {
		log.Error("failed to list due words",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("due_words", "failed to list due words", err)
	}

	return states, nil
}

func (s *reviewServiceImpl) Stats(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.now().UTC()
	stats, err := s.stateStore.Stats(ctx, userID, now, s.srsService.StartOfDay(now))
	if err != nil {
		log.Error("failed to load review stats",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("stats", "failed to load review stats", err)
	}

	return stats, nil
}

// emit publishes an event; failures are logged and never reach the caller.
func (s *reviewServiceImpl) emit(ctx context.Context, eventType string, payload interface{}) {
	if s.emitter == nil {
		return
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		log.Error("failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("event handler failed",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}

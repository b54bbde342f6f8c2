// Package review orchestrates word reviews: it loads a learning state under
// a row lock, applies the SM-2 scheduler and persists the result in one
// transaction, then announces the outcome as an event.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/vocabquest-api/internal/domain"
	"github.com/phrazzld/vocabquest-api/internal/domain/srs"
)

// ReviewAnswer is a graded review. Exactly one of Quality or Label is set.
type ReviewAnswer struct {
	Quality *int
	Label   string
}

// QuestResult is the outcome of AnswerQuest.
type QuestResult struct {
	State *domain.WordState
	// Seeded is true when the answer created the word's learning state.
	Seeded bool
}

// Service provides review scheduling for a user's words.
type Service interface {
	// SubmitReview grades a review of a word and reschedules it.
	//
	// Returns:
	//   - ErrInvalidAnswer when neither or both of quality and label are set
	//   - srs.ErrInvalidQuality / srs.ErrInvalidLabel for out-of-range grades
	//   - ErrWordStateNotFound when the word has never been seeded
	SubmitReview(ctx context.Context, userID, wordID uuid.UUID, answer ReviewAnswer) (*domain.WordState, error)

	// AnswerQuest records the first quest answer for a word. A word that
	// already has a learning state is returned unchanged.
	AnswerQuest(ctx context.Context, userID, wordID uuid.UUID, correct bool) (*QuestResult, error)

	// Postpone pushes a word's due date forward by days (>= 1).
	Postpone(ctx context.Context, userID, wordID uuid.UUID, days int) (*domain.WordState, error)

	// DueWords lists up to limit words currently due for the user.
	DueWords(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.WordState, error)

	// Stats summarizes the user's review queue for today.
	Stats(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error)
}

// Common error types for the review service
var (
	// ErrWordStateNotFound indicates the user has no learning state for the word.
	ErrWordStateNotFound = errors.New("word has no learning state")

	// ErrInvalidAnswer indicates a review answer without exactly one grade.
	ErrInvalidAnswer = errors.New("answer must set exactly one of quality or label")

	// ErrInvalidLimit indicates a non-positive due list limit.
	ErrInvalidLimit = errors.New("limit must be positive")
)

// ServiceError wraps unexpected failures with the operation that produced them.
type ServiceError struct {
	// Operation is the operation that failed (e.g. "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error
	Err error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a ServiceError for operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// resolveQuality turns an answer into a validated quality.
func resolveQuality(answer ReviewAnswer) (domain.Quality, error) {
	switch {
	case answer.Quality != nil && answer.Label != "":
		return 0, ErrInvalidAnswer
	case answer.Label != "":
		return srs.QualityFromLabel(answer.Label)
	case answer.Quality != nil:
		q := domain.Quality(*answer.Quality)
		if err := q.Validate(); err != nil {
			return 0, err
		}
		return q, nil
	default:
		return 0, ErrInvalidAnswer
	}
}

// isClientError reports whether err is an expected, caller-caused condition
// that should be returned as is.
func isClientError(err error) bool {
	return errors.Is(err, ErrWordStateNotFound) ||
		errors.Is(err, ErrInvalidAnswer) ||
		errors.Is(err, ErrInvalidLimit) ||
		errors.Is(err, srs.ErrInvalidQuality) ||
		errors.Is(err, srs.ErrInvalidLabel) ||
		errors.Is(err, srs.ErrInvalidDays)
}

package api

import (
	"time"

	"github.com/phrazzld/vocabquest-api/internal/domain"
)

// Due list sizes.
const (
	DefaultDueLimit = 20
	MaxDueLimit     = 100
)

// SubmitReviewRequest grades a review with either a raw quality or a UI label.
type SubmitReviewRequest struct {
	Quality *int   `json:"quality" validate:"omitempty,min=0,max=5"`
	Label   string `json:"label"   validate:"omitempty,oneof=forgot difficult got_it too_easy"`
}

// QuestAnswerRequest records whether a quest answer was correct.
type QuestAnswerRequest struct {
	Correct *bool `json:"correct" validate:"required"`
}

// PostponeRequest pushes a word's due date forward.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,min=1"`
}

// WordStateResponse is the wire form of a learning state.
type WordStateResponse struct {
	WordID         string     `json:"word_id"`
	Repetitions    int        `json:"repetitions"`
	IntervalDays   int        `json:"interval_days"`
	EaseFactor     float64    `json:"ease_factor"`
	DueAt          *time.Time `json:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	Lapses         int        `json:"lapses"`
}

// DueWordsResponse lists the words currently due.
type DueWordsResponse struct {
	Words []WordStateResponse `json:"words"`
	Count int                 `json:"count"`
}

func wordStateToResponse(s *domain.WordState) WordStateResponse {
	return WordStateResponse{
		WordID:         s.WordID.String(),
		Repetitions:    s.Repetitions,
		IntervalDays:   s.IntervalDays,
		EaseFactor:     s.EaseFactor,
		DueAt:          s.DueAt,
		LastReviewedAt: s.LastReviewedAt,
		Lapses:         s.Lapses,
	}
}

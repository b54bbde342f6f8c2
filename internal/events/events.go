package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the review service.
const (
	TypeReviewSubmitted = "review.submitted"
	TypeQuestAnswered   = "quest.answered"
)

// Event is a typed envelope around a JSON payload.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReviewSubmitted is the payload of a review.submitted event.
type ReviewSubmitted struct {
	UserID       uuid.UUID  `json:"user_id"`
	WordID       uuid.UUID  `json:"word_id"`
	Quality      int        `json:"quality"`
	Passed       bool       `json:"passed"`
	IntervalDays int        `json:"interval_days"`
	DueAt        *time.Time `json:"due_at"`
}

// QuestAnswered is the payload of a quest.answered event.
// Seeded is false when the word already had a learning state.
type QuestAnswered struct {
	UserID  uuid.UUID `json:"user_id"`
	WordID  uuid.UUID `json:"word_id"`
	Correct bool      `json:"correct"`
	Seeded  bool      `json:"seeded"`
}

// NewEvent creates an Event with a fresh ID and the payload serialized as JSON.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Handler processes events delivered by an Emitter.
type Handler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Emitter publishes events to registered handlers.
type Emitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}

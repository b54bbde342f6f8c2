package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/vocabquest-api/internal/platform/logger"
)

var _ Emitter = (*InMemoryEmitter)(nil)

// InMemoryEmitter dispatches events synchronously to handlers held in memory.
type InMemoryEmitter struct {
	handlers []Handler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEmitter creates an emitter with no handlers.
func NewInMemoryEmitter(log *slog.Logger) *InMemoryEmitter {
	if log == nil {
		log = slog.Default()
	}
	return &InMemoryEmitter{
		handlers: make([]Handler, 0),
		logger:   log.With(slog.String("component", "event_emitter")),
	}
}

// RegisterHandler adds a handler that receives every subsequent event.
func (e *InMemoryEmitter) RegisterHandler(handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered event handler", slog.Int("handler_count", len(e.handlers)))
}

// EmitEvent delivers event to every handler. A failing handler does not
// stop delivery; the first error encountered is returned.
func (e *InMemoryEmitter) EmitEvent(ctx context.Context, event *Event) error {
	log := logger.FromContextOrDefault(ctx, e.logger)

	e.mu.RLock()
	handlers := make([]Handler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	log.Debug("emitting event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.Int("handler_count", len(handlers)))

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			log.Error("handler failed to process event",
				slog.String("error", err.Error()),
				slog.Int("handler_index", i),
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.Type))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// NewLogHandler returns a handler that records each event at info level.
func NewLogHandler(log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "event_log"))
	return HandlerFunc(func(ctx context.Context, event *Event) error {
		logger.FromContextOrDefault(ctx, log).Info("event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type),
			slog.String("payload", string(event.Payload)))
		return nil
	})
}

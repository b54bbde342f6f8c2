package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"github.com/google/uuid"
)

// ContextKey is the type for request context keys owned by the API layer.
type ContextKey string

const (
	// UserIDContextKey holds the caller's user ID (uuid.UUID).
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey holds the request trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID (32 hex characters).
	TraceIDLength = 16
)

// SetTraceID adds a freshly generated trace ID to ctx.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, generateTraceID())
}

// WithTraceID stores traceID in ctx.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the trace ID stored in ctx, or "".
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithUserID stores the caller's user ID in ctx.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// GetUserID returns the caller's user ID from ctx.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		slog.Error("failed to generate random trace ID, using uuid",
			slog.String("error", err.Error()))
		id := uuid.New()
		return hex.EncodeToString(id[:])
	}
	return hex.EncodeToString(b)
}

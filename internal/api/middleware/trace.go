package middleware

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/vocabquest-api/internal/api/shared"
	"github.com/phrazzld/vocabquest-api/internal/platform/logger"
)

// TraceMiddleware assigns each request a trace ID and a request-scoped logger.
// The chi request ID is reused when present so logs and responses agree.
func TraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
				ctx = shared.WithTraceID(ctx, reqID)
			} else {
				ctx = shared.SetTraceID(ctx)
			}
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

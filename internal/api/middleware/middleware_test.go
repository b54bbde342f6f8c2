package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/phrazzld/vocabquest-api/internal/api/shared"
	"github.com/stretchr/testify/assert"
)

func TestTraceMiddleware(t *testing.T) {
	var seen string
	handler := TraceMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
	}))

	t.Run("generates a trace ID", func(t *testing.T) {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Len(t, seen, shared.TraceIDLength*2)
	})

	t.Run("reuses the chi request ID", func(t *testing.T) {
		chained := chimiddleware.RequestID(handler)
		chained.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Contains(t, seen, "/")
	})
}

func TestRequireUser(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid", userID.String(), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "not-a-uuid", http.StatusUnauthorized},
		{"nil uuid", uuid.Nil.String(), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got uuid.UUID
			handler := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = shared.GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set(UserIDHeader, tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, userID, got)
			}
		})
	}
}

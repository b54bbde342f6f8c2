package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/vocabquest-api/internal/api/shared"
	"github.com/phrazzld/vocabquest-api/internal/platform/logger"
)

// UserIDHeader carries the caller's user ID, set by the upstream gateway.
const UserIDHeader = "X-User-ID"

// RequireUser reads the caller's identity from UserIDHeader and stores it in
// the request context. Requests without a valid UUID are rejected with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity required")
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			logger.FromContext(r.Context()).Debug("rejected malformed user identity")
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid user identity")
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithUserID(r.Context(), userID)))
	})
}

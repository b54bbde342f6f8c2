package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/vocabquest-api/internal/api/shared"
	"github.com/phrazzld/vocabquest-api/internal/domain"
)

// getPathUUID parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrInvalidID, paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, paramName)
	}

	return id, nil
}

// handleUserIDAndPathUUID extracts the caller and a path UUID, writing an
// error response and returning false when either is missing.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity required")
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// parseLimit reads the limit query parameter, applying fallback when absent
// and capping at maxLimit.
func parseLimit(r *http.Request, fallback, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", domain.ErrValidation)
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, nil
}

// decodeAndValidate decodes the body into req and validates it, writing a
// 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}, log *slog.Logger) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Debug("request validation failed")
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}

	return true
}

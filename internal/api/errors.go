package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/vocabquest-api/internal/api/shared"
	"github.com/phrazzld/vocabquest-api/internal/domain"
	"github.com/phrazzld/vocabquest-api/internal/domain/srs"
	"github.com/phrazzld/vocabquest-api/internal/service/review"
	"github.com/phrazzld/vocabquest-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, review.ErrWordStateNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, srs.ErrInvalidQuality),
		errors.Is(err, srs.ErrInvalidLabel),
		errors.Is(err, srs.ErrInvalidDays),
		errors.Is(err, review.ErrInvalidAnswer),
		errors.Is(err, review.ErrInvalidLimit),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, review.ErrWordStateNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Word has not been learned yet"
	case errors.Is(err, store.ErrDuplicate):
		return "Word is already being learned"
	case errors.Is(err, srs.ErrInvalidQuality):
		return "Quality must be between 0 and 5"
	case errors.Is(err, srs.ErrInvalidLabel):
		return "Unknown review label"
	case errors.Is(err, srs.ErrInvalidDays):
		return "Days must be between 1 and 36500"
	case errors.Is(err, review.ErrInvalidAnswer):
		return "Provide exactly one of quality or label"
	case errors.Is(err, review.ErrInvalidLimit):
		return "Limit must be positive"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the mapped status and safe message for err.
// A non-empty message overrides the safe message for server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	safe := GetSafeErrorMessage(err)
	if message != "" && status == http.StatusInternalServerError {
		safe = message
	}
	shared.RespondWithErrorAndLog(w, r, status, safe, err)
}

// SanitizeValidationError turns a validator error into "Invalid <field>: <reason>".
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidQuality is returned when a quality rating falls outside 0..5.
	ErrInvalidQuality = errors.New("invalid quality rating")

	// ErrInvalidReviewLabel is returned when a review label is not one of the
	// four labels offered to learners.
	ErrInvalidReviewLabel = errors.New("invalid review label")
)

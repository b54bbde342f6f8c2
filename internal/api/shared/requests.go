package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxRequestBodyBytes caps request bodies read by DecodeJSON.
const MaxRequestBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// Validate is the shared validator instance.
var Validate = validator.New()

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// ValidateRequest validates v, preferring its own Validate method when it has one.
func ValidateRequest(v interface{}) error {
	if validatable, ok := v.(interface{ Validate() error }); ok {
		return validatable.Validate()
	}
	return Validate.Struct(v)
}

// Package api exposes the review service over HTTP. Handlers translate JSON
// requests into service calls and map service errors to status codes with
// sanitized messages.
package api

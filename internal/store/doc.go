// Package store defines interfaces for persisting word learning state.
// These interfaces keep the review service independent of the database
// technology; implementations live under internal/platform.
package store

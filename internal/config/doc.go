// Package config handles configuration loading, parsing, and validation
// from a .env file, an optional config.yaml and VOCABQUEST_ environment
// variables. Environment variables take precedence over file values.
package config

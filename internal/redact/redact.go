// Package redact strips sensitive fragments from strings before they are
// logged or returned in error responses: database credentials, secrets,
// file paths, SQL text, and stack traces.
package redact

import (
	"regexp"
)

// Placeholders substituted for redacted fragments.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedStackPlaceholder      = "[STACK_TRACE_REDACTED]"
	RedactedHostPlaceholder       = "[REDACTED_HOST]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Rules are applied in order; credentials go first so the host rule
// never splits a connection string.
var rules = []rule{
	{
		regexp.MustCompile(`(?i)(postgres|postgresql|db|database)://[^@\s]+@`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(api[_-]?key|token|secret)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		RedactedKeyPlaceholder,
	},
	{
		regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`),
		RedactedStackPlaceholder,
	},
	{
		regexp.MustCompile(
			`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)[\s\w,*()]+(?:FROM|INTO|SET|TABLE|INDEX)(?:[\s\w,*()='"$]+)?`,
		),
		RedactedSQLPlaceholder,
	},
	{
		regexp.MustCompile(`(/[\w.-]+){2,}`),
		RedactedPathPlaceholder,
	},
	{
		regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`),
		RedactedHostPlaceholder,
	},
}

// String redacts sensitive information from input.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from err.Error().
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

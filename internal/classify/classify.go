// Package classify implements the pure error-classification function that
// gates provider retries, grounded on the teacher's
// internal/executor/patterns.go ordered KnownPatterns table (same
// "ordered substring list, first match wins" shape, reused for provider
// failures instead of test output).
package classify

import "strings"

// Category is the outcome of classifying a provider failure message.
type Category string

const (
	Transient Category = "transient"
	Permanent Category = "permanent"
	Unknown   Category = "unknown"
)

func (c Category) String() string { return string(c) }

// transientPatterns are checked first: when a message matches both lists,
// transient wins (spec §4.1).
var transientPatterns = []string{
	"network", "timeout", "timed out", "connection", "socket",
	"429", "500", "502", "503", "504",
	"rate limit", "overloaded", "quota exceeded", "try again later", "throttled",
}

var permanentPatterns = []string{
	"400", "401", "403", "404",
	"unauthorized", "invalid api key", "forbidden", "content policy",
	"syntax error", "invalid json", "schema violation", "not found", "model not found",
}

// Classify lowercases message and matches it against the transient and
// permanent pattern lists in that order. An empty message is Unknown; a
// message matching neither list is Permanent, the safer default against
// infinite retry.
func Classify(message string) Category {
	if message == "" {
		return Unknown
	}
	lower := strings.ToLower(message)

	for _, p := range transientPatterns {
		if strings.Contains(lower, p) {
			return Transient
		}
	}
	for _, p := range permanentPatterns {
		if strings.Contains(lower, p) {
			return Permanent
		}
	}
	return Permanent
}

// IsTransient is a convenience wrapper around Classify.
func IsTransient(message string) bool {
	return Classify(message) == Transient
}

// IsPermanent is a convenience wrapper around Classify.
func IsPermanent(message string) bool {
	return Classify(message) == Permanent
}

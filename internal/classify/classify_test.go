package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTransient(t *testing.T) {
	cases := []string{
		"connection reset by peer",
		"HTTP 503 Service Unavailable",
		"rate limit exceeded, please slow down",
		"request timed out after 30s",
	}
	for _, msg := range cases {
		assert.Equal(t, Transient, Classify(msg), msg)
	}
}

func TestClassifyPermanent(t *testing.T) {
	cases := []string{
		"401 Unauthorized",
		"invalid api key supplied",
		"content policy violation",
		"model not found: gpt-99",
	}
	for _, msg := range cases {
		assert.Equal(t, Permanent, Classify(msg), msg)
	}
}

func TestClassifyUnknownEmpty(t *testing.T) {
	assert.Equal(t, Unknown, Classify(""))
}

func TestClassifyDefaultsPermanent(t *testing.T) {
	assert.Equal(t, Permanent, Classify("something entirely unrecognized happened"))
}

func TestClassifyTransientWinsOnBothMatch(t *testing.T) {
	// Contains both a transient marker (429) and a permanent one (401) -
	// transient must win per spec §4.1.
	assert.Equal(t, Transient, Classify("got 429 after retrying 401 handler"))
}

func TestWrappers(t *testing.T) {
	assert.True(t, IsTransient("502 bad gateway"))
	assert.True(t, IsPermanent("403 forbidden"))
	assert.False(t, IsTransient("403 forbidden"))
}

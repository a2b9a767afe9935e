package kerrors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigErrorPredicates(t *testing.T) {
	err := NewConfigError("unknown_agent_type", "no such role: drogon")
	assert.True(t, IsConfigError(err))
	assert.False(t, IsConfigError(errors.New("plain")))
}

func TestProviderErrorKinds(t *testing.T) {
	transient := NewProviderError(ProviderTransient, "anthropic", "rate limited", nil)
	assert.True(t, IsProviderTransient(transient))
	assert.False(t, IsProviderPermanent(transient))

	notConfigured := NewProviderError(ProviderNotConfigured, "vllm", "no api key", nil)
	assert.True(t, IsProviderNotConfigured(notConfigured))
	assert.False(t, IsProviderPermanent(notConfigured))
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewPersistenceError("wal_append", "/tmp/x.wal", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "wal_append")
}

func TestCancelled(t *testing.T) {
	wrapped := fmt.Errorf("aborting: %w", ErrCancelled)
	assert.True(t, IsCancelled(wrapped))
}

func TestMessageTruncation(t *testing.T) {
	long := strings.Repeat("x", 1000)
	err := NewToolError("bash", long)
	assert.LessOrEqual(t, len(err.Error()), maxPreviewLen+len("tool bash error: "))
}

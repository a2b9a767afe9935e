package models

import "time"

// CircuitState is the provider circuit breaker's state machine position.
type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half_open"
)

func (s CircuitState) String() string { return string(s) }

// ProviderCircuit is the per-provider breaker state. It is mutated only by
// RecordFailure/RecordSuccess/CanRetry in internal/circuit.
type ProviderCircuit struct {
	Provider            string       `json:"provider"`
	State               CircuitState `json:"state"`
	ConsecutiveFailures int          `json:"consecutiveFailures"`
	OpenedAt            *time.Time   `json:"openedAt,omitempty"`
	LastFailureAt       *time.Time   `json:"lastFailureAt,omitempty"`
}

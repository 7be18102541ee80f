package model

import (
	"sync"
	"time"
)

// EndpointHealth is a snapshot of an endpoint's health state.
type EndpointHealth struct {
	// Available indicates if the endpoint is currently usable.
	Available bool `json:"available"`

	// LastSuccess is the time of the last successful request.
	LastSuccess time.Time `json:"last_success,omitempty"`

	// LastFailure is the time of the last failed request.
	LastFailure time.Time `json:"last_failure,omitempty"`

	// FailureCount is the number of consecutive failures.
	FailureCount int `json:"failure_count"`

	// CircuitOpen indicates if the circuit breaker has tripped.
	CircuitOpen bool `json:"circuit_open"`

	// CircuitOpenedAt is when the circuit was opened.
	CircuitOpenedAt time.Time `json:"circuit_opened_at,omitempty"`
}

// HealthConfig configures circuit breaker behavior.
type HealthConfig struct {
	// FailureThreshold is the number of consecutive failures before
	// opening the circuit.
	FailureThreshold int

	// RecoveryTimeout is how long an open circuit blocks requests before
	// allowing a recovery probe.
	RecoveryTimeout time.Duration
}

// DefaultHealthConfig returns sensible circuit breaker defaults.
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		FailureThreshold: 3,
		RecoveryTimeout:  30 * time.Second,
	}
}

// healthState tracks per-endpoint health behind a single mutex.
type healthState struct {
	mu       sync.RWMutex
	config   HealthConfig
	statuses map[string]*EndpointHealth
}

func newHealthState(cfg HealthConfig) *healthState {
	return &healthState{
		config:   cfg,
		statuses: make(map[string]*EndpointHealth),
	}
}

func (h *healthState) markSuccess(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	status := h.statuses[name]
	if status == nil {
		status = &EndpointHealth{}
		h.statuses[name] = status
	}
	status.LastSuccess = time.Now()
	status.FailureCount = 0
	status.Available = true
	status.CircuitOpen = false
}

func (h *healthState) markFailure(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	status := h.statuses[name]
	if status == nil {
		status = &EndpointHealth{Available: true}
		h.statuses[name] = status
	}
	status.LastFailure = time.Now()
	status.FailureCount++

	if status.FailureCount >= h.config.FailureThreshold {
		status.CircuitOpen = true
		status.CircuitOpenedAt = time.Now()
		status.Available = false
	}
}

// isAvailable reports whether the endpoint may be tried. Unknown endpoints
// are available; an open circuit allows one probe after the recovery timeout.
func (h *healthState) isAvailable(name string) bool {
	h.mu.RLock()
	status, ok := h.statuses[name]
	if !ok {
		h.mu.RUnlock()
		return true
	}
	circuitOpen := status.CircuitOpen
	openedAt := status.CircuitOpenedAt
	recovery := h.config.RecoveryTimeout
	h.mu.RUnlock()

	if !circuitOpen {
		return true
	}
	return time.Since(openedAt) > recovery
}

// status returns a copy of the endpoint's health state.
func (h *healthState) status(name string) EndpointHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if s, ok := h.statuses[name]; ok {
		return *s
	}
	return EndpointHealth{Available: true}
}

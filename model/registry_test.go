package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFallbackChain(t *testing.T) {
	r := NewRegistry(
		map[Capability]*CapabilityConfig{
			CapabilityAnalysis: {Preferred: []string{"a", "b"}, Fallback: []string{"c"}},
		},
		map[string]*EndpointConfig{},
	)

	assert.Equal(t, []string{"a", "b", "c"}, r.GetFallbackChain(CapabilityAnalysis))
	assert.Nil(t, r.GetFallbackChain(CapabilityGeneration))
}

func TestDefaultRegistryIsAnthropicOnly(t *testing.T) {
	r := NewDefaultRegistry()

	for _, cap := range []Capability{CapabilityAnalysis, CapabilityGeneration, CapabilityFast} {
		chain := r.GetFallbackChain(cap)
		require.NotEmpty(t, chain, "capability %s must have a chain", cap)
		for _, name := range chain {
			ep := r.GetEndpoint(name)
			require.NotNil(t, ep)
			assert.Equal(t, "anthropic", ep.Provider,
				"default endpoints must require a credential so no-credential installs stay heuristic")
		}
	}
}

func TestCircuitBreaker(t *testing.T) {
	r := NewRegistry(
		map[Capability]*CapabilityConfig{
			CapabilityFast: {Preferred: []string{"m1", "m2"}},
		},
		map[string]*EndpointConfig{
			"m1": {Provider: "ollama", Model: "m1"},
			"m2": {Provider: "ollama", Model: "m2"},
		},
	)

	assert.True(t, r.IsEndpointAvailable("m1"))

	// Two failures stay under the threshold.
	r.MarkEndpointFailure("m1")
	r.MarkEndpointFailure("m1")
	assert.True(t, r.IsEndpointAvailable("m1"))

	// The third failure opens the circuit.
	r.MarkEndpointFailure("m1")
	assert.False(t, r.IsEndpointAvailable("m1"))
	assert.Equal(t, []string{"m2"}, r.GetAvailableFallbackChain(CapabilityFast))

	status := r.EndpointHealthStatus("m1")
	assert.True(t, status.CircuitOpen)
	assert.Equal(t, 3, status.FailureCount)

	// Success closes the circuit and resets the count.
	r.MarkEndpointSuccess("m1")
	assert.True(t, r.IsEndpointAvailable("m1"))
	assert.Zero(t, r.EndpointHealthStatus("m1").FailureCount)
}

func TestAllCircuitsOpenFallsBackToFullChain(t *testing.T) {
	r := NewRegistry(
		map[Capability]*CapabilityConfig{
			CapabilityFast: {Preferred: []string{"m1"}},
		},
		map[string]*EndpointConfig{
			"m1": {Provider: "ollama", Model: "m1"},
		},
	)

	for i := 0; i < 3; i++ {
		r.MarkEndpointFailure("m1")
	}
	require.False(t, r.IsEndpointAvailable("m1"))

	// A fully open chain is still returned so callers get one last probe
	// rather than a dead end.
	assert.Equal(t, []string{"m1"}, r.GetAvailableFallbackChain(CapabilityFast))
}

func TestCircuitRecoveryProbe(t *testing.T) {
	h := newHealthState(HealthConfig{FailureThreshold: 1, RecoveryTimeout: 10 * time.Millisecond})

	h.markFailure("m1")
	assert.False(t, h.isAvailable("m1"))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, h.isAvailable("m1"), "open circuit allows a probe after the recovery timeout")
}

func TestLoadFromJSON(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		data := `{
			"capabilities": {
				"analysis": {"preferred": ["local"], "fallback": []}
			},
			"endpoints": {
				"local": {"provider": "ollama", "url": "http://localhost:11434/v1", "model": "qwen2.5", "max_tokens": 4096}
			}
		}`

		r, err := LoadFromJSON([]byte(data))
		require.NoError(t, err)
		assert.Equal(t, []string{"local"}, r.GetFallbackChain(CapabilityAnalysis))

		ep := r.GetEndpoint("local")
		require.NotNil(t, ep)
		assert.Equal(t, "ollama", ep.Provider)
		assert.Equal(t, 4096, ep.MaxTokens)
	})

	t.Run("unknown capability rejected", func(t *testing.T) {
		_, err := LoadFromJSON([]byte(`{"capabilities": {"translation": {"preferred": ["m"]}}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown capability")
	})

	t.Run("invalid JSON rejected", func(t *testing.T) {
		_, err := LoadFromJSON([]byte(`{`))
		assert.Error(t, err)
	})
}

func TestParseCapability(t *testing.T) {
	assert.Equal(t, CapabilityAnalysis, ParseCapability("analysis"))
	assert.Equal(t, CapabilityGeneration, ParseCapability("generation"))
	assert.Equal(t, CapabilityFast, ParseCapability("fast"))
	assert.Empty(t, ParseCapability("translation"))
}

package model

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Registry maps capabilities to ordered model fallback chains and holds the
// endpoint configuration plus health state for each model.
type Registry struct {
	mu           sync.RWMutex
	capabilities map[Capability]*CapabilityConfig
	endpoints    map[string]*EndpointConfig
	health       *healthState
}

// CapabilityConfig defines model preferences for a capability.
type CapabilityConfig struct {
	// Description explains what this capability is for.
	Description string `json:"description,omitempty"`

	// Preferred lists models in order of preference.
	Preferred []string `json:"preferred"`

	// Fallback lists backup models tried after all preferred models fail.
	Fallback []string `json:"fallback,omitempty"`
}

// EndpointConfig defines an available model endpoint.
type EndpointConfig struct {
	// Provider is the model provider (anthropic, openai, ollama).
	Provider string `json:"provider"`

	// URL is the API base URL. Empty uses the provider default.
	URL string `json:"url,omitempty"`

	// Model is the model identifier sent to the provider.
	Model string `json:"model"`

	// MaxTokens caps response length for this endpoint. 0 uses the
	// provider default.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// NewRegistry creates a registry from explicit capability and endpoint maps.
func NewRegistry(caps map[Capability]*CapabilityConfig, endpoints map[string]*EndpointConfig) *Registry {
	return &Registry{
		capabilities: caps,
		endpoints:    endpoints,
		health:       newHealthState(DefaultHealthConfig()),
	}
}

// NewDefaultRegistry creates a registry with the stock Anthropic endpoints.
// These are only usable when ANTHROPIC_API_KEY is set; with no credential
// in the environment the analyzer stays in heuristic mode.
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		map[Capability]*CapabilityConfig{
			CapabilityAnalysis: {
				Description: "Whole-graph quality scoring",
				Preferred:   []string{"claude-sonnet"},
				Fallback:    []string{"claude-haiku"},
			},
			CapabilityGeneration: {
				Description: "Single-field spec content generation",
				Preferred:   []string{"claude-sonnet"},
				Fallback:    []string{"claude-haiku"},
			},
			CapabilityFast: {
				Description: "Quick low-stakes completions",
				Preferred:   []string{"claude-haiku"},
			},
		},
		map[string]*EndpointConfig{
			"claude-sonnet": {
				Provider:  "anthropic",
				Model:     "claude-sonnet-4-20250514",
				MaxTokens: 8192,
			},
			"claude-haiku": {
				Provider:  "anthropic",
				Model:     "claude-haiku-3-5-20241022",
				MaxTokens: 8192,
			},
		},
	)
}

// GetFallbackChain returns all models for a capability in preference order.
func (r *Registry) GetFallbackChain(cap Capability) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.capabilities[cap]
	if !ok {
		return nil
	}
	chain := make([]string, 0, len(cfg.Preferred)+len(cfg.Fallback))
	chain = append(chain, cfg.Preferred...)
	chain = append(chain, cfg.Fallback...)
	return chain
}

// GetAvailableFallbackChain returns the fallback chain filtered to endpoints
// whose circuit breaker is closed.
func (r *Registry) GetAvailableFallbackChain(cap Capability) []string {
	chain := r.GetFallbackChain(cap)
	available := make([]string, 0, len(chain))
	for _, name := range chain {
		if r.IsEndpointAvailable(name) {
			available = append(available, name)
		}
	}
	// If every endpoint has an open circuit, try the full chain anyway.
	if len(available) == 0 {
		return chain
	}
	return available
}

// GetEndpoint returns the endpoint configuration for a model name, or nil
// if the model is not configured.
func (r *Registry) GetEndpoint(modelName string) *EndpointConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.endpoints[modelName]
}

// SetCapability updates or adds a capability configuration.
func (r *Registry) SetCapability(cap Capability, cfg *CapabilityConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capabilities == nil {
		r.capabilities = make(map[Capability]*CapabilityConfig)
	}
	r.capabilities[cap] = cfg
}

// SetEndpoint updates or adds an endpoint configuration.
func (r *Registry) SetEndpoint(name string, cfg *EndpointConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.endpoints == nil {
		r.endpoints = make(map[string]*EndpointConfig)
	}
	r.endpoints[name] = cfg
}

// ListEndpoints returns all configured endpoint names.
func (r *Registry) ListEndpoints() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	return names
}

// MarkEndpointSuccess records a successful request against the endpoint.
func (r *Registry) MarkEndpointSuccess(modelName string) {
	r.health.markSuccess(modelName)
}

// MarkEndpointFailure records a failed request against the endpoint,
// possibly opening its circuit.
func (r *Registry) MarkEndpointFailure(modelName string) {
	r.health.markFailure(modelName)
}

// IsEndpointAvailable reports whether the endpoint's circuit is closed
// (or has been open long enough to allow a recovery probe).
func (r *Registry) IsEndpointAvailable(modelName string) bool {
	return r.health.isAvailable(modelName)
}

// EndpointHealthStatus returns a snapshot of the endpoint's health state.
func (r *Registry) EndpointHealthStatus(modelName string) EndpointHealth {
	return r.health.status(modelName)
}

// registryConfig is the JSON shape of a registry configuration file.
type registryConfig struct {
	Capabilities map[string]*CapabilityConfig `json:"capabilities"`
	Endpoints    map[string]*EndpointConfig   `json:"endpoints"`
}

// LoadFromFile loads a registry configuration from a JSON file.
func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry config: %w", err)
	}
	return LoadFromJSON(data)
}

// LoadFromJSON loads a registry from JSON data. Unknown capability names are
// rejected so typos fail loudly rather than silently routing nowhere.
func LoadFromJSON(data []byte) (*Registry, error) {
	var cfg registryConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse registry config: %w", err)
	}

	caps := make(map[Capability]*CapabilityConfig, len(cfg.Capabilities))
	for name, c := range cfg.Capabilities {
		cap := ParseCapability(name)
		if cap == "" {
			return nil, fmt.Errorf("unknown capability %q in registry config", name)
		}
		caps[cap] = c
	}

	return NewRegistry(caps, cfg.Endpoints), nil
}

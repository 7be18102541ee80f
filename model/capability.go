// Package model provides capability-based model endpoint selection.
// Callers ask for a semantic capability ("analysis", "generation") rather
// than a concrete model name; the registry resolves it to an ordered
// fallback chain of configured endpoints and tracks their health.
package model

// Capability represents a semantic capability for model selection.
type Capability string

const (
	// CapabilityAnalysis is for whole-graph quality scoring.
	CapabilityAnalysis Capability = "analysis"

	// CapabilityGeneration is for single-field content generation.
	CapabilityGeneration Capability = "generation"

	// CapabilityFast is for quick, low-stakes completions.
	CapabilityFast Capability = "fast"
)

// IsValid checks if a capability string is a known capability.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityAnalysis, CapabilityGeneration, CapabilityFast:
		return true
	}
	return false
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// ParseCapability converts a string to a Capability, returning empty for
// invalid values.
func ParseCapability(s string) Capability {
	c := Capability(s)
	if c.IsValid() {
		return c
	}
	return ""
}

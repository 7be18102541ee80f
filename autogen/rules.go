// Package autogen infers which node field a quality issue or improvement
// suggestion points at, and generates replacement content for that field,
// model-assisted when a credential is configured, templated otherwise.
//
// Inference is keyword classification over free text. The rules live in
// explicit ordered lists evaluated first-match-wins, so precedence is
// auditable and each rule is testable in isolation.
package autogen

import (
	"strings"

	"github.com/speccanvas/speccanvas/spec"
)

// textRule maps a text predicate to a field kind.
type textRule struct {
	name  string
	match func(text string) bool
	field spec.FieldKind
}

// containsAny reports whether text contains at least one of the substrings.
// Matching is done on lowercased text; substrings must be lowercase.
func containsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// issueMessageRules classify an issue message when the issue carries no
// explicit field. Order is precedence; first match wins.
var issueMessageRules = []textRule{
	{
		name:  "intent keywords",
		match: func(t string) bool { return containsAny(t, "intent", "purpose") },
		field: spec.FieldIntent,
	},
	{
		name:  "behavior keywords",
		match: func(t string) bool { return containsAny(t, "behavior", "description", "describe") },
		field: spec.FieldBehavior,
	},
	{
		name:  "input without output",
		match: func(t string) bool { return strings.Contains(t, "input") && !strings.Contains(t, "output") },
		field: spec.FieldInputs,
	},
	{
		name:  "output without input",
		match: func(t string) bool { return strings.Contains(t, "output") && !strings.Contains(t, "input") },
		field: spec.FieldOutputs,
	},
	{
		name:  "example keywords",
		match: func(t string) bool { return containsAny(t, "example", "edge case") },
		field: spec.FieldExamples,
	},
	{
		name:  "constraint keywords",
		match: func(t string) bool { return containsAny(t, "constraint", "requirement", "limit") },
		field: spec.FieldConstraints,
	},
}

// suggestionRules classify an improvement suggestion. Order is precedence;
// first match wins. Suggestions that match nothing default to behavior,
// the broadest regenerable field.
var suggestionRules = []textRule{
	{
		name:  "behavior keywords",
		match: func(t string) bool { return containsAny(t, "behavior", "description", "error handling") },
		field: spec.FieldBehavior,
	},
	{
		name:  "example keywords",
		match: func(t string) bool { return containsAny(t, "example", "edge case") },
		field: spec.FieldExamples,
	},
	{
		name:  "data shape for inputs",
		match: func(t string) bool { return containsAny(t, "type", "shape") && strings.Contains(t, "input") },
		field: spec.FieldInputs,
	},
	{
		name:  "data shape for outputs",
		match: func(t string) bool { return containsAny(t, "type", "shape") && strings.Contains(t, "output") },
		field: spec.FieldOutputs,
	},
	{
		name:  "data shape unanchored",
		match: func(t string) bool { return containsAny(t, "type", "shape") },
		field: spec.FieldInputs,
	},
	{
		name:  "constraint keywords",
		match: func(t string) bool { return containsAny(t, "constraint", "requirement") },
		field: spec.FieldConstraints,
	},
}

// applyRules returns the field of the first matching rule.
func applyRules(rules []textRule, text string) (spec.FieldKind, bool) {
	lowered := strings.ToLower(text)
	for _, r := range rules {
		if r.match(lowered) {
			return r.field, true
		}
	}
	return "", false
}

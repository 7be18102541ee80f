// Package export renders a specification graph into its serialized forms:
// a JSON snapshot (lossless, re-importable), a Markdown document, and an
// "implement this" prompt wrapping the Markdown. Renderers are pure and
// one-directional; they carry no scoring logic.
package export

import (
	"fmt"
	"sort"
)

// Format identifies a supported export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatPrompt   Format = "prompt"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatJSON: {
		Name:        FormatJSON,
		MIMEType:    "application/json",
		Extension:   ".json",
		Description: "JSON snapshot - full graph and score, re-importable",
	},
	FormatMarkdown: {
		Name:        FormatMarkdown,
		MIMEType:    "text/markdown",
		Extension:   ".md",
		Description: "Markdown - human-readable specification document",
	},
	FormatPrompt: {
		Name:        FormatPrompt,
		MIMEType:    "text/plain",
		Extension:   ".txt",
		Description: "Implementation prompt - Markdown wrapped for a coding model",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if _, ok := FormatRegistry[f]; !ok {
		return "", fmt.Errorf("unknown export format %q (supported: %v)", s, ListFormats())
	}
	return f, nil
}

// ListFormats returns all supported format names, sorted.
func ListFormats() []string {
	names := make([]string, 0, len(FormatRegistry))
	for f := range FormatRegistry {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

package export

import (
	"fmt"

	"github.com/speccanvas/speccanvas/spec"
)

// implementPromptTemplate wraps the Markdown rendering for handing to a
// coding model. The %s placeholder receives the Markdown document.
const implementPromptTemplate = `Implement the system described by the following specification.

Build every node as a separate component, wire them according to the Flow section, and honor all listed constraints. Where the specification marks a data shape as "unknown", choose a sensible concrete type and document the choice. Include the error handling described in each node's behavior.

--- SPECIFICATION ---

%s

--- END SPECIFICATION ---

Start with the project structure, then implement each component in flow order.`

// WritePrompt renders the graph as an "implement this" prompt embedding the
// Markdown document.
func WritePrompt(g *spec.Graph) string {
	return fmt.Sprintf(implementPromptTemplate, WriteMarkdown(g))
}

// Render dispatches to the requested format. JSON includes the score when
// one is provided; the text formats ignore it.
func Render(format Format, g *spec.Graph, s *spec.Score) ([]byte, error) {
	switch format {
	case FormatJSON:
		return WriteJSON(g, s)
	case FormatMarkdown:
		return []byte(WriteMarkdown(g)), nil
	case FormatPrompt:
		return []byte(WritePrompt(g)), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

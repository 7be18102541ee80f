package autogen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/speccanvas/speccanvas/llm"
	"github.com/speccanvas/speccanvas/model"
	"github.com/speccanvas/speccanvas/spec"
)

// generationMaxTokens caps a single-field generation response.
const generationMaxTokens = 2048

// ErrNodeNotFound is returned when a generation request names a node that no
// longer exists in the graph, e.g. after the user deleted it mid-flight.
var ErrNodeNotFound = fmt.Errorf("node not found")

// Generator produces replacement content for one node field. With a
// configured model it asks the model; otherwise, and on every model failure,
// it falls back to deterministic templated content.
type Generator struct {
	client llm.Completer
	logger *slog.Logger
}

// NewGenerator creates a Generator. client may be nil for template-only
// operation; a nil logger uses slog.Default().
func NewGenerator(client llm.Completer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, logger: logger}
}

// Generate produces a value for the given node field. The only error is
// ErrNodeNotFound; model and parse failures degrade to templated content.
func (g *Generator) Generate(ctx context.Context, graph *spec.Graph, nodeID string, field spec.FieldKind) (*FieldValue, error) {
	if !field.IsValid() {
		return nil, fmt.Errorf("unknown field kind %q", field)
	}

	node := graph.NodeByID(nodeID)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	if g.client == nil || !g.client.Available(model.CapabilityGeneration) {
		return TemplateValue(node, field), nil
	}

	temp := 0.7 // Creative content, not classification
	resp, err := g.client.Complete(ctx, llm.Request{
		Capability: model.CapabilityGeneration,
		Messages: []llm.Message{
			{Role: "system", Content: generationSystemPrompt},
			{Role: "user", Content: BuildGenerationPrompt(graph, node, field)},
		},
		Temperature: &temp,
		MaxTokens:   generationMaxTokens,
	})
	if err != nil {
		g.logger.Warn("Model generation failed, using templated content",
			"node", node.Data.Name, "field", field, "error", err)
		return TemplateValue(node, field), nil
	}

	value, err := parseGenerationResponse(resp.Content, nodeID, field)
	if err != nil {
		g.logger.Warn("Model returned unusable field value, using templated content",
			"node", node.Data.Name, "field", field, "model", resp.Model, "error", err)
		return TemplateValue(node, field), nil
	}

	return value, nil
}

// parseGenerationResponse decodes the model's {"value": ...} envelope into
// the shape the field kind expects.
func parseGenerationResponse(content string, nodeID string, field spec.FieldKind) (*FieldValue, error) {
	jsonStr := llm.ExtractJSON(content)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var envelope struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &envelope); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}
	if len(envelope.Value) == 0 {
		return nil, fmt.Errorf("response has no value member")
	}

	v := &FieldValue{NodeID: nodeID, Field: field, Source: SourceModel}

	switch field {
	case spec.FieldIntent, spec.FieldBehavior:
		if err := json.Unmarshal(envelope.Value, &v.Text); err != nil {
			return nil, fmt.Errorf("value is not a string: %w", err)
		}
		if v.Text == "" {
			return nil, fmt.Errorf("value is empty")
		}
	case spec.FieldInputs, spec.FieldOutputs:
		if err := json.Unmarshal(envelope.Value, &v.Ports); err != nil {
			return nil, fmt.Errorf("value is not a port array: %w", err)
		}
		if len(v.Ports) == 0 {
			return nil, fmt.Errorf("value is an empty port array")
		}
	case spec.FieldExamples:
		if err := json.Unmarshal(envelope.Value, &v.Examples); err != nil {
			return nil, fmt.Errorf("value is not an example array: %w", err)
		}
		if len(v.Examples) == 0 {
			return nil, fmt.Errorf("value is an empty example array")
		}
	case spec.FieldConstraints:
		if err := json.Unmarshal(envelope.Value, &v.Constraints); err != nil {
			return nil, fmt.Errorf("value is not a string array: %w", err)
		}
		if len(v.Constraints) == 0 {
			return nil, fmt.Errorf("value is an empty string array")
		}
	}

	return v, nil
}

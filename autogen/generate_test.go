package autogen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speccanvas/speccanvas/llm"
	"github.com/speccanvas/speccanvas/llm/testutil"
	"github.com/speccanvas/speccanvas/spec"
)

func generatorGraph() *spec.Graph {
	return &spec.Graph{
		Nodes: []*spec.Node{
			{
				ID:   "n1",
				Type: spec.NodeProcess,
				Data: spec.NodeData{Name: "Order Validator"},
			},
		},
	}
}

func TestGenerateUnknownField(t *testing.T) {
	g := NewGenerator(nil, nil)
	_, err := g.Generate(context.Background(), generatorGraph(), "n1", "documentation")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field kind")
}

func TestGenerateNodeNotFound(t *testing.T) {
	g := NewGenerator(nil, nil)
	_, err := g.Generate(context.Background(), generatorGraph(), "missing", spec.FieldIntent)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNodeNotFound))
}

func TestGenerateTemplateWithoutModel(t *testing.T) {
	g := NewGenerator(nil, nil)

	value, err := g.Generate(context.Background(), generatorGraph(), "n1", spec.FieldIntent)
	require.NoError(t, err)
	assert.Equal(t, SourceTemplate, value.Source)
	assert.Contains(t, value.Text, "Order Validator")
}

func TestGenerateTemplateWhenModelUnavailable(t *testing.T) {
	mock := &testutil.MockCompleter{Configured: false}
	g := NewGenerator(mock, nil)

	value, err := g.Generate(context.Background(), generatorGraph(), "n1", spec.FieldBehavior)
	require.NoError(t, err)
	assert.Equal(t, SourceTemplate, value.Source)
	assert.Zero(t, mock.CallCount(), "unavailable model must not be called")
}

func TestGenerateFromModel(t *testing.T) {
	mock := &testutil.MockCompleter{
		Configured: true,
		Responses: []*llm.Response{
			{Content: `{"value": "Validate each order against the current catalog before charging the customer."}`, Model: "mock"},
		},
	}
	g := NewGenerator(mock, nil)

	value, err := g.Generate(context.Background(), generatorGraph(), "n1", spec.FieldIntent)
	require.NoError(t, err)
	assert.Equal(t, SourceModel, value.Source)
	assert.Contains(t, value.Text, "catalog")

	require.Equal(t, 1, mock.CallCount())
	req := mock.Requests()[0]
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, "Order Validator")
}

func TestGenerateModelErrorFallsBackToTemplate(t *testing.T) {
	mock := &testutil.MockCompleter{
		Configured: true,
		Err:        errors.New("connection refused"),
	}
	g := NewGenerator(mock, nil)

	value, err := g.Generate(context.Background(), generatorGraph(), "n1", spec.FieldConstraints)
	require.NoError(t, err)
	assert.Equal(t, SourceTemplate, value.Source)
	assert.NotEmpty(t, value.Constraints)
}

func TestGenerateUnusableResponseFallsBackToTemplate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not JSON", "I think this node should validate orders."},
		{"no value member", `{"result": "ok"}`},
		{"wrong value type", `{"value": 42}`},
		{"empty string value", `{"value": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &testutil.MockCompleter{
				Configured: true,
				Responses:  []*llm.Response{{Content: tt.content, Model: "mock"}},
			}
			g := NewGenerator(mock, nil)

			value, err := g.Generate(context.Background(), generatorGraph(), "n1", spec.FieldIntent)
			require.NoError(t, err)
			assert.Equal(t, SourceTemplate, value.Source)
		})
	}
}

func TestParseGenerationResponse(t *testing.T) {
	t.Run("fenced response is tolerated", func(t *testing.T) {
		content := "Here you go:\n```json\n{\"value\": \"Deliver results to the ledger.\"}\n```"
		v, err := parseGenerationResponse(content, "n1", spec.FieldIntent)
		require.NoError(t, err)
		assert.Equal(t, "Deliver results to the ledger.", v.Text)
	})

	t.Run("port array", func(t *testing.T) {
		content := `{"value": [{"name": "order", "shape": "JSON object", "description": "incoming order"}]}`
		v, err := parseGenerationResponse(content, "n1", spec.FieldInputs)
		require.NoError(t, err)
		require.Len(t, v.Ports, 1)
		assert.Equal(t, "order", v.Ports[0].Name)
	})

	t.Run("empty port array rejected", func(t *testing.T) {
		_, err := parseGenerationResponse(`{"value": []}`, "n1", spec.FieldInputs)
		assert.Error(t, err)
	})

	t.Run("example array", func(t *testing.T) {
		content := `{"value": [{"input": "{}", "output": "{}", "notes": "noop"}]}`
		v, err := parseGenerationResponse(content, "n1", spec.FieldExamples)
		require.NoError(t, err)
		require.Len(t, v.Examples, 1)
	})

	t.Run("constraint array", func(t *testing.T) {
		content := `{"value": ["Respond within 500ms."]}`
		v, err := parseGenerationResponse(content, "n1", spec.FieldConstraints)
		require.NoError(t, err)
		require.Len(t, v.Constraints, 1)
	})
}

func TestTemplateValue(t *testing.T) {
	node := &spec.Node{
		ID:   "n1",
		Type: spec.NodeTrigger,
		Data: spec.NodeData{
			Name:   "Order Webhook",
			Inputs: []spec.Port{{Name: "payload", Shape: spec.ShapeUnknown}},
		},
	}

	t.Run("intent varies by node type", func(t *testing.T) {
		v := TemplateValue(node, spec.FieldIntent)
		assert.Contains(t, v.Text, "Order Webhook")

		process := &spec.Node{ID: "n2", Type: spec.NodeProcess, Data: spec.NodeData{Name: "Validator"}}
		assert.NotEqual(t, v.Text, TemplateValue(process, spec.FieldIntent).Text)
	})

	t.Run("existing ports keep names, unknown shapes get replaced", func(t *testing.T) {
		v := TemplateValue(node, spec.FieldInputs)
		require.Len(t, v.Ports, 1)
		assert.Equal(t, "payload", v.Ports[0].Name)
		assert.True(t, v.Ports[0].HasDefinedShape())
	})

	t.Run("missing ports get a generic one", func(t *testing.T) {
		v := TemplateValue(node, spec.FieldOutputs)
		require.Len(t, v.Ports, 1)
		assert.Equal(t, "output", v.Ports[0].Name)
	})

	t.Run("examples cover happy and error paths", func(t *testing.T) {
		v := TemplateValue(node, spec.FieldExamples)
		require.Len(t, v.Examples, 2)
		for _, e := range v.Examples {
			assert.False(t, e.IsWeak())
		}
	})

	t.Run("template never touches the node", func(t *testing.T) {
		before := node.Data
		TemplateValue(node, spec.FieldInputs)
		assert.Equal(t, before, node.Data)
	})
}

func TestFieldValueApply(t *testing.T) {
	node := &spec.Node{ID: "n1", Type: spec.NodeProcess, Data: spec.NodeData{Name: "Validator"}}

	v := &FieldValue{NodeID: "n1", Field: spec.FieldBehavior, Source: SourceModel, Text: "1. Validate.\n2. Forward."}
	v.Apply(node)
	assert.Equal(t, "1. Validate.\n2. Forward.", node.Data.Behavior)

	ports := &FieldValue{NodeID: "n1", Field: spec.FieldInputs, Source: SourceModel, Ports: []spec.Port{{Name: "in", Shape: "CSV stream"}}}
	ports.Apply(node)
	require.Len(t, node.Data.Inputs, 1)
	assert.Equal(t, "CSV stream", node.Data.Inputs[0].Shape)
}

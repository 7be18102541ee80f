package providers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speccanvas/speccanvas/llm"
)

func TestProvidersRegistered(t *testing.T) {
	for _, name := range []string{"anthropic", "openai", "ollama"} {
		assert.NotNil(t, llm.GetProvider(name), "provider %s should self-register", name)
	}
}

func TestAnthropicConfigured(t *testing.T) {
	p := &AnthropicProvider{}

	t.Setenv("ANTHROPIC_API_KEY", "")
	assert.False(t, p.Configured())

	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	assert.True(t, p.Configured())
}

func TestAnthropicBuildRequestBody(t *testing.T) {
	p := &AnthropicProvider{}
	temp := 0.2

	body, err := p.BuildRequestBody("claude-sonnet-4-20250514", []llm.Message{
		{Role: "system", Content: "You are a reviewer."},
		{Role: "user", Content: "Review this."},
	}, &temp, 1024)
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))

	assert.Equal(t, "You are a reviewer.", req["system"], "system message moves to its own field")
	msgs := req["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, float64(1024), req["max_tokens"])
	assert.Equal(t, 0.2, req["temperature"])
}

func TestAnthropicHeaders(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	req, _ := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil)
	(&AnthropicProvider{}).SetHeaders(req)

	assert.Equal(t, "sk-test", req.Header.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, req.Header.Get("anthropic-version"))
}

func TestAnthropicParseResponse(t *testing.T) {
	p := &AnthropicProvider{}

	t.Run("concatenates text blocks", func(t *testing.T) {
		body := `{
			"content": [{"type": "text", "text": "{\"overall\":"}, {"type": "text", "text": " 70}"}],
			"model": "claude-sonnet-4-20250514",
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 100, "output_tokens": 20}
		}`

		resp, err := p.ParseResponse([]byte(body), "claude-sonnet")
		require.NoError(t, err)
		assert.Equal(t, `{"overall": 70}`, resp.Content)
		assert.Equal(t, 120, resp.TokensUsed)
		assert.Equal(t, "end_turn", resp.FinishReason)
	})

	t.Run("no text blocks is an error", func(t *testing.T) {
		_, err := p.ParseResponse([]byte(`{"content": [], "model": "m"}`), "m")
		assert.Error(t, err)
	})
}

func TestOllamaProvider(t *testing.T) {
	p := &OllamaProvider{}

	t.Run("always configured", func(t *testing.T) {
		assert.True(t, p.Configured())
	})

	t.Run("URL construction", func(t *testing.T) {
		assert.Equal(t, "http://localhost:11434/v1/chat/completions", p.BuildURL(""))
		assert.Equal(t, "http://host:9/v1/chat/completions", p.BuildURL("http://host:9/v1/"))
		assert.Equal(t, "http://host:9/v1/chat/completions", p.BuildURL("http://host:9/v1/chat/completions"))
	})

	t.Run("parse response", func(t *testing.T) {
		body := `{
			"model": "qwen2.5",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hi"}, "finish_reason": "stop"}],
			"usage": {"total_tokens": 7}
		}`
		resp, err := p.ParseResponse([]byte(body), "qwen2.5")
		require.NoError(t, err)
		assert.Equal(t, "hi", resp.Content)
		assert.Equal(t, 7, resp.TokensUsed)
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		_, err := p.ParseResponse([]byte(`{"choices": []}`), "m")
		assert.Error(t, err)
	})
}

func TestOpenAIConfigured(t *testing.T) {
	p := &OpenAIProvider{}

	t.Setenv("OPENAI_API_KEY", "")
	assert.False(t, p.Configured())

	t.Setenv("OPENAI_API_KEY", "sk-test")
	assert.True(t, p.Configured())
}

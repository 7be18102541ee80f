// Package main implements a mock model server for offline speccanvas
// development. It serves OpenAI-compatible /v1/chat/completions responses,
// routing by the "model" field: requests whose prompt asks for a quality
// score get a canned score document, generation requests get a canned value
// envelope. Fixture files in -fixtures override the built-in responses,
// named by model (e.g. "claude-sonnet.json").
//
// Point an endpoint at it with a registry entry using the "ollama" provider
// and URL http://localhost:8481/v1.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// defaultScoreResponse is a valid scoring document matching the response
// structure the analysis prompt demands.
const defaultScoreResponse = `{
  "overall": 72,
  "completeness": {"score": 70, "details": "Most nodes describe behavior; two lack examples."},
  "ambiguity": {"score": 65, "details": "Several intents are single sentences without failure modes."},
  "consistency": {"score": 85, "details": "Port shapes line up across connected nodes."},
  "groundedness": {"score": 70, "details": "Constraints reference concrete limits."},
  "issues": [
    {"severity": "warning", "dimension": "completeness", "node_id": "", "field": "examples", "message": "Add at least one failure-path example per process node."}
  ],
  "suggestions": [
    "Describe what each process does when its input is malformed."
  ]
}`

// defaultGenerationResponse is a generation envelope usable for the text
// fields (intent, behavior).
const defaultGenerationResponse = `{"value": "Validate the incoming payload against the declared input shape, reject malformed records with a descriptive error, and pass well-formed records downstream unchanged."}`

type server struct {
	fixtures map[string]string
	calls    atomic.Int64
}

func main() {
	fixtureDir := flag.String("fixtures", "", "directory of fixture response files, named by model")
	port := flag.Int("port", 8481, "port to listen on")
	flag.Parse()

	s := &server{fixtures: map[string]string{}}
	if *fixtureDir != "" {
		if err := s.loadFixtures(*fixtureDir); err != nil {
			log.Fatalf("Failed to load fixtures from %s: %v", *fixtureDir, err)
		}
		log.Printf("Loaded %d fixture(s) from %s", len(s.fixtures), *fixtureDir)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Mock model server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func (s *server) loadFixtures(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		model := strings.TrimSuffix(entry.Name(), ".json")
		s.fixtures[model] = string(data)
	}
	return nil
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	callNum := s.calls.Add(1)
	content := s.respond(req)
	log.Printf("[call %d] model=%s messages=%d responded=%d bytes",
		callNum, req.Model, len(req.Messages), len(content))

	resp := chatResponse{
		ID:      fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []chatChoice{
			{
				Index:        0,
				Message:      chatMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
		Usage: chatUsage{
			PromptTokens:     len(content) / 4,
			CompletionTokens: len(content) / 4,
			TotalTokens:      len(content) / 2,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// respond picks a fixture by model name, falling back to a built-in response
// chosen by sniffing what the prompt asks for.
func (s *server) respond(req chatRequest) string {
	if content, ok := s.fixtures[req.Model]; ok {
		return content
	}

	for _, msg := range req.Messages {
		if strings.Contains(msg.Content, `"overall"`) {
			return defaultScoreResponse
		}
	}
	return defaultGenerationResponse
}

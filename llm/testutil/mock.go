// Package testutil provides test doubles for the llm package.
package testutil

import (
	"context"
	"sync"

	"github.com/speccanvas/speccanvas/llm"
	"github.com/speccanvas/speccanvas/model"
)

// MockCompleter is a thread-safe llm.Completer for testing. It returns the
// configured responses in sequence, or Err if set, and records every request
// it receives.
type MockCompleter struct {
	mu            sync.Mutex
	requests      []llm.Request
	responseIndex int

	// Responses are returned in sequence; the last one repeats.
	Responses []*llm.Response

	// Err, if set, takes precedence over Responses.
	Err error

	// Configured controls what Available reports.
	Configured bool
}

var _ llm.Completer = (*MockCompleter)(nil)

// Complete returns the next configured response or Err.
func (m *MockCompleter) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return &llm.Response{Content: "{}", Model: "mock"}, nil
	}

	resp := m.Responses[m.responseIndex]
	if m.responseIndex < len(m.Responses)-1 {
		m.responseIndex++
	}
	return resp, nil
}

// Available reports the configured availability regardless of capability.
func (m *MockCompleter) Available(_ model.Capability) bool {
	return m.Configured
}

// Requests returns a copy of all requests seen so far.
func (m *MockCompleter) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Request(nil), m.requests...)
}

// CallCount returns how many times Complete was invoked.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

package mapclient

import (
	"context"
	"sync"
)

// MockClient is a mock implementation of Client for testing.
// It records all calls and returns configured responses.
type MockClient struct {
	mu sync.Mutex

	// Configured responses
	GenerateMapResponse *ConceptNode
	GenerateMapError    error
	ExplainResponse     string
	ExplainError        error
	ChatResponse        string
	ChatError           error
	MessageResponse     string
	MessageError        error

	// Optional delay hooks: when set, calls block until the channel closes.
	// Used to test in-flight and staleness behavior.
	GenerateMapGate chan struct{}
	ExplainGate     chan struct{}

	// Call tracking
	GenerateMapCalls []string
	ExplainCalls     []ExplainRequest
	ChatCalls        []ChatRequest
	MessageCalls     []string
}

// NewMockClient creates a new MockClient.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// GenerateMap returns the configured tree or error.
func (m *MockClient) GenerateMap(ctx context.Context, concept string) (*ConceptNode, error) {
	m.mu.Lock()
	m.GenerateMapCalls = append(m.GenerateMapCalls, concept)
	gate := m.GenerateMapGate
	tree, err := m.GenerateMapResponse, m.GenerateMapError
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return tree, err
}

// ExplainConcept returns the configured explanation or error.
func (m *MockClient) ExplainConcept(ctx context.Context, req ExplainRequest) (string, error) {
	m.mu.Lock()
	m.ExplainCalls = append(m.ExplainCalls, req)
	gate := m.ExplainGate
	text, err := m.ExplainResponse, m.ExplainError
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return text, err
}

// ChatAboutExplanation returns the configured chat reply or error.
func (m *MockClient) ChatAboutExplanation(ctx context.Context, req ChatRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatCalls = append(m.ChatCalls, req)
	return m.ChatResponse, m.ChatError
}

// SendMessage returns the configured reply or error.
func (m *MockClient) SendMessage(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessageCalls = append(m.MessageCalls, text)
	return m.MessageResponse, m.MessageError
}

// Verify MockClient implements Client interface.
var _ Client = (*MockClient)(nil)

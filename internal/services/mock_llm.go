package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

// MockLLM is a mock implementation of LLMService for testing
type MockLLM struct {
	InitModelFunc    func(ctx context.Context, modelName string) error
	ChatFunc         func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
	IsModelReadyFunc func(ctx context.Context, modelName string) (bool, error)

	// script holds canned responses returned in order when ChatFunc is
	// unset. After the script runs out the last entry repeats.
	script []string

	// Track calls for testing
	InitModelCalls []string
	ChatCalls      []ChatCall
	ReadyCalls     []string

	mu sync.Mutex // protects all fields above
}

type ChatCall struct {
	Messages []chat.ChatMessage
}

// Ensure MockLLM implements LLMService interface
var _ LLMService = (*MockLLM)(nil)

// NewMockLLM creates a new mock LLM service
func NewMockLLM() *MockLLM {
	return &MockLLM{
		InitModelCalls: make([]string, 0),
		ChatCalls:      make([]ChatCall, 0),
		ReadyCalls:     make([]string, 0),
	}
}

// SetScript sets canned responses returned by successive Chat calls
func (m *MockLLM) SetScript(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = responses
}

// SetChatError sets up the mock to return an error on Chat
func (m *MockLLM) SetChatError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return nil, err
	}
}

// InitModel mocks model initialization
func (m *MockLLM) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

// Chat mocks response generation
func (m *MockLLM) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.ChatCalls)
	m.ChatCalls = append(m.ChatCalls, ChatCall{Messages: messages})

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages)
	}

	if len(m.script) > 0 {
		idx := call
		if idx >= len(m.script) {
			idx = len(m.script) - 1
		}
		return &chat.ChatResponse{Message: m.script[idx]}, nil
	}

	return &chat.ChatResponse{Message: "Mock response"}, nil
}

// IsModelReady mocks model readiness check
func (m *MockLLM) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReadyCalls = append(m.ReadyCalls, modelName)

	if m.IsModelReadyFunc != nil {
		return m.IsModelReadyFunc(ctx, modelName)
	}
	return true, nil
}

// Reset clears all call tracking and scripted responses
func (m *MockLLM) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.ChatCalls = make([]ChatCall, 0)
	m.ReadyCalls = make([]string, 0)
	m.script = nil
	m.ChatFunc = nil
}

// CallCount returns the number of Chat calls in a thread-safe way
func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls)
}

// GetChatCalls returns a copy of the chat call tracking data
func (m *MockLLM) GetChatCalls() []ChatCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]ChatCall, len(m.ChatCalls))
	copy(calls, m.ChatCalls)
	return calls
}

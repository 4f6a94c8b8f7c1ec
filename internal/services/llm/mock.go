package llm

import (
	"context"
	"sync"

	"github.com/jwebster45206/personality-engine/pkg/chat"
)

// MockCompleter is a scriptable Completer for tests and offline runs
type MockCompleter struct {
	CompleteFunc func(ctx context.Context, messages []chat.ChatMessage) (string, error)

	// Track calls for testing
	CompleteCalls [][]chat.ChatMessage

	mu sync.Mutex // protects all fields above
}

// NewMockCompleter creates a mock that answers with reply
func NewMockCompleter(reply string) *MockCompleter {
	return &MockCompleter{
		CompleteFunc: func(context.Context, []chat.ChatMessage) (string, error) {
			return reply, nil
		},
	}
}

// Complete records the call and defers to CompleteFunc
func (m *MockCompleter) Complete(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, messages)
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}

	// Default behavior - an empty object, which the bridge declines
	return "{}", nil
}

// Calls returns how many times Complete ran
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CompleteCalls)
}

package llm

import (
	"context"

	"github.com/jwebster45206/personality-engine/pkg/chat"
)

// Completer is the boundary to a language model. Implementations return the
// raw assistant text for the conversation.
type Completer interface {
	Complete(ctx context.Context, messages []chat.ChatMessage) (string, error)
}

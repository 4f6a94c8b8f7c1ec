package chat

import "strings"

const (
	ChatRoleUser   = "user"      // Player or event summary
	ChatRoleAgent  = "assistant" // Companion
	ChatRoleSystem = "system"    // Instructions
)

// ChatMessage represents a single chat message in the conversation sent to a
// language model.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ExtractJSONObject returns the outermost {...} span of text, dropping any
// prose or code fences a model wraps around it. ok is false when there is none.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

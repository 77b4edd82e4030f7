package chat

import (
	"github.com/google/uuid"
)

// ChatResponse is the narrator's reply for one turn. The session updates
// game state before the response is returned.
type ChatResponse struct {
	SessionID   uuid.UUID     `json:"session_id,omitempty"`
	Message     string        `json:"message,omitempty"`
	ChatHistory []ChatMessage `json:"chat_history,omitempty"`
}

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // Dungeon Master
	ChatRoleSystem = "system"    // Rules engine / system notices
)

// ChatMessage is a single message in the conversation, in the role/content
// shape the LLM APIs expect.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`

	// Hidden messages (roll-result summaries) are carried in the model's
	// context window but never rendered as chat bubbles.
	Hidden bool `json:"hidden,omitempty"`
}

package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/dm-engine/pkg/chat"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

// Builder constructs chat messages for LLM interaction using a fluent
// interface. It separates prompt assembly from game state management.
type Builder struct {
	gs           *state.GameState
	userMessage  string
	userRole     string
	rollSummary  string
	correction   bool
	historyLimit int
	messages     []chat.ChatMessage
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: state.PromptHistoryLimit,
		messages:     make([]chat.ChatMessage, 0),
	}
}

// WithGameState sets the gamestate (contains the character and transcript).
func (b *Builder) WithGameState(gs *state.GameState) *Builder {
	b.gs = gs
	return b
}

// WithUserMessage sets the player's message and role.
func (b *Builder) WithUserMessage(message string, role string) *Builder {
	b.userMessage = message
	b.userRole = role
	return b
}

// WithRollSummary sets the resolved roll summary for a follow-up turn.
// The summary is wrapped in the normative result instruction.
func (b *Builder) WithRollSummary(summary string) *Builder {
	b.rollSummary = summary
	return b
}

// WithOutcomeCorrection marks that the previous model turn pre-narrated
// an outcome, prepending the correction clause to the result instruction.
func (b *Builder) WithOutcomeCorrection() *Builder {
	b.correction = true
	return b
}

// WithHistoryLimit sets the chat history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build constructs the final message array for LLM consumption. Order is
// fixed: system prompt with state, windowed history, the player message,
// the roll result instruction when present, then the closing reminder.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.gs == nil {
		return nil, fmt.Errorf("gamestate is required")
	}

	b.messages = make([]chat.ChatMessage, 0)

	if err := b.addSystemPrompt(); err != nil {
		return nil, fmt.Errorf("error building system prompt: %w", err)
	}

	b.addHistory()
	b.addUserMessage()
	b.addRollResults()
	b.addFinalPrompt()

	return b.messages, nil
}

func (b *Builder) addSystemPrompt() error {
	var sb strings.Builder
	sb.WriteString(BaseSystemPrompt)

	statePrompt, err := GetStatePrompt(b.gs)
	if err != nil {
		return err
	}
	sb.WriteString("\n\n" + statePrompt.Content)

	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: sb.String(),
	})
	return nil
}

// addHistory adds windowed chat history. Hidden messages are included:
// they are hidden from the rendered transcript, not from the model.
func (b *Builder) addHistory() {
	history := b.gs.ChatHistory
	if len(history) == 0 {
		return
	}
	if len(history) > b.historyLimit {
		history = history[len(history)-b.historyLimit:]
	}
	b.messages = append(b.messages, history...)
}

func (b *Builder) addUserMessage() {
	if b.userMessage == "" {
		return
	}
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    b.userRole,
		Content: b.userMessage,
	})
}

func (b *Builder) addRollResults() {
	if b.rollSummary == "" {
		return
	}
	content := fmt.Sprintf(RollResultInstruction, b.rollSummary)
	if b.correction {
		content = OutcomeCorrectionClause + content
	}
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: content,
	})
}

func (b *Builder) addFinalPrompt() {
	finalPrompt := UserPostPrompt
	if b.gs.IsEnded {
		finalPrompt = SessionEndPrompt
	}
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: finalPrompt,
	})
}

// BuildMessages is a convenience function for the common case.
func BuildMessages(gs *state.GameState, message string, role string, historyLimit int) ([]chat.ChatMessage, error) {
	return New().
		WithGameState(gs).
		WithUserMessage(message, role).
		WithHistoryLimit(historyLimit).
		Build()
}

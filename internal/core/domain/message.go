package domain

// MessageRole identifies the author of a conversation turn.
type MessageRole string

// Conversation roles.
const (
	// RoleUser is a human turn.
	RoleUser MessageRole = "user"

	// RoleAssistant is a model turn.
	RoleAssistant MessageRole = "assistant"
)

// Prefix returns the role marker prepended to conversation chunks.
func (r MessageRole) Prefix() string {
	switch r {
	case RoleAssistant:
		return "[Assistant]: "
	default:
		return "[User]: "
	}
}

// Message is a single turn of a conversation transcript.
// Turns without textual content (tool calls, empty turns) are skipped
// by the conversation chunker.
type Message struct {
	// Role is the author of the turn.
	Role MessageRole

	// Content is the turn text. May be empty for tool-only turns.
	Content string
}

package domain

// Conversation roles.
const (
	// RoleUser marks a turn authored by the user.
	RoleUser = "user"

	// RoleAssistant marks a turn authored by the model.
	RoleAssistant = "assistant"
)

// ConversationTurn is one message in a session's sliding-window history.
type ConversationTurn struct {
	// Role is RoleUser or RoleAssistant.
	Role string

	// Content is the message text.
	Content string
}

// Answer is the result of one orchestrated query.
type Answer struct {
	// Text is the final answer text.
	Text string

	// Sources lists the source labels of chunks consulted while
	// producing the answer, in retrieval order. Empty when the model
	// answered without searching.
	Sources []string

	// SessionID identifies the session the exchange was recorded under.
	SessionID string
}

// ToolResult is the outcome of a single tool invocation. It is an
// explicit per-call value threaded back to the orchestration loop, so
// no component holds a mutable "last sources" accumulator.
type ToolResult struct {
	// Text is the tool output fed back to the model.
	Text string

	// Sources lists the source labels of any chunks the tool touched.
	Sources []string
}

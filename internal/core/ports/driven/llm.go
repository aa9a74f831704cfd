package driven

import (
	"context"

	"github.com/lectern-labs/lectern/internal/core/domain"
)

// ModelBackend is one model provider behind a uniform invocation
// interface. The orchestration loop depends only on this interface;
// each adapter owns its own wire-format translation, including how the
// neutral ToolSchema is rendered into the provider's native shape.
//
// Implementations:
//   - Anthropic (native tool_use content blocks)
//   - OpenAI (function calling)
//   - Ollama (text-only; tool schemas are ignored)
type ModelBackend interface {
	// Complete performs one model call. The response is either a direct
	// answer or a tool-invocation request, never both.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// Provider identifies the backend family.
	Provider() domain.AIProvider

	// ModelName returns the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup to verify credentials.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionRequest carries everything one model call needs.
type CompletionRequest struct {
	// System is the system prompt, including any rendered history.
	System string

	// Messages is the conversation so far, oldest first.
	Messages []ChatMessage

	// Tools are the capabilities the model may request. Nil disables
	// tool use for this call.
	Tools []ToolSchema

	// MaxTokens bounds the generated output. Zero means adapter default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "user", "assistant", or "tool".
	Role string

	// Content is the message text. For a "tool" message it is the
	// tool's result text.
	Content string

	// ToolCall is set on an assistant message that requested a tool,
	// so the follow-up call can replay the request to the provider.
	ToolCall *ToolCallRequest

	// ToolCallID links a "tool" message to the request it answers.
	ToolCallID string
}

// ToolCallRequest is a model's request to execute a named tool.
type ToolCallRequest struct {
	// ID is the provider-assigned call identifier.
	ID string

	// Name is the registered tool name.
	Name string

	// Arguments are passed through structurally; validation is the
	// tool's responsibility.
	Arguments map[string]any
}

// Completion is the outcome of one model call.
type Completion struct {
	// Text is the answer text. May be empty when a tool was requested.
	Text string

	// ToolCall is non-nil when the model requested a tool invocation.
	ToolCall *ToolCallRequest
}

// IsToolCall reports whether the model asked for a tool instead of
// answering directly.
func (c *Completion) IsToolCall() bool {
	return c.ToolCall != nil
}

// ToolSchema describes one tool in a provider-neutral shape. It is the
// single source of truth each backend translates into its native
// tool-declaration format.
type ToolSchema struct {
	// Name is the tool's registered name.
	Name string

	// Description tells the model when to use the tool.
	Description string

	// Parameters describe the accepted arguments.
	Parameters []ToolParam
}

// ToolParam describes one tool argument.
type ToolParam struct {
	// Name is the argument name.
	Name string

	// Type is the JSON schema type ("string", "integer", ...).
	Type string

	// Description tells the model what the argument means.
	Description string

	// Required marks arguments the model must supply.
	Required bool
}

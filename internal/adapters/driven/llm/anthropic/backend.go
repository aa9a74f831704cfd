// Package anthropic provides a model backend adapter using the
// Anthropic Messages API with native tool_use content blocks.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.ModelBackend = (*Backend)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 120 * time.Second

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic backend.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Backend provides completions using the Anthropic API.
type Backend struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	Tools       []toolDecl        `json:"tools,omitempty"`
}

// messagesMessage is the Anthropic message format. Content is either a
// plain string or a list of content blocks.
type messagesMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// contentBlock is one block in a structured message.
type contentBlock struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Content   string         `json:"content,omitempty"`
}

// toolDecl is the Anthropic tool declaration format.
type toolDecl struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	InputSchema inputSchema `json:"input_schema"`
}

// inputSchema is a JSON schema object describing tool arguments.
type inputSchema struct {
	Type       string                `json:"type"`
	Properties map[string]schemaProp `json:"properties"`
	Required   []string              `json:"required,omitempty"`
}

// schemaProp describes one tool argument.
type schemaProp struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type  string         `json:"type"`
		Text  string         `json:"text"`
		ID    string         `json:"id"`
		Name  string         `json:"name"`
		Input map[string]any `json:"input"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// New creates a new Anthropic backend.
func New(cfg Config) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Backend{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Complete performs one model call.
func (b *Backend) Complete(ctx context.Context, req driven.CompletionRequest) (*driven.Completion, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	reqBody := messagesRequest{
		Model:     b.model,
		Messages:  translateMessages(req.Messages),
		MaxTokens: maxTokens,
		System:    req.System,
		Tools:     translateTools(req.Tools),
	}
	if req.Temperature > 0 {
		reqBody.Temperature = req.Temperature
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		b.baseURL+"/v1/messages",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", b.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError("anthropic", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return nil, &domain.BackendError{
			Provider:   "anthropic",
			Kind:       domain.BackendErrMalformed,
			Message:    "undecodable response body",
			StatusCode: resp.StatusCode,
		}
	}

	if resp.StatusCode != http.StatusOK {
		message := "request failed"
		if msgResp.Error != nil {
			message = msgResp.Error.Message
		}
		return nil, &domain.BackendError{
			Provider:   "anthropic",
			Kind:       domain.ClassifyBackendStatus(resp.StatusCode),
			Message:    message,
			StatusCode: resp.StatusCode,
		}
	}

	if len(msgResp.Content) == 0 {
		return nil, &domain.BackendError{
			Provider: "anthropic",
			Kind:     domain.BackendErrMalformed,
			Message:  "no response content returned",
		}
	}

	completion := &driven.Completion{}
	var text strings.Builder
	for _, block := range msgResp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			completion.ToolCall = &driven.ToolCallRequest{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: block.Input,
			}
		}
	}
	completion.Text = text.String()

	return completion, nil
}

// translateMessages converts the neutral message list into Anthropic
// content blocks. Tool results ride in a user-role message, as the
// Messages API requires.
func translateMessages(messages []driven.ChatMessage) []messagesMessage {
	out := make([]messagesMessage, 0, len(messages))
	for _, msg := range messages {
		switch {
		case msg.ToolCall != nil:
			blocks := []contentBlock{}
			if msg.Content != "" {
				blocks = append(blocks, contentBlock{Type: "text", Text: msg.Content})
			}
			blocks = append(blocks, contentBlock{
				Type:  "tool_use",
				ID:    msg.ToolCall.ID,
				Name:  msg.ToolCall.Name,
				Input: msg.ToolCall.Arguments,
			})
			out = append(out, messagesMessage{Role: "assistant", Content: blocks})

		case msg.Role == "tool":
			out = append(out, messagesMessage{
				Role: "user",
				Content: []contentBlock{{
					Type:      "tool_result",
					ToolUseID: msg.ToolCallID,
					Content:   msg.Content,
				}},
			})

		default:
			out = append(out, messagesMessage{Role: msg.Role, Content: msg.Content})
		}
	}
	return out
}

// translateTools renders neutral tool schemas into the Anthropic
// input_schema declaration format.
func translateTools(tools []driven.ToolSchema) []toolDecl {
	if len(tools) == 0 {
		return nil
	}

	out := make([]toolDecl, len(tools))
	for i, tool := range tools {
		schema := inputSchema{
			Type:       "object",
			Properties: make(map[string]schemaProp, len(tool.Parameters)),
		}
		for _, param := range tool.Parameters {
			schema.Properties[param.Name] = schemaProp{
				Type:        param.Type,
				Description: param.Description,
			}
			if param.Required {
				schema.Required = append(schema.Required, param.Name)
			}
		}
		out[i] = toolDecl{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		}
	}
	return out
}

// classifyTransportError maps client-side failures onto the backend
// error taxonomy without leaking request details.
func classifyTransportError(provider string, err error) error {
	kind := domain.BackendErrTransient
	if errors.Is(err, context.DeadlineExceeded) {
		kind = domain.BackendErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &domain.BackendError{
		Provider: provider,
		Kind:     kind,
		Message:  "request did not complete",
	}
}

// Provider identifies the backend family.
func (b *Backend) Provider() domain.AIProvider {
	return domain.AIProviderAnthropic
}

// ModelName returns the model being used.
func (b *Backend) ModelName() string {
	return b.model
}

// Ping validates the service is reachable by checking the /v1/models
// endpoint. This validates the API key without running inference.
func (b *Backend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	req.Header.Set("x-api-key", b.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.BackendError{
			Provider:   "anthropic",
			Kind:       domain.ClassifyBackendStatus(resp.StatusCode),
			Message:    "ping rejected",
			StatusCode: resp.StatusCode,
		}
	}
	return nil
}

// Close releases resources.
func (b *Backend) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

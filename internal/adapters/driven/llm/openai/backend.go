// Package openai provides a model backend adapter using the OpenAI
// Chat Completions API with function calling.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.ModelBackend = (*Backend)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com"
	DefaultModel   = "gpt-4o"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI backend.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com).
	// Also usable for API-compatible hosts.
	BaseURL string

	// Model is the model to use (default: gpt-4o).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Backend provides completions using the OpenAI API.
type Backend struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// chatRequest is the OpenAI /v1/chat/completions request format.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Tools       []toolDecl    `json:"tools,omitempty"`
}

// chatMessage is the OpenAI message format.
type chatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// toolCall is one requested function invocation.
type toolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

// functionCall carries the function name and JSON-encoded arguments.
type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// toolDecl is the OpenAI function declaration format.
type toolDecl struct {
	Type     string       `json:"type"`
	Function functionDecl `json:"function"`
}

// functionDecl describes one callable function.
type functionDecl struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Parameters  paramsSchema `json:"parameters"`
}

// paramsSchema is a JSON schema object describing function arguments.
type paramsSchema struct {
	Type       string                `json:"type"`
	Properties map[string]schemaProp `json:"properties"`
	Required   []string              `json:"required,omitempty"`
}

// schemaProp describes one function argument.
type schemaProp struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// chatResponse is the OpenAI /v1/chat/completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string     `json:"content"`
			ToolCalls []toolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// New creates a new OpenAI backend.
func New(cfg Config) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
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
	messages, err := translateMessages(req.System, req.Messages)
	if err != nil {
		return nil, err
	}

	reqBody := chatRequest{
		Model:     b.model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
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
		b.baseURL+"/v1/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError("openai", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, &domain.BackendError{
			Provider:   "openai",
			Kind:       domain.BackendErrMalformed,
			Message:    "undecodable response body",
			StatusCode: resp.StatusCode,
		}
	}

	if resp.StatusCode != http.StatusOK {
		message := "request failed"
		if chatResp.Error != nil {
			message = chatResp.Error.Message
		}
		return nil, &domain.BackendError{
			Provider:   "openai",
			Kind:       domain.ClassifyBackendStatus(resp.StatusCode),
			Message:    message,
			StatusCode: resp.StatusCode,
		}
	}

	if len(chatResp.Choices) == 0 {
		return nil, &domain.BackendError{
			Provider: "openai",
			Kind:     domain.BackendErrMalformed,
			Message:  "no choices returned",
		}
	}

	choice := chatResp.Choices[0]
	completion := &driven.Completion{Text: choice.Message.Content}

	if len(choice.Message.ToolCalls) > 0 {
		call := choice.Message.ToolCalls[0]

		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				return nil, &domain.BackendError{
					Provider: "openai",
					Kind:     domain.BackendErrMalformed,
					Message:  "undecodable tool arguments",
				}
			}
		}

		completion.ToolCall = &driven.ToolCallRequest{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		}
	}

	return completion, nil
}

// translateMessages converts the neutral message list into the OpenAI
// format. The system prompt becomes the leading system message.
func translateMessages(system string, messages []driven.ChatMessage) ([]chatMessage, error) {
	out := make([]chatMessage, 0, len(messages)+1)
	if system != "" {
		out = append(out, chatMessage{Role: "system", Content: system})
	}

	for _, msg := range messages {
		switch {
		case msg.ToolCall != nil:
			args, err := json.Marshal(msg.ToolCall.Arguments)
			if err != nil {
				return nil, fmt.Errorf("marshal tool arguments: %w", err)
			}
			out = append(out, chatMessage{
				Role:    "assistant",
				Content: msg.Content,
				ToolCalls: []toolCall{{
					ID:   msg.ToolCall.ID,
					Type: "function",
					Function: functionCall{
						Name:      msg.ToolCall.Name,
						Arguments: string(args),
					},
				}},
			})

		case msg.Role == "tool":
			out = append(out, chatMessage{
				Role:       "tool",
				Content:    msg.Content,
				ToolCallID: msg.ToolCallID,
			})

		default:
			out = append(out, chatMessage{Role: msg.Role, Content: msg.Content})
		}
	}
	return out, nil
}

// translateTools renders neutral tool schemas into the OpenAI function
// declaration format.
func translateTools(tools []driven.ToolSchema) []toolDecl {
	if len(tools) == 0 {
		return nil
	}

	out := make([]toolDecl, len(tools))
	for i, tool := range tools {
		params := paramsSchema{
			Type:       "object",
			Properties: make(map[string]schemaProp, len(tool.Parameters)),
		}
		for _, param := range tool.Parameters {
			params.Properties[param.Name] = schemaProp{
				Type:        param.Type,
				Description: param.Description,
			}
			if param.Required {
				params.Required = append(params.Required, param.Name)
			}
		}
		out[i] = toolDecl{
			Type: "function",
			Function: functionDecl{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  params,
			},
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
	return domain.AIProviderOpenAI
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
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.BackendError{
			Provider:   "openai",
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

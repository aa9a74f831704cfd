// Package ollama provides a model backend adapter using a local
// Ollama instance. Ollama is the text-only fallback: tool schemas in a
// request are ignored and the model always answers directly.
package ollama

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
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 300 * time.Second
)

// Config holds configuration for the Ollama backend.
type Config struct {
	// BaseURL is the Ollama API URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 300s, local models are
	// slow on first load).
	Timeout time.Duration
}

// Backend provides completions using a local Ollama instance.
type Backend struct {
	client  *http.Client
	baseURL string
	model   string
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options,omitempty"`
}

// chatMessage is the Ollama message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatOptions holds generation parameters.
type chatOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// chatResponse is the Ollama /api/chat response format.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// New creates a new Ollama backend.
func New(cfg Config) (*Backend, error) {
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
		model:   cfg.Model,
	}, nil
}

// Complete performs one model call. Tool schemas in the request are
// ignored; any tool result messages are rendered as plain user text so
// the conversation stays coherent.
func (b *Backend) Complete(ctx context.Context, req driven.CompletionRequest) (*driven.Completion, error) {
	reqBody := chatRequest{
		Model:    b.model,
		Messages: translateMessages(req.System, req.Messages),
		Stream:   false,
	}
	if req.MaxTokens > 0 {
		reqBody.Options.NumPredict = req.MaxTokens
	}
	if req.Temperature > 0 {
		reqBody.Options.Temperature = req.Temperature
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		b.baseURL+"/api/chat",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		kind := domain.BackendErrTransient
		if errors.Is(err, context.DeadlineExceeded) {
			kind = domain.BackendErrTimeout
		}
		return nil, &domain.BackendError{
			Provider: "ollama",
			Kind:     kind,
			Message:  "request did not complete (is Ollama running?)",
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, &domain.BackendError{
			Provider:   "ollama",
			Kind:       domain.BackendErrMalformed,
			Message:    "undecodable response body",
			StatusCode: resp.StatusCode,
		}
	}

	if resp.StatusCode != http.StatusOK {
		message := "request failed"
		if chatResp.Error != "" {
			message = chatResp.Error
		}
		return nil, &domain.BackendError{
			Provider:   "ollama",
			Kind:       domain.ClassifyBackendStatus(resp.StatusCode),
			Message:    message,
			StatusCode: resp.StatusCode,
		}
	}

	return &driven.Completion{Text: chatResp.Message.Content}, nil
}

// translateMessages flattens the neutral message list into plain text
// turns. Tool results become labelled user messages.
func translateMessages(system string, messages []driven.ChatMessage) []chatMessage {
	out := make([]chatMessage, 0, len(messages)+1)
	if system != "" {
		out = append(out, chatMessage{Role: "system", Content: system})
	}

	for _, msg := range messages {
		role := msg.Role
		content := msg.Content
		if role == "tool" {
			role = "user"
			content = "Search result:\n" + content
		}
		if content == "" {
			continue
		}
		out = append(out, chatMessage{Role: role, Content: content})
	}
	return out
}

// Provider identifies the backend family.
func (b *Backend) Provider() domain.AIProvider {
	return domain.AIProviderOllama
}

// ModelName returns the model being used.
func (b *Backend) ModelName() string {
	return b.model
}

// Ping validates the Ollama instance is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed (is Ollama running at %s?): %w", b.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (b *Backend) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

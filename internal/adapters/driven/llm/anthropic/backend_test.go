package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return backend
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestCompleteTextResponse(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"content":[{"type":"text","text":"Hello."}],"stop_reason":"end_turn"}`)
	})

	completion, err := backend.Complete(context.Background(), driven.CompletionRequest{
		System:   "Be brief.",
		Messages: []driven.ChatMessage{{Role: "user", Content: "Hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello.", completion.Text)
	assert.False(t, completion.IsToolCall())
}

func TestCompleteToolUseResponse(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{
			"content": [
				{"type": "text", "text": "Let me check."},
				{"type": "tool_use", "id": "toolu_1", "name": "search_course_content",
				 "input": {"query": "routing", "lesson_number": 2}}
			],
			"stop_reason": "tool_use"
		}`)
	})

	completion, err := backend.Complete(context.Background(), driven.CompletionRequest{
		Messages: []driven.ChatMessage{{Role: "user", Content: "How does routing work?"}},
	})
	require.NoError(t, err)

	require.True(t, completion.IsToolCall())
	assert.Equal(t, "toolu_1", completion.ToolCall.ID)
	assert.Equal(t, "search_course_content", completion.ToolCall.Name)
	assert.Equal(t, "routing", completion.ToolCall.Arguments["query"])
	assert.Equal(t, "Let me check.", completion.Text)
}

func TestCompleteSendsToolDeclarations(t *testing.T) {
	var got messagesRequest
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		io.WriteString(w, `{"content":[{"type":"text","text":"ok"}]}`)
	})

	_, err := backend.Complete(context.Background(), driven.CompletionRequest{
		Messages: []driven.ChatMessage{{Role: "user", Content: "q"}},
		Tools: []driven.ToolSchema{{
			Name:        "search_course_content",
			Description: "Search the courses",
			Parameters: []driven.ToolParam{
				{Name: "query", Type: "string", Required: true},
				{Name: "lesson_number", Type: "integer"},
			},
		}},
	})
	require.NoError(t, err)

	require.Len(t, got.Tools, 1)
	tool := got.Tools[0]
	assert.Equal(t, "search_course_content", tool.Name)
	assert.Equal(t, "object", tool.InputSchema.Type)
	assert.Equal(t, []string{"query"}, tool.InputSchema.Required)
	assert.Equal(t, "string", tool.InputSchema.Properties["query"].Type)
	assert.Equal(t, "integer", tool.InputSchema.Properties["lesson_number"].Type)
}

func TestCompleteTranslatesToolRound(t *testing.T) {
	var raw map[string]any
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &raw))
		io.WriteString(w, `{"content":[{"type":"text","text":"done"}]}`)
	})

	_, err := backend.Complete(context.Background(), driven.CompletionRequest{
		Messages: []driven.ChatMessage{
			{Role: "user", Content: "How does routing work?"},
			{Role: "assistant", ToolCall: &driven.ToolCallRequest{
				ID: "toolu_1", Name: "search_course_content",
				Arguments: map[string]any{"query": "routing"},
			}},
			{Role: "tool", Content: "found content", ToolCallID: "toolu_1"},
		},
	})
	require.NoError(t, err)

	messages := raw["messages"].([]any)
	require.Len(t, messages, 3)

	assistant := messages[1].(map[string]any)
	assert.Equal(t, "assistant", assistant["role"])
	blocks := assistant["content"].([]any)
	toolUse := blocks[0].(map[string]any)
	assert.Equal(t, "tool_use", toolUse["type"])
	assert.Equal(t, "toolu_1", toolUse["id"])

	// Tool results ride in a user-role message.
	result := messages[2].(map[string]any)
	assert.Equal(t, "user", result["role"])
	resultBlock := result["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "tool_result", resultBlock["type"])
	assert.Equal(t, "toolu_1", resultBlock["tool_use_id"])
	assert.Equal(t, "found content", resultBlock["content"])
}

func TestCompleteErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   domain.BackendErrorKind
	}{
		{http.StatusUnauthorized, domain.BackendErrAuth},
		{http.StatusPaymentRequired, domain.BackendErrCredits},
		{http.StatusTooManyRequests, domain.BackendErrRateLimited},
		{http.StatusInternalServerError, domain.BackendErrTransient},
	}

	for _, tt := range tests {
		backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
			io.WriteString(w, `{"error":{"type":"api_error","message":"nope"}}`)
		})

		_, err := backend.Complete(context.Background(), driven.CompletionRequest{
			Messages: []driven.ChatMessage{{Role: "user", Content: "q"}},
		})

		var backendErr *domain.BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, tt.kind, backendErr.Kind)
		assert.Equal(t, tt.status, backendErr.StatusCode)
		assert.NotContains(t, backendErr.Error(), "test-key")
	}
}

func TestPing(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		io.WriteString(w, `{"data":[]}`)
	})
	assert.NoError(t, backend.Ping(context.Background()))
}

func TestPingAuthFailure(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := backend.Ping(context.Background())
	var backendErr *domain.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, domain.BackendErrAuth, backendErr.Kind)
}

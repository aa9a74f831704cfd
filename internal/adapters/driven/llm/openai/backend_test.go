package openai

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
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		io.WriteString(w, `{"choices":[{"message":{"content":"Hello."},"finish_reason":"stop"}]}`)
	})

	completion, err := backend.Complete(context.Background(), driven.CompletionRequest{
		System:   "Be brief.",
		Messages: []driven.ChatMessage{{Role: "user", Content: "Hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello.", completion.Text)
	assert.False(t, completion.IsToolCall())
}

func TestCompleteSystemMessageLeads(t *testing.T) {
	var got chatRequest
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	})

	_, err := backend.Complete(context.Background(), driven.CompletionRequest{
		System:   "Instructions here.",
		Messages: []driven.ChatMessage{{Role: "user", Content: "q"}},
	})
	require.NoError(t, err)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "Instructions here.", got.Messages[0].Content)
}

func TestCompleteFunctionCallResponse(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{
			"choices": [{
				"message": {
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "search_course_content",
							"arguments": "{\"query\": \"routing\", \"lesson_number\": 2}"}
					}]
				},
				"finish_reason": "tool_calls"
			}]
		}`)
	})

	completion, err := backend.Complete(context.Background(), driven.CompletionRequest{
		Messages: []driven.ChatMessage{{Role: "user", Content: "How does routing work?"}},
	})
	require.NoError(t, err)

	require.True(t, completion.IsToolCall())
	assert.Equal(t, "call_1", completion.ToolCall.ID)
	assert.Equal(t, "search_course_content", completion.ToolCall.Name)
	assert.Equal(t, "routing", completion.ToolCall.Arguments["query"])
	assert.Equal(t, float64(2), completion.ToolCall.Arguments["lesson_number"])
}

func TestCompleteSendsFunctionDeclarations(t *testing.T) {
	var got chatRequest
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	})

	_, err := backend.Complete(context.Background(), driven.CompletionRequest{
		Messages: []driven.ChatMessage{{Role: "user", Content: "q"}},
		Tools: []driven.ToolSchema{{
			Name:        "search_course_content",
			Description: "Search the courses",
			Parameters: []driven.ToolParam{
				{Name: "query", Type: "string", Required: true},
			},
		}},
	})
	require.NoError(t, err)

	require.Len(t, got.Tools, 1)
	assert.Equal(t, "function", got.Tools[0].Type)
	fn := got.Tools[0].Function
	assert.Equal(t, "search_course_content", fn.Name)
	assert.Equal(t, []string{"query"}, fn.Parameters.Required)
	assert.Equal(t, "string", fn.Parameters.Properties["query"].Type)
}

func TestCompleteTranslatesToolRound(t *testing.T) {
	var got chatRequest
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		io.WriteString(w, `{"choices":[{"message":{"content":"done"}}]}`)
	})

	_, err := backend.Complete(context.Background(), driven.CompletionRequest{
		Messages: []driven.ChatMessage{
			{Role: "user", Content: "How does routing work?"},
			{Role: "assistant", ToolCall: &driven.ToolCallRequest{
				ID: "call_1", Name: "search_course_content",
				Arguments: map[string]any{"query": "routing"},
			}},
			{Role: "tool", Content: "found content", ToolCallID: "call_1"},
		},
	})
	require.NoError(t, err)

	require.Len(t, got.Messages, 3)

	assistant := got.Messages[1]
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "call_1", assistant.ToolCalls[0].ID)
	assert.Equal(t, "function", assistant.ToolCalls[0].Type)
	assert.JSONEq(t, `{"query":"routing"}`, assistant.ToolCalls[0].Function.Arguments)

	result := got.Messages[2]
	assert.Equal(t, "tool", result.Role)
	assert.Equal(t, "call_1", result.ToolCallID)
	assert.Equal(t, "found content", result.Content)
}

func TestCompleteErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   domain.BackendErrorKind
	}{
		{http.StatusUnauthorized, domain.BackendErrAuth},
		{http.StatusPaymentRequired, domain.BackendErrCredits},
		{http.StatusTooManyRequests, domain.BackendErrRateLimited},
		{http.StatusBadGateway, domain.BackendErrTransient},
	}

	for _, tt := range tests {
		backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
			io.WriteString(w, `{"error":{"message":"nope","type":"api_error"}}`)
		})

		_, err := backend.Complete(context.Background(), driven.CompletionRequest{
			Messages: []driven.ChatMessage{{Role: "user", Content: "q"}},
		})

		var backendErr *domain.BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, tt.kind, backendErr.Kind)
		assert.NotContains(t, backendErr.Error(), "test-key")
	}
}

func TestPing(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		io.WriteString(w, `{"data":[]}`)
	})
	assert.NoError(t, backend.Ping(context.Background()))
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
	"github.com/lectern-labs/lectern/internal/core/ports/driving"
	"github.com/lectern-labs/lectern/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// systemPrompt is the static instruction text for every query. Session
// history is rendered beneath it, never interleaved into the message
// list.
const systemPrompt = `You are a helpful assistant for course materials. You can search the indexed courses when a question is about specific course content.

Guidelines:
- Search only when the question concerns course content; answer general questions directly.
- Use at most one search per question.
- Base course-content answers on the search results. If the results contain nothing relevant, say so.
- Be concise and do not mention the search process in your answer.`

// defaultMaxTokens bounds the model's output per call.
const defaultMaxTokens = 800

// ChatService runs the tool-invocation orchestration loop: at most one
// tool round per query, with the second model call always terminal.
type ChatService struct {
	backend  driven.ModelBackend
	registry *ToolRegistry
	sessions driven.SessionStore
}

// NewChatService creates the orchestration service. The backend is
// resolved once at startup; ChatService never switches providers
// mid-conversation.
func NewChatService(
	backend driven.ModelBackend,
	registry *ToolRegistry,
	sessions driven.SessionStore,
) *ChatService {
	return &ChatService{
		backend:  backend,
		registry: registry,
		sessions: sessions,
	}
}

// Answer runs one orchestrated query end-to-end.
func (s *ChatService) Answer(ctx context.Context, query, sessionID string) (*domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if s.backend == nil {
		return nil, domain.ErrNoBackendConfigured
	}

	if sessionID == "" {
		sessionID = s.sessions.Create()
		logger.Debug("New session: %s", sessionID)
	}

	logger.Section("Query Orchestration")
	logger.Debug("Backend: %s (%s)", s.backend.Provider(), s.backend.ModelName())
	logger.Debug("Query: %q, session: %s", query, sessionID)

	history := s.sessions.Snapshot(sessionID)
	system := renderSystem(history)

	messages := []driven.ChatMessage{{Role: domain.RoleUser, Content: query}}

	completion, err := s.backend.Complete(ctx, driven.CompletionRequest{
		System:    system,
		Messages:  messages,
		Tools:     s.registry.Schemas(),
		MaxTokens: defaultMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	var sources []string

	if completion.IsToolCall() {
		call := completion.ToolCall
		logger.Info("Tool requested: %s", call.Name)

		result := s.runTool(ctx, call)
		if err := ctx.Err(); err != nil {
			// Cancelled mid-invocation; abandon the exchange.
			return nil, err
		}
		sources = result.Sources

		messages = append(messages,
			driven.ChatMessage{
				Role:     domain.RoleAssistant,
				Content:  completion.Text,
				ToolCall: call,
			},
			driven.ChatMessage{
				Role:       "tool",
				Content:    result.Text,
				ToolCallID: call.ID,
			},
		)

		// Follow-up is terminal: no tools offered, and any further
		// tool request is surfaced as raw text.
		completion, err = s.backend.Complete(ctx, driven.CompletionRequest{
			System:    system,
			Messages:  messages,
			MaxTokens: defaultMaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("follow-up model call: %w", err)
		}
	}

	answer := completion.Text

	s.sessions.Append(sessionID, domain.ConversationTurn{Role: domain.RoleUser, Content: query})
	s.sessions.Append(sessionID, domain.ConversationTurn{Role: domain.RoleAssistant, Content: answer})

	return &domain.Answer{
		Text:      answer,
		Sources:   sources,
		SessionID: sessionID,
	}, nil
}

// runTool executes a requested tool and always produces a result the
// model can read. Execution failures become descriptive result text
// rather than aborting the query.
func (s *ChatService) runTool(ctx context.Context, call *driven.ToolCallRequest) *domain.ToolResult {
	result, err := s.registry.Invoke(ctx, call.Name, call.Arguments)
	if err != nil {
		logger.Warn("Tool %s failed: %v", call.Name, err)
		return &domain.ToolResult{
			Text: fmt.Sprintf("Tool '%s' failed: %v. Answer from your own knowledge and mention the limitation.", call.Name, err),
		}
	}
	return result
}

// renderSystem appends the session history to the static instruction
// text so the window is visible to the model without growing the
// message list.
func renderSystem(history []domain.ConversationTurn) string {
	if len(history) == 0 {
		return systemPrompt
	}

	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nPrevious conversation:\n")
	for _, turn := range history {
		switch turn.Role {
		case domain.RoleUser:
			sb.WriteString("User: ")
		case domain.RoleAssistant:
			sb.WriteString("Assistant: ")
		}
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

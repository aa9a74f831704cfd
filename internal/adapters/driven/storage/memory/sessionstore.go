package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore
// with FIFO eviction. maxTurns bounds each session's history; the
// oldest turns are dropped first when the bound is exceeded.
type SessionStore struct {
	mu       sync.Mutex
	maxTurns int
	sessions map[string][]domain.ConversationTurn
}

// NewSessionStore creates a session store remembering the last
// maxExchanges exchanges (one exchange = user turn + assistant turn).
func NewSessionStore(maxExchanges int) *SessionStore {
	if maxExchanges <= 0 {
		maxExchanges = 2
	}
	return &SessionStore{
		maxTurns: maxExchanges * 2,
		sessions: make(map[string][]domain.ConversationTurn),
	}
}

// Create registers a new session and returns its identifier.
func (s *SessionStore) Create() string {
	id := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = nil
	return id
}

// Append records a turn, evicting the oldest turns past the bound.
// Appending to an unknown session creates it.
func (s *SessionStore) Append(sessionID string, turn domain.ConversationTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := append(s.sessions[sessionID], turn)
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.sessions[sessionID] = turns
}

// Snapshot returns a copy of the session's history, oldest first.
func (s *SessionStore) Snapshot(sessionID string) []domain.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ConversationTurn(nil), s.sessions[sessionID]...)
}

// Clear removes a session's history.
func (s *SessionStore) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

package memory

import (
	"fmt"
	"testing"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_CreateAndAppend(t *testing.T) {
	store := NewSessionStore(2)

	id := store.Create()
	require.NotEmpty(t, id)

	store.Append(id, domain.ConversationTurn{Role: domain.RoleUser, Content: "hello"})
	store.Append(id, domain.ConversationTurn{Role: domain.RoleAssistant, Content: "hi there"})

	turns := store.Snapshot(id)
	require.Len(t, turns, 2)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, domain.RoleAssistant, turns[1].Role)
}

func TestSessionStore_FIFOEviction(t *testing.T) {
	// Window of 2 exchanges = 4 turns.
	store := NewSessionStore(2)
	id := store.Create()

	for i := 0; i < 6; i++ {
		store.Append(id, domain.ConversationTurn{
			Role:    domain.RoleUser,
			Content: fmt.Sprintf("turn %d", i),
		})
	}

	turns := store.Snapshot(id)
	require.Len(t, turns, 4)
	// Oldest turns evicted first.
	assert.Equal(t, "turn 2", turns[0].Content)
	assert.Equal(t, "turn 5", turns[3].Content)
}

func TestSessionStore_Snapshot_UnknownSession(t *testing.T) {
	store := NewSessionStore(2)

	assert.Empty(t, store.Snapshot("no-such-session"))
}

func TestSessionStore_AppendCreatesUnknownSession(t *testing.T) {
	store := NewSessionStore(2)

	store.Append("external-id", domain.ConversationTurn{Role: domain.RoleUser, Content: "hi"})

	assert.Len(t, store.Snapshot("external-id"), 1)
}

func TestSessionStore_Clear(t *testing.T) {
	store := NewSessionStore(2)
	id := store.Create()
	store.Append(id, domain.ConversationTurn{Role: domain.RoleUser, Content: "hello"})

	store.Clear(id)

	assert.Empty(t, store.Snapshot(id))
}

func TestSessionStore_SessionsAreIsolated(t *testing.T) {
	store := NewSessionStore(2)
	a := store.Create()
	b := store.Create()

	store.Append(a, domain.ConversationTurn{Role: domain.RoleUser, Content: "for a"})

	assert.Len(t, store.Snapshot(a), 1)
	assert.Empty(t, store.Snapshot(b))
}

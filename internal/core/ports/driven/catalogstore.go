package driven

import (
	"context"

	"github.com/lectern-labs/lectern/internal/core/domain"
)

// CatalogStore persists course metadata and chunk entries so the vector
// index can be rebuilt across restarts. The course title is the upsert
// key: saving a course replaces everything stored under that title.
type CatalogStore interface {
	// SaveCourse stores a course and its chunk entries, replacing any
	// prior version with the same title.
	SaveCourse(ctx context.Context, course *domain.Course, entries []VectorEntry) error

	// GetCourse retrieves a course by exact title.
	// Returns domain.ErrNotFound when the title is not stored.
	GetCourse(ctx context.Context, title string) (*domain.Course, error)

	// ListTitles returns all stored course titles.
	ListTitles(ctx context.Context) ([]string, error)

	// GetEntries returns the stored chunk entries for a course title.
	GetEntries(ctx context.Context, title string) ([]VectorEntry, error)

	// DeleteCourse removes a course and its entries.
	DeleteCourse(ctx context.Context, title string) error

	// Clear removes all stored courses and entries.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// SessionStore keeps the bounded sliding-window conversation history
// per session. Eviction is FIFO: when the configured bound is exceeded
// the oldest turns are dropped first.
type SessionStore interface {
	// Create registers a new session and returns its identifier.
	Create() string

	// Append records a turn at the end of the session's history,
	// evicting the oldest turns when the window bound is exceeded.
	// Appending to an unknown session creates it.
	Append(sessionID string, turn domain.ConversationTurn)

	// Snapshot returns a copy of the session's history, oldest first.
	// Unknown sessions yield an empty slice.
	Snapshot(sessionID string) []domain.ConversationTurn

	// Clear removes a session's history.
	Clear(sessionID string)
}

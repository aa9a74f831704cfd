package driving

import (
	"context"

	"github.com/lectern-labs/lectern/internal/core/domain"
)

// ChatService answers user queries, optionally searching the course
// index mid-conversation when the model decides a search is needed.
type ChatService interface {
	// Answer runs one orchestrated query end-to-end. An empty
	// sessionID creates a new session. The caller's context is the
	// only cancellation point; on cancellation an in-flight tool call
	// is abandoned, not awaited.
	Answer(ctx context.Context, query, sessionID string) (*domain.Answer, error)
}

// RetrievalService exposes course-aware semantic search to callers
// outside the orchestration loop (CLI, MCP).
type RetrievalService interface {
	// Search embeds the query and returns the k nearest chunks that
	// satisfy the filter, ordered by decreasing similarity.
	Search(ctx context.Context, query string, filter domain.SearchFilter, k int) ([]domain.SearchResult, error)

	// ResolveCourseTitle best-effort matches a partial course name to
	// a stored exact title. Returns "" when nothing matches.
	ResolveCourseTitle(ctx context.Context, partial string) (string, error)

	// Analytics summarises the indexed catalogue.
	Analytics(ctx context.Context) (*domain.CourseAnalytics, error)

	// Outline returns the stored course metadata for an exact title.
	// Returns domain.ErrNotFound when the title is not indexed.
	Outline(ctx context.Context, title string) (*domain.Course, error)
}

// IngestService loads course documents into the retrieval index.
type IngestService interface {
	// IngestFile processes a single course document.
	// Returns the extracted course and the number of chunks stored.
	IngestFile(ctx context.Context, path string) (*domain.Course, int, error)

	// IngestFolder processes every course document in a folder.
	// Already-indexed titles are skipped unless clearExisting is set.
	// Returns the number of courses and chunks added.
	IngestFolder(ctx context.Context, dir string, clearExisting bool) (int, int, error)
}

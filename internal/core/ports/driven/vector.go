package driven

import (
	"context"

	"github.com/lectern-labs/lectern/internal/core/domain"
)

// VectorEntry pairs a chunk with its embedding for storage.
type VectorEntry struct {
	// Chunk is the stored chunk, including provenance metadata used
	// for filtered search.
	Chunk domain.Chunk

	// Embedding is the chunk's vector representation.
	Embedding []float32
}

// VectorIndex provides filtered nearest-neighbour search over course
// chunks. Reads must be safe under concurrent ingest: ReplaceCourse is
// atomic from a reader's perspective — a reader sees either the fully
// old or the fully new chunk set for a title, never a partial mix.
type VectorIndex interface {
	// ReplaceCourse atomically swaps all entries stored under the given
	// course title with the new set.
	ReplaceCourse(ctx context.Context, courseTitle string, entries []VectorEntry) error

	// DeleteCourse removes all entries for a course title.
	DeleteCourse(ctx context.Context, courseTitle string) error

	// Search finds the k nearest neighbours to the query vector among
	// entries whose chunk metadata satisfies the filter. Results are
	// ordered by decreasing similarity. An empty index yields an empty
	// slice, not an error.
	Search(ctx context.Context, query []float32, filter domain.SearchFilter, k int) ([]domain.SearchResult, error)

	// Count returns the total number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

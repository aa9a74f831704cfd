// Package memory provides an in-memory vector index using brute-force
// cosine similarity with metadata filtering.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores chunk embeddings grouped by course title. Ingest for a
// title builds a fresh entry slice and swaps it in under the lock, so
// concurrent readers see either the fully-old or fully-new chunk set.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	courses    map[string][]driven.VectorEntry
}

// New creates an empty index for vectors of the given dimension.
func New(dimensions int) *Index {
	return &Index{
		dimensions: dimensions,
		courses:    make(map[string][]driven.VectorEntry),
	}
}

// ReplaceCourse atomically swaps all entries stored under a course title.
func (ix *Index) ReplaceCourse(_ context.Context, courseTitle string, entries []driven.VectorEntry) error {
	fresh := make([]driven.VectorEntry, len(entries))
	for i, e := range entries {
		if ix.dimensions > 0 && len(e.Embedding) != ix.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(e.Embedding), ix.dimensions)
		}
		fresh[i] = e
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.courses[courseTitle] = fresh
	return nil
}

// DeleteCourse removes all entries for a course title.
func (ix *Index) DeleteCourse(_ context.Context, courseTitle string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.courses, courseTitle)
	return nil
}

// Search finds the k nearest neighbours to the query vector among
// entries matching the filter. An empty index, or a filter naming an
// unknown course, yields an empty result.
func (ix *Index) Search(_ context.Context, query []float32, filter domain.SearchFilter, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = 5
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var results []domain.SearchResult
	for title, entries := range ix.courses {
		if filter.CourseTitle != "" && title != filter.CourseTitle {
			continue
		}
		for i := range entries {
			if !filter.Matches(entries[i].Chunk) {
				continue
			}
			results = append(results, domain.SearchResult{
				Chunk: entries[i].Chunk,
				Score: cosineSimilarity(query, entries[i].Embedding),
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}

// Count returns the total number of stored entries.
func (ix *Index) Count(_ context.Context) (int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	total := 0
	for _, entries := range ix.courses {
		total += len(entries)
	}
	return total, nil
}

// Close releases resources.
func (ix *Index) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. Zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

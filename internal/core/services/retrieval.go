package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
	"github.com/lectern-labs/lectern/internal/core/ports/driving"
	"github.com/lectern-labs/lectern/internal/logger"
)

// Ensure RetrievalIndex implements the interface.
var _ driving.RetrievalService = (*RetrievalIndex)(nil)

// RetrievalIndex provides course-aware semantic retrieval. It owns the
// embed-then-search query path and the replace-then-swap ingest path;
// the course title is the sole upsert key.
type RetrievalIndex struct {
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	catalog    driven.CatalogStore
	maxResults int
}

// NewRetrievalIndex creates a retrieval index. maxResults bounds the
// result count when callers pass k <= 0.
func NewRetrievalIndex(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	catalog driven.CatalogStore,
	maxResults int,
) *RetrievalIndex {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &RetrievalIndex{
		embedder:   embedder,
		index:      index,
		catalog:    catalog,
		maxResults: maxResults,
	}
}

// Load rebuilds the in-memory vector index from the catalog store.
// Called once at startup so previously ingested courses are searchable
// without re-embedding.
func (r *RetrievalIndex) Load(ctx context.Context) (int, error) {
	titles, err := r.catalog.ListTitles(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing catalogue: %w", err)
	}

	total := 0
	for _, title := range titles {
		entries, err := r.catalog.GetEntries(ctx, title)
		if err != nil {
			return total, fmt.Errorf("loading %q: %w", title, err)
		}
		if err := r.index.ReplaceCourse(ctx, title, entries); err != nil {
			return total, fmt.Errorf("indexing %q: %w", title, err)
		}
		total += len(entries)
	}

	logger.Debug("Loaded %d courses (%d chunks) from catalogue", len(titles), total)
	return total, nil
}

// Ingest embeds the chunks and stores them under the course title,
// replacing any earlier version of the course. Readers see either the
// fully old or the fully new chunk set, never a mix.
func (r *RetrievalIndex) Ingest(ctx context.Context, course *domain.Course, chunks []domain.Chunk) error {
	if r.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if course == nil || course.Title == "" {
		return fmt.Errorf("%w: course title is required", domain.ErrInvalidInput)
	}

	logger.Section("Course Ingest")
	logger.Debug("Course: %q, chunks: %d", course.Title, len(chunks))
	defer logger.Timing(time.Now(), "ingest %q", course.Title)

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}

	entries := make([]driven.VectorEntry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = driven.VectorEntry{Chunk: chunk, Embedding: embeddings[i]}
	}

	if err := r.catalog.SaveCourse(ctx, course, entries); err != nil {
		return fmt.Errorf("saving course: %w", err)
	}
	if err := r.index.ReplaceCourse(ctx, course.Title, entries); err != nil {
		return fmt.Errorf("indexing course: %w", err)
	}

	logger.Info("Ingested %q: %d chunks", course.Title, len(entries))
	return nil
}

// Search embeds the query and returns the k nearest chunks satisfying
// the filter, ordered by decreasing similarity. An empty index or an
// unmatched filter yields an empty slice, not an error.
func (r *RetrievalIndex) Search(
	ctx context.Context, query string, filter domain.SearchFilter, k int,
) ([]domain.SearchResult, error) {
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	if k <= 0 {
		k = r.maxResults
	}

	logger.Debug("Search: query=%q, course=%q, k=%d", query, filter.CourseTitle, k)
	defer logger.Timing(time.Now(), "search %q", query)

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := r.index.Search(ctx, embedding, filter, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	logger.Debug("Search: %d results", len(results))
	return results, nil
}

// ResolveCourseTitle best-effort matches a partial course name against
// the stored titles: case-insensitive exact match first, then
// substring, then highest token overlap. Returns "" when nothing
// plausibly matches.
func (r *RetrievalIndex) ResolveCourseTitle(ctx context.Context, partial string) (string, error) {
	partial = strings.TrimSpace(partial)
	if partial == "" {
		return "", nil
	}

	titles, err := r.catalog.ListTitles(ctx)
	if err != nil {
		return "", fmt.Errorf("listing catalogue: %w", err)
	}

	lower := strings.ToLower(partial)

	for _, title := range titles {
		if strings.ToLower(title) == lower {
			return title, nil
		}
	}

	for _, title := range titles {
		if strings.Contains(strings.ToLower(title), lower) {
			return title, nil
		}
	}

	// Token overlap fallback, e.g. "MCP course" against
	// "Introduction to MCP Servers".
	queryTokens := strings.Fields(lower)
	best := ""
	bestScore := 0
	for _, title := range titles {
		titleLower := strings.ToLower(title)
		score := 0
		for _, token := range queryTokens {
			if strings.Contains(titleLower, token) {
				score++
			}
		}
		if score > bestScore {
			best = title
			bestScore = score
		}
	}

	return best, nil
}

// Analytics summarises the indexed catalogue.
func (r *RetrievalIndex) Analytics(ctx context.Context) (*domain.CourseAnalytics, error) {
	titles, err := r.catalog.ListTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing catalogue: %w", err)
	}
	return &domain.CourseAnalytics{
		TotalCourses: len(titles),
		CourseTitles: titles,
	}, nil
}

// Outline returns the stored course metadata for an exact title.
func (r *RetrievalIndex) Outline(ctx context.Context, title string) (*domain.Course, error) {
	course, err := r.catalog.GetCourse(ctx, title)
	if err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse removes a course from the catalogue and the index.
func (r *RetrievalIndex) DeleteCourse(ctx context.Context, title string) error {
	if err := r.catalog.DeleteCourse(ctx, title); err != nil {
		return fmt.Errorf("deleting from catalogue: %w", err)
	}
	if err := r.index.DeleteCourse(ctx, title); err != nil {
		return fmt.Errorf("deleting from index: %w", err)
	}
	return nil
}

// Clear removes every course from the catalogue and the index.
func (r *RetrievalIndex) Clear(ctx context.Context) error {
	titles, err := r.catalog.ListTitles(ctx)
	if err != nil {
		return fmt.Errorf("listing catalogue: %w", err)
	}
	if err := r.catalog.Clear(ctx); err != nil {
		return fmt.Errorf("clearing catalogue: %w", err)
	}
	for _, title := range titles {
		if err := r.index.DeleteCourse(ctx, title); err != nil {
			return fmt.Errorf("clearing index: %w", err)
		}
	}
	return nil
}

// HasCourse reports whether an exact title is already indexed.
func (r *RetrievalIndex) HasCourse(ctx context.Context, title string) (bool, error) {
	titles, err := r.catalog.ListTitles(ctx)
	if err != nil {
		return false, fmt.Errorf("listing catalogue: %w", err)
	}
	for _, t := range titles {
		if t == title {
			return true, nil
		}
	}
	return false, nil
}

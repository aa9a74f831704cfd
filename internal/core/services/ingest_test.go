package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storagemem "github.com/lectern-labs/lectern/internal/adapters/driven/storage/memory"
	vectormem "github.com/lectern-labs/lectern/internal/adapters/driven/vectorindex/memory"
	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/normalisers/coursedoc"
	"github.com/lectern-labs/lectern/internal/postprocessors/chunker"
)

const sampleCourseDoc = `Course Title: Databases 101
Course Link: https://example.com/db
Course Instructor: Ada Lovelace

Lesson 1: The Relational Model
A database stores rows in tables. Queries select rows by predicate.

Lesson 2: Indexing
An index speeds up lookups. B-trees keep lookups balanced.
`

func newIngestFixture(t *testing.T) (*IngestService, *RetrievalIndex) {
	t.Helper()
	retrieval := NewRetrievalIndex(&fakeEmbedder{}, vectormem.New(3), storagemem.NewCatalogStore(), 5)
	proc, err := chunker.New(120, 20)
	require.NoError(t, err)
	return NewIngestService(coursedoc.New(), proc, retrieval), retrieval
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestIngestFile(t *testing.T) {
	ingest, retrieval := newIngestFixture(t)
	ctx := context.Background()

	path := writeDoc(t, t.TempDir(), "databases.txt", sampleCourseDoc)

	course, chunks, err := ingest.IngestFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "Databases 101", course.Title)
	assert.Equal(t, "Ada Lovelace", course.Instructor)
	assert.Equal(t, 2, course.LessonCount())
	assert.Positive(t, chunks)

	// Ingested content is searchable with lesson attribution.
	results, err := retrieval.Search(ctx, "database", domain.SearchFilter{}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Databases 101", results[0].Chunk.CourseTitle)
}

func TestIngestFileMissing(t *testing.T) {
	ingest, _ := newIngestFixture(t)

	_, _, err := ingest.IngestFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestIngestFolder(t *testing.T) {
	ingest, retrieval := newIngestFixture(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeDoc(t, dir, "databases.txt", sampleCourseDoc)
	writeDoc(t, dir, "networks.md", "Course Title: Networks 101\n\nLesson 1: Routing\nA network routes packets.\n")
	writeDoc(t, dir, "notes.pdf", "not a course document")

	courses, chunks, err := ingest.IngestFolder(ctx, dir, false)
	require.NoError(t, err)
	assert.Equal(t, 2, courses)
	assert.Positive(t, chunks)

	analytics, err := retrieval.Analytics(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Databases 101", "Networks 101"}, analytics.CourseTitles)
}

func TestIngestFolderSkipsExisting(t *testing.T) {
	ingest, _ := newIngestFixture(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeDoc(t, dir, "databases.txt", sampleCourseDoc)

	courses, _, err := ingest.IngestFolder(ctx, dir, false)
	require.NoError(t, err)
	assert.Equal(t, 1, courses)

	// Second pass over the same folder adds nothing.
	courses, chunks, err := ingest.IngestFolder(ctx, dir, false)
	require.NoError(t, err)
	assert.Equal(t, 0, courses)
	assert.Equal(t, 0, chunks)
}

func TestIngestFolderClearExisting(t *testing.T) {
	ingest, retrieval := newIngestFixture(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeDoc(t, dir, "databases.txt", sampleCourseDoc)
	_, _, err := ingest.IngestFolder(ctx, dir, false)
	require.NoError(t, err)

	// With clearExisting the same course is re-ingested from scratch.
	courses, _, err := ingest.IngestFolder(ctx, dir, true)
	require.NoError(t, err)
	assert.Equal(t, 1, courses)

	analytics, err := retrieval.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, analytics.TotalCourses)
}

// Default chunking parameters (800/100) against a document with lesson
// markers at offsets 0 and 500: the first chunk crosses the lesson
// boundary and still belongs to lesson 1, because attribution follows
// the chunk's start offset.
func TestIngestDefaultChunkingLessonAttribution(t *testing.T) {
	proc, err := chunker.New(chunker.DefaultChunkSize, chunker.DefaultOverlap)
	require.NoError(t, err)
	ingest := NewIngestService(coursedoc.New(), proc, nil)

	// "Lesson 1: Foundations\n" is 22 bytes; padding brings the second
	// marker to offset 500 exactly. The only sentence terminator inside
	// the first 800-byte window sits at offset 779, so the first chunk
	// ends at 780 and the second starts at 680 after the 100-byte
	// overlap.
	doc := "Lesson 1: Foundations\n" +
		strings.Repeat("a", 477) + "\n" +
		"Lesson 2: Indexes\n" +
		strings.Repeat("b", 261) + ". " +
		strings.Repeat("c", 300)
	require.Equal(t, 500, strings.Index(doc, "Lesson 2:"))

	path := writeDoc(t, t.TempDir(), "indexing_deep_dive.txt", doc)

	course, chunks, err := ingest.prepare(path)
	require.NoError(t, err)
	assert.Equal(t, 2, course.LessonCount())
	require.Len(t, chunks, 2)

	// First chunk spans the lesson-2 marker but starts at offset 0.
	assert.Equal(t, doc[:780], chunks[0].Content)
	assert.Contains(t, chunks[0].Content, "Lesson 2: Indexes")
	require.NotNil(t, chunks[0].LessonNumber)
	assert.Equal(t, 1, *chunks[0].LessonNumber)

	// Second chunk starts at 680, inside lesson 2's section.
	assert.Equal(t, doc[680:], chunks[1].Content)
	require.NotNil(t, chunks[1].LessonNumber)
	assert.Equal(t, 2, *chunks[1].LessonNumber)

	// Adjacent chunks share the 100-byte overlap window.
	assert.Equal(t, chunks[0].Content[len(chunks[0].Content)-100:], chunks[1].Content[:100])
}

func TestIngestLessonAttribution(t *testing.T) {
	ingest, retrieval := newIngestFixture(t)
	ctx := context.Background()

	path := writeDoc(t, t.TempDir(), "databases.txt", sampleCourseDoc)
	_, _, err := ingest.IngestFile(ctx, path)
	require.NoError(t, err)

	lesson := 2
	results, err := retrieval.Search(ctx, "database index",
		domain.SearchFilter{LessonNumber: &lesson}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, result := range results {
		require.NotNil(t, result.Chunk.LessonNumber)
		assert.Equal(t, 2, *result.Chunk.LessonNumber)
	}
}

package memory

import (
	"context"
	"testing"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries(course string, n int) []driven.VectorEntry {
	entries := make([]driven.VectorEntry, n)
	for i := range entries {
		entries[i] = driven.VectorEntry{
			Chunk: domain.Chunk{
				ID:          course + "-chunk",
				CourseTitle: course,
				Position:    i,
			},
			Embedding: []float32{1, 0},
		}
	}
	return entries
}

func TestCatalogStore_SaveAndGet(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	course := &domain.Course{
		Title:      "Intro to X",
		Instructor: "Ada Lovelace",
		Lessons:    []domain.Lesson{{Number: 1, Title: "Basics"}},
	}
	err := store.SaveCourse(ctx, course, testEntries("Intro to X", 3))
	require.NoError(t, err)

	saved, err := store.GetCourse(ctx, "Intro to X")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", saved.Instructor)
	assert.Len(t, saved.Lessons, 1)

	entries, err := store.GetEntries(ctx, "Intro to X")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestCatalogStore_GetCourse_NotFound(t *testing.T) {
	store := NewCatalogStore()

	course, err := store.GetCourse(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, course)
}

func TestCatalogStore_SaveCourse_ReplacesByTitle(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	course := &domain.Course{Title: "Intro to X"}
	require.NoError(t, store.SaveCourse(ctx, course, testEntries("Intro to X", 5)))
	require.NoError(t, store.SaveCourse(ctx, course, testEntries("Intro to X", 2)))

	entries, err := store.GetEntries(ctx, "Intro to X")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	titles, err := store.ListTitles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Intro to X"}, titles)
}

func TestCatalogStore_ListTitles_InsertionOrder(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	require.NoError(t, store.SaveCourse(ctx, &domain.Course{Title: "B Course"}, nil))
	require.NoError(t, store.SaveCourse(ctx, &domain.Course{Title: "A Course"}, nil))

	titles, err := store.ListTitles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B Course", "A Course"}, titles)
}

func TestCatalogStore_DeleteCourse(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	require.NoError(t, store.SaveCourse(ctx, &domain.Course{Title: "Intro to X"}, testEntries("Intro to X", 1)))
	require.NoError(t, store.DeleteCourse(ctx, "Intro to X"))

	_, err := store.GetCourse(ctx, "Intro to X")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	titles, err := store.ListTitles(ctx)
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestCatalogStore_Clear(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	require.NoError(t, store.SaveCourse(ctx, &domain.Course{Title: "One"}, nil))
	require.NoError(t, store.SaveCourse(ctx, &domain.Course{Title: "Two"}, nil))
	require.NoError(t, store.Clear(ctx))

	titles, err := store.ListTitles(ctx)
	require.NoError(t, err)
	assert.Empty(t, titles)
}

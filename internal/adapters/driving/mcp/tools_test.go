package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-labs/lectern/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()
	lessonThree := 3

	t.Run("returns search results", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{
			results: []domain.SearchResult{
				{
					Chunk: domain.Chunk{
						CourseTitle:  "Building Towards Computer Use",
						LessonNumber: &lessonThree,
						Content:      "Agents call tools in a loop",
					},
					Score: 0.95,
				},
			},
		}

		ports := &Ports{Retrieval: mockRetrieval}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "tool loop", Limit: 10}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "Building Towards Computer Use", output.Results[0].CourseTitle)
		assert.Equal(t, "Building Towards Computer Use - Lesson 3", output.Results[0].Source)
		assert.Equal(t, 0.95, output.Results[0].Score)
		assert.Equal(t, "Agents call tools in a loop", output.Results[0].Content)
		assert.Equal(t, "tool loop", mockRetrieval.gotQuery)
		assert.Equal(t, 10, mockRetrieval.gotK)
	})

	t.Run("default limit is 5", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{}
		ports := &Ports{Retrieval: mockRetrieval}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "test", Limit: 0}
		_, _, err = server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 5, mockRetrieval.gotK)
	})

	t.Run("resolves course name into filter", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{resolved: "Building Towards Computer Use"}
		ports := &Ports{Retrieval: mockRetrieval}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "test", CourseName: "computer use", LessonNumber: 3}
		_, _, err = server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "Building Towards Computer Use", mockRetrieval.gotFilter.CourseTitle)
		require.NotNil(t, mockRetrieval.gotFilter.LessonNumber)
		assert.Equal(t, 3, *mockRetrieval.gotFilter.LessonNumber)
	})

	t.Run("unmatched course name returns error", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{resolved: ""}
		ports := &Ports{Retrieval: mockRetrieval}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "test", CourseName: "no such course"}
		_, _, err = server.handleSearch(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no such course")
	})

	t.Run("search error is propagated", func(t *testing.T) {
		wantErr := errors.New("index unavailable")
		mockRetrieval := &mockRetrievalService{err: wantErr}
		ports := &Ports{Retrieval: mockRetrieval}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "test"}
		_, _, err = server.handleSearch(ctx, nil, input)

		assert.ErrorIs(t, err, wantErr)
	})
}

func TestServer_handleOutline(t *testing.T) {
	ctx := context.Background()

	t.Run("returns course outline", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{
			resolved: "Building Towards Computer Use",
			course: &domain.Course{
				Title:      "Building Towards Computer Use",
				Link:       "https://example.com/course",
				Instructor: "Colt Steele",
				Lessons: []domain.Lesson{
					{Number: 0, Title: "Introduction"},
					{Number: 1, Title: "Tool Use", Link: "https://example.com/lesson-1"},
				},
			},
		}

		ports := &Ports{Retrieval: mockRetrieval}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := OutlineInput{CourseName: "computer use"}
		_, output, err := server.handleOutline(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "Building Towards Computer Use", output.CourseTitle)
		assert.Equal(t, "Colt Steele", output.Instructor)
		assert.Equal(t, 2, output.LessonCount)
		require.Len(t, output.Lessons, 2)
		assert.Equal(t, "Introduction", output.Lessons[0].Title)
		assert.Equal(t, "https://example.com/lesson-1", output.Lessons[1].Link)
	})

	t.Run("unmatched course name returns error", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{resolved: ""}
		ports := &Ports{Retrieval: mockRetrieval}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := OutlineInput{CourseName: "unknown"}
		_, _, err = server.handleOutline(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown")
	})
}

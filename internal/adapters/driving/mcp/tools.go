package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-labs/lectern/internal/core/domain"
)

// SearchInput is the input schema for the course-content search tool.
type SearchInput struct {
	Query        string `json:"query" jsonschema:"what to search for in the course content"`
	CourseName   string `json:"course_name,omitempty" jsonschema:"course title to search within, partial matches are resolved"`
	LessonNumber int    `json:"lesson_number,omitempty" jsonschema:"restrict results to one lesson number"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the course-content search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	CourseTitle  string  `json:"course_title"`
	LessonNumber *int    `json:"lesson_number,omitempty"`
	Source       string  `json:"source"`
	Score        float64 `json:"score"`
	Content      string  `json:"content"`
}

// OutlineInput is the input schema for the course-outline tool.
type OutlineInput struct {
	CourseName string `json:"course_name" jsonschema:"course title to look up, partial matches are resolved"`
}

// OutlineOutput is the output schema for the course-outline tool.
type OutlineOutput struct {
	CourseTitle string         `json:"course_title"`
	CourseLink  string         `json:"course_link,omitempty"`
	Instructor  string         `json:"instructor,omitempty"`
	LessonCount int            `json:"lesson_count"`
	Lessons     []LessonOutput `json:"lessons"`
}

// LessonOutput represents one lesson in a course outline.
type LessonOutput struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_course_content",
		Description: "Search indexed course materials, optionally within one course or lesson",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_course_outline",
		Description: "Get the lesson list and metadata for one course",
	}, s.handleOutline)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	filter := domain.SearchFilter{}
	if input.CourseName != "" {
		title, err := s.ports.Retrieval.ResolveCourseTitle(ctx, input.CourseName)
		if err != nil {
			return nil, SearchOutput{}, err
		}
		if title == "" {
			return nil, SearchOutput{}, fmt.Errorf("no course found matching %q", input.CourseName)
		}
		filter.CourseTitle = title
	}
	if input.LessonNumber > 0 {
		lesson := input.LessonNumber
		filter.LessonNumber = &lesson
	}

	results, err := s.ports.Retrieval.Search(ctx, input.Query, filter, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		chunk := results[i].Chunk
		output.Results[i] = SearchResultOutput{
			CourseTitle:  chunk.CourseTitle,
			LessonNumber: chunk.LessonNumber,
			Source:       chunk.SourceLabel(),
			Score:        results[i].Score,
			Content:      chunk.Content,
		}
	}

	return nil, output, nil
}

// handleOutline handles the course-outline tool invocation.
func (s *Server) handleOutline(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OutlineInput,
) (*mcp.CallToolResult, OutlineOutput, error) {
	title, err := s.ports.Retrieval.ResolveCourseTitle(ctx, input.CourseName)
	if err != nil {
		return nil, OutlineOutput{}, err
	}
	if title == "" {
		return nil, OutlineOutput{}, fmt.Errorf("no course found matching %q", input.CourseName)
	}

	course, err := s.ports.Retrieval.Outline(ctx, title)
	if err != nil {
		return nil, OutlineOutput{}, err
	}

	output := OutlineOutput{
		CourseTitle: course.Title,
		CourseLink:  course.Link,
		Instructor:  course.Instructor,
		LessonCount: course.LessonCount(),
		Lessons:     make([]LessonOutput, len(course.Lessons)),
	}
	for i, lesson := range course.Lessons {
		output.Lessons[i] = LessonOutput{
			Number: lesson.Number,
			Title:  lesson.Title,
			Link:   lesson.Link,
		}
	}

	return nil, output, nil
}

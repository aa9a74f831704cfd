package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
	"github.com/lectern-labs/lectern/internal/core/ports/driving"
	"github.com/lectern-labs/lectern/internal/logger"
)

// Ensure SearchTool implements the interface.
var _ Tool = (*SearchTool)(nil)

// SearchToolName is the registered name of the course search tool.
const SearchToolName = "search_course_content"

// SearchTool lets the model search indexed course materials with
// optional course and lesson filtering. Each invocation returns a
// fresh ToolResult; nothing is accumulated between calls.
type SearchTool struct {
	retrieval  driving.RetrievalService
	maxResults int
}

// NewSearchTool creates the course search tool.
func NewSearchTool(retrieval driving.RetrievalService, maxResults int) *SearchTool {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &SearchTool{retrieval: retrieval, maxResults: maxResults}
}

// Schema describes the tool in the provider-neutral shape.
func (t *SearchTool) Schema() driven.ToolSchema {
	return driven.ToolSchema{
		Name:        SearchToolName,
		Description: "Search course materials for content relevant to a question, with optional course and lesson filtering",
		Parameters: []driven.ToolParam{
			{
				Name:        "query",
				Type:        "string",
				Description: "What to search for in the course content",
				Required:    true,
			},
			{
				Name:        "course_name",
				Type:        "string",
				Description: "Course title, full or partial (e.g. 'MCP', 'Introduction')",
			},
			{
				Name:        "lesson_number",
				Type:        "integer",
				Description: "Specific lesson number to search within (e.g. 3)",
			},
		},
	}
}

// Execute runs one search and formats the hits for the model.
func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (*domain.ToolResult, error) {
	query, _ := args["query"].(string)
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	var filter domain.SearchFilter

	if partial, _ := args["course_name"].(string); strings.TrimSpace(partial) != "" {
		resolved, err := t.retrieval.ResolveCourseTitle(ctx, partial)
		if err != nil {
			return nil, fmt.Errorf("resolving course name: %w", err)
		}
		if resolved == "" {
			return &domain.ToolResult{
				Text: fmt.Sprintf("No course found matching '%s'.", strings.TrimSpace(partial)),
			}, nil
		}
		filter.CourseTitle = resolved
	}

	if n, ok := lessonNumberArg(args["lesson_number"]); ok {
		filter.LessonNumber = &n
	}

	results, err := t.retrieval.Search(ctx, query, filter, t.maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching courses: %w", err)
	}

	logger.Debug("Search tool: %d results for %q", len(results), query)

	if len(results) == 0 {
		return &domain.ToolResult{Text: emptySearchText(filter)}, nil
	}

	var sb strings.Builder
	sources := make([]string, 0, len(results))
	seen := make(map[string]bool)

	for i, result := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		label := result.Chunk.SourceLabel()
		sb.WriteString("[" + label + "]\n")
		sb.WriteString(result.Chunk.Content)

		if !seen[label] {
			seen[label] = true
			sources = append(sources, label)
		}
	}

	return &domain.ToolResult{Text: sb.String(), Sources: sources}, nil
}

// lessonNumberArg accepts the number in any of the shapes a JSON
// decoder or provider SDK hands it over in.
func lessonNumberArg(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// emptySearchText builds a readable no-results message that names the
// applied filters, so the model can tell the user what was searched.
func emptySearchText(filter domain.SearchFilter) string {
	var sb strings.Builder
	sb.WriteString("No relevant content found")
	if filter.CourseTitle != "" {
		sb.WriteString(" in course '" + filter.CourseTitle + "'")
	}
	if filter.LessonNumber != nil {
		fmt.Fprintf(&sb, " in lesson %d", *filter.LessonNumber)
	}
	sb.WriteString(".")
	return sb.String()
}

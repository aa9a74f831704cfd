package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Lectern resources.
	uriScheme = "lectern://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing indexed courses.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "courses",
		Name:        "courses",
		Description: "List of all indexed course titles",
		MIMEType:    "application/json",
	}, s.handleCoursesResource)

	// Template for course outlines.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "courses/{title}/outline",
		Name:        "course-outline",
		Description: "Lesson list and metadata for a specific course",
		MIMEType:    "application/json",
	}, s.handleOutlineResource)
}

// handleCoursesResource returns the list of indexed course titles.
func (s *Server) handleCoursesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	analytics, err := s.ports.Retrieval.Analytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}

	type coursesInfo struct {
		TotalCourses int      `json:"total_courses"`
		CourseTitles []string `json:"course_titles"`
	}

	data, err := json.MarshalIndent(coursesInfo{
		TotalCourses: analytics.TotalCourses,
		CourseTitles: analytics.CourseTitles,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling courses: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleOutlineResource returns the outline for a specific course.
func (s *Server) handleOutlineResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract the title from URI: lectern://courses/{title}/outline
	title := extractCourseTitle(req.Params.URI)
	if title == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	resolved, err := s.ports.Retrieval.ResolveCourseTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("resolving course title: %w", err)
	}
	if resolved == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	course, err := s.ports.Retrieval.Outline(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("getting course outline: %w", err)
	}

	type lessonInfo struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Link   string `json:"link,omitempty"`
	}
	type outlineInfo struct {
		Title      string       `json:"title"`
		Link       string       `json:"link,omitempty"`
		Instructor string       `json:"instructor,omitempty"`
		Lessons    []lessonInfo `json:"lessons"`
	}

	info := outlineInfo{
		Title:      course.Title,
		Link:       course.Link,
		Instructor: course.Instructor,
		Lessons:    make([]lessonInfo, len(course.Lessons)),
	}
	for i, lesson := range course.Lessons {
		info.Lessons[i] = lessonInfo{
			Number: lesson.Number,
			Title:  lesson.Title,
			Link:   lesson.Link,
		}
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling outline: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCourseTitle extracts the course title from a URI like
// lectern://courses/{title}/outline. Titles are percent-encoded in the
// URI path; the returned value is decoded.
func extractCourseTitle(uri string) string {
	const prefix = uriScheme + "courses/"
	const suffix = "/outline"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	encoded := strings.TrimSuffix(uri, suffix)
	title, err := url.PathUnescape(encoded)
	if err != nil {
		return ""
	}
	return title
}

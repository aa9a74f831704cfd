package cli

import (
	"context"

	"github.com/lectern-labs/lectern/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer *domain.Answer
	err    error
}

func (m *mockChatService) Answer(_ context.Context, query, sessionID string) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Text: "mock answer to " + query, SessionID: sessionID}, nil
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results   []domain.SearchResult
	resolved  string
	analytics *domain.CourseAnalytics
	course    *domain.Course
	err       error
}

func (m *mockRetrievalService) Search(
	_ context.Context,
	_ string,
	_ domain.SearchFilter,
	_ int,
) ([]domain.SearchResult, error) {
	return m.results, m.err
}

func (m *mockRetrievalService) ResolveCourseTitle(_ context.Context, _ string) (string, error) {
	return m.resolved, m.err
}

func (m *mockRetrievalService) Analytics(_ context.Context) (*domain.CourseAnalytics, error) {
	if m.analytics == nil {
		return &domain.CourseAnalytics{}, m.err
	}
	return m.analytics, m.err
}

func (m *mockRetrievalService) Outline(_ context.Context, _ string) (*domain.Course, error) {
	if m.course == nil && m.err == nil {
		return nil, domain.ErrNotFound
	}
	return m.course, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	course  *domain.Course
	chunks  int
	courses int
	err     error
}

func (m *mockIngestService) IngestFile(_ context.Context, _ string) (*domain.Course, int, error) {
	return m.course, m.chunks, m.err
}

func (m *mockIngestService) IngestFolder(_ context.Context, _ string, _ bool) (int, int, error) {
	return m.courses, m.chunks, m.err
}

// setupTestServices installs mock services so commands skip the real
// wiring. The returned cleanup restores the previous services.
func setupTestServices() func() {
	oldChat := chatService
	oldRetrieval := retrievalService
	oldIngest := ingestService

	chatService = &mockChatService{}
	retrievalService = &mockRetrievalService{
		results: []domain.SearchResult{
			{
				Chunk: domain.Chunk{
					CourseTitle: "Mock Course",
					Content:     "mock chunk content",
				},
				Score: 0.9,
			},
		},
		resolved: "Mock Course",
		analytics: &domain.CourseAnalytics{
			TotalCourses: 1,
			CourseTitles: []string{"Mock Course"},
		},
		course: &domain.Course{
			Title:   "Mock Course",
			Lessons: []domain.Lesson{{Number: 1, Title: "Mock Lesson"}},
		},
	}
	ingestService = &mockIngestService{
		course:  &domain.Course{Title: "Mock Course"},
		courses: 1,
		chunks:  3,
	}

	return func() {
		chatService = oldChat
		retrievalService = oldRetrieval
		ingestService = oldIngest
	}
}

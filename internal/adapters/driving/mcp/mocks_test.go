package mcp

import (
	"context"

	"github.com/lectern-labs/lectern/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results   []domain.SearchResult
	resolved  string
	analytics *domain.CourseAnalytics
	course    *domain.Course
	err       error

	gotQuery  string
	gotFilter domain.SearchFilter
	gotK      int
}

func (m *mockRetrievalService) Search(
	_ context.Context,
	query string,
	filter domain.SearchFilter,
	k int,
) ([]domain.SearchResult, error) {
	m.gotQuery = query
	m.gotFilter = filter
	m.gotK = k
	return m.results, m.err
}

func (m *mockRetrievalService) ResolveCourseTitle(_ context.Context, _ string) (string, error) {
	return m.resolved, m.err
}

func (m *mockRetrievalService) Analytics(_ context.Context) (*domain.CourseAnalytics, error) {
	return m.analytics, m.err
}

func (m *mockRetrievalService) Outline(_ context.Context, _ string) (*domain.Course, error) {
	if m.course == nil && m.err == nil {
		return nil, domain.ErrNotFound
	}
	return m.course, m.err
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer *domain.Answer
	err    error
}

func (m *mockChatService) Answer(_ context.Context, _, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

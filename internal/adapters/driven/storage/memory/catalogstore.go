// Package memory provides in-memory implementations of the storage
// ports, used in tests and for ephemeral runs without persistence.
package memory

import (
	"context"
	"sync"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore is an in-memory implementation of driven.CatalogStore.
type CatalogStore struct {
	mu      sync.RWMutex
	courses map[string]domain.Course
	entries map[string][]driven.VectorEntry
	order   []string
}

// NewCatalogStore creates a new in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		courses: make(map[string]domain.Course),
		entries: make(map[string][]driven.VectorEntry),
	}
}

// SaveCourse stores a course and its entries, replacing any prior
// version with the same title.
func (s *CatalogStore) SaveCourse(_ context.Context, course *domain.Course, entries []driven.VectorEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.courses[course.Title]; !exists {
		s.order = append(s.order, course.Title)
	}
	s.courses[course.Title] = *course
	s.entries[course.Title] = append([]driven.VectorEntry(nil), entries...)
	return nil
}

// GetCourse retrieves a course by exact title.
func (s *CatalogStore) GetCourse(_ context.Context, title string) (*domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[title]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &course, nil
}

// ListTitles returns stored course titles in insertion order.
func (s *CatalogStore) ListTitles(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...), nil
}

// GetEntries returns the stored chunk entries for a course title.
func (s *CatalogStore) GetEntries(_ context.Context, title string) ([]driven.VectorEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, ok := s.entries[title]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]driven.VectorEntry(nil), entries...), nil
}

// DeleteCourse removes a course and its entries.
func (s *CatalogStore) DeleteCourse(_ context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.courses, title)
	delete(s.entries, title)
	for i, t := range s.order {
		if t == title {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear removes all stored courses and entries.
func (s *CatalogStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = make(map[string]domain.Course)
	s.entries = make(map[string][]driven.VectorEntry)
	s.order = nil
	return nil
}

// Close releases resources.
func (s *CatalogStore) Close() error {
	return nil
}

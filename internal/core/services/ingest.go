package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driving"
	"github.com/lectern-labs/lectern/internal/logger"
	"github.com/lectern-labs/lectern/internal/normalisers/coursedoc"
	"github.com/lectern-labs/lectern/internal/postprocessors/chunker"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// ingestableExtensions are the file types treated as course documents.
var ingestableExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// IngestService turns course documents on disk into indexed chunks:
// extract course metadata and lesson spans, chunk the body, stamp each
// chunk with the lesson containing its start offset, then hand the
// batch to the retrieval index.
type IngestService struct {
	extractor *coursedoc.Extractor
	chunker   *chunker.Processor
	retrieval *RetrievalIndex
}

// NewIngestService creates the ingest pipeline.
func NewIngestService(
	extractor *coursedoc.Extractor,
	proc *chunker.Processor,
	retrieval *RetrievalIndex,
) *IngestService {
	return &IngestService{
		extractor: extractor,
		chunker:   proc,
		retrieval: retrieval,
	}
}

// IngestFile processes a single course document.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*domain.Course, int, error) {
	course, chunks, err := s.prepare(path)
	if err != nil {
		return nil, 0, err
	}
	if err := s.retrieval.Ingest(ctx, course, chunks); err != nil {
		return nil, 0, err
	}
	return course, len(chunks), nil
}

// IngestFolder processes every course document in a folder.
// Already-indexed titles are skipped unless clearExisting is set, so
// repeated startups do not re-embed unchanged material.
func (s *IngestService) IngestFolder(ctx context.Context, dir string, clearExisting bool) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("reading folder: %w", err)
	}

	if clearExisting {
		logger.Info("Clearing existing catalogue before ingest")
		if err := s.retrieval.Clear(ctx); err != nil {
			return 0, 0, fmt.Errorf("clearing catalogue: %w", err)
		}
	}

	courses, chunks := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !ingestableExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		course, docChunks, err := s.prepare(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", entry.Name(), err)
			continue
		}

		exists, err := s.retrieval.HasCourse(ctx, course.Title)
		if err != nil {
			return courses, chunks, err
		}
		if exists {
			logger.Debug("Skipping %q: already indexed", course.Title)
			continue
		}

		if err := s.retrieval.Ingest(ctx, course, docChunks); err != nil {
			return courses, chunks, fmt.Errorf("ingesting %s: %w", entry.Name(), err)
		}
		courses++
		chunks += len(docChunks)
	}

	logger.Info("Folder ingest complete: %d courses, %d chunks", courses, chunks)
	return courses, chunks, nil
}

// prepare reads, extracts and chunks one document without touching the
// index.
func (s *IngestService) prepare(path string) (*domain.Course, []domain.Chunk, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading document: %w", err)
	}

	extraction, err := s.extractor.Extract(string(content), filepath.Base(path))
	if err != nil {
		return nil, nil, fmt.Errorf("extracting course: %w", err)
	}

	segments, err := s.chunker.Chunk(string(content))
	if err != nil {
		return nil, nil, fmt.Errorf("chunking document: %w", err)
	}

	chunks := make([]domain.Chunk, len(segments))
	for i, seg := range segments {
		chunks[i] = domain.Chunk{
			ID:           uuid.New().String(),
			CourseTitle:  extraction.Course.Title,
			LessonNumber: extraction.LessonForOffset(seg.Start),
			Content:      seg.Text,
			Position:     seg.Position,
		}
	}

	return &extraction.Course, chunks, nil
}

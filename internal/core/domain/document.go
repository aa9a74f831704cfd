package domain

import (
	"fmt"
	"time"
)

// Document represents a raw course document before extraction and chunking.
// It is immutable once ingested; re-ingesting a document with the same
// course title supersedes the earlier version rather than mutating it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// FileName is the originating file name, used as a title fallback
	// when the document carries no header block.
	FileName string

	// Content is the full raw text of the document.
	Content string

	// IngestedAt is when the document was processed.
	IngestedAt time.Time
}

// Lesson is a numbered section within a course document.
type Lesson struct {
	// Number is the lesson number as written in the document.
	Number int

	// Title is the lesson title.
	Title string

	// Link is an optional URL for the lesson.
	Link string
}

// Course holds the course-level metadata extracted from a document.
// Title is the unique key: ingesting a document whose extracted title
// matches a stored course replaces that course's chunks entirely.
type Course struct {
	// Title is the course title and primary dedup key.
	Title string

	// Link is an optional URL for the course.
	Link string

	// Instructor is the course instructor, empty when the header
	// block does not name one.
	Instructor string

	// Lessons are recorded in first-seen document order, not sorted.
	// A duplicate lesson number overwrites the earlier title.
	Lessons []Lesson
}

// LessonCount returns the number of lessons in the course.
func (c Course) LessonCount() int {
	return len(c.Lessons)
}

// Chunk represents a searchable unit of course text with provenance.
// Chunks are created in a single batch per document ingest and are
// immutable afterwards.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// CourseTitle is the title of the course the chunk belongs to.
	CourseTitle string

	// LessonNumber is the lesson whose section contains the chunk's
	// start offset. Nil for text before the first lesson marker.
	LessonNumber *int

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the source document.
	Position int
}

// SourceLabel returns the human-readable provenance string surfaced
// alongside answers, e.g. "Building Towards Computer Use - Lesson 4".
func (c Chunk) SourceLabel() string {
	if c.LessonNumber == nil {
		return c.CourseTitle
	}
	return fmt.Sprintf("%s - Lesson %d", c.CourseTitle, *c.LessonNumber)
}

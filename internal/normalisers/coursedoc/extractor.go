// Package coursedoc extracts course and lesson structure from course
// document text.
//
// A course document carries an optional header block followed by
// lesson-delimited sections:
//
//	Course Title: Building Towards Computer Use
//	Course Link: https://example.com/course
//	Course Instructor: Colt Steele
//
//	Lesson 0: Introduction
//	Lesson Link: https://example.com/lesson0
//	...lesson content...
//
//	Lesson 1: Getting Started
//	...
package coursedoc

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/lectern-labs/lectern/internal/core/domain"
)

// headerScanLimit is how many leading lines are scanned for the
// course header block.
const headerScanLimit = 4

var lessonMarker = regexp.MustCompile(`(?m)^Lesson\s+(\d+)\s*:\s*(.*)$`)

// LessonSpan records where a lesson's section begins in the document
// text, so chunks can be attributed to lessons by start offset.
type LessonSpan struct {
	// Number is the lesson number.
	Number int

	// Start is the byte offset of the lesson marker line.
	Start int

	// ContentStart is the byte offset just past the marker (and an
	// optional Lesson Link line), where the section's prose begins.
	ContentStart int
}

// Extraction is the result of parsing one course document.
type Extraction struct {
	// Course is the extracted metadata. Title is never empty: when
	// the header block is missing it is derived from the file name.
	Course domain.Course

	// Spans locate each lesson's section, in first-seen order.
	Spans []LessonSpan
}

// LessonForOffset returns the lesson number whose section contains the
// given offset, or nil for text before the first lesson marker.
// Attribution is by section start: a chunk belongs to the lesson whose
// span contains the chunk's start offset, even when its overlap window
// crosses into the next lesson.
func (e *Extraction) LessonForOffset(offset int) *int {
	var current *int
	for i := range e.Spans {
		if e.Spans[i].Start > offset {
			break
		}
		current = &e.Spans[i].Number
	}
	return current
}

// Extractor parses course documents into course metadata and lesson
// spans.
type Extractor struct{}

// New creates a course document extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses document text. The filename hint supplies a fallback
// title when the header block is absent. Duplicate lesson numbers are
// not an error: the last-seen title wins, and the span list keeps both
// sections so offset attribution still works.
func (x *Extractor) Extract(text, filenameHint string) (*Extraction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidInput
	}

	course := domain.Course{
		Title: titleFromFilename(filenameHint),
	}

	// Header block: title/link/instructor markers in the leading lines.
	lines := strings.Split(text, "\n")
	limit := headerScanLimit
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		switch {
		case strings.HasPrefix(line, "Course Title:"):
			if t := strings.TrimSpace(strings.TrimPrefix(line, "Course Title:")); t != "" {
				course.Title = t
			}
		case strings.HasPrefix(line, "Course Link:"):
			course.Link = strings.TrimSpace(strings.TrimPrefix(line, "Course Link:"))
		case strings.HasPrefix(line, "Course Instructor:"):
			course.Instructor = strings.TrimSpace(strings.TrimPrefix(line, "Course Instructor:"))
		}
	}

	extraction := &Extraction{Course: course}

	// Body scan for lesson delimiters, recorded in first-seen order.
	matches := lessonMarker.FindAllStringSubmatchIndex(text, -1)
	byNumber := make(map[int]int) // lesson number -> index in Lessons
	for _, m := range matches {
		number, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		title := strings.TrimSpace(text[m[4]:m[5]])

		contentStart := m[1]
		if contentStart < len(text) && text[contentStart] == '\n' {
			contentStart++
		}
		link, afterLink := lessonLink(text, contentStart)
		if link != "" {
			contentStart = afterLink
		}

		if i, seen := byNumber[number]; seen {
			// Duplicate number: last-seen title overwrites the earlier
			// one, keeping the lesson's first-seen list position.
			extraction.Course.Lessons[i].Title = title
			if link != "" {
				extraction.Course.Lessons[i].Link = link
			}
		} else {
			byNumber[number] = len(extraction.Course.Lessons)
			extraction.Course.Lessons = append(extraction.Course.Lessons, domain.Lesson{
				Number: number,
				Title:  title,
				Link:   link,
			})
		}

		extraction.Spans = append(extraction.Spans, LessonSpan{
			Number:       number,
			Start:        m[0],
			ContentStart: contentStart,
		})
	}

	return extraction, nil
}

// lessonLink reads an optional "Lesson Link:" line at the given offset.
// Returns the link and the offset just past the line, or "" when the
// line is absent.
func lessonLink(text string, offset int) (string, int) {
	const prefix = "Lesson Link:"
	if !strings.HasPrefix(text[offset:], prefix) {
		return "", offset
	}
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		end = len(text) - offset
	}
	link := strings.TrimSpace(text[offset+len(prefix) : offset+end])
	after := offset + end
	if after < len(text) {
		after++
	}
	return link, after
}

// titleFromFilename derives a course title from a file name by
// stripping the extension and replacing separators with spaces.
func titleFromFilename(hint string) string {
	base := filepath.Base(hint)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}

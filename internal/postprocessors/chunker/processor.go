// Package chunker provides a sentence-aware text chunking processor.
package chunker

import (
	"fmt"

	"github.com/lectern-labs/lectern/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 800

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 100

// Segment is a bounded slice of document text. Start is the byte
// offset of the segment within the original text; the ingest layer
// uses it to attribute a lesson number to the chunk.
type Segment struct {
	// Text is the segment content.
	Text string

	// Start is the byte offset of the segment in the source text.
	Start int

	// Position is the segment's ordinal within the document.
	Position int
}

// Processor splits document text into overlapping segments. Splitting
// prefers sentence boundaries; a hard character cut is used only when
// no boundary leaves room for the configured overlap. A Processor is a
// pure function of its parameters and carries no per-document state.
type Processor struct {
	chunkSize int
	overlap   int
}

// New creates a chunking processor. Parameter combinations that cannot
// produce a finite segment sequence (overlap >= chunkSize) are rejected
// here rather than looping at ingest time.
func New(chunkSize, overlap int) (*Processor, error) {
	cfg := domain.ChunkingSettings{ChunkSize: chunkSize, Overlap: overlap}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Processor{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured character budget per segment.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap in characters.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunk splits text into overlapping segments. Each segment after the
// first begins exactly `overlap` characters before the previous
// segment's end, so adjacent segments share a window across the
// boundary. Empty text is a caller error, not an empty result.
func (p *Processor) Chunk(text string) ([]Segment, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty document text", domain.ErrInvalidInput)
	}

	textLen := len(text)
	estimated := textLen/(p.chunkSize-p.overlap) + 1
	segments := make([]Segment, 0, estimated)

	start := 0
	position := 0

	for start < textLen {
		end := start + p.chunkSize
		if end >= textLen {
			end = textLen
		} else {
			// Prefer ending on a sentence boundary, but only when the
			// boundary leaves enough text for the overlap window to
			// still advance the next segment.
			if b := lastSentenceBoundary(text, start, end); b-start > p.overlap {
				end = b
			}
		}

		segments = append(segments, Segment{
			Text:     text[start:end],
			Start:    start,
			Position: position,
		})
		position++

		if end == textLen {
			break
		}
		start = end - p.overlap
	}

	return segments, nil
}

// lastSentenceBoundary returns the offset just past the last sentence
// terminator in text[start:end], or start when there is none. A
// terminator followed by whitespace (or the window edge) counts; a dot
// inside "3.14" does not.
func lastSentenceBoundary(text string, start, end int) int {
	for i := end - 1; i > start; i-- {
		c := text[i]
		if c == '\n' {
			return i + 1
		}
		if c == '.' || c == '!' || c == '?' {
			if i+1 >= len(text) || text[i+1] == ' ' || text[i+1] == '\n' || text[i+1] == '\t' {
				return i + 1
			}
		}
	}
	return start
}

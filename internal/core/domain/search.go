package domain

// SearchFilter constrains a retrieval query to a course and/or lesson.
// Both fields are optional; a nil/empty field means no constraint on
// that dimension. When both are set they must both match.
type SearchFilter struct {
	// CourseTitle restricts results to one course. Empty means any.
	CourseTitle string

	// LessonNumber restricts results to one lesson. Nil means any.
	LessonNumber *int
}

// IsEmpty returns true when the filter imposes no constraints.
func (f SearchFilter) IsEmpty() bool {
	return f.CourseTitle == "" && f.LessonNumber == nil
}

// Matches reports whether a chunk satisfies the filter. Evaluation is
// conjunctive: every set dimension must match.
func (f SearchFilter) Matches(chunk Chunk) bool {
	if f.CourseTitle != "" && chunk.CourseTitle != f.CourseTitle {
		return false
	}
	if f.LessonNumber != nil {
		if chunk.LessonNumber == nil || *chunk.LessonNumber != *f.LessonNumber {
			return false
		}
	}
	return true
}

// SearchResult represents a single retrieval hit.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity to the query embedding.
	// Results are ordered by decreasing score (ascending distance).
	Score float64
}

// CourseAnalytics summarises the indexed catalogue.
type CourseAnalytics struct {
	// TotalCourses is the number of distinct courses indexed.
	TotalCourses int

	// CourseTitles lists the exact stored titles.
	CourseTitles []string
}

// Package sqlite provides a SQLite-backed catalog store so the course
// index survives restarts.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lectern-labs/lectern/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CatalogStore = (*Store)(nil)

// Store is a SQLite-based implementation of driven.CatalogStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.lectern/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lectern", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	// WAL mode for better concurrency between ingest and search.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveCourse stores a course and its entries in one transaction,
// replacing any prior version with the same title.
func (s *Store) SaveCourse(ctx context.Context, course *domain.Course, entries []driven.VectorEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Delete-then-insert keeps the title as the sole upsert key;
	// cascades remove the old lessons and chunks.
	if _, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE title = ?`, course.Title); err != nil {
		return fmt.Errorf("deleting prior course: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO courses (title, link, instructor)
		VALUES (?, ?, ?)
	`, course.Title, course.Link, course.Instructor); err != nil {
		return fmt.Errorf("saving course: %w", err)
	}

	for i, lesson := range course.Lessons {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO lessons (course_title, position, number, title, link)
			VALUES (?, ?, ?, ?, ?)
		`, course.Title, i, lesson.Number, lesson.Title, lesson.Link); err != nil {
			return fmt.Errorf("saving lesson %d: %w", lesson.Number, err)
		}
	}

	for _, entry := range entries {
		var lessonNumber any
		if entry.Chunk.LessonNumber != nil {
			lessonNumber = *entry.Chunk.LessonNumber
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, course_title, lesson_number, position, content, embedding)
			VALUES (?, ?, ?, ?, ?, ?)
		`, entry.Chunk.ID, course.Title, lessonNumber, entry.Chunk.Position,
			entry.Chunk.Content, encodeEmbedding(entry.Embedding)); err != nil {
			return fmt.Errorf("saving chunk %s: %w", entry.Chunk.ID, err)
		}
	}

	return tx.Commit()
}

// GetCourse retrieves a course by exact title.
func (s *Store) GetCourse(ctx context.Context, title string) (*domain.Course, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT title, link, instructor FROM courses WHERE title = ?
	`, title)

	var course domain.Course
	if err := row.Scan(&course.Title, &course.Link, &course.Instructor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting course: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT number, title, link FROM lessons
		WHERE course_title = ? ORDER BY position
	`, title)
	if err != nil {
		return nil, fmt.Errorf("getting lessons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lesson domain.Lesson
		if err := rows.Scan(&lesson.Number, &lesson.Title, &lesson.Link); err != nil {
			return nil, fmt.Errorf("scanning lesson: %w", err)
		}
		course.Lessons = append(course.Lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lessons: %w", err)
	}

	return &course, nil
}

// ListTitles returns all stored course titles in ingest order.
func (s *Store) ListTitles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title FROM courses ORDER BY ingested_at, title`)
	if err != nil {
		return nil, fmt.Errorf("listing titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// GetEntries returns the stored chunk entries for a course title.
func (s *Store) GetEntries(ctx context.Context, title string) ([]driven.VectorEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lesson_number, position, content, embedding
		FROM chunks WHERE course_title = ? ORDER BY position
	`, title)
	if err != nil {
		return nil, fmt.Errorf("getting entries: %w", err)
	}
	defer rows.Close()

	var entries []driven.VectorEntry
	for rows.Next() {
		var (
			entry        driven.VectorEntry
			lessonNumber sql.NullInt64
			blob         []byte
		)
		if err := rows.Scan(&entry.Chunk.ID, &lessonNumber, &entry.Chunk.Position,
			&entry.Chunk.Content, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		entry.Chunk.CourseTitle = title
		if lessonNumber.Valid {
			n := int(lessonNumber.Int64)
			entry.Chunk.LessonNumber = &n
		}
		entry.Embedding = decodeEmbedding(blob)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	if entries == nil {
		// Distinguish "no chunks" from "no course".
		var exists int
		row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses WHERE title = ?`, title)
		if err := row.Scan(&exists); err != nil {
			return nil, fmt.Errorf("checking course: %w", err)
		}
		if exists == 0 {
			return nil, domain.ErrNotFound
		}
	}

	return entries, nil
}

// DeleteCourse removes a course and its entries.
func (s *Store) DeleteCourse(ctx context.Context, title string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE title = ?`, title); err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}
	return nil
}

// Clear removes all stored courses and entries.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM courses`); err != nil {
		return fmt.Errorf("clearing catalogue: %w", err)
	}
	return nil
}

// encodeEmbedding packs a float32 vector into a little-endian blob.
func encodeEmbedding(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeEmbedding unpacks a little-endian blob into a float32 vector.
func decodeEmbedding(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/studymate/backend/services/course-service/internal/models"
)

type chapterNoteRepository struct {
	db *sql.DB
}

// NewChapterNoteRepository creates a new chapter note repository
func NewChapterNoteRepository(db *sql.DB) *chapterNoteRepository {
	return &chapterNoteRepository{db: db}
}

// Create inserts the note of one chapter.
// It reports false without error when the chapter already has a note.
func (r *chapterNoteRepository) Create(ctx context.Context, note *models.ChapterNote) (bool, error) {
	query := `
		INSERT IGNORE INTO chapter_notes (course_id, chapter_id, notes)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, note.CourseID, note.ChapterID, note.Notes)
	if err != nil {
		return false, fmt.Errorf("failed to create chapter note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get last insert id: %w", err)
	}
	note.ID = int(id)

	return true, nil
}

// Exists reports whether a chapter of a course already has a note
func (r *chapterNoteRepository) Exists(ctx context.Context, courseID string, chapterID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM chapter_notes WHERE course_id = ? AND chapter_id = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, courseID, chapterID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check chapter note existence: %w", err)
	}

	return exists, nil
}

// ListByCourse returns the notes of a course ordered by chapter
func (r *chapterNoteRepository) ListByCourse(ctx context.Context, courseID string) ([]models.ChapterNote, error) {
	query := `
		SELECT id, course_id, chapter_id, notes, created_at
		FROM chapter_notes
		WHERE course_id = ?
		ORDER BY chapter_id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapter notes: %w", err)
	}
	defer rows.Close()

	notes := []models.ChapterNote{}
	for rows.Next() {
		var note models.ChapterNote
		if err := rows.Scan(&note.ID, &note.CourseID, &note.ChapterID, &note.Notes, &note.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chapter note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return notes, nil
}

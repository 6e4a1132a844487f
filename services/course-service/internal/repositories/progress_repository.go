package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/studymate/backend/services/course-service/internal/models"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a repository that reads course progress across tables
func NewProgressRepository(db *sql.DB) *progressRepository {
	return &progressRepository{db: db}
}

// GetCourseProgress gathers the course row, its note count and its ready study material counts
func (r *progressRepository) GetCourseProgress(ctx context.Context, courseID string) (*models.CourseProgressSnapshot, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE course_id = ? LIMIT 1`
	course, err := scanCourse(r.db.QueryRowContext(ctx, query, courseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	snapshot := &models.CourseProgressSnapshot{Course: course}

	notesQuery := `SELECT COUNT(*) FROM chapter_notes WHERE course_id = ?`
	if err := r.db.QueryRowContext(ctx, notesQuery, courseID).Scan(&snapshot.CompletedChapters); err != nil {
		return nil, fmt.Errorf("failed to count chapter notes: %w", err)
	}

	materialQuery := `
		SELECT ` + "`type`" + `, COUNT(*)
		FROM study_type_contents
		WHERE course_id = ? AND ` + "`status`" + ` = ?
		GROUP BY ` + "`type`" + `
	`
	rows, err := r.db.QueryContext(ctx, materialQuery, courseID, models.StudyContentStatusReady)
	if err != nil {
		return nil, fmt.Errorf("failed to count study material: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var studyType models.StudyType
		var count int
		if err := rows.Scan(&studyType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan study material count: %w", err)
		}
		switch studyType {
		case models.StudyTypeFlashcard:
			snapshot.ReadyFlashcards = count
		case models.StudyTypeQuiz:
			snapshot.ReadyQuizzes = count
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return snapshot, nil
}

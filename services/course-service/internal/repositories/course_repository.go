package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/studymate/backend/services/course-service/internal/models"
)

const courseColumns = "course_id, topic, course_type, difficulty_level, layout, `status`, created_by, created_at, dispatched_at"

type courseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{db: db}
}

// Create inserts a new course
func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (course_id, topic, course_type, difficulty_level, layout, ` + "`status`" + `, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		course.CourseID,
		course.Topic,
		course.CourseType,
		course.DifficultyLevel,
		course.Layout,
		course.Status,
		course.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

// GetByID retrieves a course by its course ID
func (r *courseRepository) GetByID(ctx context.Context, courseID string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE course_id = ? LIMIT 1`

	course, err := scanCourse(r.db.QueryRowContext(ctx, query, courseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by ID: %w", err)
	}

	return course, nil
}

// MarkReady moves a generating course to Ready.
// A course that is already Ready is left untouched.
func (r *courseRepository) MarkReady(ctx context.Context, courseID string) error {
	query := `UPDATE courses SET ` + "`status`" + ` = ? WHERE course_id = ? AND ` + "`status`" + ` = ?`

	_, err := r.db.ExecContext(ctx, query, models.CourseStatusReady, courseID, models.CourseStatusGenerating)
	if err != nil {
		return fmt.Errorf("failed to mark course ready: %w", err)
	}

	return nil
}

// MarkDispatched records when notes generation was last requested for a course
func (r *courseRepository) MarkDispatched(ctx context.Context, courseID string, at time.Time) error {
	query := `UPDATE courses SET dispatched_at = ? WHERE course_id = ?`

	_, err := r.db.ExecContext(ctx, query, at, courseID)
	if err != nil {
		return fmt.Errorf("failed to mark course dispatched: %w", err)
	}

	return nil
}

// ListStaleGenerating returns courses still Generating whose last dispatch (or creation) is before olderThan
func (r *courseRepository) ListStaleGenerating(ctx context.Context, olderThan time.Time, limit int) ([]models.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE ` + "`status`" + ` = ? AND COALESCE(dispatched_at, created_at) < ?
		ORDER BY created_at
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, models.CourseStatusGenerating, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, *course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return courses, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*models.Course, error) {
	course := &models.Course{}
	var dispatchedAt sql.NullTime
	err := row.Scan(
		&course.CourseID,
		&course.Topic,
		&course.CourseType,
		&course.DifficultyLevel,
		&course.Layout,
		&course.Status,
		&course.CreatedBy,
		&course.CreatedAt,
		&dispatchedAt,
	)
	if err != nil {
		return nil, err
	}
	if dispatchedAt.Valid {
		course.DispatchedAt = &dispatchedAt.Time
	}
	return course, nil
}

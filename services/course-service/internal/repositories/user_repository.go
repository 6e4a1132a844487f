package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/studymate/backend/services/course-service/internal/models"
)

const userColumns = "id, name, email, is_member, streak, last_study_date, daily_courses_created, last_course_date, created_at"

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

// Create inserts a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, name, email) VALUES (?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// UpdateDailyCourses locks the user row, lets apply adjust the daily course counters and stores them.
// An error from apply rolls the transaction back and is returned unchanged.
func (r *userRepository) UpdateDailyCourses(ctx context.Context, email string, apply func(user *models.User) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1 FOR UPDATE`
	user, err := scanUser(tx.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock user: %w", err)
	}

	if err := apply(user); err != nil {
		return err
	}

	update := `UPDATE users SET daily_courses_created = ?, last_course_date = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, update, user.DailyCoursesCreated, user.LastCourseDate, user.ID); err != nil {
		return fmt.Errorf("failed to update daily courses: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateStreak stores the study streak of a user
func (r *userRepository) UpdateStreak(ctx context.Context, userID string, streak int, lastStudyDate time.Time) error {
	query := `UPDATE users SET streak = ?, last_study_date = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, streak, lastStudyDate, userID); err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}

	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var lastStudy, lastCourse sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.IsMember,
		&user.Streak,
		&lastStudy,
		&user.DailyCoursesCreated,
		&lastCourse,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastStudy.Valid {
		user.LastStudyDate = &lastStudy.Time
	}
	if lastCourse.Valid {
		user.LastCourseDate = &lastCourse.Time
	}
	return user, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studymate/backend/services/course-service/internal/models"
)

var courseRowColumns = []string{"course_id", "topic", "course_type", "difficulty_level", "layout", "status", "created_by", "created_at", "dispatched_at"}

const testLayoutJSON = `{"courseTitle":"Rust Basics","summary":"s","chapters":[{"title":"A","summary":"","emoji":"","topics":[]},{"title":"B","summary":"","emoji":"","topics":[]},{"title":"C","summary":"","emoji":"","topics":[]}]}`

// setupCourseTestRepository creates a course repository with a mock database
func setupCourseTestRepository(t *testing.T) (*courseRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return NewCourseRepository(db), mock, func() { db.Close() }
}

func TestNewCourseRepository(t *testing.T) {
	db := &sql.DB{}

	repo := NewCourseRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestCourseRepository_Create(t *testing.T) {
	course := &models.Course{
		CourseID:        "course-1",
		Topic:           "Rust",
		CourseType:      "Coding",
		DifficultyLevel: "Easy",
		Layout:          models.CourseLayout{CourseTitle: "Rust"},
		Status:          models.CourseStatusGenerating,
		CreatedBy:       "a@example.com",
	}

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO courses`).
					WithArgs("course-1", "Rust", "Coding", "Easy", sqlmock.AnyArg(), "Generating", "a@example.com").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "duplicate course id",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO courses`).
					WillReturnError(errors.New("Error 1062: Duplicate entry"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCourseTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), course)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCourseRepository_GetByID(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		check         func(t *testing.T, c *models.Course)
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(courseRowColumns).
					AddRow("course-1", "Rust", "Coding", "Easy", []byte(testLayoutJSON), "Generating", "a@example.com", created, nil)
				mock.ExpectQuery(`SELECT course_id, topic, course_type`).
					WithArgs("course-1").
					WillReturnRows(rows)
			},
			check: func(t *testing.T, c *models.Course) {
				assert.Equal(t, "course-1", c.CourseID)
				assert.Equal(t, models.CourseStatusGenerating, c.Status)
				assert.Len(t, c.Layout.Chapters, 3)
				assert.Equal(t, "Rust Basics", c.Layout.CourseTitle)
				assert.Nil(t, c.DispatchedAt)
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT course_id`).
					WithArgs("course-1").
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: models.ErrCourseNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCourseTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			course, err := repo.GetByID(context.Background(), "course-1")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, course)
			} else {
				require.NoError(t, err)
				tt.check(t, course)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCourseRepository_MarkReady(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "generating course",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE courses SET`).
					WithArgs("Ready", "course-1", "Generating").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "already ready is not an error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE courses SET`).
					WithArgs("Ready", "course-1", "Generating").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE courses SET`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCourseTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.MarkReady(context.Background(), "course-1")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCourseRepository_MarkDispatched(t *testing.T) {
	repo, mock, cleanup := setupCourseTestRepository(t)
	defer cleanup()

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE courses SET dispatched_at`).
		WithArgs(at, "course-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkDispatched(context.Background(), "course-1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_ListStaleGenerating(t *testing.T) {
	cutoff := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	dispatched := cutoff.Add(-time.Hour)

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedLen   int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(courseRowColumns).
					AddRow("c1", "Rust", "Coding", "Easy", []byte(testLayoutJSON), "Generating", "a@example.com", cutoff.Add(-2*time.Hour), dispatched).
					AddRow("c2", "Go", "Coding", "Hard", []byte(testLayoutJSON), "Generating", "b@example.com", cutoff.Add(-3*time.Hour), nil)
				mock.ExpectQuery(`SELECT course_id`).
					WithArgs("Generating", cutoff, 50).
					WillReturnRows(rows)
			},
			expectedLen: 2,
		},
		{
			name: "empty",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT course_id`).
					WillReturnRows(sqlmock.NewRows(courseRowColumns))
			},
			expectedLen: 0,
		},
		{
			name: "query error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT course_id`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCourseTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			courses, err := repo.ListStaleGenerating(context.Background(), cutoff, 50)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, courses, tt.expectedLen)
				if tt.expectedLen > 0 {
					require.NotNil(t, courses[0].DispatchedAt)
					assert.Equal(t, dispatched, *courses[0].DispatchedAt)
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

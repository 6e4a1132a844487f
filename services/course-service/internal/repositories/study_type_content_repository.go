package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/studymate/backend/services/course-service/internal/models"
)

// mysqlDuplicateEntry is the MySQL error number of a unique key violation
const mysqlDuplicateEntry = 1062

const studyContentColumns = "id, course_id, `type`, content, `status`, error, created_at, updated_at"

type studyTypeContentRepository struct {
	db *sql.DB
}

// NewStudyTypeContentRepository creates a new study type content repository
func NewStudyTypeContentRepository(db *sql.DB) *studyTypeContentRepository {
	return &studyTypeContentRepository{db: db}
}

// Create inserts a new study content record in Generating status.
// Returns models.ErrStudyContentConflict when the course already has a record of that type.
func (r *studyTypeContentRepository) Create(ctx context.Context, record *models.StudyTypeContent) error {
	query := `
		INSERT INTO study_type_contents (id, course_id, ` + "`type`, `status`" + `)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, record.ID, record.CourseID, record.Type, models.StudyContentStatusGenerating)
	if isDuplicateEntry(err) {
		return fmt.Errorf("%w: %s already has %s content", models.ErrStudyContentConflict, record.CourseID, record.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to create study content: %w", err)
	}

	record.Status = models.StudyContentStatusGenerating
	return nil
}

// GetByID retrieves a study content record by its ID
func (r *studyTypeContentRepository) GetByID(ctx context.Context, id string) (*models.StudyTypeContent, error) {
	query := `SELECT ` + studyContentColumns + ` FROM study_type_contents WHERE id = ? LIMIT 1`

	record, err := scanStudyContent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrStudyContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get study content by ID: %w", err)
	}

	return record, nil
}

// GetByCourseAndType retrieves the study content record of a course for one study type
func (r *studyTypeContentRepository) GetByCourseAndType(ctx context.Context, courseID string, studyType models.StudyType) (*models.StudyTypeContent, error) {
	query := `SELECT ` + studyContentColumns + ` FROM study_type_contents WHERE course_id = ? AND ` + "`type`" + ` = ? LIMIT 1`

	record, err := scanStudyContent(r.db.QueryRowContext(ctx, query, courseID, studyType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrStudyContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get study content by course and type: %w", err)
	}

	return record, nil
}

// ResetForRegeneration puts a finished record back into Generating status with no content or error.
// Returns models.ErrStudyContentConflict when the record is already Generating.
func (r *studyTypeContentRepository) ResetForRegeneration(ctx context.Context, id string) error {
	query := `
		UPDATE study_type_contents
		SET ` + "`status`" + ` = ?, content = NULL, error = NULL
		WHERE id = ? AND ` + "`status`" + ` <> ?
	`

	result, err := r.db.ExecContext(ctx, query, models.StudyContentStatusGenerating, id, models.StudyContentStatusGenerating)
	if err != nil {
		return fmt.Errorf("failed to reset study content: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s is not in a finished state", models.ErrStudyContentConflict, id)
	}

	return nil
}

// MarkReady stores generated content and moves a Generating record to Ready
func (r *studyTypeContentRepository) MarkReady(ctx context.Context, id string, content *models.StudyContent) error {
	query := `
		UPDATE study_type_contents
		SET content = ?, ` + "`status`" + ` = ?, error = NULL
		WHERE id = ? AND ` + "`status`" + ` = ?
	`

	_, err := r.db.ExecContext(ctx, query, content, models.StudyContentStatusReady, id, models.StudyContentStatusGenerating)
	if err != nil {
		return fmt.Errorf("failed to mark study content ready: %w", err)
	}

	return nil
}

// MarkFailed stores the failure reason and moves a Generating record to Failed
func (r *studyTypeContentRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	query := `
		UPDATE study_type_contents
		SET content = NULL, ` + "`status`" + ` = ?, error = ?
		WHERE id = ? AND ` + "`status`" + ` = ?
	`

	_, err := r.db.ExecContext(ctx, query, models.StudyContentStatusFailed, reason, id, models.StudyContentStatusGenerating)
	if err != nil {
		return fmt.Errorf("failed to mark study content failed: %w", err)
	}

	return nil
}

func scanStudyContent(row rowScanner) (*models.StudyTypeContent, error) {
	record := &models.StudyTypeContent{}
	var content []byte
	var errMsg sql.NullString
	err := row.Scan(
		&record.ID,
		&record.CourseID,
		&record.Type,
		&content,
		&record.Status,
		&errMsg,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if errMsg.Valid {
		record.Error = &errMsg.String
	}
	if len(content) > 0 {
		decoded, err := models.DecodeStudyContent(record.Type, content)
		if err != nil {
			return nil, fmt.Errorf("failed to decode stored content of %s: %w", record.ID, err)
		}
		record.Content = decoded
	}

	return record, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

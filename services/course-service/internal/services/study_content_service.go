package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/studymate/backend/services/course-service/internal/generation"
	"github.com/studymate/backend/services/course-service/internal/jobs"
	"github.com/studymate/backend/services/course-service/internal/models"
	"go.uber.org/zap"
)

// Step names of the studyType.content handler
const (
	StepSaveStudyContent   = "Save Result to DB"
	StepFailStudyContent   = "Update DB - Failed Generation"
	studyGenerateStepLabel = "Generate %s using AI"
)

const (
	flashcardSystemInstruction = `You write flashcards. Reply with a JSON array of objects with "front" and "back" fields.
Example: [{"front": "What is a Widget in Flutter?", "back": "A Widget is the basic building block of a Flutter UI."}]`
	quizSystemInstruction = `You write multiple choice quizzes. Reply with a JSON object
{"quizTitle": string, "questions": [{"question": string, "options": [string], "answer": string}]}
where answer is the text of the correct option.`
)

// StudyContentRepository defines the interface for study content persistence
type StudyContentRepository interface {
	// Create inserts a new record in Generating status
	//
	// If some error occurs during data insert, the error will be returned.
	Create(ctx context.Context, record *models.StudyTypeContent) error
	// GetByID retrieves a record by its ID
	//
	// Returns models.ErrStudyContentNotFound when the record does not exist.
	GetByID(ctx context.Context, id string) (*models.StudyTypeContent, error)
	// GetByCourseAndType retrieves the record of one study type of a course
	//
	// Returns models.ErrStudyContentNotFound when the course has no such record.
	GetByCourseAndType(ctx context.Context, courseID string, studyType models.StudyType) (*models.StudyTypeContent, error)
	// ResetForRegeneration moves a Ready or Failed record back to Generating with content and error cleared
	ResetForRegeneration(ctx context.Context, id string) error
	// MarkReady stores the content of a Generating record and moves it to Ready
	MarkReady(ctx context.Context, id string, content *models.StudyContent) error
	// MarkFailed stores the failure reason of a Generating record and moves it to Failed
	MarkFailed(ctx context.Context, id string, reason string) error
}

type studyContentService struct {
	repo    StudyContentRepository
	courses CourseRepository
	gen     FallbackGenerator
	bus     jobs.Bus
	logger  *zap.Logger
}

// NewStudyContentService creates a new study content service
func NewStudyContentService(repo StudyContentRepository, courses CourseRepository, gen FallbackGenerator, bus jobs.Bus, logger *zap.Logger) *studyContentService {
	return &studyContentService{
		repo:    repo,
		courses: courses,
		gen:     gen,
		bus:     bus,
		logger:  logger,
	}
}

// Request starts flashcard or quiz generation for a course and returns the record ID to poll.
// A course keeps one record per study type: a running generation is reused, a finished one is regenerated.
func (s *studyContentService) Request(ctx context.Context, req *models.StudyContentRequest) (string, error) {
	if strings.TrimSpace(req.CourseID) == "" {
		return "", invalid("courseId is required")
	}
	studyType, err := models.ParseStudyType(req.Type)
	if err != nil {
		return "", err
	}

	if _, err := s.courses.GetByID(ctx, req.CourseID); err != nil {
		return "", err
	}

	existing, err := s.repo.GetByCourseAndType(ctx, req.CourseID, studyType)
	switch {
	case errors.Is(err, models.ErrStudyContentNotFound):
		existing = &models.StudyTypeContent{
			ID:       uuid.NewString(),
			CourseID: req.CourseID,
			Type:     studyType,
			Status:   models.StudyContentStatusGenerating,
		}
		err = s.repo.Create(ctx, existing)
		if errors.Is(err, models.ErrStudyContentConflict) {
			return s.concurrentRecordID(ctx, req.CourseID, studyType)
		}
		if err != nil {
			return "", fmt.Errorf("failed to create study content: %w", err)
		}
	case err != nil:
		return "", err
	case existing.Status == models.StudyContentStatusGenerating:
		s.logger.Info("Study content already generating",
			zap.String("course_id", req.CourseID),
			zap.String("record_id", existing.ID),
		)
		return existing.ID, nil
	default:
		err = s.repo.ResetForRegeneration(ctx, existing.ID)
		if errors.Is(err, models.ErrStudyContentConflict) {
			return s.concurrentRecordID(ctx, req.CourseID, studyType)
		}
		if err != nil {
			return "", err
		}
	}

	payload := models.StudyTypeContentPayload{
		StudyType: studyType,
		Prompt:    buildStudyPrompt(studyType, req.Chapters),
		CourseID:  req.CourseID,
		RecordID:  existing.ID,
	}
	if _, err := s.bus.Emit(ctx, jobs.EventStudyTypeContent, payload); err != nil {
		if markErr := s.repo.MarkFailed(ctx, existing.ID, "failed to schedule generation"); markErr != nil {
			s.logger.Error("Failed to mark study content failed", zap.String("record_id", existing.ID), zap.Error(markErr))
		}
		return "", fmt.Errorf("failed to emit study content generation: %w", err)
	}

	return existing.ID, nil
}

// concurrentRecordID returns the record another request created or reset first.
// That request already emitted the generation event.
func (s *studyContentService) concurrentRecordID(ctx context.Context, courseID string, studyType models.StudyType) (string, error) {
	record, err := s.repo.GetByCourseAndType(ctx, courseID, studyType)
	if err != nil {
		return "", fmt.Errorf("failed to reload study content: %w", err)
	}

	s.logger.Info("Study content requested concurrently, reusing record",
		zap.String("course_id", courseID),
		zap.String("record_id", record.ID),
	)
	return record.ID, nil
}

// Get returns a study content record
func (s *studyContentService) Get(ctx context.Context, id string) (*models.StudyTypeContent, error) {
	if id == "" {
		return nil, invalid("id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// Handle generates the content of one record. Generation and parse failures end the
// record in Failed status without redelivery.
func (s *studyContentService) Handle(ctx context.Context, run *jobs.Run) error {
	var payload models.StudyTypeContentPayload
	if err := run.Decode(&payload); err != nil {
		return err
	}
	if payload.RecordID == "" {
		return jobs.Permanent(fmt.Errorf("study content event without record id"))
	}

	studyType, err := models.ParseStudyType(string(payload.StudyType))
	if err != nil {
		return s.fail(ctx, run, payload.RecordID, err)
	}

	text, err := jobs.StepResult(ctx, run, fmt.Sprintf(studyGenerateStepLabel, studyType), func(ctx context.Context) (string, error) {
		return s.gen.Complete(ctx, payload.Prompt,
			generation.WithJSON(),
			generation.WithSystemInstruction(studySystemInstruction(studyType)),
		)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return s.fail(ctx, run, payload.RecordID, err)
	}

	if s.gen.UsingFallback() {
		s.gen.ResetToPrimary()
	}

	content, err := models.DecodeStudyContent(studyType, []byte(stripCodeFences(text)))
	if err != nil {
		return s.fail(ctx, run, payload.RecordID, err)
	}

	if err := run.Step(ctx, StepSaveStudyContent, func(ctx context.Context) error {
		return s.repo.MarkReady(ctx, payload.RecordID, content)
	}); err != nil {
		return err
	}

	s.logger.Info("Study content ready",
		zap.String("course_id", payload.CourseID),
		zap.String("record_id", payload.RecordID),
		zap.String("type", string(studyType)),
	)
	return nil
}

// fail stores cause on the record. The event is finished afterwards, so only storage errors are returned.
func (s *studyContentService) fail(ctx context.Context, run *jobs.Run, recordID string, cause error) error {
	s.logger.Warn("Study content generation failed", zap.String("record_id", recordID), zap.Error(cause))

	return run.Step(ctx, StepFailStudyContent, func(ctx context.Context) error {
		return s.repo.MarkFailed(ctx, recordID, cause.Error())
	})
}

// buildStudyPrompt asks for flashcards or a quiz about the given chapters
func buildStudyPrompt(studyType models.StudyType, chapters string) string {
	if studyType == models.StudyTypeFlashcard {
		return fmt.Sprintf("Generate the flashcard on topic : %s in JSON format with front back content, Maximum %d",
			chapters, models.MaxFlashcards)
	}
	return fmt.Sprintf("Generate Quiz on topic : %s with Question and Options along with correct answer in JSON format, (Max %d)",
		chapters, models.MaxQuizQuestions)
}

func studySystemInstruction(studyType models.StudyType) string {
	if studyType == models.StudyTypeFlashcard {
		return flashcardSystemInstruction
	}
	return quizSystemInstruction
}

package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studymate/backend/services/course-service/internal/generation"
	"github.com/studymate/backend/services/course-service/internal/jobs"
	"github.com/studymate/backend/services/course-service/internal/models"
	"go.uber.org/zap"
)

// CourseRepository defines the interface for course persistence
type CourseRepository interface {
	// Create inserts a new course
	//
	// "course" parameter is stored as is, CreatedAt is filled on success.
	//
	// If some error occurs during data insert, the error will be returned.
	Create(ctx context.Context, course *models.Course) error
	// GetByID retrieves a course by its ID
	//
	// Returns models.ErrCourseNotFound when the course does not exist.
	GetByID(ctx context.Context, courseID string) (*models.Course, error)
	// MarkReady moves a Generating course to Ready, a Ready course stays untouched
	MarkReady(ctx context.Context, courseID string) error
	// MarkDispatched records when notes generation was last requested
	MarkDispatched(ctx context.Context, courseID string, at time.Time) error
	// ListStaleGenerating returns up to "limit" Generating courses last dispatched before "olderThan"
	ListStaleGenerating(ctx context.Context, olderThan time.Time, limit int) ([]models.Course, error)
}

// ChapterNoteRepository defines the interface for chapter note persistence
type ChapterNoteRepository interface {
	// Create inserts a note and reports false when the chapter already has one
	Create(ctx context.Context, note *models.ChapterNote) (bool, error)
	// Exists reports whether a chapter already has a note
	Exists(ctx context.Context, courseID string, chapterID int) (bool, error)
	// ListByCourse returns the notes of a course ordered by chapter
	ListByCourse(ctx context.Context, courseID string) ([]models.ChapterNote, error)
}

// QuotaTracker manages per-user daily allowances and study streaks
type QuotaTracker interface {
	ConsumeDailyCourse(ctx context.Context, email string) error
	ReleaseDailyCourse(ctx context.Context, email string) error
	RecordStudyActivity(ctx context.Context, email string) error
}

// Generator produces text from a prompt
type Generator interface {
	Complete(ctx context.Context, prompt string, opts ...generation.Option) (string, error)
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const defaultDifficulty = "Easy"

type courseService struct {
	courses CourseRepository
	notes   ChapterNoteRepository
	quota   QuotaTracker
	gen     Generator
	bus     jobs.Bus
	now     func() time.Time
	logger  *zap.Logger
}

// NewCourseService creates a new course service
func NewCourseService(courses CourseRepository, notes ChapterNoteRepository, quota QuotaTracker, gen Generator, bus jobs.Bus, logger *zap.Logger) *courseService {
	return &courseService{
		courses: courses,
		notes:   notes,
		quota:   quota,
		gen:     gen,
		bus:     bus,
		now:     time.Now,
		logger:  logger,
	}
}

// GenerateOutline creates a course with an AI generated outline and requests its chapter notes.
// The course is returned in Generating status right after the notes event is emitted.
func (s *courseService) GenerateOutline(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	if err := s.checkCreateCourseValidation(req); err != nil {
		return nil, err
	}
	if req.DifficultyLevel == "" {
		req.DifficultyLevel = defaultDifficulty
	}

	if err := s.quota.ConsumeDailyCourse(ctx, req.CreatedBy); err != nil {
		return nil, err
	}

	layout := s.generateLayout(ctx, req)

	courseID := req.CourseID
	if courseID == "" {
		courseID = uuid.NewString()
	}

	course := &models.Course{
		CourseID:        courseID,
		Topic:           req.Topic,
		CourseType:      req.CourseType,
		DifficultyLevel: req.DifficultyLevel,
		Layout:          layout,
		Status:          models.CourseStatusGenerating,
		CreatedBy:       req.CreatedBy,
	}

	if err := s.courses.Create(ctx, course); err != nil {
		if releaseErr := s.quota.ReleaseDailyCourse(ctx, req.CreatedBy); releaseErr != nil {
			s.logger.Error("Failed to release daily course quota", zap.String("email", req.CreatedBy), zap.Error(releaseErr))
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	if err := s.quota.RecordStudyActivity(ctx, req.CreatedBy); err != nil {
		s.logger.Warn("Failed to update study streak", zap.String("email", req.CreatedBy), zap.Error(err))
	}

	if err := s.dispatchNotes(ctx, course); err != nil {
		// the stale course sweeper emits the event again later
		s.logger.Error("Failed to emit notes generation", zap.String("course_id", course.CourseID), zap.Error(err))
	}

	return course, nil
}

// checkCreateCourseValidation checks the validity of a course outline request
func (s *courseService) checkCreateCourseValidation(req *models.CreateCourseRequest) error {
	errChan := make(chan error, 3)

	go func() {
		if strings.TrimSpace(req.Topic) == "" {
			errChan <- invalid("topic is required")
			return
		}
		errChan <- nil
	}()

	go func() {
		if strings.TrimSpace(req.CourseType) == "" {
			errChan <- invalid("course type is required")
			return
		}
		errChan <- nil
	}()

	go func() {
		if req.CreatedBy == "" {
			errChan <- invalid("createdBy is required")
			return
		}
		if !emailRegex.MatchString(req.CreatedBy) {
			errChan <- invalid("createdBy must be a valid email")
			return
		}
		errChan <- nil
	}()

	var firstErr error
	for range 3 {
		if err := <-errChan; err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// generateLayout asks the AI provider for an outline and falls back to a fixed one on any failure
func (s *courseService) generateLayout(ctx context.Context, req *models.CreateCourseRequest) models.CourseLayout {
	text, err := s.gen.Complete(ctx, buildOutlinePrompt(req),
		generation.WithJSON(),
		generation.WithSystemInstruction(outlineSystemInstruction),
	)
	if err != nil {
		s.logger.Warn("Outline generation failed, using fallback outline",
			zap.String("topic", req.Topic),
			zap.Stringer("class", generation.ClassOf(err)),
			zap.Error(err),
		)
		return fallbackOutline(req.Topic, req.DifficultyLevel)
	}

	layout, err := parseOutline(text)
	if err != nil {
		s.logger.Warn("Outline response could not be parsed, using fallback outline", zap.String("topic", req.Topic), zap.Error(err))
		return fallbackOutline(req.Topic, req.DifficultyLevel)
	}

	if n := len(layout.Chapters); n != models.ChaptersPerCourse {
		s.logger.Info("Normalizing outline chapter count", zap.String("topic", req.Topic), zap.Int("chapters", n))
	}
	return normalizeOutline(layout, req.Topic)
}

// GetCourse returns a course by its ID
func (s *courseService) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	if courseID == "" {
		return nil, invalid("courseId is required")
	}
	return s.courses.GetByID(ctx, courseID)
}

// ListNotes returns the chapter notes of an existing course
func (s *courseService) ListNotes(ctx context.Context, courseID string) ([]models.ChapterNote, error) {
	if _, err := s.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.notes.ListByCourse(ctx, courseID)
}

// DispatchNotes emits notes generation again for a course that is still Generating.
// Returns models.ErrNotesAlreadyQueued while an earlier dispatch is queued or running.
func (s *courseService) DispatchNotes(ctx context.Context, courseID string) (string, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return "", err
	}
	if course.Status == models.CourseStatusReady {
		return "", models.ErrCourseAlreadyReady
	}

	eventID, err := s.emitNotes(ctx, course)
	if err != nil {
		return "", err
	}

	return eventID, nil
}

// SweepStale emits notes generation again for courses stuck in Generating since before olderThan.
// It returns how many courses were dispatched.
func (s *courseService) SweepStale(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	courses, err := s.courses.ListStaleGenerating(ctx, olderThan, limit)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for i := range courses {
		err := s.dispatchNotes(ctx, &courses[i])
		if errors.Is(err, models.ErrNotesAlreadyQueued) {
			s.logger.Info("Stale course still has notes generation in flight", zap.String("course_id", courses[i].CourseID))
			continue
		}
		if err != nil {
			s.logger.Error("Failed to re-dispatch stale course", zap.String("course_id", courses[i].CourseID), zap.Error(err))
			continue
		}
		dispatched++
	}

	return dispatched, nil
}

func (s *courseService) dispatchNotes(ctx context.Context, course *models.Course) error {
	_, err := s.emitNotes(ctx, course)
	return err
}

func (s *courseService) emitNotes(ctx context.Context, course *models.Course) (string, error) {
	eventID, err := s.bus.Emit(ctx, jobs.EventNotesGenerate, models.NewNotesGeneratePayload(course))
	if errors.Is(err, jobs.ErrDuplicateEvent) {
		return "", fmt.Errorf("%w: %s", models.ErrNotesAlreadyQueued, course.CourseID)
	}
	if err != nil {
		return "", err
	}

	now := s.now()
	if err := s.courses.MarkDispatched(ctx, course.CourseID, now); err != nil {
		s.logger.Warn("Failed to record notes dispatch", zap.String("course_id", course.CourseID), zap.Error(err))
	} else {
		course.DispatchedAt = &now
	}

	s.logger.Info("Notes generation requested", zap.String("course_id", course.CourseID), zap.String("event_id", eventID))
	return eventID, nil
}

// invalid wraps a validation message with models.ErrInvalidRequest
func invalid(msg string) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidRequest, msg)
}

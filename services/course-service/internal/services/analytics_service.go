package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/studymate/backend/services/course-service/internal/cache"
	"github.com/studymate/backend/services/course-service/internal/models"
	"go.uber.org/zap"
)

// ProgressRepository defines the interface for reading course progress
type ProgressRepository interface {
	// GetCourseProgress gathers the course, its note count and its ready study material counts
	//
	// Returns models.ErrCourseNotFound when the course does not exist.
	GetCourseProgress(ctx context.Context, courseID string) (*models.CourseProgressSnapshot, error)
}

// AnalyticsConfig tunes the analytics read path. Zero values take the defaults.
type AnalyticsConfig struct {
	Timeout      time.Duration
	QuickTimeout time.Duration
	FreshTTL     time.Duration
	FallbackTTL  time.Duration
	MaxEntries   int
	Now          func() time.Time
}

func (c AnalyticsConfig) withDefaults() AnalyticsConfig {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.QuickTimeout <= 0 {
		c.QuickTimeout = 200 * time.Millisecond
	}
	if c.FreshTTL <= 0 {
		c.FreshTTL = 3 * time.Minute
	}
	if c.FallbackTTL <= 0 {
		c.FallbackTTL = 30 * time.Second
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = 50
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

const defaultAnalyticsDifficulty = "Intermediate"

type analyticsService struct {
	progress ProgressRepository
	courses  CourseRepository
	cache    *cache.TTL[string, models.CourseAnalytics]
	cfg      AnalyticsConfig
	logger   *zap.Logger
}

// NewAnalyticsService creates a new course analytics service
func NewAnalyticsService(progress ProgressRepository, courses CourseRepository, cfg AnalyticsConfig, logger *zap.Logger) *analyticsService {
	cfg = cfg.withDefaults()
	return &analyticsService{
		progress: progress,
		courses:  courses,
		cache:    cache.NewTTL[string, models.CourseAnalytics](cfg.Now, cfg.MaxEntries),
		cfg:      cfg,
		logger:   logger,
	}
}

type progressResult struct {
	snapshot *models.CourseProgressSnapshot
	err      error
}

// Get returns the analytics of a course. Backend failures and slow reads degrade to
// a fallback result, only a missing course ID is an error.
func (s *analyticsService) Get(ctx context.Context, courseID string) (*models.CourseAnalytics, error) {
	if courseID == "" {
		return nil, invalid("courseId is required")
	}

	if cached, ok := s.cache.Get(courseID); ok {
		return &cached, nil
	}

	fresh, err := s.fresh(ctx, courseID)
	if err == nil {
		s.cache.Set(courseID, *fresh, s.cfg.FreshTTL)
		return fresh, nil
	}

	s.logger.Warn("Analytics unavailable, using fallback", zap.String("course_id", courseID), zap.Error(err))

	fallback := s.fallback(ctx, courseID)
	s.cache.Set(courseID, *fallback, s.cfg.FallbackTTL)
	return fallback, nil
}

// fresh reads the progress snapshot within the configured timeout
func (s *analyticsService) fresh(ctx context.Context, courseID string) (*models.CourseAnalytics, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resultChan := make(chan progressResult, 1)
	go func() {
		snapshot, err := s.progress.GetCourseProgress(ctx, courseID)
		resultChan <- progressResult{snapshot: snapshot, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("analytics timed out: %w", ctx.Err())
	case res := <-resultChan:
		if res.err != nil {
			return nil, res.err
		}
		return computeAnalytics(courseID, res.snapshot), nil
	}
}

// fallback builds a placeholder from whatever course data a very quick lookup returns
func (s *analyticsService) fallback(ctx context.Context, courseID string) *models.CourseAnalytics {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.QuickTimeout)
	defer cancel()

	courseChan := make(chan *models.Course, 1)
	go func() {
		course, err := s.courses.GetByID(ctx, courseID)
		if err != nil {
			course = nil
		}
		courseChan <- course
	}()

	var course *models.Course
	select {
	case <-ctx.Done():
	case course = <-courseChan:
	}

	result := &models.CourseAnalytics{
		CourseID:          courseID,
		TotalChapters:     models.ChaptersPerCourse,
		EstimatedDuration: "Calculating...",
		LastStudyTime:     "Not started",
		CourseStatus:      "Loading",
		CreatedAt:         s.cfg.Now(),
		Difficulty:        defaultAnalyticsDifficulty,
		Fallback:          true,
		UltraFast:         true,
	}

	if course != nil {
		if n := len(course.Layout.Chapters); n > 0 {
			result.TotalChapters = n
		}
		if course.Status != "" {
			result.CourseStatus = string(course.Status)
		}
		if !course.CreatedAt.IsZero() {
			result.CreatedAt = course.CreatedAt
		}
		if course.DifficultyLevel != "" {
			result.Difficulty = course.DifficultyLevel
		}
	}

	return result
}

// computeAnalytics derives the analytics view from a progress snapshot
func computeAnalytics(courseID string, snap *models.CourseProgressSnapshot) *models.CourseAnalytics {
	total := len(snap.Course.Layout.Chapters)
	if total == 0 {
		total = models.ChaptersPerCourse
	}
	completed := snap.CompletedChapters

	counts := models.MaterialCounts{
		Flashcard: snap.ReadyFlashcards,
		Quiz:      snap.ReadyQuizzes,
		Notes:     completed,
	}
	progress := ProgressPercentage(completed, total, counts.Flashcard > 0, counts.Quiz > 0)

	difficulty := snap.Course.DifficultyLevel
	if difficulty == "" {
		difficulty = defaultAnalyticsDifficulty
	}

	return &models.CourseAnalytics{
		CourseID:           courseID,
		TotalChapters:      total,
		CompletedChapters:  completed,
		ProgressPercentage: progress,
		EstimatedDuration:  estimateDuration(total, counts),
		Rating:             rating(progress),
		LastStudyTime:      lastStudyTime(progress),
		MaterialCounts:     counts,
		CourseStatus:       string(snap.Course.Status),
		CreatedAt:          snap.Course.CreatedAt,
		Difficulty:         difficulty,
		HasFlashcards:      counts.Flashcard > 0,
		HasQuiz:            counts.Quiz > 0,
		HasNotes:           counts.Notes > 0,
	}
}

// ProgressPercentage weighs notes at 40 points and each ready material kind at 30 points
func ProgressPercentage(completed, total int, hasFlashcards, hasQuiz bool) int {
	progress := 0
	if total > 0 {
		progress = int(math.Round(float64(min(completed, total)) / float64(total) * 40))
	}
	if hasFlashcards {
		progress += 30
	}
	if hasQuiz {
		progress += 30
	}
	return min(progress, 100)
}

func estimateDuration(totalChapters int, counts models.MaterialCounts) string {
	if totalChapters == 0 {
		return "N/A"
	}

	minutes := float64(totalChapters)*20 + float64(counts.Flashcard)*0.5 + float64(counts.Quiz)
	hours := minutes / 60

	switch {
	case hours < 0.5:
		return fmt.Sprintf("%d min", int(math.Round(minutes)))
	case hours < 1:
		return "1 hour"
	default:
		return fmt.Sprintf("%d hrs", int(math.Round(hours)))
	}
}

func rating(progress int) float64 {
	switch {
	case progress >= 100:
		return 5.0
	case progress > 75:
		return 4.7
	case progress > 50:
		return 4.3
	case progress > 25:
		return 4.0
	case progress > 0:
		return 3.5
	default:
		return 4.2
	}
}

func lastStudyTime(progress int) string {
	switch progress {
	case 0:
		return "Not started"
	case 100:
		return "Completed"
	default:
		return "In progress"
	}
}

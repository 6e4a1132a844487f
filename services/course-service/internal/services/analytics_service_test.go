package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studymate/backend/services/course-service/internal/models"
	"go.uber.org/zap"
)

// mockProgressRepository is a mock implementation of ProgressRepository
type mockProgressRepository struct {
	mu       sync.Mutex
	snapshot *models.CourseProgressSnapshot
	err      error
	block    bool
	calls    int
}

func (m *mockProgressRepository) GetCourseProgress(ctx context.Context, courseID string) (*models.CourseProgressSnapshot, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func analyticsCourse() *models.Course {
	c := generatingCourse()
	c.DifficultyLevel = "Hard"
	c.CreatedAt = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return c
}

func TestProgressPercentage(t *testing.T) {
	tests := []struct {
		name       string
		completed  int
		total      int
		flashcards bool
		quiz       bool
		expected   int
	}{
		{name: "zero state", completed: 0, total: 3, expected: 0},
		{name: "one of three", completed: 1, total: 3, expected: 13},
		{name: "two of three", completed: 2, total: 3, expected: 27},
		{name: "all notes", completed: 3, total: 3, expected: 40},
		{name: "notes and flashcards", completed: 3, total: 3, flashcards: true, expected: 70},
		{name: "everything", completed: 3, total: 3, flashcards: true, quiz: true, expected: 100},
		{name: "extra notes are capped", completed: 5, total: 3, flashcards: true, quiz: true, expected: 100},
		{name: "no chapters", completed: 0, total: 0, quiz: true, expected: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProgressPercentage(tt.completed, tt.total, tt.flashcards, tt.quiz))
		})
	}
}

func TestComputeAnalytics(t *testing.T) {
	tests := []struct {
		name             string
		snapshot         *models.CourseProgressSnapshot
		expectedProgress int
		expectedDuration string
		expectedRating   float64
		expectedLast     string
	}{
		{
			name:             "zero state",
			snapshot:         &models.CourseProgressSnapshot{Course: analyticsCourse()},
			expectedProgress: 0,
			expectedDuration: "1 hrs",
			expectedRating:   4.2,
			expectedLast:     "Not started",
		},
		{
			name:             "notes done",
			snapshot:         &models.CourseProgressSnapshot{Course: analyticsCourse(), CompletedChapters: 3},
			expectedProgress: 40,
			expectedDuration: "1 hrs",
			expectedRating:   4.0,
			expectedLast:     "In progress",
		},
		{
			name: "layout without chapters counts three",
			snapshot: &models.CourseProgressSnapshot{Course: func() *models.Course {
				c := analyticsCourse()
				c.Layout.Chapters = nil
				return c
			}(), CompletedChapters: 3},
			expectedProgress: 40,
			expectedDuration: "1 hrs",
			expectedRating:   4.0,
			expectedLast:     "In progress",
		},
		{
			name:             "complete",
			snapshot:         &models.CourseProgressSnapshot{Course: analyticsCourse(), CompletedChapters: 3, ReadyFlashcards: 1, ReadyQuizzes: 1},
			expectedProgress: 100,
			expectedDuration: "1 hrs",
			expectedRating:   5.0,
			expectedLast:     "Completed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := computeAnalytics("course-1", tt.snapshot)

			assert.Equal(t, 3, result.TotalChapters)
			assert.Equal(t, tt.expectedProgress, result.ProgressPercentage)
			assert.Equal(t, tt.expectedDuration, result.EstimatedDuration)
			assert.Equal(t, tt.expectedRating, result.Rating)
			assert.Equal(t, tt.expectedLast, result.LastStudyTime)
			assert.Equal(t, "Hard", result.Difficulty)
			assert.Equal(t, tt.snapshot.CompletedChapters, result.MaterialCounts.Notes)
			assert.False(t, result.Fallback)
		})
	}
}

func TestEstimateDuration(t *testing.T) {
	assert.Equal(t, "N/A", estimateDuration(0, models.MaterialCounts{}))
	assert.Equal(t, "20 min", estimateDuration(1, models.MaterialCounts{}))
	assert.Equal(t, "1 hour", estimateDuration(2, models.MaterialCounts{}))
	assert.Equal(t, "2 hrs", estimateDuration(6, models.MaterialCounts{Flashcard: 2}))
}

func TestAnalyticsService_Get_CachesFreshResult(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	progress := &mockProgressRepository{snapshot: &models.CourseProgressSnapshot{Course: analyticsCourse(), CompletedChapters: 1}}
	svc := NewAnalyticsService(progress, newMockCourseRepository(), AnalyticsConfig{Now: clock.Now}, zap.NewNop())

	first, err := svc.Get(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, 13, first.ProgressPercentage)

	progress.snapshot = &models.CourseProgressSnapshot{Course: analyticsCourse(), CompletedChapters: 3}
	clock.Advance(2*time.Minute + 59*time.Second)
	cached, err := svc.Get(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, 13, cached.ProgressPercentage)
	assert.Equal(t, 1, progress.calls)

	clock.Advance(time.Second)
	refreshed, err := svc.Get(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, 40, refreshed.ProgressPercentage)
	assert.Equal(t, 2, progress.calls)
}

func TestAnalyticsService_Get_FallbackOnError(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	progress := &mockProgressRepository{err: errors.New("db down")}
	courses := newMockCourseRepository(analyticsCourse())
	svc := NewAnalyticsService(progress, courses, AnalyticsConfig{Now: clock.Now}, zap.NewNop())

	result, err := svc.Get(context.Background(), "course-1")

	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.True(t, result.UltraFast)
	assert.Equal(t, 3, result.TotalChapters)
	assert.Equal(t, "Generating", result.CourseStatus)
	assert.Equal(t, "Hard", result.Difficulty)
	assert.Equal(t, "Calculating...", result.EstimatedDuration)
	assert.Equal(t, "Not started", result.LastStudyTime)
	assert.Equal(t, analyticsCourse().CreatedAt, result.CreatedAt)

	progress.err = nil
	progress.snapshot = &models.CourseProgressSnapshot{Course: analyticsCourse(), CompletedChapters: 3}
	clock.Advance(29 * time.Second)
	cached, _ := svc.Get(context.Background(), "course-1")
	assert.True(t, cached.Fallback, "fallback is cached for 30 seconds")

	clock.Advance(time.Second)
	fresh, _ := svc.Get(context.Background(), "course-1")
	assert.False(t, fresh.Fallback)
	assert.Equal(t, 40, fresh.ProgressPercentage)
}

func TestAnalyticsService_Get_UnknownCourseUsesMinimalFallback(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	progress := &mockProgressRepository{err: models.ErrCourseNotFound}
	svc := NewAnalyticsService(progress, newMockCourseRepository(), AnalyticsConfig{Now: clock.Now}, zap.NewNop())

	result, err := svc.Get(context.Background(), "missing")

	require.NoError(t, err)
	assert.Equal(t, "Loading", result.CourseStatus)
	assert.Equal(t, "Intermediate", result.Difficulty)
	assert.Equal(t, 3, result.TotalChapters)
	assert.Equal(t, clock.now, result.CreatedAt)
}

func TestAnalyticsService_Get_Timeout(t *testing.T) {
	progress := &mockProgressRepository{block: true}
	courses := newMockCourseRepository(analyticsCourse())
	courses.getDelay = time.Second
	svc := NewAnalyticsService(progress, courses, AnalyticsConfig{
		Timeout:      20 * time.Millisecond,
		QuickTimeout: 10 * time.Millisecond,
	}, zap.NewNop())

	start := time.Now()
	result, err := svc.Get(context.Background(), "course-1")

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.True(t, result.Fallback)
	assert.Equal(t, "Loading", result.CourseStatus, "slow course lookup is abandoned")
}

func TestAnalyticsService_Get_RequiresCourseID(t *testing.T) {
	svc := NewAnalyticsService(&mockProgressRepository{}, newMockCourseRepository(), AnalyticsConfig{}, zap.NewNop())

	_, err := svc.Get(context.Background(), "")

	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

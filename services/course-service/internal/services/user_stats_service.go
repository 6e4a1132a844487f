package services

import (
	"context"
	"fmt"
	"time"

	"github.com/studymate/backend/services/course-service/internal/models"
	"go.uber.org/zap"
)

// UserStatsRepository defines the interface for user statistics persistence
type UserStatsRepository interface {
	// GetByEmail retrieves a user by email
	//
	// "email" parameter is the address the user registered with.
	//
	// Returns models.ErrUserNotFound when no user has that email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateDailyCourses locks the user row and stores the counters adjusted by apply
	//
	// "email" parameter selects the user.
	// "apply" parameter mutates DailyCoursesCreated and LastCourseDate. An error from apply aborts the update.
	//
	// Returns models.ErrUserNotFound when no user has that email.
	UpdateDailyCourses(ctx context.Context, email string, apply func(user *models.User) error) error
	// UpdateStreak stores the study streak of a user
	//
	// "userID" parameter selects the user.
	// "streak" parameter is the new streak length in days.
	// "lastStudyDate" parameter is the day of the latest study activity.
	//
	// If some error occurs during data update, the error will be returned.
	UpdateStreak(ctx context.Context, userID string, streak int, lastStudyDate time.Time) error
}

// QuotaLimits holds the daily course creation limits
type QuotaLimits struct {
	Free   int
	Member int
}

type userStatsService struct {
	repo   UserStatsRepository
	limits QuotaLimits
	now    func() time.Time
	logger *zap.Logger
}

// NewUserStatsService creates a new user statistics service
func NewUserStatsService(repo UserStatsRepository, limits QuotaLimits, logger *zap.Logger) *userStatsService {
	return &userStatsService{
		repo:   repo,
		limits: limits,
		now:    time.Now,
		logger: logger,
	}
}

// ConsumeDailyCourse takes one course from the user's daily allowance.
// The counter restarts every UTC day.
func (s *userStatsService) ConsumeDailyCourse(ctx context.Context, email string) error {
	now := s.now().UTC()

	return s.repo.UpdateDailyCourses(ctx, email, func(user *models.User) error {
		if !sameDay(user.LastCourseDate, now) {
			user.DailyCoursesCreated = 0
		}

		limit := s.limits.Free
		if user.IsMember {
			limit = s.limits.Member
		}
		if user.DailyCoursesCreated >= limit {
			return fmt.Errorf("%w (%d per day)", models.ErrQuotaExceeded, limit)
		}

		user.DailyCoursesCreated++
		user.LastCourseDate = &now
		return nil
	})
}

// ReleaseDailyCourse gives back a course consumed today, used when creation failed after the quota check
func (s *userStatsService) ReleaseDailyCourse(ctx context.Context, email string) error {
	now := s.now().UTC()

	return s.repo.UpdateDailyCourses(ctx, email, func(user *models.User) error {
		if sameDay(user.LastCourseDate, now) && user.DailyCoursesCreated > 0 {
			user.DailyCoursesCreated--
		}
		return nil
	})
}

// RecordStudyActivity extends or restarts the user's daily study streak
func (s *userStatsService) RecordStudyActivity(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	streak := nextStreak(user, now)
	if streak == user.Streak && sameDay(user.LastStudyDate, now) {
		return nil
	}

	if err := s.repo.UpdateStreak(ctx, user.ID, streak, now); err != nil {
		return err
	}

	s.logger.Debug("Study streak updated", zap.String("user_id", user.ID), zap.Int("streak", streak))
	return nil
}

// nextStreak returns the streak after a study activity at now
func nextStreak(user *models.User, now time.Time) int {
	if user.LastStudyDate == nil {
		return 1
	}

	last := truncateDay(*user.LastStudyDate)
	today := truncateDay(now)
	switch today.Sub(last) {
	case 0:
		if user.Streak < 1 {
			return 1
		}
		return user.Streak
	case 24 * time.Hour:
		return user.Streak + 1
	default:
		return 1
	}
}

func sameDay(t *time.Time, now time.Time) bool {
	return t != nil && truncateDay(*t).Equal(truncateDay(now))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/studymate/backend/services/course-service/internal/jobs"
	"github.com/studymate/backend/services/course-service/internal/models"
	"go.uber.org/zap"
)

// StepCheckUserExists is the only step of the user.create handler
const StepCheckUserExists = "Check user exists"

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create inserts a new user
	//
	// If some error occurs during data insert, the error will be returned.
	Create(ctx context.Context, user *models.User) error
	// GetByEmail retrieves a user by email
	//
	// Returns models.ErrUserNotFound when no user has that email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type userService struct {
	repo   UserRepository
	bus    jobs.Bus
	logger *zap.Logger
}

// NewUserService creates a new user provisioning service
func NewUserService(repo UserRepository, bus jobs.Bus, logger *zap.Logger) *userService {
	return &userService{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// Register validates a new user and schedules its provisioning. It returns the event ID.
func (s *userService) Register(ctx context.Context, req *models.CreateUserRequest) (string, error) {
	req.User.Email = strings.TrimSpace(req.User.Email)
	if req.User.Email == "" {
		return "", invalid("user email is required")
	}
	if !emailRegex.MatchString(req.User.Email) {
		return "", invalid("user email is invalid")
	}

	eventID, err := s.bus.Emit(ctx, jobs.EventUserCreate, models.UserCreatePayload{User: req.User})
	if err != nil {
		return "", fmt.Errorf("failed to emit user creation: %w", err)
	}

	return eventID, nil
}

// Handle inserts the user of a user.create event unless the email is already known
func (s *userService) Handle(ctx context.Context, run *jobs.Run) error {
	var payload models.UserCreatePayload
	if err := run.Decode(&payload); err != nil {
		return err
	}

	email := strings.TrimSpace(payload.User.Email)
	if email == "" {
		s.logger.Warn("User event without email, nothing to provision", zap.String("event_id", run.EventID))
		return nil
	}

	created, err := jobs.StepResult(ctx, run, StepCheckUserExists, func(ctx context.Context) (bool, error) {
		_, err := s.repo.GetByEmail(ctx, email)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, models.ErrUserNotFound) {
			return false, err
		}

		id := payload.User.ID
		if id == "" {
			id = uuid.NewString()
		}
		if err := s.repo.Create(ctx, &models.User{ID: id, Name: payload.User.Name, Email: email}); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	if created {
		s.logger.Info("New user successfully created", zap.String("email", email))
	} else {
		s.logger.Info("User already exists", zap.String("email", email))
	}
	return nil
}

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studymate/backend/libs/handlers"
	"github.com/studymate/backend/services/course-service/internal/models"
	"go.uber.org/zap"
)

// UserService is the interface that wraps user provisioning
type UserService interface {
	// Register schedules provisioning of a user and returns the event ID
	Register(ctx context.Context, req *models.CreateUserRequest) (string, error)
}

// UserHandler handles user provisioning requests
type UserHandler struct {
	handlers.BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		userService: userService,
	}
}

// RegisterRoutes registers user handler routes
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users", h.CreateUser)
}

// CreateUser handles POST /users
// @Summary Provision user
// @Description Schedule creation of a user known to the external auth provider. Existing emails are left untouched. Requires API key authentication.
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param user body models.CreateUserRequest true "User provisioning request"
// @Success 202 {object} map[string]string "Provisioning scheduled"
// @Failure 400 {object} handlers.ErrorResponse "Bad request"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	eventID, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "failed to register user")
		return
	}

	h.RespondJSON(w, http.StatusAccepted, map[string]string{
		"message": "user provisioning scheduled",
		"eventId": eventID,
	})
}

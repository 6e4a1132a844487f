package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studymate/backend/libs/handlers"
	"go.uber.org/zap"
)

// NotesDispatcher re-emits chapter notes generation
type NotesDispatcher interface {
	// DispatchNotes emits notes generation for a course that is still Generating
	//
	// Returns models.ErrCourseAlreadyReady for finished courses.
	DispatchNotes(ctx context.Context, courseID string) (string, error)
}

// AdminHandler handles admin-only course operations
type AdminHandler struct {
	handlers.BaseHandler
	notesDispatcher NotesDispatcher
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(notesDispatcher NotesDispatcher, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:     handlers.BaseHandler{Logger: logger},
		notesDispatcher: notesDispatcher,
	}
}

// RegisterRoutes registers admin handler routes
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/courses", func(r chi.Router) {
		r.Post("/{courseId}/dispatch-notes", h.DispatchNotes)
	})
}

// DispatchNotes handles POST /admin/courses/{courseId}/dispatch-notes
// @Summary Re-dispatch chapter notes generation
// @Description Emit chapter notes generation again for a course stuck in Generating status. Requires admin JWT.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 202 {object} map[string]string "Notes generation scheduled"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Failure 404 {object} handlers.ErrorResponse "Course not found"
// @Failure 409 {object} handlers.ErrorResponse "Course already ready or notes generation already queued"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /admin/courses/{courseId}/dispatch-notes [post]
func (h *AdminHandler) DispatchNotes(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseId")

	eventID, err := h.notesDispatcher.DispatchNotes(r.Context(), courseID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "failed to dispatch notes generation")
		return
	}

	h.Logger.Info("notes generation re-dispatched", zap.String("course_id", courseID), zap.String("event_id", eventID))
	h.RespondJSON(w, http.StatusAccepted, map[string]string{
		"courseId": courseID,
		"eventId":  eventID,
	})
}

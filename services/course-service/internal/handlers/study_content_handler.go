package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studymate/backend/libs/handlers"
	"github.com/studymate/backend/services/course-service/internal/models"
	"go.uber.org/zap"
)

// StudyContentService is the interface that wraps methods for flashcard and quiz generation
type StudyContentService interface {
	// Request schedules generation of one study type for a course and returns the record ID
	//
	// Returns models.ErrUnsupportedStudyType for types other than flashcards and quizzes
	// and models.ErrCourseNotFound when the course does not exist.
	Request(ctx context.Context, req *models.StudyContentRequest) (string, error)
	// Get retrieves a study content record
	//
	// Returns models.ErrStudyContentNotFound when the record does not exist.
	Get(ctx context.Context, id string) (*models.StudyTypeContent, error)
}

// StudyContentHandler handles study content requests
type StudyContentHandler struct {
	handlers.BaseHandler
	studyContentService StudyContentService
}

// NewStudyContentHandler creates a new study content handler
func NewStudyContentHandler(studyContentService StudyContentService, logger *zap.Logger) *StudyContentHandler {
	return &StudyContentHandler{
		BaseHandler:         handlers.BaseHandler{Logger: logger},
		studyContentService: studyContentService,
	}
}

// RegisterRoutes registers study content handler routes
func (h *StudyContentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/study-content", func(r chi.Router) {
		r.Post("/", h.Request)
		r.Get("/{id}", h.Get)
	})
}

// StudyContentAccepted is returned when generation has been scheduled
type StudyContentAccepted struct {
	ID string `json:"id"`
}

// Request handles POST /study-content
// @Summary Generate flashcards or quiz
// @Description Schedule flashcard or quiz generation for a course. Poll GET /study-content/{id} for the result. Requires API key authentication.
// @Tags study-content
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.StudyContentRequest true "Study content request"
// @Success 202 {object} StudyContentAccepted "Generation scheduled"
// @Failure 400 {object} handlers.ErrorResponse "Bad request"
// @Failure 404 {object} handlers.ErrorResponse "Course not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /study-content [post]
func (h *StudyContentHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req models.StudyContentRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.studyContentService.Request(r.Context(), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "failed to request study content")
		return
	}

	h.RespondJSON(w, http.StatusAccepted, StudyContentAccepted{ID: id})
}

// Get handles GET /study-content/{id}
// @Summary Get study content
// @Description Get a flashcard or quiz record with its generation status. Requires API key authentication.
// @Tags study-content
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Study content ID"
// @Success 200 {object} models.StudyTypeContent
// @Failure 404 {object} handlers.ErrorResponse "Study content not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /study-content/{id} [get]
func (h *StudyContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.studyContentService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "failed to get study content")
		return
	}

	h.RespondJSON(w, http.StatusOK, record)
}

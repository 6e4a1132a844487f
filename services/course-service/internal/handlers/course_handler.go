package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studymate/backend/libs/handlers"
	"github.com/studymate/backend/services/course-service/internal/models"
	"go.uber.org/zap"
)

// CourseService is the interface that wraps methods for course business logic
type CourseService interface {
	// GenerateOutline creates a course with an AI generated outline
	//
	// "ctx" parameter is used to specify the context.
	// "req" parameter is used to specify the course request.
	//
	// Returns models.ErrQuotaExceeded when the creator reached the daily limit
	// and models.ErrUserNotFound when the creator is unknown.
	GenerateOutline(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error)
	// GetCourse retrieves a course by its ID
	//
	// Returns models.ErrCourseNotFound when the course does not exist.
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	// ListNotes retrieves the chapter notes of a course
	//
	// Returns models.ErrCourseNotFound when the course does not exist.
	ListNotes(ctx context.Context, courseID string) ([]models.ChapterNote, error)
}

// CourseHandler handles course requests
type CourseHandler struct {
	handlers.BaseHandler
	courseService CourseService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   handlers.BaseHandler{Logger: logger},
		courseService: courseService,
	}
}

// RegisterRoutes registers course handler routes
func (h *CourseHandler) RegisterRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Post("/outline", h.GenerateOutline)
		r.Get("/{courseId}", h.GetCourse)
		r.Get("/{courseId}/notes", h.ListNotes)
	})
}

// OutlineResponse wraps a created course
type OutlineResponse struct {
	Result *models.Course `json:"result"`
}

// GenerateOutline handles POST /courses/outline
// @Summary Generate course outline
// @Description Generate a three chapter course outline with AI and schedule chapter notes generation. Requires API key authentication.
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param course body models.CreateCourseRequest true "Course outline request"
// @Success 201 {object} OutlineResponse "Course created in Generating status"
// @Failure 400 {object} handlers.ErrorResponse "Bad request"
// @Failure 404 {object} handlers.ErrorResponse "Creator not found"
// @Failure 429 {object} handlers.ErrorResponse "Daily course limit reached"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /courses/outline [post]
func (h *CourseHandler) GenerateOutline(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	course, err := h.courseService.GenerateOutline(r.Context(), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "failed to generate course outline")
		return
	}

	h.RespondJSON(w, http.StatusCreated, OutlineResponse{Result: course})
}

// GetCourse handles GET /courses/{courseId}
// @Summary Get course
// @Description Get a course with its outline and generation status. Requires API key authentication.
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} handlers.ErrorResponse "Course not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /courses/{courseId} [get]
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseService.GetCourse(r.Context(), chi.URLParam(r, "courseId"))
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "failed to get course")
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// ListNotes handles GET /courses/{courseId}/notes
// @Summary List chapter notes
// @Description List the generated chapter notes of a course ordered by chapter. Requires API key authentication.
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {array} models.ChapterNote
// @Failure 404 {object} handlers.ErrorResponse "Course not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /courses/{courseId}/notes [get]
func (h *CourseHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.courseService.ListNotes(r.Context(), chi.URLParam(r, "courseId"))
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "failed to list chapter notes")
		return
	}
	if notes == nil {
		notes = []models.ChapterNote{}
	}

	h.RespondJSON(w, http.StatusOK, notes)
}

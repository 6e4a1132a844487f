package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studymate/backend/libs/handlers"
	"github.com/studymate/backend/services/course-service/internal/models"
	"go.uber.org/zap"
)

// AnalyticsService is the interface that wraps the course analytics read
type AnalyticsService interface {
	// Get returns the analytics of a course, degrading to a fallback result on backend failures
	Get(ctx context.Context, courseID string) (*models.CourseAnalytics, error)
}

// AnalyticsHandler handles course analytics requests
type AnalyticsHandler struct {
	handlers.BaseHandler
	analyticsService AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      handlers.BaseHandler{Logger: logger},
		analyticsService: analyticsService,
	}
}

// RegisterRoutes registers analytics handler routes
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/course-analytics", h.GetCourseAnalytics)
}

// GetCourseAnalytics handles GET /course-analytics
// @Summary Get course analytics
// @Description Get progress and material counts of a course. Slow or failing reads return a fallback result. Requires API key authentication.
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param courseId query string true "Course ID"
// @Success 200 {object} models.CourseAnalytics
// @Failure 400 {object} handlers.ErrorResponse "Course ID is required"
// @Router /course-analytics [get]
func (h *AnalyticsHandler) GetCourseAnalytics(w http.ResponseWriter, r *http.Request) {
	courseID := r.URL.Query().Get("courseId")
	if courseID == "" {
		h.RespondError(w, http.StatusBadRequest, "Course ID is required")
		return
	}

	analytics, err := h.analyticsService.Get(r.Context(), courseID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "failed to get course analytics")
		return
	}

	h.RespondJSON(w, http.StatusOK, analytics)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/studymate/backend/libs/handlers"
	"github.com/studymate/backend/services/course-service/internal/models"
	"go.uber.org/zap"
)

// CodeQuotaExceeded is returned with 429 responses of the outline endpoint
const CodeQuotaExceeded = "quota_exceeded"

// respondServiceError maps service errors to HTTP responses
func respondServiceError(h *handlers.BaseHandler, w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, models.ErrInvalidRequest), errors.Is(err, models.ErrUnsupportedStudyType):
		h.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrQuotaExceeded):
		h.RespondErrorCode(w, http.StatusTooManyRequests, err.Error(), CodeQuotaExceeded)
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrCourseNotFound),
		errors.Is(err, models.ErrStudyContentNotFound):
		h.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrCourseAlreadyReady), errors.Is(err, models.ErrNotesAlreadyQueued):
		h.RespondError(w, http.StatusConflict, err.Error())
	default:
		h.Logger.Error(logMsg, zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

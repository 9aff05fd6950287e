package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stemsi/candidate-assessment/internal/response"
	"github.com/stemsi/candidate-assessment/internal/service"
)

// failService maps a service error onto the response envelope. fallback is
// used for errors without a dedicated code.
func failService(c *gin.Context, err error, fallbackStatus int, fallback response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrCandidateNameRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrNameRequired)
	case errors.Is(err, service.ErrCandidateNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrCandidateNotFound)
	case errors.Is(err, service.ErrNoActiveAssessment):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAssessment)
	case errors.Is(err, service.ErrAssessmentNotFound):
		response.Fail(c, http.StatusBadRequest, response.ErrAssessmentNotFound)
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
	case errors.Is(err, service.ErrSessionBusy):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrUnsupportedAudio):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrAudioTooLarge):
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
	default:
		_ = c.Error(err)
		response.Fail(c, fallbackStatus, fallback)
	}
}

// sessionParam parses the :session_id path parameter, failing the request
// when it is malformed.
func sessionParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

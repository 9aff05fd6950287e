package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/candidate-assessment/internal/response"
	"github.com/stemsi/candidate-assessment/internal/service"
)

// SessionHandler drives the progression of a session.
type SessionHandler struct {
	assessmentService *service.AssessmentService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(assessmentService *service.AssessmentService) *SessionHandler {
	return &SessionHandler{assessmentService: assessmentService}
}

// Next godoc
// GET /api/v1/sessions/:session_id/next
// Returns the item under the cursor. Unknown sessions yield an error item.
func (h *SessionHandler) Next(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}

	item, err := h.assessmentService.GetNextItem(c.Request.Context(), id)
	if err != nil {
		failService(c, err, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Proceed godoc
// POST /api/v1/sessions/:session_id/proceed
// Acknowledges the greeting or the current section content.
func (h *SessionHandler) Proceed(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}

	item, err := h.assessmentService.Proceed(c.Request.Context(), id)
	if err != nil {
		failService(c, err, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Complete godoc
// POST /api/v1/sessions/:session_id/complete
func (h *SessionHandler) Complete(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}

	done, err := h.assessmentService.CompleteAssessment(c.Request.Context(), id)
	if err != nil {
		failService(c, err, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !done {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, gin.H{"session_id": id}, "Assessment completed successfully")
}

// Summary godoc
// GET /api/v1/sessions/:session_id/summary
// Reports the session with its full response log.
func (h *SessionHandler) Summary(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}

	summary, err := h.assessmentService.GetSummary(c.Request.Context(), id)
	if err != nil {
		failService(c, err, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

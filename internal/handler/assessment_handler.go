package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/response"
	"github.com/stemsi/candidate-assessment/internal/service"
	"github.com/stemsi/candidate-assessment/internal/validator"
)

// AssessmentHandler exposes the active assessment and opens sessions.
type AssessmentHandler struct {
	assessmentService *service.AssessmentService
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessmentService *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: assessmentService}
}

// GetActive godoc
// GET /api/v1/assessments/active
func (h *AssessmentHandler) GetActive(c *gin.Context) {
	info, err := h.assessmentService.GetActiveAssessment(c.Request.Context())
	if err != nil {
		failService(c, err, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, info)
}

// Start godoc
// POST /api/v1/assessments/start
// Opens a session for the candidate with a shuffled section order.
func (h *AssessmentHandler) Start(c *gin.Context) {
	var req model.StartAssessmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	// Both ids passed the uuid validator.
	candidateID := uuid.MustParse(req.CandidateID)
	assessmentID := uuid.MustParse(req.AssessmentID)

	info, err := h.assessmentService.StartAssessment(c.Request.Context(), candidateID, assessmentID)
	if err != nil {
		failService(c, err, http.StatusBadRequest, response.ErrAssessmentNotFound)
		return
	}
	response.Success(c, http.StatusCreated, info)
}

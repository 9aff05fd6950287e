package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/response"
	"github.com/stemsi/candidate-assessment/internal/service"
	"github.com/stemsi/candidate-assessment/internal/validator"
)

// CandidateHandler handles candidate registration.
type CandidateHandler struct {
	assessmentService *service.AssessmentService
}

// NewCandidateHandler creates a new CandidateHandler.
func NewCandidateHandler(assessmentService *service.AssessmentService) *CandidateHandler {
	return &CandidateHandler{assessmentService: assessmentService}
}

// Register godoc
// POST /api/v1/candidates/register
// Creates a candidate. Role defaults to "Candidate".
func (h *CandidateHandler) Register(c *gin.Context) {
	var req model.RegisterCandidateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		code := response.ErrValidation
		if _, ok := fields["name"]; ok {
			code = response.ErrNameRequired
		}
		response.FailWithFields(c, http.StatusBadRequest, code, fields)
		return
	}

	candidate, err := h.assessmentService.RegisterCandidate(c.Request.Context(), req)
	if err != nil {
		failService(c, err, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, candidate)
}

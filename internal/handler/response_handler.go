package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/response"
	"github.com/stemsi/candidate-assessment/internal/service"
	"github.com/stemsi/candidate-assessment/internal/validator"
)

// ResponseHandler accepts answer submissions.
type ResponseHandler struct {
	assessmentService *service.AssessmentService
	mediaService      *service.MediaService
}

// NewResponseHandler creates a new ResponseHandler.
func NewResponseHandler(assessmentService *service.AssessmentService, mediaService *service.MediaService) *ResponseHandler {
	return &ResponseHandler{
		assessmentService: assessmentService,
		mediaService:      mediaService,
	}
}

// Submit godoc
// POST /api/v1/responses/submit
// Grades and records an answer, then returns the following item.
func (h *ResponseHandler) Submit(c *gin.Context) {
	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.assessmentService.SubmitAnswer(c.Request.Context(),
		uuid.MustParse(req.SessionID), uuid.MustParse(req.QuestionID), req.Answer())
	if err != nil {
		failSubmit(c, err, response.ErrSubmitFailed)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// SubmitAudio godoc
// POST /api/v1/responses/submit-audio
// Multipart form with session_id, question_id and an optional "audio" file.
func (h *ResponseHandler) SubmitAudio(c *gin.Context) {
	var req model.SubmitAudioRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var audioURL string
	file, header, err := c.Request.FormFile("audio")
	switch {
	case err == nil:
		defer file.Close()
		audioURL, err = h.mediaService.SaveAudio(file, header)
		if err != nil {
			failService(c, err, http.StatusInternalServerError, response.ErrInternal)
			return
		}
	case !errors.Is(err, http.ErrMissingFile):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	result, err := h.assessmentService.SubmitAudioAnswer(c.Request.Context(),
		uuid.MustParse(req.SessionID), uuid.MustParse(req.QuestionID), audioURL)
	if err != nil {
		failSubmit(c, err, response.ErrAudioSubmitFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"result":    result,
		"audio_url": audioURL,
	})
}

// failSubmit reports a rejected submission. Missing sessions and questions
// carry an unsuccessful result in the payload.
func failSubmit(c *gin.Context, err error, code response.ErrCode) {
	if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrQuestionNotFound) {
		response.FailWithData(c, http.StatusBadRequest, code, &model.AnswerResult{Success: false})
		return
	}
	failService(c, err, http.StatusBadRequest, code)
}

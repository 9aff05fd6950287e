package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrNameRequired   ErrCode = "NAME_REQUIRED"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound           ErrCode = "NOT_FOUND"
	ErrCandidateNotFound  ErrCode = "CANDIDATE_NOT_FOUND"
	ErrNoActiveAssessment ErrCode = "NO_ACTIVE_ASSESSMENT"
	ErrAssessmentNotFound ErrCode = "ASSESSMENT_NOT_FOUND"
	ErrSessionNotFound    ErrCode = "SESSION_NOT_FOUND"
	ErrQuestionNotFound   ErrCode = "QUESTION_NOT_FOUND"
	ErrConflict           ErrCode = "CONFLICT"

	// ─── Answers ───────────────────────────────────────────────────────
	ErrSubmitFailed      ErrCode = "SUBMIT_FAILED"
	ErrAudioSubmitFailed ErrCode = "AUDIO_SUBMIT_FAILED"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrNameRequired:
		return "Name is required"

	case ErrNotFound:
		return "Resource not found."
	case ErrCandidateNotFound:
		return "Candidate not found"
	case ErrNoActiveAssessment:
		return "No active assessment found"
	case ErrAssessmentNotFound:
		return "Assessment not found"
	case ErrSessionNotFound:
		return "Session not found"
	case ErrQuestionNotFound:
		return "Question not found"
	case ErrConflict:
		return "The session was updated by another request. Please retry."

	case ErrSubmitFailed:
		return "Failed to submit answer"
	case ErrAudioSubmitFailed:
		return "Failed to submit audio answer"

	case ErrUnsupportedFile:
		return "Unsupported audio format."
	case ErrFileTooLarge:
		return "Audio file exceeds the size limit."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}

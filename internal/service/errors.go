package service

import "errors"

// Sentinel errors returned by the assessment services.
var (
	ErrCandidateNameRequired = errors.New("candidate name is required")
	ErrCandidateNotFound     = errors.New("candidate not found")
	ErrAssessmentNotFound    = errors.New("assessment not found")
	ErrNoActiveAssessment    = errors.New("no active assessment found")
	ErrSessionNotFound       = errors.New("session not found")
	ErrQuestionNotFound      = errors.New("question not found")
	ErrSessionBusy           = errors.New("session is being updated concurrently")
)

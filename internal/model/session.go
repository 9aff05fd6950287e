package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a candidate session.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
)

// CandidateSession is one assessment attempt. The (CurrentSectionIndex,
// CurrentQuestionIndex) pair is the progression cursor; -1 on the section axis
// means the greeting has not been acknowledged and -1 on the question axis
// means the section content has not been acknowledged.
type CandidateSession struct {
	ID                   uuid.UUID     `json:"id"`
	CandidateID          uuid.UUID     `json:"candidate_id"`
	AssessmentID         uuid.UUID     `json:"assessment_id"`
	Status               SessionStatus `json:"status"`
	CurrentSectionIndex  int           `json:"current_section_index"`
	CurrentQuestionIndex int           `json:"current_question_index"`
	SectionOrder         []uuid.UUID   `json:"section_order"`
	Version              int64         `json:"version"`
	StartedAt            time.Time     `json:"started_at"`
	CompletedAt          *time.Time    `json:"completed_at,omitempty"`
	FinalScore           *int          `json:"final_score,omitempty"`
	MaxScore             *int          `json:"max_score,omitempty"`

	// Joined from candidates on read.
	CandidateName string `json:"candidate_name,omitempty"`
}

// StartAssessmentRequest is the payload to open a session.
type StartAssessmentRequest struct {
	CandidateID  string `json:"candidate_id" binding:"required,uuid"`
	AssessmentID string `json:"assessment_id" binding:"required,uuid"`
}

// SessionInfo is returned when a session starts.
type SessionInfo struct {
	ID             uuid.UUID     `json:"id"`
	CandidateID    uuid.UUID     `json:"candidate_id"`
	AssessmentID   uuid.UUID     `json:"assessment_id"`
	Status         SessionStatus `json:"status"`
	TotalSections  int           `json:"total_sections"`
	TotalQuestions int           `json:"total_questions"`
}

// SessionSummary is the read-only report of a session and its response log.
type SessionSummary struct {
	SessionID      uuid.UUID           `json:"session_id"`
	CandidateID    uuid.UUID           `json:"candidate_id"`
	CandidateName  string              `json:"candidate_name"`
	AssessmentID   uuid.UUID           `json:"assessment_id"`
	Status         SessionStatus       `json:"status"`
	StartedAt      time.Time           `json:"started_at"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	AnsweredCount  int                 `json:"answered_count"`
	TotalQuestions int                 `json:"total_questions"`
	TotalScore     int                 `json:"total_score"`
	FinalScore     *int                `json:"final_score,omitempty"`
	MaxScore       *int                `json:"max_score,omitempty"`
	Responses      []CandidateResponse `json:"responses"`
}

// FinalScore is the aggregate written onto a completed session.
type FinalScore struct {
	SessionID  uuid.UUID `json:"session_id"`
	FinalScore int       `json:"final_score"`
	MaxScore   int       `json:"max_score"`
}

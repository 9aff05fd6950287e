package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AudioResponsePlaceholder is stored as the answer text of recorded speech.
const AudioResponsePlaceholder = "[Audio Response Recorded]"

// CandidateResponse is one immutable entry of the response log.
// IsCorrect is nil when the question is not auto-gradable.
type CandidateResponse struct {
	ID             uuid.UUID `json:"id"`
	SessionID      uuid.UUID `json:"session_id"`
	QuestionID     uuid.UUID `json:"question_id"`
	AnswerText     *string   `json:"answer_text,omitempty"`
	SelectedOption *string   `json:"selected_option,omitempty"`
	IsCorrect      *bool     `json:"is_correct"`
	ScoreEarned    int       `json:"score_earned"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// Answer is the candidate's submission. Exactly which field is read depends on
// the question kind.
type Answer struct {
	Text    string            `json:"answer_text,omitempty"`
	Option  string            `json:"selected_option,omitempty"`
	Options []string          `json:"selected_options,omitempty"`
	Blanks  map[string]string `json:"blank_answers,omitempty"`
}

// StoredText serializes the answer for the response log: selections joined
// with ", ", blank answers as a JSON object, otherwise the free text.
func (a Answer) StoredText() *string {
	switch {
	case len(a.Options) > 0:
		s := strings.Join(a.Options, ", ")
		return &s
	case len(a.Blanks) > 0:
		b, err := json.Marshal(a.Blanks)
		if err != nil {
			return nil
		}
		s := string(b)
		return &s
	case a.Text != "":
		s := a.Text
		return &s
	}
	return nil
}

// StoredOption returns the single selected option, if any.
func (a Answer) StoredOption() *string {
	if a.Option == "" {
		return nil
	}
	s := a.Option
	return &s
}

// SubmitAnswerRequest is the payload of an answer submission.
type SubmitAnswerRequest struct {
	SessionID       string            `json:"session_id" binding:"required,uuid"`
	QuestionID      string            `json:"question_id" binding:"required,uuid"`
	AnswerText      string            `json:"answer_text"`
	SelectedOption  string            `json:"selected_option"`
	SelectedOptions []string          `json:"selected_options"`
	BlankAnswers    map[string]string `json:"blank_answers"`
}

// Answer extracts the answer payload from the request.
func (r *SubmitAnswerRequest) Answer() Answer {
	return Answer{
		Text:    r.AnswerText,
		Option:  r.SelectedOption,
		Options: r.SelectedOptions,
		Blanks:  r.BlankAnswers,
	}
}

// SubmitAudioRequest is the form part of a multipart audio submission. The
// recording travels in the "audio" file part.
type SubmitAudioRequest struct {
	SessionID  string `form:"session_id" binding:"required,uuid"`
	QuestionID string `form:"question_id" binding:"required,uuid"`
}

// AnswerResult acknowledges a submission and carries the following item.
type AnswerResult struct {
	Success     bool      `json:"success"`
	IsCorrect   *bool     `json:"is_correct"`
	ScoreEarned int       `json:"score_earned"`
	NextItem    *NextItem `json:"next_item"`
}

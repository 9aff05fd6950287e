package websocket

import (
	"github.com/stemsi/candidate-assessment/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionNext     Action = "next"
	ActionProceed  Action = "proceed"
	ActionSubmit   Action = "submit"
	ActionComplete Action = "complete"
	ActionPing     Action = "ping"
)

// Request is one client frame. Only submit reads the answer fields.
type Request struct {
	Action          Action            `json:"action"`
	QuestionID      string            `json:"question_id,omitempty"`
	AnswerText      string            `json:"answer_text,omitempty"`
	SelectedOption  string            `json:"selected_option,omitempty"`
	SelectedOptions []string          `json:"selected_options,omitempty"`
	BlankAnswers    map[string]string `json:"blank_answers,omitempty"`
}

// Answer extracts the answer carried by a submit frame.
func (r *Request) Answer() model.Answer {
	return model.Answer{
		Text:    r.AnswerText,
		Option:  r.SelectedOption,
		Options: r.SelectedOptions,
		Blanks:  r.BlankAnswers,
	}
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventItem      Event = "item"
	EventAnswer    Event = "answer"
	EventCompleted Event = "completed"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// Frame is one server frame.
type Frame struct {
	Event Event  `json:"event"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// CompletedData acknowledges a completion request.
type CompletedData struct {
	SessionID string `json:"session_id"`
	Completed bool   `json:"completed"`
}

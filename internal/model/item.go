package model

import "github.com/google/uuid"

// ItemType is what the client renders next.
type ItemType string

const (
	ItemTypeGreeting  ItemType = "greeting"
	ItemTypeContent   ItemType = "content"
	ItemTypeQuestion  ItemType = "question"
	ItemTypeCompleted ItemType = "completed"
	ItemTypeError     ItemType = "error"

	// MessageTypeCompletion is the chat message type of the completed item.
	MessageTypeCompletion ItemType = "completion"
)

// NextItem is the unit the progression engine emits.
type NextItem struct {
	ItemType             ItemType     `json:"item_type"`
	Message              *ChatMessage `json:"message,omitempty"`
	IsAssessmentComplete bool         `json:"is_assessment_complete"`
}

// ChatMessage is the chat-style bubble attached to an item.
type ChatMessage struct {
	Type     ItemType         `json:"type"`
	Text     string           `json:"text,omitempty"`
	Content  *ContentPayload  `json:"content,omitempty"`
	Question *QuestionPayload `json:"question,omitempty"`
	Progress *Progress        `json:"progress,omitempty"`
}

// ContentPayload is the section material shown before its questions.
type ContentPayload struct {
	Type     SectionType `json:"type"`
	AudioURL string      `json:"audio_url,omitempty"`
	ImageURL string      `json:"image_url,omitempty"`
	Passage  string      `json:"passage,omitempty"`
	Title    string      `json:"title,omitempty"`
}

// BlankPrompt is a blank as sent to the client, without its answer.
type BlankPrompt struct {
	ID          string `json:"id"`
	Placeholder string `json:"placeholder"`
}

// QuestionPayload is a question as sent to the client. It never carries the
// correct answer.
type QuestionPayload struct {
	ID             uuid.UUID     `json:"id"`
	Text           string        `json:"text"`
	Type           QuestionType  `json:"question_type"`
	SubType        QuestionType  `json:"sub_question_type,omitempty"`
	Options        []string      `json:"options,omitempty"`
	Blanks         []BlankPrompt `json:"blanks,omitempty"`
	ImageURL       string        `json:"image_url,omitempty"`
	AudioURL       string        `json:"audio_url,omitempty"`
	Passage        string        `json:"passage,omitempty"`
	PassageTitle   string        `json:"passage_title,omitempty"`
	QuestionNumber int           `json:"question_number"`
	TotalInSection int           `json:"total_in_section"`
	SectionType    SectionType   `json:"section_type"`
}

// NewQuestionPayload builds the client view of q at position index of total.
func NewQuestionPayload(q *Question, section SectionType, index, total int) *QuestionPayload {
	p := &QuestionPayload{
		ID:             q.ID,
		Text:           q.Text,
		Type:           q.Type,
		SubType:        q.SubType,
		Options:        q.Options(),
		ImageURL:       q.Media.ImageURL,
		AudioURL:       q.Media.AudioURL,
		Passage:        q.Media.Passage,
		PassageTitle:   q.Media.PassageTitle,
		QuestionNumber: index + 1,
		TotalInSection: total,
		SectionType:    section,
	}
	if _, ok := q.Key.(TrueFalseKey); ok && len(p.Options) == 0 {
		p.Options = []string{"True", "False"}
	}
	for _, b := range q.Blanks() {
		p.Blanks = append(p.Blanks, BlankPrompt{ID: b.ID, Placeholder: b.Placeholder})
	}
	return p
}

// Progress is the position indicator shown alongside every item.
type Progress struct {
	CurrentSection  int     `json:"current_section"`
	TotalSections   int     `json:"total_sections"`
	CurrentQuestion int     `json:"current_question"`
	TotalQuestions  int     `json:"total_questions"`
	PercentComplete float64 `json:"percent_complete"`
}

// ErrorItem wraps msg in an error item.
func ErrorItem(msg string) *NextItem {
	return &NextItem{
		ItemType: ItemTypeError,
		Message:  &ChatMessage{Type: ItemTypeError, Text: msg},
	}
}

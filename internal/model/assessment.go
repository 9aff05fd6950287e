package model

import (
	"time"

	"github.com/google/uuid"
)

// SectionType enumerates the themed blocks an assessment is made of.
type SectionType string

const (
	SectionTypeAudio    SectionType = "audio"
	SectionTypeSpeaking SectionType = "speaking"
	SectionTypeImage    SectionType = "image"
	SectionTypeReading  SectionType = "reading"
	SectionTypeWriting  SectionType = "writing"
)

// HasContent reports whether a section presents a content item before its
// first question. Speaking and writing sections go straight to questions.
func (t SectionType) HasContent() bool {
	return t != SectionTypeSpeaking && t != SectionTypeWriting
}

// Assessment is the root of the content catalog.
type Assessment struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	Sections    []Section `json:"sections,omitempty"`
}

// SectionIDs returns the ids of the assessment's sections in display order.
func (a *Assessment) SectionIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(a.Sections))
	for i := range a.Sections {
		ids[i] = a.Sections[i].ID
	}
	return ids
}

// TotalQuestions counts questions across all sections.
func (a *Assessment) TotalQuestions() int {
	total := 0
	for i := range a.Sections {
		total += len(a.Sections[i].Questions)
	}
	return total
}

// Section is a themed block with at most one content payload and an ordered
// list of questions.
type Section struct {
	ID           uuid.UUID       `json:"id"`
	AssessmentID uuid.UUID       `json:"assessment_id"`
	Type         SectionType     `json:"type"`
	DisplayOrder int             `json:"display_order"`
	Audio        *AudioContent   `json:"audio,omitempty"`
	Image        *ImageContent   `json:"image,omitempty"`
	Reading      *ReadingContent `json:"reading,omitempty"`
	Questions    []Question      `json:"-"`
}

// AudioContent is the clip played before a listening section.
type AudioContent struct {
	AudioURL   string `json:"audio_url"`
	Transcript string `json:"transcript,omitempty"`
}

// ImageContent is the picture shown before a visual section.
type ImageContent struct {
	ImageURL string `json:"image_url"`
	AltText  string `json:"alt_text,omitempty"`
}

// ReadingContent is the passage shown before a reading section.
type ReadingContent struct {
	Title   string `json:"title,omitempty"`
	Passage string `json:"passage"`
}

// AssessmentInfo is the public summary of the active assessment.
type AssessmentInfo struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	TotalSections  int       `json:"total_sections"`
	TotalQuestions int       `json:"total_questions"`
}

package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/stemsi/candidate-assessment/internal/model"
)

// SectionContent is the LEFT JOINed content columns of a section row.
type SectionContent struct {
	AudioURL     *string
	Transcript   *string
	ImageURL     *string
	AltText      *string
	ReadingTitle *string
	Passage      *string
}

// Attach sets the content matching the section type. Rows of another kind are
// ignored.
func (c SectionContent) Attach(s *model.Section) {
	switch s.Type {
	case model.SectionTypeAudio:
		if c.AudioURL != nil {
			s.Audio = &model.AudioContent{AudioURL: *c.AudioURL, Transcript: deref(c.Transcript)}
		}
	case model.SectionTypeImage:
		if c.ImageURL != nil {
			s.Image = &model.ImageContent{ImageURL: *c.ImageURL, AltText: deref(c.AltText)}
		}
	case model.SectionTypeReading:
		if c.Passage != nil {
			s.Reading = &model.ReadingContent{Title: deref(c.ReadingTitle), Passage: *c.Passage}
		}
	}
}

// GroupQuestions distributes questions onto their sections, preserving order.
func GroupQuestions(sections []model.Section, questions []model.Question) {
	index := make(map[uuid.UUID]int, len(sections))
	for i := range sections {
		index[sections[i].ID] = i
	}
	for _, q := range questions {
		if i, ok := index[q.SectionID]; ok {
			sections[i].Questions = append(sections[i].Questions, q)
		}
	}
}

// EncodeSectionOrder serializes the section permutation for storage.
func EncodeSectionOrder(order []uuid.UUID) (string, error) {
	if order == nil {
		order = []uuid.UUID{}
	}
	raw, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("encode section order: %w", err)
	}
	return string(raw), nil
}

// DecodeSectionOrder parses a stored section permutation.
func DecodeSectionOrder(raw []byte) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var order []uuid.UUID
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode section order: %w", err)
	}
	return order, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

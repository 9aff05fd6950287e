package service

import (
	"fmt"

	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/progression"
)

const completedText = "🎉 Congratulations! You have completed the assessment.\n\nThank you for your participation."

func greetingItem(name string, p *model.Progress) *model.NextItem {
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("Hello %s! 👋\n\nWelcome to the English Proficiency Assessment. "+
		"This assessment includes listening, visual comprehension, and reading sections.\n\n"+
		"Are you ready to begin?", name)

	return &model.NextItem{
		ItemType: model.ItemTypeGreeting,
		Message:  &model.ChatMessage{Type: model.ItemTypeGreeting, Text: text, Progress: p},
	}
}

func contentItem(sec *model.Section, p *model.Progress) *model.NextItem {
	return &model.NextItem{
		ItemType: model.ItemTypeContent,
		Message: &model.ChatMessage{
			Type:     model.ItemTypeContent,
			Text:     introText(sec.Type),
			Content:  contentPayload(sec),
			Progress: p,
		},
	}
}

func questionItem(step progression.Step, p *model.Progress) *model.NextItem {
	sec := step.Section
	return &model.NextItem{
		ItemType: model.ItemTypeQuestion,
		Message: &model.ChatMessage{
			Type:     model.ItemTypeQuestion,
			Text:     step.Question.Text,
			Question: model.NewQuestionPayload(step.Question, sec.Type, step.Cursor.Question, len(sec.Questions)),
			Progress: p,
		},
	}
}

func completedItem(p *model.Progress) *model.NextItem {
	return &model.NextItem{
		ItemType:             model.ItemTypeCompleted,
		IsAssessmentComplete: true,
		Message: &model.ChatMessage{
			Type:     model.MessageTypeCompletion,
			Text:     completedText,
			Progress: p,
		},
	}
}

func introText(t model.SectionType) string {
	switch t {
	case model.SectionTypeAudio:
		return "🎧 **Listening Section**\n\nPlease listen carefully to the following audio. Note: You can only play the audio once."
	case model.SectionTypeImage:
		return "🖼️ **Visual Section**\n\nPlease examine the following image carefully. You can zoom in for a closer look."
	case model.SectionTypeReading:
		return "📖 **Reading Section**\n\nPlease read the following passage carefully. The passage will disappear once you proceed to questions."
	}
	return "Please review the following content."
}

// contentPayload returns the material of sec. A section whose content row is
// missing still yields a payload of its type with empty fields.
func contentPayload(sec *model.Section) *model.ContentPayload {
	c := &model.ContentPayload{Type: sec.Type}
	switch sec.Type {
	case model.SectionTypeAudio:
		if sec.Audio != nil {
			c.AudioURL = sec.Audio.AudioURL
		}
	case model.SectionTypeImage:
		if sec.Image != nil {
			c.ImageURL = sec.Image.ImageURL
			c.Title = sec.Image.AltText
		}
	case model.SectionTypeReading:
		if sec.Reading != nil {
			c.Passage = sec.Reading.Passage
			c.Title = sec.Reading.Title
		}
	default:
		c.Type = "unknown"
	}
	return c
}

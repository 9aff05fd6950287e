package model

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// QuestionType is the stored question type code.
type QuestionType string

const (
	QuestionTypeMCQ        QuestionType = "mcq"
	QuestionTypeMAQ        QuestionType = "maq"
	QuestionTypeTrueFalse  QuestionType = "true_false"
	QuestionTypeFillBlanks QuestionType = "fill_blanks"
	QuestionTypeWriting    QuestionType = "writing"
	QuestionTypeSpeaking   QuestionType = "speaking"
	QuestionTypeImage      QuestionType = "image"

	// Composite items: the answer shape comes from the sub-type.
	QuestionTypeReading   QuestionType = "reading"
	QuestionTypeListening QuestionType = "listening"

	// Legacy codes still present in older catalogs.
	QuestionTypeText QuestionType = "text"
	QuestionTypeBoth QuestionType = "both"
)

// IsComposite reports whether the type delegates its answer shape to a sub-type.
func (t QuestionType) IsComposite() bool {
	return t == QuestionTypeReading || t == QuestionTypeListening
}

// Blank is one gap of a fill-in-the-blanks question.
type Blank struct {
	ID            string `json:"id"`
	Placeholder   string `json:"placeholder"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// AnswerKey is the grading shape of a question. It is a closed set: every
// question carries exactly one of SingleChoiceKey, TrueFalseKey,
// MultiChoiceKey, BlanksKey or OpenKey.
type AnswerKey interface {
	answerKey()
}

// SingleChoiceKey grades one selected option by label prefix.
type SingleChoiceKey struct {
	Options []string
	Correct string
}

// TrueFalseKey grades one selected option by exact (case-insensitive) match.
type TrueFalseKey struct {
	Options []string
	Correct string
}

// MultiChoiceKey grades a set of selected option labels by set equality.
type MultiChoiceKey struct {
	Options []string
	Correct []string
}

// BlanksKey grades every blank, all or nothing.
type BlanksKey struct {
	Blanks []Blank
}

// OpenKey marks a free response that is stored but not auto-graded.
type OpenKey struct {
	Options []string
}

func (SingleChoiceKey) answerKey() {}
func (TrueFalseKey) answerKey()    {}
func (MultiChoiceKey) answerKey()  {}
func (BlanksKey) answerKey()       {}
func (OpenKey) answerKey()         {}

// QuestionMedia holds optional per-question attachments.
type QuestionMedia struct {
	ImageURL     string `json:"image_url,omitempty"`
	AudioURL     string `json:"audio_url,omitempty"`
	Passage      string `json:"passage,omitempty"`
	PassageTitle string `json:"passage_title,omitempty"`
}

// Question is a catalog question with its decoded answer key.
type Question struct {
	ID           uuid.UUID
	SectionID    uuid.UUID
	Text         string
	Type         QuestionType
	SubType      QuestionType
	Score        int
	DisplayOrder int
	Media        QuestionMedia
	Key          AnswerKey
}

// Options returns the choices shown to the candidate, if any.
func (q *Question) Options() []string {
	switch k := q.Key.(type) {
	case SingleChoiceKey:
		return k.Options
	case TrueFalseKey:
		return k.Options
	case MultiChoiceKey:
		return k.Options
	case OpenKey:
		return k.Options
	}
	return nil
}

// Blanks returns the gaps of a fill-in-the-blanks question.
func (q *Question) Blanks() []Blank {
	if k, ok := q.Key.(BlanksKey); ok {
		return k.Blanks
	}
	return nil
}

// QuestionRecord is the flat storage form of a question, one column per field.
// Options and Blanks hold JSON text exactly as stored.
type QuestionRecord struct {
	ID            uuid.UUID    `json:"id"`
	SectionID     uuid.UUID    `json:"section_id"`
	Text          string       `json:"question_text"`
	Type          QuestionType `json:"question_type"`
	SubType       QuestionType `json:"sub_question_type,omitempty"`
	Options       string       `json:"options,omitempty"`
	Blanks        string       `json:"blanks,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	ImageURL      string       `json:"image_url,omitempty"`
	AudioURL      string       `json:"audio_url,omitempty"`
	Passage       string       `json:"passage,omitempty"`
	PassageTitle  string       `json:"passage_title,omitempty"`
	Score         int          `json:"score"`
	DisplayOrder  int          `json:"display_order"`
}

// Question decodes the record into a Question. Malformed options or blanks
// are treated as absent.
func (r QuestionRecord) Question() Question {
	score := r.Score
	if score < 0 {
		score = 0
	}
	return Question{
		ID:           r.ID,
		SectionID:    r.SectionID,
		Text:         r.Text,
		Type:         r.Type,
		SubType:      r.SubType,
		Score:        score,
		DisplayOrder: r.DisplayOrder,
		Media: QuestionMedia{
			ImageURL:     r.ImageURL,
			AudioURL:     r.AudioURL,
			Passage:      r.Passage,
			PassageTitle: r.PassageTitle,
		},
		Key: decodeKey(r),
	}
}

// Record encodes the question back into its storage form.
func (q *Question) Record() QuestionRecord {
	r := QuestionRecord{
		ID:           q.ID,
		SectionID:    q.SectionID,
		Text:         q.Text,
		Type:         q.Type,
		SubType:      q.SubType,
		ImageURL:     q.Media.ImageURL,
		AudioURL:     q.Media.AudioURL,
		Passage:      q.Media.Passage,
		PassageTitle: q.Media.PassageTitle,
		Score:        q.Score,
		DisplayOrder: q.DisplayOrder,
	}
	r.Options = encodeJSON(q.Options())

	switch k := q.Key.(type) {
	case SingleChoiceKey:
		r.CorrectAnswer = k.Correct
	case TrueFalseKey:
		r.CorrectAnswer = k.Correct
	case MultiChoiceKey:
		r.CorrectAnswer = strings.Join(k.Correct, ",")
	case BlanksKey:
		r.Blanks = encodeJSON(k.Blanks)
	}
	return r
}

func decodeKey(r QuestionRecord) AnswerKey {
	shape := r.Type
	if shape.IsComposite() {
		shape = r.SubType
	}
	options := DecodeOptions(r.Options)

	switch shape {
	case QuestionTypeMCQ, QuestionTypeBoth:
		return SingleChoiceKey{Options: options, Correct: r.CorrectAnswer}
	case QuestionTypeTrueFalse:
		return TrueFalseKey{Options: options, Correct: r.CorrectAnswer}
	case QuestionTypeMAQ:
		return MultiChoiceKey{Options: options, Correct: splitLabels(r.CorrectAnswer)}
	case QuestionTypeFillBlanks:
		return BlanksKey{Blanks: DecodeBlanks(r.Blanks)}
	case QuestionTypeImage:
		if len(options) > 0 && r.CorrectAnswer != "" {
			return SingleChoiceKey{Options: options, Correct: r.CorrectAnswer}
		}
	}
	return OpenKey{Options: options}
}

// DecodeOptions parses a stored JSON string array, returning nil when the
// value is empty or malformed.
func DecodeOptions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var options []string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil
	}
	return options
}

// DecodeBlanks parses a stored JSON blank list, returning nil when the value
// is empty or malformed. Answer keys written as correct_answer, correctAnswer
// or CorrectAnswer are all accepted.
func DecodeBlanks(raw string) []Blank {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var stored []struct {
		ID            string `json:"id"`
		Placeholder   string `json:"placeholder"`
		CorrectAnswer string `json:"correct_answer"`
		LegacyAnswer  string `json:"correctAnswer"`
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil
	}
	blanks := make([]Blank, len(stored))
	for i, b := range stored {
		answer := b.CorrectAnswer
		if answer == "" {
			answer = b.LegacyAnswer
		}
		blanks[i] = Blank{ID: b.ID, Placeholder: b.Placeholder, CorrectAnswer: answer}
	}
	return blanks
}

func splitLabels(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		labels = append(labels, strings.TrimSpace(p))
	}
	return labels
}

func encodeJSON[T any](v []T) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

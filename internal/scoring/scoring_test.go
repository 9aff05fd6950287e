package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/candidate-assessment/internal/model"
)

func question(r model.QuestionRecord) *model.Question {
	r.ID = uuid.New()
	q := r.Question()
	return &q
}

func TestGrade(t *testing.T) {
	mcq := question(model.QuestionRecord{
		Type:          model.QuestionTypeMCQ,
		Options:       `["A) Increased","B) Dropped by over 80%","C) Stayed flat"]`,
		CorrectAnswer: "B",
		Score:         2,
	})
	maq := question(model.QuestionRecord{
		Type:          model.QuestionTypeMAQ,
		Options:       `["A) one","B) two","C) three","D) four"]`,
		CorrectAnswer: "A,C",
		Score:         1,
	})
	tf := question(model.QuestionRecord{
		Type:          model.QuestionTypeTrueFalse,
		Options:       `["True","False"]`,
		CorrectAnswer: "True",
		Score:         1,
	})
	blanks := question(model.QuestionRecord{
		Type:   model.QuestionTypeFillBlanks,
		Blanks: `[{"id":"b1","placeholder":"...","correct_answer":"solar"},{"id":"b2","placeholder":"...","correctAnswer":"wind"}]`,
		Score:  3,
	})
	readingMAQ := question(model.QuestionRecord{
		Type:          model.QuestionTypeReading,
		SubType:       model.QuestionTypeMAQ,
		Options:       `["A) x","B) y","C) z"]`,
		CorrectAnswer: "B, C",
		Score:         1,
	})

	tests := []struct {
		name      string
		q         *model.Question
		answer    model.Answer
		wantNil   bool
		wantOK    bool
		wantScore int
	}{
		{"mcq prefix match", mcq, model.Answer{Option: "B) Dropped by over 80%"}, false, true, 2},
		{"mcq case insensitive", mcq, model.Answer{Option: "b) dropped"}, false, true, 2},
		{"mcq wrong", mcq, model.Answer{Option: "A) Increased"}, false, false, 0},
		{"mcq empty selection is ungraded", mcq, model.Answer{}, true, false, 0},
		{"maq exact set", maq, model.Answer{Options: []string{"A", "C"}}, false, true, 1},
		{"maq full option text", maq, model.Answer{Options: []string{"C) three", "A) one"}}, false, true, 1},
		{"maq subset", maq, model.Answer{Options: []string{"A"}}, false, false, 0},
		{"maq superset", maq, model.Answer{Options: []string{"A", "C", "D"}}, false, false, 0},
		{"maq empty selection", maq, model.Answer{Options: []string{}}, false, false, 0},
		{"maq missing selection", maq, model.Answer{}, true, false, 0},
		{"true false exact", tf, model.Answer{Option: "true"}, false, true, 1},
		{"true false no prefix", tf, model.Answer{Option: "True!"}, false, false, 0},
		{"blanks all match", blanks, model.Answer{Blanks: map[string]string{"b1": "Solar", "b2": "WIND"}}, false, true, 3},
		{"blanks partial", blanks, model.Answer{Blanks: map[string]string{"b1": "solar", "b2": "coal"}}, false, false, 0},
		{"blanks missing id", blanks, model.Answer{Blanks: map[string]string{"b1": "solar"}}, false, false, 0},
		{"reading maq by sub type", readingMAQ, model.Answer{Options: []string{"B", "C"}}, false, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Grade(tt.q, tt.answer)
			if tt.wantNil {
				assert.Nil(t, res.IsCorrect)
				assert.Zero(t, res.ScoreEarned)
				return
			}
			require.NotNil(t, res.IsCorrect)
			assert.Equal(t, tt.wantOK, *res.IsCorrect)
			assert.Equal(t, tt.wantScore, res.ScoreEarned)
		})
	}
}

func TestGradeUngradedKinds(t *testing.T) {
	kinds := []model.QuestionRecord{
		{Type: model.QuestionTypeWriting},
		{Type: model.QuestionTypeSpeaking},
		{Type: model.QuestionTypeText},
		{Type: model.QuestionTypeImage},
		{Type: model.QuestionTypeReading},
		{Type: model.QuestionTypeListening, SubType: "essay"},
	}
	for _, r := range kinds {
		q := question(r)
		res := Grade(q, model.Answer{Text: "some words", Option: "A"})
		assert.Nil(t, res.IsCorrect, string(r.Type))
		assert.Zero(t, res.ScoreEarned, string(r.Type))
		assert.False(t, Gradable(q), string(r.Type))
	}
}

func TestGradeMalformedStoredData(t *testing.T) {
	q := question(model.QuestionRecord{
		Type:   model.QuestionTypeFillBlanks,
		Blanks: `{not json`,
	})
	assert.Nil(t, q.Blanks())

	res := Grade(q, model.Answer{Blanks: map[string]string{"b1": "x"}})
	assert.Nil(t, res.IsCorrect)

	mcq := question(model.QuestionRecord{
		Type:          model.QuestionTypeMCQ,
		Options:       `[broken`,
		CorrectAnswer: "A",
	})
	assert.Nil(t, mcq.Options())
	res = Grade(mcq, model.Answer{Option: "A) fine"})
	require.NotNil(t, res.IsCorrect)
	assert.True(t, *res.IsCorrect)
}

func TestGradeImageWithOptions(t *testing.T) {
	q := question(model.QuestionRecord{
		Type:          model.QuestionTypeImage,
		Options:       `["A) horse","B) cow"]`,
		CorrectAnswer: "A",
		Score:         1,
	})
	res := Grade(q, model.Answer{Option: "A) horse"})
	require.NotNil(t, res.IsCorrect)
	assert.True(t, *res.IsCorrect)
	assert.Equal(t, 1, res.ScoreEarned)
}

func TestGradeZeroWeight(t *testing.T) {
	q := question(model.QuestionRecord{
		Type:          model.QuestionTypeMCQ,
		Options:       `["A) x","B) y"]`,
		CorrectAnswer: "A",
		Score:         0,
	})
	assert.Zero(t, q.Score)

	res := Grade(q, model.Answer{Option: "A) x"})
	require.NotNil(t, res.IsCorrect)
	assert.True(t, *res.IsCorrect)
	assert.Zero(t, res.ScoreEarned)
}

func TestGradeNegativeWeightClampsToZero(t *testing.T) {
	q := question(model.QuestionRecord{
		Type:          model.QuestionTypeTrueFalse,
		CorrectAnswer: "False",
		Score:         -3,
	})
	res := Grade(q, model.Answer{Option: "false"})
	require.NotNil(t, res.IsCorrect)
	assert.Zero(t, res.ScoreEarned)
}

func TestGradeEmptyBlankList(t *testing.T) {
	q := question(model.QuestionRecord{
		Type:   model.QuestionTypeFillBlanks,
		Blanks: `[]`,
		Score:  2,
	})
	assert.True(t, Gradable(q))

	res := Grade(q, model.Answer{Blanks: map[string]string{}})
	require.NotNil(t, res.IsCorrect)
	assert.True(t, *res.IsCorrect)
	assert.Equal(t, 2, res.ScoreEarned)

	res = Grade(q, model.Answer{})
	assert.Nil(t, res.IsCorrect)
}

func TestOptionLabel(t *testing.T) {
	assert.Equal(t, "A", OptionLabel("A) Solar panels"))
	assert.Equal(t, "B", OptionLabel(" B "))
	assert.Equal(t, "10", OptionLabel("10) ten"))
	assert.Equal(t, "no label here", OptionLabel("no label here"))
	assert.Equal(t, "(x)", OptionLabel("(x)"))
}

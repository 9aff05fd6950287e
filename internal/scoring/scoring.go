// Package scoring grades submitted answers against a question's answer key.
package scoring

import (
	"strings"
	"unicode"

	"github.com/stemsi/candidate-assessment/internal/model"
)

// Result is the outcome of grading one answer. IsCorrect is nil when the
// question is not auto-gradable; ScoreEarned is then 0.
type Result struct {
	IsCorrect   *bool
	ScoreEarned int
}

// Graded reports whether the answer received a correctness verdict.
func (r Result) Graded() bool {
	return r.IsCorrect != nil
}

// Grade scores answer against q. The question's weight is awarded only when
// the answer is correct.
func Grade(q *model.Question, answer model.Answer) Result {
	var verdict *bool

	switch k := q.Key.(type) {
	case model.SingleChoiceKey:
		verdict = gradeSingleChoice(k, answer.Option)
	case model.TrueFalseKey:
		verdict = gradeTrueFalse(k, answer.Option)
	case model.MultiChoiceKey:
		verdict = gradeMultiChoice(k, answer.Options)
	case model.BlanksKey:
		verdict = gradeBlanks(k, answer.Blanks)
	}

	if verdict == nil {
		return Result{}
	}
	res := Result{IsCorrect: verdict}
	if *verdict {
		res.ScoreEarned = q.Score
	}
	return res
}

// Gradable reports whether q can ever produce a verdict. Used to compute the
// maximum attainable score.
func Gradable(q *model.Question) bool {
	switch k := q.Key.(type) {
	case model.SingleChoiceKey:
		return k.Correct != ""
	case model.TrueFalseKey:
		return k.Correct != ""
	case model.MultiChoiceKey:
		return len(k.Correct) > 0
	case model.BlanksKey:
		return k.Blanks != nil
	}
	return false
}

// Stored correct answers may hold only the leading label ("B") while the
// client submits the full option text ("B) Dropped by over 80%").
func gradeSingleChoice(k model.SingleChoiceKey, selected string) *bool {
	if selected == "" || k.Correct == "" {
		return nil
	}
	ok := strings.HasPrefix(strings.ToLower(selected), strings.ToLower(k.Correct))
	return &ok
}

func gradeTrueFalse(k model.TrueFalseKey, selected string) *bool {
	if selected == "" || k.Correct == "" {
		return nil
	}
	ok := strings.EqualFold(selected, k.Correct)
	return &ok
}

func gradeMultiChoice(k model.MultiChoiceKey, selected []string) *bool {
	if selected == nil || len(k.Correct) == 0 {
		return nil
	}

	want := make(map[string]struct{}, len(k.Correct))
	for _, c := range k.Correct {
		want[c] = struct{}{}
	}
	got := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		got[OptionLabel(s)] = struct{}{}
	}

	ok := len(got) == len(want)
	if ok {
		for label := range got {
			if _, found := want[label]; !found {
				ok = false
				break
			}
		}
	}
	return &ok
}

// An empty but well-formed blank list is vacuously correct; a missing or
// malformed one is ungraded.
func gradeBlanks(k model.BlanksKey, answers map[string]string) *bool {
	if answers == nil || k.Blanks == nil {
		return nil
	}
	ok := true
	for _, b := range k.Blanks {
		v, found := answers[b.ID]
		if !found || b.CorrectAnswer == "" || !strings.EqualFold(v, b.CorrectAnswer) {
			ok = false
			break
		}
	}
	return &ok
}

// OptionLabel reduces an option rendered as "A) text" to its label "A".
// Anything else is returned trimmed.
func OptionLabel(option string) string {
	s := strings.TrimSpace(option)
	if i := strings.Index(s, ")"); i > 0 && i <= 3 {
		if label := strings.TrimSpace(s[:i]); isLabel(label) {
			return label
		}
	}
	return s
}

func isLabel(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

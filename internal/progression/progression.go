// Package progression implements the cursor state machine that decides which
// item a candidate sees next.
//
// The cursor is a (section, question) pair over the session's section order.
// Section -1 is the greeting and section == len(order) is the terminal state.
// Within a section, question -1 is the content item and question == len(questions)
// means the section is exhausted.
package progression

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/stemsi/candidate-assessment/internal/model"
)

// ErrNoProgress is returned when resolution fails to settle within its
// iteration bound, which only happens on an inconsistent cursor.
var ErrNoProgress = errors.New("progression did not settle")

// Cursor is a position in the session.
type Cursor struct {
	Section  int
	Question int
}

// Greeting is the cursor of a freshly started session.
var Greeting = Cursor{Section: -1, Question: -1}

// Kind is the item a settled cursor points at.
type Kind int

const (
	KindGreeting Kind = iota
	KindContent
	KindQuestion
	KindCompleted
)

func (k Kind) String() string {
	switch k {
	case KindGreeting:
		return "greeting"
	case KindContent:
		return "content"
	case KindQuestion:
		return "question"
	case KindCompleted:
		return "completed"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Step is the settled result of Resolve.
type Step struct {
	Kind     Kind
	Cursor   Cursor
	Section  *model.Section
	Question *model.Question
}

// Moved reports whether resolution auto-advanced away from from.
func (s Step) Moved(from Cursor) bool {
	return s.Cursor != from
}

// SectionLoader fetches a section with its content and ordered questions.
type SectionLoader interface {
	LoadSection(ctx context.Context, id uuid.UUID) (*model.Section, error)
}

// Resolve walks the cursor forward through every state that needs no input
// from the candidate: content of speaking and writing sections, and
// exhausted sections. It stops at the first greeting, content, question or
// completed state.
func Resolve(ctx context.Context, loader SectionLoader, order []uuid.UUID, cur Cursor) (Step, error) {
	n := len(order)
	loaded := make(map[int]*model.Section, 2)

	// Each section can skip at most twice (content, then exhaustion).
	limit := 2*n + 2
	for range limit {
		if cur.Section < 0 {
			return Step{Kind: KindGreeting, Cursor: Greeting}, nil
		}
		if cur.Section >= n {
			return Step{Kind: KindCompleted, Cursor: Cursor{Section: n, Question: -1}}, nil
		}

		section, ok := loaded[cur.Section]
		if !ok {
			s, err := loader.LoadSection(ctx, order[cur.Section])
			if err != nil {
				return Step{Cursor: cur}, fmt.Errorf("load section %s: %w", order[cur.Section], err)
			}
			loaded[cur.Section] = s
			section = s
		}

		if cur.Question < 0 {
			if !section.Type.HasContent() {
				cur.Question = 0
				continue
			}
			return Step{Kind: KindContent, Cursor: cur, Section: section}, nil
		}

		if cur.Question >= len(section.Questions) {
			cur = Cursor{Section: cur.Section + 1, Question: -1}
			continue
		}

		return Step{
			Kind:     KindQuestion,
			Cursor:   cur,
			Section:  section,
			Question: &section.Questions[cur.Question],
		}, nil
	}
	return Step{Cursor: cur}, ErrNoProgress
}

// Proceed acknowledges the greeting or the current section's content.
// Any other cursor is returned unchanged.
func Proceed(cur Cursor, sections int) Cursor {
	if cur.Section < 0 {
		return Cursor{Section: 0, Question: -1}
	}
	if cur.Section < sections && cur.Question < 0 {
		return Cursor{Section: cur.Section, Question: 0}
	}
	return cur
}

// Advance moves past the question under the cursor.
func Advance(cur Cursor) Cursor {
	return Cursor{Section: cur.Section, Question: cur.Question + 1}
}

// PercentComplete is answered/total as a percentage rounded to one decimal.
func PercentComplete(answered, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(answered) / float64(total) * 100
	return math.RoundToEven(pct*10) / 10
}

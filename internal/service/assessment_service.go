package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/progression"
	"github.com/stemsi/candidate-assessment/internal/repository"
	"github.com/stemsi/candidate-assessment/internal/scoring"
)

// maxCursorRetries bounds optimistic retries when a concurrent request moved
// the session cursor first.
const maxCursorRetries = 3

// Shuffler permutes a session's section order in place.
type Shuffler interface {
	Shuffle(ids []uuid.UUID)
}

// RandomShuffler is a Shuffler backed by a seeded PCG source.
type RandomShuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomShuffler creates a RandomShuffler. Equal seeds give equal orders.
func NewRandomShuffler(seed uint64) *RandomShuffler {
	return &RandomShuffler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Shuffle permutes ids uniformly.
func (r *RandomShuffler) Shuffle(ids []uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

// ScoreQueue defers final score computation to a background worker.
type ScoreQueue interface {
	Enqueue(ctx context.Context, sessionID uuid.UUID) error
}

// AssessmentService drives a candidate through an assessment.
type AssessmentService struct {
	store   repository.Store
	catalog *CatalogService
	shuffle Shuffler
	queue   ScoreQueue
	now     func() time.Time
	log     zerolog.Logger
}

// NewAssessmentService creates a new AssessmentService. A nil queue makes
// CompleteAssessment compute the final score inline.
func NewAssessmentService(store repository.Store, catalog *CatalogService, shuffle Shuffler, queue ScoreQueue, log zerolog.Logger) *AssessmentService {
	return &AssessmentService{
		store:   store,
		catalog: catalog,
		shuffle: shuffle,
		queue:   queue,
		now:     time.Now,
		log:     log.With().Str("component", "assessment_service").Logger(),
	}
}

// RegisterCandidate creates a candidate. The role defaults to "Candidate".
func (s *AssessmentService) RegisterCandidate(ctx context.Context, req model.RegisterCandidateRequest) (*model.Candidate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrCandidateNameRequired
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = model.DefaultCandidateRole
	}

	c := &model.Candidate{
		ID:        uuid.New(),
		Name:      name,
		Role:      role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Candidates.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create candidate: %w", err)
	}

	s.log.Info().Str("candidate_id", c.ID.String()).Msg("Candidate registered")
	return c, nil
}

// GetActiveAssessment summarizes the active assessment.
func (s *AssessmentService) GetActiveAssessment(ctx context.Context) (*model.AssessmentInfo, error) {
	a, err := s.catalog.GetActiveAssessment(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoActiveAssessment
	}
	if err != nil {
		return nil, err
	}

	return &model.AssessmentInfo{
		ID:             a.ID,
		Title:          a.Title,
		Description:    a.Description,
		TotalSections:  len(a.Sections),
		TotalQuestions: a.TotalQuestions(),
	}, nil
}

// StartAssessment opens a session at the greeting with a freshly shuffled
// section order.
func (s *AssessmentService) StartAssessment(ctx context.Context, candidateID, assessmentID uuid.UUID) (*model.SessionInfo, error) {
	if _, err := s.store.Candidates.GetByID(ctx, candidateID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, err
	}

	a, err := s.catalog.GetAssessment(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, err
	}

	order := a.SectionIDs()
	s.shuffle.Shuffle(order)

	sess := &model.CandidateSession{
		ID:                   uuid.New(),
		CandidateID:          candidateID,
		AssessmentID:         a.ID,
		Status:               model.SessionStatusInProgress,
		CurrentSectionIndex:  progression.Greeting.Section,
		CurrentQuestionIndex: progression.Greeting.Question,
		SectionOrder:         order,
		StartedAt:            s.now().UTC(),
	}
	if err := s.store.Sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().
		Str("session_id", sess.ID.String()).
		Str("candidate_id", candidateID.String()).
		Str("assessment_id", a.ID.String()).
		Msg("Assessment started")

	return &model.SessionInfo{
		ID:             sess.ID,
		CandidateID:    sess.CandidateID,
		AssessmentID:   sess.AssessmentID,
		Status:         sess.Status,
		TotalSections:  len(order),
		TotalQuestions: a.TotalQuestions(),
	}, nil
}

// GetNextItem returns the item under the session cursor, persisting any
// automatic advance past content-less sections and exhausted sections.
// Missing sessions and sections yield an error item rather than an error.
func (s *AssessmentService) GetNextItem(ctx context.Context, sessionID uuid.UUID) (*model.NextItem, error) {
	for range maxCursorRetries {
		item, err := s.nextItem(ctx, sessionID)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		return item, err
	}
	return nil, ErrSessionBusy
}

func (s *AssessmentService) nextItem(ctx context.Context, sessionID uuid.UUID) (*model.NextItem, error) {
	sess, err := s.store.Sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.ErrorItem("Session not found"), nil
	}
	if err != nil {
		return nil, err
	}

	cur := progression.Cursor{Section: sess.CurrentSectionIndex, Question: sess.CurrentQuestionIndex}
	step, err := progression.Resolve(ctx, s.catalog, sess.SectionOrder, cur)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Section in session order no longer exists")
		return model.ErrorItem("Section not found"), nil
	}
	if err != nil {
		return nil, err
	}

	if step.Moved(cur) {
		if _, err := s.store.Sessions.MoveCursor(ctx, sess.ID, sess.Version, step.Cursor.Section, step.Cursor.Question); err != nil {
			return nil, err
		}
	}

	total, err := s.catalog.CountQuestions(ctx, sess.SectionOrder)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	sections := len(sess.SectionOrder)

	switch step.Kind {
	case progression.KindGreeting:
		return greetingItem(sess.CandidateName, &model.Progress{
			TotalSections:  sections,
			TotalQuestions: total,
		}), nil
	case progression.KindCompleted:
		return completedItem(&model.Progress{
			CurrentSection:  sections,
			TotalSections:   sections,
			CurrentQuestion: total,
			TotalQuestions:  total,
			PercentComplete: 100,
		}), nil
	}

	answered, err := s.store.Responses.CountBySession(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("count responses: %w", err)
	}
	p := &model.Progress{
		CurrentSection:  step.Cursor.Section + 1,
		TotalSections:   sections,
		CurrentQuestion: answered,
		TotalQuestions:  total,
		PercentComplete: progression.PercentComplete(answered, total),
	}

	if step.Kind == progression.KindContent {
		return contentItem(step.Section, p), nil
	}
	return questionItem(step, p), nil
}

// Proceed acknowledges the greeting or the current section content and
// returns the next item. Elsewhere it only re-emits the current item.
func (s *AssessmentService) Proceed(ctx context.Context, sessionID uuid.UUID) (*model.NextItem, error) {
	for range maxCursorRetries {
		sess, err := s.store.Sessions.GetByID(ctx, sessionID)
		if errors.Is(err, repository.ErrNotFound) {
			return model.ErrorItem("Session not found"), nil
		}
		if err != nil {
			return nil, err
		}

		cur := progression.Cursor{Section: sess.CurrentSectionIndex, Question: sess.CurrentQuestionIndex}
		next := progression.Proceed(cur, len(sess.SectionOrder))
		if next != cur {
			_, err := s.store.Sessions.MoveCursor(ctx, sess.ID, sess.Version, next.Section, next.Question)
			if errors.Is(err, repository.ErrVersionConflict) {
				continue
			}
			if err != nil {
				return nil, err
			}
		}
		return s.GetNextItem(ctx, sessionID)
	}
	return nil, ErrSessionBusy
}

// SubmitAnswer grades an answer, appends it to the response log, advances
// the cursor and returns the following item.
func (s *AssessmentService) SubmitAnswer(ctx context.Context, sessionID, questionID uuid.UUID, answer model.Answer) (*model.AnswerResult, error) {
	sess, err := s.store.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	q, err := s.catalog.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	s.checkPosition(ctx, sess, questionID)

	result := scoring.Grade(q, answer)
	resp := &model.CandidateResponse{
		ID:             uuid.New(),
		SessionID:      sess.ID,
		QuestionID:     q.ID,
		AnswerText:     answer.StoredText(),
		SelectedOption: answer.StoredOption(),
		IsCorrect:      result.IsCorrect,
		ScoreEarned:    result.ScoreEarned,
		AnsweredAt:     s.now().UTC(),
	}
	if err := s.store.Responses.RecordAndAdvance(ctx, resp); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("record response: %w", err)
	}

	s.log.Debug().
		Str("session_id", sess.ID.String()).
		Str("question_id", q.ID.String()).
		Bool("graded", result.Graded()).
		Int("score", result.ScoreEarned).
		Msg("Answer recorded")

	next, err := s.GetNextItem(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return &model.AnswerResult{
		Success:     true,
		IsCorrect:   result.IsCorrect,
		ScoreEarned: result.ScoreEarned,
		NextItem:    next,
	}, nil
}

// SubmitAudioAnswer records a spoken answer. The recording itself is stored
// by the caller; the log keeps a fixed placeholder text.
func (s *AssessmentService) SubmitAudioAnswer(ctx context.Context, sessionID, questionID uuid.UUID, audioURL string) (*model.AnswerResult, error) {
	res, err := s.SubmitAnswer(ctx, sessionID, questionID, model.Answer{Text: model.AudioResponsePlaceholder})
	if err == nil && audioURL != "" {
		s.log.Info().
			Str("session_id", sessionID.String()).
			Str("question_id", questionID.String()).
			Str("audio_url", audioURL).
			Msg("Audio answer stored")
	}
	return res, err
}

// checkPosition logs answers to a question other than the one under the
// cursor. The answer is still accepted.
func (s *AssessmentService) checkPosition(ctx context.Context, sess *model.CandidateSession, questionID uuid.UUID) {
	si, qi := sess.CurrentSectionIndex, sess.CurrentQuestionIndex
	if si < 0 || si >= len(sess.SectionOrder) || qi < 0 {
		s.log.Warn().Str("session_id", sess.ID.String()).Str("question_id", questionID.String()).
			Msg("Answer submitted outside of a question")
		return
	}
	sec, err := s.catalog.LoadSection(ctx, sess.SectionOrder[si])
	if err != nil || qi >= len(sec.Questions) {
		return
	}
	if sec.Questions[qi].ID != questionID {
		s.log.Warn().
			Str("session_id", sess.ID.String()).
			Str("question_id", questionID.String()).
			Str("expected_question_id", sec.Questions[qi].ID.String()).
			Msg("Answer submitted for a question other than the current one")
	}
}

// CompleteAssessment marks the session completed. It reports false when the
// session does not exist. The final score is computed by the score queue
// when one is configured, inline otherwise.
func (s *AssessmentService) CompleteAssessment(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	err := s.store.Sessions.Complete(ctx, sessionID, s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("complete session: %w", err)
	}

	s.log.Info().Str("session_id", sessionID.String()).Msg("Assessment completed")

	if s.queue != nil {
		err := s.queue.Enqueue(ctx, sessionID)
		if err == nil {
			return true, nil
		}
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to enqueue final score, computing inline")
	}

	score, err := s.ComputeFinalScore(ctx, sessionID)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Failed to compute final score")
		return true, nil
	}
	if err := s.store.Sessions.SaveFinalScore(ctx, score); err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Failed to save final score")
	}
	return true, nil
}

// ComputeFinalScore sums the response log of a session. The maximum counts
// only auto-gradable questions of the session's sections.
func (s *AssessmentService) ComputeFinalScore(ctx context.Context, sessionID uuid.UUID) (model.FinalScore, error) {
	sess, err := s.store.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.FinalScore{}, ErrSessionNotFound
		}
		return model.FinalScore{}, err
	}

	responses, err := s.store.Responses.ListBySession(ctx, sessionID)
	if err != nil {
		return model.FinalScore{}, fmt.Errorf("list responses: %w", err)
	}

	fs := model.FinalScore{SessionID: sessionID}
	for _, r := range responses {
		fs.FinalScore += r.ScoreEarned
	}
	for _, id := range sess.SectionOrder {
		sec, err := s.catalog.LoadSection(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return model.FinalScore{}, fmt.Errorf("load section %s: %w", id, err)
		}
		for i := range sec.Questions {
			if scoring.Gradable(&sec.Questions[i]) {
				fs.MaxScore += sec.Questions[i].Score
			}
		}
	}
	return fs, nil
}

// GetSummary reports a session with its full response log.
func (s *AssessmentService) GetSummary(ctx context.Context, sessionID uuid.UUID) (*model.SessionSummary, error) {
	sess, err := s.store.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	responses, err := s.store.Responses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	total, err := s.catalog.CountQuestions(ctx, sess.SectionOrder)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}

	sum := &model.SessionSummary{
		SessionID:      sess.ID,
		CandidateID:    sess.CandidateID,
		CandidateName:  sess.CandidateName,
		AssessmentID:   sess.AssessmentID,
		Status:         sess.Status,
		StartedAt:      sess.StartedAt,
		CompletedAt:    sess.CompletedAt,
		AnsweredCount:  len(responses),
		TotalQuestions: total,
		FinalScore:     sess.FinalScore,
		MaxScore:       sess.MaxScore,
		Responses:      responses,
	}
	if sum.Responses == nil {
		sum.Responses = []model.CandidateResponse{}
	}
	for _, r := range responses {
		sum.TotalScore += r.ScoreEarned
	}
	return sum, nil
}

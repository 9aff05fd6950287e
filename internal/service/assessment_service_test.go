package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/candidate-assessment/internal/database"
	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/repository"
	"github.com/stemsi/candidate-assessment/internal/repository/sqlite"
	"github.com/stemsi/candidate-assessment/internal/seed"
)

type keepOrder struct{}

func (keepOrder) Shuffle([]uuid.UUID) {}

type recordingQueue struct {
	mu  sync.Mutex
	ids []uuid.UUID
	err error
}

func (q *recordingQueue) Enqueue(_ context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, id)
	return nil
}

// conflictingSessions fails the first n cursor moves with a version conflict.
type conflictingSessions struct {
	repository.SessionStore
	n     int
	calls int
}

func (s *conflictingSessions) MoveCursor(ctx context.Context, id uuid.UUID, version int64, section, question int) (int64, error) {
	s.calls++
	if s.calls <= s.n {
		return 0, repository.ErrVersionConflict
	}
	return s.SessionStore.MoveCursor(ctx, id, version, section, question)
}

func newStore(t *testing.T, withFixture bool) repository.Store {
	t.Helper()
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := sqlite.NewStore(db)
	if withFixture {
		_, err := seed.Load(ctx, store, false, zerolog.Nop())
		require.NoError(t, err)
	}
	return store
}

func newService(t *testing.T, store repository.Store, queue ScoreQueue) *AssessmentService {
	t.Helper()
	catalog := NewCatalogService(store.Catalog, nil, 0, zerolog.Nop())
	return NewAssessmentService(store, catalog, keepOrder{}, queue, zerolog.Nop())
}

func startSession(t *testing.T, svc *AssessmentService, name string) *model.SessionInfo {
	t.Helper()
	ctx := context.Background()
	c, err := svc.RegisterCandidate(ctx, model.RegisterCandidateRequest{Name: name})
	require.NoError(t, err)
	info, err := svc.StartAssessment(ctx, c.ID, seed.AssessmentID)
	require.NoError(t, err)
	return info
}

func TestRegisterCandidate(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, newStore(t, false), nil)

	c, err := svc.RegisterCandidate(ctx, model.RegisterCandidateRequest{Name: "  Ada  "})
	require.NoError(t, err)
	assert.Equal(t, "Ada", c.Name)
	assert.Equal(t, model.DefaultCandidateRole, c.Role)

	c, err = svc.RegisterCandidate(ctx, model.RegisterCandidateRequest{Name: "Linus", Role: "Engineer"})
	require.NoError(t, err)
	assert.Equal(t, "Engineer", c.Role)

	_, err = svc.RegisterCandidate(ctx, model.RegisterCandidateRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrCandidateNameRequired)
}

func TestGetActiveAssessment(t *testing.T) {
	ctx := context.Background()

	_, err := newService(t, newStore(t, false), nil).GetActiveAssessment(ctx)
	assert.ErrorIs(t, err, ErrNoActiveAssessment)

	info, err := newService(t, newStore(t, true), nil).GetActiveAssessment(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed.AssessmentID, info.ID)
	assert.Equal(t, 5, info.TotalSections)
	assert.Equal(t, 9, info.TotalQuestions)
}

func TestStartAssessment(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, true)
	svc := newService(t, store, nil)

	info := startSession(t, svc, "Grace")
	assert.Equal(t, model.SessionStatusInProgress, info.Status)
	assert.Equal(t, 5, info.TotalSections)
	assert.Equal(t, 9, info.TotalQuestions)

	sess, err := store.Sessions.GetByID(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, sess.CurrentSectionIndex)
	assert.Equal(t, -1, sess.CurrentQuestionIndex)
	assert.Equal(t, []uuid.UUID{
		seed.AudioSectionID, seed.SpeakingSectionID, seed.ImageSectionID,
		seed.ReadingSectionID, seed.WritingSectionID,
	}, sess.SectionOrder)

	_, err = svc.StartAssessment(ctx, uuid.New(), seed.AssessmentID)
	assert.ErrorIs(t, err, ErrCandidateNotFound)

	c, err := svc.RegisterCandidate(ctx, model.RegisterCandidateRequest{Name: "Alan"})
	require.NoError(t, err)
	_, err = svc.StartAssessment(ctx, c.ID, uuid.New())
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestRandomShufflerIsAPermutation(t *testing.T) {
	ids := make([]uuid.UUID, 8)
	for i := range ids {
		ids[i] = uuid.New()
	}

	a := append([]uuid.UUID(nil), ids...)
	b := append([]uuid.UUID(nil), ids...)
	NewRandomShuffler(42).Shuffle(a)
	NewRandomShuffler(42).Shuffle(b)

	assert.Equal(t, a, b)
	assert.ElementsMatch(t, ids, a)
}

func TestFullAssessmentFlow(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, true)
	svc := newService(t, store, nil)
	info := startSession(t, svc, "Grace")

	item, err := svc.GetNextItem(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemTypeGreeting, item.ItemType)
	assert.Contains(t, item.Message.Text, "Hello Grace!")
	assert.Equal(t, &model.Progress{TotalSections: 5, TotalQuestions: 9}, item.Message.Progress)

	// Reading the item twice does not move the session.
	again, err := svc.GetNextItem(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, item, again)

	item, err = svc.Proceed(ctx, info.ID)
	require.NoError(t, err)
	require.Equal(t, model.ItemTypeContent, item.ItemType)
	assert.Equal(t, model.SectionTypeAudio, item.Message.Content.Type)
	assert.Equal(t, "/assets/audio/listening-audio.mp3", item.Message.Content.AudioURL)
	assert.Contains(t, item.Message.Text, "Listening Section")
	assert.Equal(t, 1, item.Message.Progress.CurrentSection)

	item, err = svc.Proceed(ctx, info.ID)
	require.NoError(t, err)
	require.Equal(t, model.ItemTypeQuestion, item.ItemType)
	q := item.Message.Question
	assert.Equal(t, uuid.MustParse("55555555-5555-5555-5555-555555555501"), q.ID)
	assert.Equal(t, 1, q.QuestionNumber)
	assert.Equal(t, 3, q.TotalInSection)

	submit := func(id string, a model.Answer) *model.AnswerResult {
		t.Helper()
		res, err := svc.SubmitAnswer(ctx, info.ID, uuid.MustParse(id), a)
		require.NoError(t, err)
		require.True(t, res.Success)
		return res
	}

	res := submit("55555555-5555-5555-5555-555555555501", model.Answer{Options: []string{"C", "A"}})
	require.NotNil(t, res.IsCorrect)
	assert.True(t, *res.IsCorrect)
	assert.Equal(t, 1, res.ScoreEarned)
	assert.Equal(t, 2, res.NextItem.Message.Question.QuestionNumber)

	res = submit("55555555-5555-5555-5555-555555555502", model.Answer{Options: []string{"B"}})
	require.NotNil(t, res.IsCorrect)
	assert.False(t, *res.IsCorrect)
	assert.Equal(t, 0, res.ScoreEarned)

	// The speaking section has no content, so its question follows directly.
	res = submit("55555555-5555-5555-5555-555555555503", model.Answer{Option: "B"})
	assert.True(t, *res.IsCorrect)
	require.Equal(t, model.ItemTypeQuestion, res.NextItem.ItemType)
	assert.Equal(t, model.SectionTypeSpeaking, res.NextItem.Message.Question.SectionType)
	assert.Equal(t, &model.Progress{
		CurrentSection: 2, TotalSections: 5, CurrentQuestion: 3, TotalQuestions: 9, PercentComplete: 33.3,
	}, res.NextItem.Message.Progress)

	res, err = svc.SubmitAudioAnswer(ctx, info.ID, uuid.MustParse("55555555-5555-5555-5555-555555555601"), "")
	require.NoError(t, err)
	assert.Nil(t, res.IsCorrect)
	require.Equal(t, model.ItemTypeContent, res.NextItem.ItemType)
	assert.Equal(t, "A horse eating grass on a green field", res.NextItem.Message.Content.Title)

	item, err = svc.Proceed(ctx, info.ID)
	require.NoError(t, err)
	require.Equal(t, model.ItemTypeQuestion, item.ItemType)

	res = submit("66666666-6666-6666-6666-666666666661", model.Answer{Text: "A horse is grazing."})
	require.Equal(t, model.ItemTypeContent, res.NextItem.ItemType)
	assert.Equal(t, "The Future of Renewable Energy", res.NextItem.Message.Content.Title)

	_, err = svc.Proceed(ctx, info.ID)
	require.NoError(t, err)
	submit("77777777-7777-7777-7777-777777777771", model.Answer{Option: "B) It has decreased"})
	submit("77777777-7777-7777-7777-777777777772", model.Answer{Option: "A"})
	res = submit("77777777-7777-7777-7777-777777777773", model.Answer{Option: "true"})
	assert.True(t, *res.IsCorrect)
	require.Equal(t, model.ItemTypeQuestion, res.NextItem.ItemType)
	assert.Equal(t, model.SectionTypeWriting, res.NextItem.Message.Question.SectionType)

	res = submit("88888888-8888-8888-8888-888888888801", model.Answer{Text: "Remote work suits me."})
	assert.Nil(t, res.IsCorrect)
	require.Equal(t, model.ItemTypeCompleted, res.NextItem.ItemType)
	assert.True(t, res.NextItem.IsAssessmentComplete)
	assert.Equal(t, model.MessageTypeCompletion, res.NextItem.Message.Type)
	assert.Equal(t, 100.0, res.NextItem.Message.Progress.PercentComplete)
	assert.Equal(t, 5, res.NextItem.Message.Progress.CurrentSection)

	ok, err := svc.CompleteAssessment(ctx, info.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	sum, err := svc.GetSummary(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, sum.Status)
	assert.NotNil(t, sum.CompletedAt)
	assert.Equal(t, 9, sum.AnsweredCount)
	assert.Equal(t, 9, sum.TotalQuestions)
	assert.Equal(t, 4, sum.TotalScore)
	require.NotNil(t, sum.FinalScore)
	assert.Equal(t, 4, *sum.FinalScore)
	assert.Equal(t, 6, *sum.MaxScore)
	assert.Equal(t, model.AudioResponsePlaceholder, *sum.Responses[3].AnswerText)
	assert.Equal(t, "C, A", *sum.Responses[0].AnswerText)
}

func TestMissingEntitiesYieldErrorItems(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, true)
	svc := newService(t, store, nil)

	item, err := svc.GetNextItem(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.ItemTypeError, item.ItemType)
	assert.Equal(t, "Session not found", item.Message.Text)

	item, err = svc.Proceed(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.ItemTypeError, item.ItemType)

	res, err := svc.SubmitAnswer(ctx, uuid.New(), uuid.New(), model.Answer{Text: "x"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Nil(t, res)

	info := startSession(t, svc, "Grace")
	res, err = svc.SubmitAnswer(ctx, info.ID, uuid.New(), model.Answer{Text: "x"})
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	assert.Nil(t, res)

	ok, err := svc.CompleteAssessment(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.GetSummary(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStaleSectionYieldsErrorItem(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, true)
	svc := newService(t, store, nil)

	c, err := svc.RegisterCandidate(ctx, model.RegisterCandidateRequest{Name: "Grace"})
	require.NoError(t, err)
	sess := &model.CandidateSession{
		ID:                   uuid.New(),
		CandidateID:          c.ID,
		AssessmentID:         seed.AssessmentID,
		Status:               model.SessionStatusInProgress,
		CurrentSectionIndex:  0,
		CurrentQuestionIndex: -1,
		SectionOrder:         []uuid.UUID{uuid.New()},
	}
	require.NoError(t, store.Sessions.Create(ctx, sess))

	item, err := svc.GetNextItem(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemTypeError, item.ItemType)
	assert.Equal(t, "Section not found", item.Message.Text)
}

func TestCursorConflictIsRetried(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, true)
	svc := newService(t, store, nil)
	info := startSession(t, svc, "Grace")

	sessions := &conflictingSessions{SessionStore: store.Sessions, n: 1}
	svc.store.Sessions = sessions

	item, err := svc.Proceed(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemTypeContent, item.ItemType)
	assert.Equal(t, 2, sessions.calls)

	sessions.calls, sessions.n = 0, maxCursorRetries
	_, err = svc.Proceed(ctx, info.ID)
	assert.ErrorIs(t, err, ErrSessionBusy)
}

func TestCompleteAssessmentEnqueuesFinalScore(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, true)
	queue := &recordingQueue{}
	svc := newService(t, store, queue)
	info := startSession(t, svc, "Grace")

	ok, err := svc.CompleteAssessment(ctx, info.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uuid.UUID{info.ID}, queue.ids)

	sess, err := store.Sessions.GetByID(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, sess.Status)
	assert.Nil(t, sess.FinalScore)
}

func TestCompleteAssessmentFallsBackInline(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, true)
	svc := newService(t, store, &recordingQueue{err: errors.New("redis down")})
	info := startSession(t, svc, "Grace")

	ok, err := svc.CompleteAssessment(ctx, info.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	sess, err := store.Sessions.GetByID(ctx, info.ID)
	require.NoError(t, err)
	require.NotNil(t, sess.FinalScore)
	assert.Equal(t, 0, *sess.FinalScore)
	assert.Equal(t, 6, *sess.MaxScore)
}

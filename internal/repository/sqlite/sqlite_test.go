package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/candidate-assessment/internal/database"
	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/repository"
	"github.com/stemsi/candidate-assessment/internal/seed"
)

func newStore(t *testing.T) repository.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func seeded(t *testing.T) repository.Store {
	t.Helper()
	store := newStore(t)
	loaded, err := seed.Load(context.Background(), store, false, zerolog.Nop())
	require.NoError(t, err)
	require.True(t, loaded)
	return store
}

func TestCatalogReadsSeededAssessment(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)

	a, err := store.Catalog.GetActiveAssessment(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed.AssessmentID, a.ID)
	assert.True(t, a.IsActive)
	require.Len(t, a.Sections, 5)
	assert.Equal(t, 9, a.TotalQuestions())

	types := make([]model.SectionType, len(a.Sections))
	for i, s := range a.Sections {
		types[i] = s.Type
	}
	assert.Equal(t, []model.SectionType{
		model.SectionTypeAudio, model.SectionTypeSpeaking, model.SectionTypeImage,
		model.SectionTypeReading, model.SectionTypeWriting,
	}, types)

	audio := a.Sections[0]
	require.NotNil(t, audio.Audio)
	assert.Equal(t, "/assets/audio/listening-audio.mp3", audio.Audio.AudioURL)
	assert.Nil(t, audio.Image)
	require.Len(t, audio.Questions, 3)
	key, ok := audio.Questions[0].Key.(model.MultiChoiceKey)
	require.True(t, ok)
	assert.Equal(t, []string{"A", "C"}, key.Correct)
	assert.Len(t, key.Options, 4)

	assert.Nil(t, a.Sections[1].Audio)
	assert.Nil(t, a.Sections[1].Reading)
}

func TestCatalogSection(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)

	s, err := store.Catalog.GetSection(ctx, seed.ReadingSectionID)
	require.NoError(t, err)
	require.NotNil(t, s.Reading)
	assert.Equal(t, "The Future of Renewable Energy", s.Reading.Title)
	require.Len(t, s.Questions, 3)
	assert.Equal(t, model.QuestionTypeTrueFalse, s.Questions[2].Type)

	img, err := store.Catalog.GetSection(ctx, seed.ImageSectionID)
	require.NoError(t, err)
	require.NotNil(t, img.Image)
	assert.Equal(t, "A horse eating grass on a green field", img.Image.AltText)

	_, err = store.Catalog.GetSection(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCatalogQuestionAndCounts(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)

	q, err := store.Catalog.GetQuestion(ctx, uuid.MustParse("77777777-7777-7777-7777-777777777771"))
	require.NoError(t, err)
	key, ok := q.Key.(model.SingleChoiceKey)
	require.True(t, ok)
	assert.Equal(t, "B", key.Correct)

	_, err = store.Catalog.GetQuestion(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	missing := uuid.New()
	counts, err := store.Catalog.CountQuestions(ctx, []uuid.UUID{seed.AudioSectionID, seed.WritingSectionID, missing})
	require.NoError(t, err)
	assert.Equal(t, 3, counts[seed.AudioSectionID])
	assert.Equal(t, 1, counts[seed.WritingSectionID])
	assert.Equal(t, 0, counts[missing])
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)

	loaded, err := seed.Load(ctx, store, false, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, loaded)

	loaded, err = seed.Load(ctx, store, true, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, loaded)

	a, err := store.Catalog.GetAssessment(ctx, seed.AssessmentID)
	require.NoError(t, err)
	assert.Equal(t, 9, a.TotalQuestions())
}

func TestCandidates(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	c := &model.Candidate{ID: uuid.New(), Name: "Ada", Role: "Engineer", CreatedAt: time.Now()}
	require.NoError(t, store.Candidates.Create(ctx, c))

	got, err := store.Candidates.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "Engineer", got.Role)
	assert.WithinDuration(t, c.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = store.Candidates.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func newSession(t *testing.T, store repository.Store) *model.CandidateSession {
	t.Helper()
	ctx := context.Background()

	c := &model.Candidate{ID: uuid.New(), Name: "Grace", Role: model.DefaultCandidateRole, CreatedAt: time.Now()}
	require.NoError(t, store.Candidates.Create(ctx, c))

	s := &model.CandidateSession{
		ID:                   uuid.New(),
		CandidateID:          c.ID,
		AssessmentID:         seed.AssessmentID,
		Status:               model.SessionStatusInProgress,
		CurrentSectionIndex:  -1,
		CurrentQuestionIndex: -1,
		SectionOrder:         []uuid.UUID{seed.WritingSectionID, seed.AudioSectionID},
		StartedAt:            time.Now(),
	}
	require.NoError(t, store.Sessions.Create(ctx, s))
	return s
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)
	s := newSession(t, store)

	got, err := store.Sessions.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.CandidateName)
	assert.Equal(t, s.SectionOrder, got.SectionOrder)
	assert.Equal(t, -1, got.CurrentSectionIndex)
	assert.Equal(t, model.SessionStatusInProgress, got.Status)
	assert.Nil(t, got.CompletedAt)

	v, err := store.Sessions.MoveCursor(ctx, s.ID, got.Version, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, got.Version+1, v)

	_, err = store.Sessions.MoveCursor(ctx, s.ID, got.Version, 1, 0)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	_, err = store.Sessions.MoveCursor(ctx, uuid.New(), 0, 1, 0)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	at := time.Now()
	require.NoError(t, store.Sessions.Complete(ctx, s.ID, at))
	got, err = store.Sessions.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.WithinDuration(t, at, *got.CompletedAt, time.Millisecond)

	assert.ErrorIs(t, store.Sessions.Complete(ctx, uuid.New(), at), repository.ErrNotFound)
}

func TestRecordAndAdvance(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)
	s := newSession(t, store)

	_, err := store.Sessions.MoveCursor(ctx, s.ID, 0, 0, 0)
	require.NoError(t, err)

	correct := true
	text := "A, C"
	first := &model.CandidateResponse{
		ID:          uuid.New(),
		SessionID:   s.ID,
		QuestionID:  uuid.MustParse("55555555-5555-5555-5555-555555555501"),
		AnswerText:  &text,
		IsCorrect:   &correct,
		ScoreEarned: 1,
		AnsweredAt:  time.Now(),
	}
	require.NoError(t, store.Responses.RecordAndAdvance(ctx, first))

	second := &model.CandidateResponse{
		ID:         uuid.New(),
		SessionID:  s.ID,
		QuestionID: uuid.MustParse("88888888-8888-8888-8888-888888888801"),
		AnsweredAt: time.Now().Add(time.Millisecond),
	}
	require.NoError(t, store.Responses.RecordAndAdvance(ctx, second))

	got, err := store.Sessions.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentQuestionIndex)
	assert.Equal(t, int64(3), got.Version)

	n, err := store.Responses.CountBySession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := store.Responses.ListBySession(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].IsCorrect)
	assert.True(t, *list[0].IsCorrect)
	assert.Equal(t, "A, C", *list[0].AnswerText)
	assert.Nil(t, list[1].IsCorrect)
	assert.Nil(t, list[1].AnswerText)

	orphan := &model.CandidateResponse{ID: uuid.New(), SessionID: uuid.New(), QuestionID: first.QuestionID, AnsweredAt: time.Now()}
	assert.ErrorIs(t, store.Responses.RecordAndAdvance(ctx, orphan), repository.ErrNotFound)
}

func TestSaveFinalScores(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)
	a := newSession(t, store)
	b := newSession(t, store)

	require.NoError(t, store.Sessions.SaveFinalScores(ctx, []model.FinalScore{
		{SessionID: a.ID, FinalScore: 3, MaxScore: 6},
		{SessionID: b.ID, FinalScore: 0, MaxScore: 6},
	}))
	require.NoError(t, store.Sessions.SaveFinalScore(ctx, model.FinalScore{SessionID: b.ID, FinalScore: 5, MaxScore: 6}))

	got, err := store.Sessions.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FinalScore)
	assert.Equal(t, 3, *got.FinalScore)
	assert.Equal(t, 6, *got.MaxScore)

	got, err = store.Sessions.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, *got.FinalScore)
}

package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/repository"
)

type fixedScorer struct {
	fail map[uuid.UUID]bool
}

func (s fixedScorer) ComputeFinalScore(_ context.Context, id uuid.UUID) (model.FinalScore, error) {
	if s.fail[id] {
		return model.FinalScore{}, errors.New("boom")
	}
	return model.FinalScore{SessionID: id, FinalScore: 3, MaxScore: 5}, nil
}

type scoreSink struct {
	repository.SessionStore
	bulkErr error
	bulk    []model.FinalScore
	single  []model.FinalScore
}

func (s *scoreSink) SaveFinalScores(_ context.Context, scores []model.FinalScore) error {
	if s.bulkErr != nil {
		return s.bulkErr
	}
	s.bulk = append(s.bulk, scores...)
	return nil
}

func (s *scoreSink) SaveFinalScore(_ context.Context, fs model.FinalScore) error {
	s.single = append(s.single, fs)
	return nil
}

func newTestWorker(scorer Scorer, sink *scoreSink) *ScoringWorker {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	return NewScoringWorker(scorer, sink, rdb, zerolog.Nop())
}

func TestFlushSafe_BulkWrite(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	sink := &scoreSink{}
	w := newTestWorker(fixedScorer{}, sink)

	w.flushSafe(context.Background(), []uuid.UUID{a, b})

	assert.Len(t, sink.bulk, 2)
	assert.Empty(t, sink.single)
	assert.Equal(t, a, sink.bulk[0].SessionID)
}

func TestFlushSafe_FallsBackToSingleWrites(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	sink := &scoreSink{bulkErr: errors.New("deadlock")}
	w := newTestWorker(fixedScorer{}, sink)

	w.flushSafe(context.Background(), []uuid.UUID{a, b})

	assert.Empty(t, sink.bulk)
	assert.Len(t, sink.single, 2)
}

func TestFlushSafe_SkipsUnscorableSessions(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	sink := &scoreSink{}
	w := newTestWorker(fixedScorer{fail: map[uuid.UUID]bool{a: true}}, sink)

	w.flushSafe(context.Background(), []uuid.UUID{a, b})

	if assert.Len(t, sink.bulk, 1) {
		assert.Equal(t, b, sink.bulk[0].SessionID)
	}
}

func TestFlushSafe_EmptyBatch(t *testing.T) {
	sink := &scoreSink{}
	w := newTestWorker(fixedScorer{}, sink)

	w.flushSafe(context.Background(), nil)

	assert.Empty(t, sink.bulk)
	assert.Empty(t, sink.single)
}

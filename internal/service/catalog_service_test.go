package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/seed"
)

func TestCachedSectionKeepsAnswerKeys(t *testing.T) {
	a := seed.Assessment()
	sec := &a.Sections[0]

	raw, err := json.Marshal(newCachedSection(sec))
	require.NoError(t, err)

	var cached cachedSection
	require.NoError(t, json.Unmarshal(raw, &cached))
	got := cached.section()

	require.NotNil(t, got.Audio)
	assert.Equal(t, sec.Audio.AudioURL, got.Audio.AudioURL)
	require.Len(t, got.Questions, len(sec.Questions))
	for i := range sec.Questions {
		assert.Equal(t, sec.Questions[i].Key, got.Questions[i].Key)
	}
}

func TestCatalogFallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, true)

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })

	catalog := NewCatalogService(store.Catalog, rdb, time.Minute, zerolog.Nop())

	a, err := catalog.GetActiveAssessment(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed.AssessmentID, a.ID)

	sec, err := catalog.LoadSection(ctx, seed.ReadingSectionID)
	require.NoError(t, err)
	assert.Len(t, sec.Questions, 3)

	q, err := catalog.GetQuestion(ctx, sec.Questions[2].ID)
	require.NoError(t, err)
	assert.IsType(t, model.TrueFalseKey{}, q.Key)

	assert.Error(t, catalog.Prewarm(ctx))
}

func TestCountQuestions(t *testing.T) {
	catalog := NewCatalogService(newStore(t, true).Catalog, nil, 0, zerolog.Nop())

	n, err := catalog.CountQuestions(context.Background(), []uuid.UUID{
		seed.AudioSectionID, seed.ReadingSectionID, uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

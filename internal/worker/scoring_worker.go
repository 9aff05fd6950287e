package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/candidate-assessment/internal/config"
	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/repository"
)

const (
	ScoreBatchSize    = 50
	ScoreBatchTimeout = 2 * time.Second
	ScorePollTimeout  = 1 * time.Second
)

// Scorer computes the final score of a completed session.
type Scorer interface {
	ComputeFinalScore(ctx context.Context, sessionID uuid.UUID) (model.FinalScore, error)
}

// ScoreQueue pushes completed session ids onto the final score queue.
type ScoreQueue struct {
	rdb *redis.Client
}

// NewScoreQueue creates a new ScoreQueue.
func NewScoreQueue(rdb *redis.Client) *ScoreQueue {
	return &ScoreQueue{rdb: rdb}
}

// Enqueue schedules sessionID for scoring.
func (q *ScoreQueue) Enqueue(ctx context.Context, sessionID uuid.UUID) error {
	return q.rdb.RPush(ctx, config.WorkerKey.PersistFinalScoresQueue, sessionID.String()).Err()
}

// ScoringWorker consumes persist_final_scores_queue and writes final scores
// onto the session rows in batches.
type ScoringWorker struct {
	scorer   Scorer
	sessions repository.SessionStore
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewScoringWorker creates a new ScoringWorker.
func NewScoringWorker(scorer Scorer, sessions repository.SessionStore, rdb *redis.Client, log zerolog.Logger) *ScoringWorker {
	return &ScoringWorker{
		scorer:   scorer,
		sessions: sessions,
		rdb:      rdb,
		log:      log.With().Str("component", "scoring_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled. Call in a goroutine.
func (w *ScoringWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ScoringWorker started")

	batch := make([]uuid.UUID, 0, ScoreBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ScoreBatchSize || time.Since(lastFlush) >= ScoreBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ScorePollTimeout, config.WorkerKey.PersistFinalScoresQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			id, err := uuid.Parse(item[1])
			if err != nil {
				w.log.Error().Err(err).Str("payload", item[1]).Msg("Invalid session id in queue")
				continue
			}
			batch = append(batch, id)
		}
	}
}

// flushSafe scores a batch and writes it in one statement, falling back to
// per-session writes. Sessions that still fail are pushed back on the queue.
func (w *ScoringWorker) flushSafe(ctx context.Context, batch []uuid.UUID) {
	if len(batch) == 0 {
		return
	}

	scores := make([]model.FinalScore, 0, len(batch))
	for _, id := range batch {
		fs, err := w.scorer.ComputeFinalScore(ctx, id)
		if err != nil {
			w.log.Error().Err(err).Str("session_id", id.String()).Msg("Failed to compute final score")
			continue
		}
		scores = append(scores, fs)
	}
	if len(scores) == 0 {
		return
	}

	if err := w.sessions.SaveFinalScores(ctx, scores); err != nil {
		w.log.Warn().Err(err).Msg("bulk final score update failed, using fallback")

		for _, fs := range scores {
			if err := w.sessions.SaveFinalScore(ctx, fs); err != nil {
				w.log.Error().Err(err).Str("session_id", fs.SessionID.String()).Msg("SaveFinalScore failed, requeueing")
				w.rdb.RPush(ctx, config.WorkerKey.PersistFinalScoresQueue, fs.SessionID.String())
			}
		}
		return
	}

	w.log.Debug().Int("sessions", len(scores)).Msg("Final scores persisted")
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/candidate-assessment/internal/model"
)

// SessionRepository handles candidate session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a new session positioned at the greeting.
func (r *SessionRepository) Create(ctx context.Context, s *model.CandidateSession) error {
	order, err := EncodeSectionOrder(s.SectionOrder)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO candidate_sessions
		   (id, candidate_id, assessment_id, status, current_section_index, current_question_index,
		    section_order, version, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9)`,
		s.ID, s.CandidateID, s.AssessmentID, s.Status, s.CurrentSectionIndex, s.CurrentQuestionIndex,
		order, s.Version, s.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID retrieves a session with its candidate's name.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CandidateSession, error) {
	s := &model.CandidateSession{}
	var order []byte
	err := r.pool.QueryRow(ctx,
		`SELECT cs.id, cs.candidate_id, cs.assessment_id, cs.status,
		        cs.current_section_index, cs.current_question_index, cs.section_order,
		        cs.version, cs.started_at, cs.completed_at, cs.final_score, cs.max_score,
		        c.name
		 FROM candidate_sessions cs
		 JOIN candidates c ON c.id = cs.candidate_id
		 WHERE cs.id = $1`, id,
	).Scan(&s.ID, &s.CandidateID, &s.AssessmentID, &s.Status,
		&s.CurrentSectionIndex, &s.CurrentQuestionIndex, &order,
		&s.Version, &s.StartedAt, &s.CompletedAt, &s.FinalScore, &s.MaxScore,
		&s.CandidateName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if s.SectionOrder, err = DecodeSectionOrder(order); err != nil {
		return nil, err
	}
	return s, nil
}

// MoveCursor sets the cursor with a compare-and-set on version.
func (r *SessionRepository) MoveCursor(ctx context.Context, id uuid.UUID, version int64, section, question int) (int64, error) {
	var next int64
	err := r.pool.QueryRow(ctx,
		`UPDATE candidate_sessions
		 SET current_section_index = $1, current_question_index = $2, version = version + 1
		 WHERE id = $3 AND version = $4
		 RETURNING version`,
		section, question, id, version,
	).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, r.conflictOrMissing(ctx, id)
	}
	if err != nil {
		return 0, fmt.Errorf("move cursor: %w", err)
	}
	return next, nil
}

// Complete marks a session as completed.
func (r *SessionRepository) Complete(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE candidate_sessions
		 SET status = $1, completed_at = $2, version = version + 1
		 WHERE id = $3`,
		model.SessionStatusCompleted, at, id,
	)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveFinalScore writes the aggregate score of one session.
func (r *SessionRepository) SaveFinalScore(ctx context.Context, s model.FinalScore) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE candidate_sessions SET final_score = $1, max_score = $2 WHERE id = $3`,
		s.FinalScore, s.MaxScore, s.SessionID,
	)
	if err != nil {
		return fmt.Errorf("save final score: %w", err)
	}
	return nil
}

// SaveFinalScores writes a batch of aggregates in a single UPDATE using UNNEST.
func (r *SessionRepository) SaveFinalScores(ctx context.Context, batch []model.FinalScore) error {
	if len(batch) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(batch))
	finals := make([]int32, len(batch))
	maxes := make([]int32, len(batch))
	for i, s := range batch {
		ids[i] = s.SessionID
		finals[i] = int32(s.FinalScore)
		maxes[i] = int32(s.MaxScore)
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE candidate_sessions AS cs
		SET final_score = t.final_score,
		    max_score = t.max_score
		FROM (
			SELECT u.id, u.final_score, u.max_score
			FROM UNNEST($1::uuid[], $2::int[], $3::int[]) AS u (id, final_score, max_score)
		) AS t
		WHERE cs.id = t.id`,
		ids, finals, maxes,
	)
	if err != nil {
		return fmt.Errorf("save final scores: %w", err)
	}
	return nil
}

func (r *SessionRepository) conflictOrMissing(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM candidate_sessions WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}

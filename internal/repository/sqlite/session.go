package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/repository"
)

// SessionRepository handles candidate session data access.
type SessionRepository struct {
	db *sql.DB
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, s *model.CandidateSession) error {
	order, err := repository.EncodeSectionOrder(s.SectionOrder)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO candidate_sessions
		   (id, candidate_id, assessment_id, status, current_section_index, current_question_index,
		    section_order, version, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.CandidateID, s.AssessmentID, string(s.Status), s.CurrentSectionIndex, s.CurrentQuestionIndex,
		order, s.Version, toMillis(s.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID retrieves a session with its candidate's name.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CandidateSession, error) {
	var (
		s          model.CandidateSession
		status     string
		order      string
		started    int64
		completed  sql.NullInt64
		finalScore sql.NullInt64
		maxScore   sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT cs.id, cs.candidate_id, cs.assessment_id, cs.status,
		        cs.current_section_index, cs.current_question_index, cs.section_order,
		        cs.version, cs.started_at, cs.completed_at, cs.final_score, cs.max_score,
		        c.name
		 FROM candidate_sessions cs
		 JOIN candidates c ON c.id = cs.candidate_id
		 WHERE cs.id = ?`, id,
	).Scan(&s.ID, &s.CandidateID, &s.AssessmentID, &status,
		&s.CurrentSectionIndex, &s.CurrentQuestionIndex, &order,
		&s.Version, &started, &completed, &finalScore, &maxScore,
		&s.CandidateName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	s.Status = model.SessionStatus(status)
	s.StartedAt = fromMillis(started)
	s.CompletedAt = nullTime(completed)
	s.FinalScore = nullInt(finalScore)
	s.MaxScore = nullInt(maxScore)
	if s.SectionOrder, err = repository.DecodeSectionOrder([]byte(order)); err != nil {
		return nil, err
	}
	return &s, nil
}

// MoveCursor sets the cursor with a compare-and-set on version.
func (r *SessionRepository) MoveCursor(ctx context.Context, id uuid.UUID, version int64, section, question int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE candidate_sessions
		 SET current_section_index = ?, current_question_index = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		section, question, id, version,
	)
	if err != nil {
		return 0, fmt.Errorf("move cursor: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("move cursor: %w", err)
	}
	if n == 1 {
		return version + 1, nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM candidate_sessions WHERE id = ?`, id,
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check session: %w", err)
	}
	if exists == 0 {
		return 0, repository.ErrNotFound
	}
	return 0, repository.ErrVersionConflict
}

// Complete marks a session as completed.
func (r *SessionRepository) Complete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE candidate_sessions
		 SET status = ?, completed_at = ?, version = version + 1
		 WHERE id = ?`,
		string(model.SessionStatusCompleted), toMillis(at), id,
	)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SaveFinalScore writes the aggregate score of one session.
func (r *SessionRepository) SaveFinalScore(ctx context.Context, s model.FinalScore) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE candidate_sessions SET final_score = ?, max_score = ? WHERE id = ?`,
		s.FinalScore, s.MaxScore, s.SessionID,
	)
	if err != nil {
		return fmt.Errorf("save final score: %w", err)
	}
	return nil
}

// SaveFinalScores writes a batch of aggregates in one transaction.
func (r *SessionRepository) SaveFinalScores(ctx context.Context, batch []model.FinalScore) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE candidate_sessions SET final_score = ?, max_score = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare final scores: %w", err)
	}
	defer stmt.Close()

	for _, s := range batch {
		if _, err := stmt.ExecContext(ctx, s.FinalScore, s.MaxScore, s.SessionID); err != nil {
			return fmt.Errorf("save final score %s: %w", s.SessionID, err)
		}
	}
	return tx.Commit()
}

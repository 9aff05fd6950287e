package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/candidate-assessment/internal/model"
)

// ResponseRepository handles the candidate response log.
type ResponseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository creates a new ResponseRepository.
func NewResponseRepository(pool *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

// RecordAndAdvance appends r and moves the session past the current question.
func (r *ResponseRepository) RecordAndAdvance(ctx context.Context, resp *model.CandidateResponse) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var version int64
	err = tx.QueryRow(ctx,
		`UPDATE candidate_sessions
		 SET current_question_index = current_question_index + 1, version = version + 1
		 WHERE id = $1
		 RETURNING version`, resp.SessionID,
	).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("advance session: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO candidate_responses
		   (id, session_id, question_id, answer_text, selected_option, is_correct, score_earned, answered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		resp.ID, resp.SessionID, resp.QuestionID, resp.AnswerText, resp.SelectedOption,
		resp.IsCorrect, resp.ScoreEarned, resp.AnsweredAt,
	)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}

	return tx.Commit(ctx)
}

// CountBySession returns the number of responses recorded for a session.
func (r *ResponseRepository) CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM candidate_responses WHERE session_id = $1`, sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

// ListBySession returns a session's responses in the order they were recorded.
func (r *ResponseRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.CandidateResponse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, question_id, answer_text, selected_option, is_correct, score_earned, answered_at
		 FROM candidate_responses
		 WHERE session_id = $1
		 ORDER BY answered_at, id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	responses := []model.CandidateResponse{}
	for rows.Next() {
		var resp model.CandidateResponse
		if err := rows.Scan(&resp.ID, &resp.SessionID, &resp.QuestionID, &resp.AnswerText,
			&resp.SelectedOption, &resp.IsCorrect, &resp.ScoreEarned, &resp.AnsweredAt); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/repository"
)

// ResponseRepository handles the candidate response log.
type ResponseRepository struct {
	db *sql.DB
}

// RecordAndAdvance appends resp and moves the session past the current question.
func (r *ResponseRepository) RecordAndAdvance(ctx context.Context, resp *model.CandidateResponse) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE candidate_sessions
		 SET current_question_index = current_question_index + 1, version = version + 1
		 WHERE id = ?`, resp.SessionID,
	)
	if err != nil {
		return fmt.Errorf("advance session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO candidate_responses
		   (id, session_id, question_id, answer_text, selected_option, is_correct, score_earned, answered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		resp.ID, resp.SessionID, resp.QuestionID, stringArg(resp.AnswerText), stringArg(resp.SelectedOption),
		boolArg(resp.IsCorrect), resp.ScoreEarned, toMillis(resp.AnsweredAt),
	)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}

	return tx.Commit()
}

// CountBySession returns the number of responses recorded for a session.
func (r *ResponseRepository) CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM candidate_responses WHERE session_id = ?`, sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

// ListBySession returns a session's responses in the order they were recorded.
func (r *ResponseRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.CandidateResponse, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, question_id, answer_text, selected_option, is_correct, score_earned, answered_at
		 FROM candidate_responses
		 WHERE session_id = ?
		 ORDER BY answered_at, rowid`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	responses := []model.CandidateResponse{}
	for rows.Next() {
		var (
			resp      model.CandidateResponse
			answer    sql.NullString
			selected  sql.NullString
			isCorrect sql.NullInt64
			answered  int64
		)
		if err := rows.Scan(&resp.ID, &resp.SessionID, &resp.QuestionID, &answer,
			&selected, &isCorrect, &resp.ScoreEarned, &answered); err != nil {
			return nil, err
		}
		resp.AnswerText = nullString(answer)
		resp.SelectedOption = nullString(selected)
		resp.IsCorrect = nullBool(isCorrect)
		resp.AnsweredAt = fromMillis(answered)
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

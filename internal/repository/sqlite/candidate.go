package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/repository"
)

// CandidateRepository handles candidate data access.
type CandidateRepository struct {
	db *sql.DB
}

// Create inserts a candidate.
func (r *CandidateRepository) Create(ctx context.Context, c *model.Candidate) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO candidates (id, name, role, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Role, toMillis(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

// GetByID retrieves a candidate by ID.
func (r *CandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	var (
		c       model.Candidate
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, role, created_at FROM candidates WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	c.CreatedAt = fromMillis(created)
	return &c, nil
}

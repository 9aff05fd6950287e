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

// CandidateRepository handles candidate data access.
type CandidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

// Create inserts a candidate. ID and CreatedAt are assigned by the caller.
func (r *CandidateRepository) Create(ctx context.Context, c *model.Candidate) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO candidates (id, name, role, created_at)
		 VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Role, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

// GetByID retrieves a candidate by ID.
func (r *CandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	c := &model.Candidate{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, role, created_at FROM candidates WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Role, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return c, nil
}

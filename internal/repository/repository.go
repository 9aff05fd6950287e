package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/candidate-assessment/internal/model"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a compare-and-set on a session's
	// version loses against a concurrent writer.
	ErrVersionConflict = errors.New("session version conflict")
)

// CandidateStore persists candidates.
type CandidateStore interface {
	Create(ctx context.Context, c *model.Candidate) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
}

// CatalogStore reads the assessment catalog. Sections are returned with their
// typed content and their questions ordered by display order.
type CatalogStore interface {
	GetActiveAssessment(ctx context.Context) (*model.Assessment, error)
	GetAssessment(ctx context.Context, id uuid.UUID) (*model.Assessment, error)
	GetSection(ctx context.Context, id uuid.UUID) (*model.Section, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*model.Question, error)
	CountQuestions(ctx context.Context, sectionIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

// CatalogWriter loads catalog fixtures. Saving an assessment that already
// exists replaces its sections, content and questions.
type CatalogWriter interface {
	SaveAssessment(ctx context.Context, a *model.Assessment) error
}

// SessionStore persists candidate sessions.
type SessionStore interface {
	Create(ctx context.Context, s *model.CandidateSession) error
	// GetByID returns the session with the candidate name joined.
	GetByID(ctx context.Context, id uuid.UUID) (*model.CandidateSession, error)
	// MoveCursor sets both indices if the stored version still equals version,
	// returning the new version or ErrVersionConflict.
	MoveCursor(ctx context.Context, id uuid.UUID, version int64, section, question int) (int64, error)
	Complete(ctx context.Context, id uuid.UUID, at time.Time) error
	SaveFinalScore(ctx context.Context, s model.FinalScore) error
	SaveFinalScores(ctx context.Context, batch []model.FinalScore) error
}

// ResponseStore persists the append-only response log.
type ResponseStore interface {
	// RecordAndAdvance inserts r and increments the session's question index
	// in a single transaction.
	RecordAndAdvance(ctx context.Context, r *model.CandidateResponse) error
	CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.CandidateResponse, error)
}

// Store groups every repository a backend provides.
type Store struct {
	Candidates CandidateStore
	Catalog    CatalogStore
	Writer     CatalogWriter
	Sessions   SessionStore
	Responses  ResponseStore
}

// NewPostgresStore wires the pgx-backed repositories.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	catalog := NewCatalogRepository(pool)
	return Store{
		Candidates: NewCandidateRepository(pool),
		Catalog:    catalog,
		Writer:     catalog,
		Sessions:   NewSessionRepository(pool),
		Responses:  NewResponseRepository(pool),
	}
}

// Package sqlite implements the repositories on an embedded modernc SQLite
// database. UUIDs are stored as text and timestamps as unix milliseconds.
package sqlite

import (
	"database/sql"
	"time"

	"github.com/stemsi/candidate-assessment/internal/repository"
)

// NewStore wires the SQLite-backed repositories.
func NewStore(db *sql.DB) repository.Store {
	catalog := &CatalogRepository{db: db}
	return repository.Store{
		Candidates: &CandidateRepository{db: db},
		Catalog:    catalog,
		Writer:     catalog,
		Sessions:   &SessionRepository{db: db},
		Responses:  &ResponseRepository{db: db},
	}
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullTime(ms sql.NullInt64) *time.Time {
	if !ms.Valid {
		return nil
	}
	t := fromMillis(ms.Int64)
	return &t
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullBool(n sql.NullInt64) *bool {
	if !n.Valid {
		return nil
	}
	v := n.Int64 != 0
	return &v
}

func boolArg(b *bool) any {
	if b == nil {
		return nil
	}
	if *b {
		return 1
	}
	return 0
}

func stringArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCandidateRole is assigned when registration omits a role.
const DefaultCandidateRole = "Candidate"

// Candidate is a registered assessment taker.
type Candidate struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterCandidateRequest is the payload for candidate registration.
type RegisterCandidateRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255"`
	Role string `json:"role" binding:"omitempty,max=100"`
}

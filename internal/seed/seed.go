// Package seed loads the bundled assessment fixture into a store.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/candidate-assessment/internal/repository"
)

// Load writes the fixture unless it is already present. With force the
// fixture is upserted regardless. It reports whether anything was written.
func Load(ctx context.Context, store repository.Store, force bool, log zerolog.Logger) (bool, error) {
	log = log.With().Str("component", "seed").Logger()

	if !force {
		_, err := store.Catalog.GetAssessment(ctx, AssessmentID)
		if err == nil {
			log.Debug().Str("assessment_id", AssessmentID.String()).Msg("Fixture already present, skipping")
			return false, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return false, fmt.Errorf("check fixture: %w", err)
		}
	}

	a := Assessment()
	if err := store.Writer.SaveAssessment(ctx, a); err != nil {
		return false, fmt.Errorf("save fixture: %w", err)
	}

	log.Info().
		Str("assessment_id", a.ID.String()).
		Int("sections", len(a.Sections)).
		Int("questions", a.TotalQuestions()).
		Msg("Fixture loaded")
	return true, nil
}

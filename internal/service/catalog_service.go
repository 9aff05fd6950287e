package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/candidate-assessment/internal/config"
	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/repository"
)

// CatalogService serves the read-only catalog, caching assessments, sections
// and questions in Redis when a client is configured. Cache failures fall
// back to the store.
type CatalogService struct {
	repo repository.CatalogStore
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// NewCatalogService creates a new CatalogService. rdb may be nil.
func NewCatalogService(repo repository.CatalogStore, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		repo: repo,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With().Str("component", "catalog_service").Logger(),
	}
}

// cachedSection carries the questions in storage form, since answer keys
// are not serialized on model.Section.
type cachedSection struct {
	model.Section
	Questions []model.QuestionRecord `json:"questions"`
}

type cachedAssessment struct {
	model.Assessment
	Sections []cachedSection `json:"sections"`
}

// GetActiveAssessment returns the active assessment with its section tree.
func (s *CatalogService) GetActiveAssessment(ctx context.Context) (*model.Assessment, error) {
	if s.rdb != nil {
		id, err := s.rdb.Get(ctx, config.CacheKey.ActiveAssessmentKey()).Result()
		if err == nil {
			if parsed, perr := uuid.Parse(id); perr == nil {
				return s.GetAssessment(ctx, parsed)
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("Active assessment cache read failed")
		}
	}

	a, err := s.repo.GetActiveAssessment(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.WarmAssessment(ctx, a); err != nil {
		s.log.Warn().Err(err).Str("assessment_id", a.ID.String()).Msg("Failed to cache assessment")
	}
	return a, nil
}

// GetAssessment returns an assessment with its section tree.
func (s *CatalogService) GetAssessment(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	var cached cachedAssessment
	if s.readCache(ctx, config.CacheKey.AssessmentKey(id.String()), &cached) {
		a := cached.Assessment
		a.Sections = make([]model.Section, len(cached.Sections))
		for i := range cached.Sections {
			a.Sections[i] = cached.Sections[i].section()
		}
		return &a, nil
	}

	a, err := s.repo.GetAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cacheAssessment(ctx, a); err != nil {
		s.log.Warn().Err(err).Str("assessment_id", id.String()).Msg("Failed to cache assessment")
	}
	return a, nil
}

// LoadSection returns a section with its content and ordered questions.
func (s *CatalogService) LoadSection(ctx context.Context, id uuid.UUID) (*model.Section, error) {
	var cached cachedSection
	if s.readCache(ctx, config.CacheKey.SectionKey(id.String()), &cached) {
		sec := cached.section()
		return &sec, nil
	}

	sec, err := s.repo.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		if err := s.writeCache(ctx, s.rdb, config.CacheKey.SectionKey(id.String()), newCachedSection(sec)); err != nil {
			s.log.Warn().Err(err).Str("section_id", id.String()).Msg("Failed to cache section")
		}
	}
	return sec, nil
}

// GetQuestion returns a question with its answer key.
func (s *CatalogService) GetQuestion(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	var rec model.QuestionRecord
	if s.readCache(ctx, config.CacheKey.QuestionKey(id.String()), &rec) {
		q := rec.Question()
		return &q, nil
	}

	q, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		if err := s.writeCache(ctx, s.rdb, config.CacheKey.QuestionKey(id.String()), q.Record()); err != nil {
			s.log.Warn().Err(err).Str("question_id", id.String()).Msg("Failed to cache question")
		}
	}
	return q, nil
}

// CountQuestions returns the total number of questions across sectionIDs.
func (s *CatalogService) CountQuestions(ctx context.Context, sectionIDs []uuid.UUID) (int, error) {
	counts, err := s.repo.CountQuestions(ctx, sectionIDs)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, id := range sectionIDs {
		total += counts[id]
	}
	return total, nil
}

// WarmAssessment caches a, each of its sections and questions, and marks it
// as the active assessment when it is active.
func (s *CatalogService) WarmAssessment(ctx context.Context, a *model.Assessment) error {
	if s.rdb == nil {
		return nil
	}

	pipe := s.rdb.Pipeline()
	if err := s.queueAssessment(ctx, pipe, a); err != nil {
		return err
	}
	for i := range a.Sections {
		sec := &a.Sections[i]
		if err := s.writeCache(ctx, pipe, config.CacheKey.SectionKey(sec.ID.String()), newCachedSection(sec)); err != nil {
			return err
		}
		for j := range sec.Questions {
			q := &sec.Questions[j]
			if err := s.writeCache(ctx, pipe, config.CacheKey.QuestionKey(q.ID.String()), q.Record()); err != nil {
				return err
			}
		}
	}
	if a.IsActive {
		pipe.Set(ctx, config.CacheKey.ActiveAssessmentKey(), a.ID.String(), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("assessment_id", a.ID.String()).
		Int("sections", len(a.Sections)).
		Int("questions", a.TotalQuestions()).
		Msg("Cache warmed")
	return nil
}

// Prewarm loads the active assessment into the cache.
func (s *CatalogService) Prewarm(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	a, err := s.repo.GetActiveAssessment(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Info().Msg("No active assessment to prewarm")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load active assessment: %w", err)
	}

	if err := s.WarmAssessment(ctx, a); err != nil {
		return err
	}
	s.log.Info().
		Str("assessment_id", a.ID.String()).
		Msg("Prewarming complete")
	return nil
}

func (s *CatalogService) cacheAssessment(ctx context.Context, a *model.Assessment) error {
	if s.rdb == nil {
		return nil
	}
	pipe := s.rdb.Pipeline()
	if err := s.queueAssessment(ctx, pipe, a); err != nil {
		return err
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *CatalogService) queueAssessment(ctx context.Context, pipe redis.Pipeliner, a *model.Assessment) error {
	cached := cachedAssessment{Assessment: *a}
	cached.Assessment.Sections = nil
	cached.Sections = make([]cachedSection, len(a.Sections))
	for i := range a.Sections {
		cached.Sections[i] = newCachedSection(&a.Sections[i])
	}
	return s.writeCache(ctx, pipe, config.CacheKey.AssessmentKey(a.ID.String()), cached)
}

func (s *CatalogService) readCache(ctx context.Context, key string, dst any) bool {
	if s.rdb == nil {
		return false
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Corrupt cache entry, ignoring")
		return false
	}
	return true
}

func (s *CatalogService) writeCache(ctx context.Context, c redis.Cmdable, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.Set(ctx, key, raw, s.ttl).Err()
}

func newCachedSection(sec *model.Section) cachedSection {
	c := cachedSection{Section: *sec}
	c.Section.Questions = nil
	c.Questions = make([]model.QuestionRecord, len(sec.Questions))
	for i := range sec.Questions {
		c.Questions[i] = sec.Questions[i].Record()
	}
	return c
}

func (c cachedSection) section() model.Section {
	sec := c.Section
	sec.Questions = make([]model.Question, len(c.Questions))
	for i, rec := range c.Questions {
		sec.Questions[i] = rec.Question()
	}
	return sec
}

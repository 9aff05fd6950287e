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

const sectionQuery = `
	SELECT s.id, s.assessment_id, s.section_type, s.display_order,
	       ac.audio_url, ac.transcript,
	       ic.image_url, ic.alt_text,
	       rc.title, rc.passage
	FROM sections s
	LEFT JOIN audio_contents ac ON ac.section_id = s.id
	LEFT JOIN image_contents ic ON ic.section_id = s.id
	LEFT JOIN reading_contents rc ON rc.section_id = s.id`

const questionColumns = `id, section_id, question_text, question_type, sub_question_type,
	options, blanks, correct_answer, image_url, audio_url, passage, passage_title,
	score, display_order`

// CatalogRepository reads and seeds the assessment catalog.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// GetActiveAssessment retrieves the most recently created active assessment
// with its full section tree.
func (r *CatalogRepository) GetActiveAssessment(ctx context.Context) (*model.Assessment, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM assessments WHERE is_active ORDER BY created_at DESC LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active assessment: %w", err)
	}
	return r.GetAssessment(ctx, id)
}

// GetAssessment retrieves an assessment with its sections ordered by display order.
func (r *CatalogRepository) GetAssessment(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	a := &model.Assessment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, is_active, created_at FROM assessments WHERE id = $1`, id,
	).Scan(&a.ID, &a.Title, &a.Description, &a.IsActive, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}

	sections, err := r.listSections(ctx, sectionQuery+` WHERE s.assessment_id = $1 ORDER BY s.display_order, s.id`, id)
	if err != nil {
		return nil, err
	}
	a.Sections = sections
	return a, nil
}

// GetSection retrieves one section with its content and questions.
func (r *CatalogRepository) GetSection(ctx context.Context, id uuid.UUID) (*model.Section, error) {
	sections, err := r.listSections(ctx, sectionQuery+` WHERE s.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, ErrNotFound
	}
	return &sections[0], nil
}

// GetQuestion retrieves a question by ID.
func (r *CatalogRepository) GetQuestion(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	var rec model.QuestionRecord
	err := scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id,
	), &rec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	q := rec.Question()
	return &q, nil
}

// CountQuestions returns the question count of each requested section.
// Sections without questions map to 0.
func (r *CatalogRepository) CountQuestions(ctx context.Context, sectionIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(sectionIDs))
	for _, id := range sectionIDs {
		counts[id] = 0
	}
	if len(sectionIDs) == 0 {
		return counts, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT section_id, COUNT(*) FROM questions
		 WHERE section_id = ANY($1)
		 GROUP BY section_id`, sectionIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// SaveAssessment upserts the whole tree of a. When a is active every other
// assessment is deactivated.
func (r *CatalogRepository) SaveAssessment(ctx context.Context, a *model.Assessment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if a.IsActive {
		if _, err := tx.Exec(ctx, `UPDATE assessments SET is_active = FALSE WHERE id <> $1`, a.ID); err != nil {
			return fmt.Errorf("deactivate assessments: %w", err)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO assessments (id, title, description, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET title = EXCLUDED.title, description = EXCLUDED.description, is_active = EXCLUDED.is_active`,
		a.ID, a.Title, a.Description, a.IsActive, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert assessment: %w", err)
	}

	for i := range a.Sections {
		if err := saveSection(ctx, tx, a.ID, &a.Sections[i]); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func saveSection(ctx context.Context, tx pgx.Tx, assessmentID uuid.UUID, s *model.Section) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO sections (id, assessment_id, section_type, display_order)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET section_type = EXCLUDED.section_type, display_order = EXCLUDED.display_order`,
		s.ID, assessmentID, s.Type, s.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("upsert section %s: %w", s.ID, err)
	}

	switch {
	case s.Audio != nil:
		_, err = tx.Exec(ctx,
			`INSERT INTO audio_contents (section_id, audio_url, transcript) VALUES ($1, $2, $3)
			 ON CONFLICT (section_id) DO UPDATE SET audio_url = EXCLUDED.audio_url, transcript = EXCLUDED.transcript`,
			s.ID, s.Audio.AudioURL, s.Audio.Transcript)
	case s.Image != nil:
		_, err = tx.Exec(ctx,
			`INSERT INTO image_contents (section_id, image_url, alt_text) VALUES ($1, $2, $3)
			 ON CONFLICT (section_id) DO UPDATE SET image_url = EXCLUDED.image_url, alt_text = EXCLUDED.alt_text`,
			s.ID, s.Image.ImageURL, s.Image.AltText)
	case s.Reading != nil:
		_, err = tx.Exec(ctx,
			`INSERT INTO reading_contents (section_id, title, passage) VALUES ($1, $2, $3)
			 ON CONFLICT (section_id) DO UPDATE SET title = EXCLUDED.title, passage = EXCLUDED.passage`,
			s.ID, s.Reading.Title, s.Reading.Passage)
	}
	if err != nil {
		return fmt.Errorf("upsert content of section %s: %w", s.ID, err)
	}

	for i := range s.Questions {
		rec := s.Questions[i].Record()
		_, err := tx.Exec(ctx,
			`INSERT INTO questions (`+questionColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			 ON CONFLICT (id) DO UPDATE
			 SET question_text = EXCLUDED.question_text, question_type = EXCLUDED.question_type,
			     sub_question_type = EXCLUDED.sub_question_type, options = EXCLUDED.options,
			     blanks = EXCLUDED.blanks, correct_answer = EXCLUDED.correct_answer,
			     image_url = EXCLUDED.image_url, audio_url = EXCLUDED.audio_url,
			     passage = EXCLUDED.passage, passage_title = EXCLUDED.passage_title,
			     score = EXCLUDED.score, display_order = EXCLUDED.display_order`,
			rec.ID, s.ID, rec.Text, rec.Type, rec.SubType,
			rec.Options, rec.Blanks, rec.CorrectAnswer, rec.ImageURL, rec.AudioURL,
			rec.Passage, rec.PassageTitle, rec.Score, rec.DisplayOrder,
		)
		if err != nil {
			return fmt.Errorf("upsert question %s: %w", rec.ID, err)
		}
	}
	return nil
}

func (r *CatalogRepository) listSections(ctx context.Context, query string, args ...any) ([]model.Section, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		var s model.Section
		var c SectionContent
		if err := rows.Scan(&s.ID, &s.AssessmentID, &s.Type, &s.DisplayOrder,
			&c.AudioURL, &c.Transcript, &c.ImageURL, &c.AltText, &c.ReadingTitle, &c.Passage); err != nil {
			return nil, err
		}
		c.Attach(&s)
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return sections, nil
	}

	ids := make([]uuid.UUID, len(sections))
	for i := range sections {
		ids[i] = sections[i].ID
	}
	questions, err := r.listQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}
	GroupQuestions(sections, questions)
	return sections, nil
}

func (r *CatalogRepository) listQuestions(ctx context.Context, sectionIDs []uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE section_id = ANY($1)
		 ORDER BY display_order, id`, sectionIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var rec model.QuestionRecord
		if err := scanQuestion(rows, &rec); err != nil {
			return nil, err
		}
		questions = append(questions, rec.Question())
	}
	return questions, rows.Err()
}

func scanQuestion(row pgx.Row, rec *model.QuestionRecord) error {
	return row.Scan(&rec.ID, &rec.SectionID, &rec.Text, &rec.Type, &rec.SubType,
		&rec.Options, &rec.Blanks, &rec.CorrectAnswer, &rec.ImageURL, &rec.AudioURL,
		&rec.Passage, &rec.PassageTitle, &rec.Score, &rec.DisplayOrder)
}

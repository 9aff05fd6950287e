package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/stemsi/candidate-assessment/internal/model"
	"github.com/stemsi/candidate-assessment/internal/repository"
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
	db *sql.DB
}

// GetActiveAssessment retrieves the most recently created active assessment.
func (r *CatalogRepository) GetActiveAssessment(ctx context.Context) (*model.Assessment, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM assessments WHERE is_active = 1 ORDER BY created_at DESC LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active assessment: %w", err)
	}
	return r.GetAssessment(ctx, id)
}

// GetAssessment retrieves an assessment with its sections ordered by display order.
func (r *CatalogRepository) GetAssessment(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	var (
		a       model.Assessment
		active  int64
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, is_active, created_at FROM assessments WHERE id = ?`, id,
	).Scan(&a.ID, &a.Title, &a.Description, &active, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	a.IsActive = active != 0
	a.CreatedAt = fromMillis(created)

	sections, err := r.listSections(ctx, sectionQuery+` WHERE s.assessment_id = ? ORDER BY s.display_order, s.id`, id)
	if err != nil {
		return nil, err
	}
	a.Sections = sections
	return &a, nil
}

// GetSection retrieves one section with its content and questions.
func (r *CatalogRepository) GetSection(ctx context.Context, id uuid.UUID) (*model.Section, error) {
	sections, err := r.listSections(ctx, sectionQuery+` WHERE s.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, repository.ErrNotFound
	}
	return &sections[0], nil
}

// GetQuestion retrieves a question by ID.
func (r *CatalogRepository) GetQuestion(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	var rec model.QuestionRecord
	err := scanQuestion(r.db.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ?`, id,
	), &rec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	q := rec.Question()
	return &q, nil
}

// CountQuestions returns the question count of each requested section.
func (r *CatalogRepository) CountQuestions(ctx context.Context, sectionIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(sectionIDs))
	for _, id := range sectionIDs {
		counts[id] = 0
	}
	if len(sectionIDs) == 0 {
		return counts, nil
	}

	placeholders, args := inList(sectionIDs)
	rows, err := r.db.QueryContext(ctx,
		`SELECT section_id, COUNT(*) FROM questions
		 WHERE section_id IN (`+placeholders+`)
		 GROUP BY section_id`, args...,
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

// SaveAssessment upserts the whole tree of a.
func (r *CatalogRepository) SaveAssessment(ctx context.Context, a *model.Assessment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if a.IsActive {
		if _, err := tx.ExecContext(ctx, `UPDATE assessments SET is_active = 0 WHERE id <> ?`, a.ID); err != nil {
			return fmt.Errorf("deactivate assessments: %w", err)
		}
	}

	active := 0
	if a.IsActive {
		active = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO assessments (id, title, description, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE
		 SET title = excluded.title, description = excluded.description, is_active = excluded.is_active`,
		a.ID, a.Title, a.Description, active, toMillis(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert assessment: %w", err)
	}

	for i := range a.Sections {
		if err := saveSection(ctx, tx, a.ID, &a.Sections[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func saveSection(ctx context.Context, tx *sql.Tx, assessmentID uuid.UUID, s *model.Section) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO sections (id, assessment_id, section_type, display_order)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE
		 SET section_type = excluded.section_type, display_order = excluded.display_order`,
		s.ID, assessmentID, string(s.Type), s.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("upsert section %s: %w", s.ID, err)
	}

	switch {
	case s.Audio != nil:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO audio_contents (section_id, audio_url, transcript) VALUES (?, ?, ?)
			 ON CONFLICT (section_id) DO UPDATE SET audio_url = excluded.audio_url, transcript = excluded.transcript`,
			s.ID, s.Audio.AudioURL, s.Audio.Transcript)
	case s.Image != nil:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO image_contents (section_id, image_url, alt_text) VALUES (?, ?, ?)
			 ON CONFLICT (section_id) DO UPDATE SET image_url = excluded.image_url, alt_text = excluded.alt_text`,
			s.ID, s.Image.ImageURL, s.Image.AltText)
	case s.Reading != nil:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO reading_contents (section_id, title, passage) VALUES (?, ?, ?)
			 ON CONFLICT (section_id) DO UPDATE SET title = excluded.title, passage = excluded.passage`,
			s.ID, s.Reading.Title, s.Reading.Passage)
	}
	if err != nil {
		return fmt.Errorf("upsert content of section %s: %w", s.ID, err)
	}

	for i := range s.Questions {
		rec := s.Questions[i].Record()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO questions (`+questionColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE
			 SET question_text = excluded.question_text, question_type = excluded.question_type,
			     sub_question_type = excluded.sub_question_type, options = excluded.options,
			     blanks = excluded.blanks, correct_answer = excluded.correct_answer,
			     image_url = excluded.image_url, audio_url = excluded.audio_url,
			     passage = excluded.passage, passage_title = excluded.passage_title,
			     score = excluded.score, display_order = excluded.display_order`,
			rec.ID, s.ID, rec.Text, string(rec.Type), string(rec.SubType),
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
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		var (
			s                                  model.Section
			sectionType                        string
			audioURL, transcript, imageURL     sql.NullString
			altText, readingTitle, passageText sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.AssessmentID, &sectionType, &s.DisplayOrder,
			&audioURL, &transcript, &imageURL, &altText, &readingTitle, &passageText); err != nil {
			return nil, err
		}
		s.Type = model.SectionType(sectionType)
		repository.SectionContent{
			AudioURL:     nullString(audioURL),
			Transcript:   nullString(transcript),
			ImageURL:     nullString(imageURL),
			AltText:      nullString(altText),
			ReadingTitle: nullString(readingTitle),
			Passage:      nullString(passageText),
		}.Attach(&s)
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Release the single connection before querying questions.
	rows.Close()
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
	repository.GroupQuestions(sections, questions)
	return sections, nil
}

func (r *CatalogRepository) listQuestions(ctx context.Context, sectionIDs []uuid.UUID) ([]model.Question, error) {
	placeholders, args := inList(sectionIDs)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE section_id IN (`+placeholders+`)
		 ORDER BY display_order, id`, args...,
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner, rec *model.QuestionRecord) error {
	var qType, subType string
	err := row.Scan(&rec.ID, &rec.SectionID, &rec.Text, &qType, &subType,
		&rec.Options, &rec.Blanks, &rec.CorrectAnswer, &rec.ImageURL, &rec.AudioURL,
		&rec.Passage, &rec.PassageTitle, &rec.Score, &rec.DisplayOrder)
	rec.Type = model.QuestionType(qType)
	rec.SubType = model.QuestionType(subType)
	return err
}

func inList(ids []uuid.UUID) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return strings.Join(marks, ", "), args
}

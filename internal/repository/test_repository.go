package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mathclub/club-backend/internal/model"
)

// TestRepository handles test data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

const testColumns = `id, title, pdf_link, total_questions, closed_count, open_count, answers_text,
	video_link, timer_minutes, is_star_eligible, star_start_date, star_end_date, created_at, updated_at`

func scanTest(row interface{ Scan(...any) error }) (*model.Test, error) {
	t := &model.Test{}
	err := row.Scan(&t.ID, &t.Title, &t.PDFLink, &t.TotalQuestions, &t.ClosedCount, &t.OpenCount, &t.AnswersText,
		&t.VideoLink, &t.TimerMinutes, &t.IsStarEligible, &t.StarStartDate, &t.StarEndDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// GetByID retrieves a test by ID.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	return scanTest(r.pool.QueryRow(ctx, `SELECT `+testColumns+` FROM tests WHERE id = $1`, id))
}

// List returns all tests, newest first.
func (r *TestRepository) List(ctx context.Context) ([]model.Test, error) {
	return r.query(ctx, `SELECT `+testColumns+` FROM tests ORDER BY created_at DESC`)
}

// ListStarEligible returns star-eligible tests ordered by window start.
func (r *TestRepository) ListStarEligible(ctx context.Context) ([]model.Test, error) {
	return r.query(ctx,
		`SELECT `+testColumns+` FROM tests
		 WHERE is_star_eligible
		 ORDER BY star_start_date NULLS FIRST, created_at DESC`)
}

// ListUnsettledClosedWindows returns star tests whose window ended before now
// and which have not been settled yet.
func (r *TestRepository) ListUnsettledClosedWindows(ctx context.Context, now time.Time) ([]model.Test, error) {
	return r.query(ctx,
		`SELECT `+testColumns+` FROM tests
		 WHERE is_star_eligible AND star_end_date IS NOT NULL AND star_end_date < $1 AND stars_settled_at IS NULL
		 ORDER BY star_end_date`, now)
}

// MarkSettled records that a closed window has been rewarded.
func (r *TestRepository) MarkSettled(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE tests SET stars_settled_at = $1 WHERE id = $2`, at, id)
	return err
}

// Create inserts a new test.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (title, pdf_link, total_questions, closed_count, open_count, answers_text,
			video_link, timer_minutes, is_star_eligible, star_start_date, star_end_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		t.Title, t.PDFLink, t.TotalQuestions, t.ClosedCount, t.OpenCount, t.AnswersText,
		t.VideoLink, t.TimerMinutes, t.IsStarEligible, t.StarStartDate, t.StarEndDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update replaces all authored fields of a test. Editing the window reopens settlement.
func (r *TestRepository) Update(ctx context.Context, t *model.Test) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE tests SET title = $1, pdf_link = $2, total_questions = $3, closed_count = $4, open_count = $5,
			answers_text = $6, video_link = $7, timer_minutes = $8, is_star_eligible = $9,
			star_start_date = $10, star_end_date = $11,
			stars_settled_at = CASE WHEN star_end_date IS DISTINCT FROM $11 THEN NULL ELSE stars_settled_at END,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = $12
		 RETURNING created_at, updated_at`,
		t.Title, t.PDFLink, t.TotalQuestions, t.ClosedCount, t.OpenCount, t.AnswersText,
		t.VideoLink, t.TimerMinutes, t.IsStarEligible, t.StarStartDate, t.StarEndDate, t.ID,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	return notFound(err)
}

// Delete removes a test and its results.
// Delete removes a test together with its results and the matching entries
// of every member's embedded history, in one transaction.
func (r *TestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`UPDATE users
		 SET tests_taken = COALESCE((
		         SELECT jsonb_agg(e ORDER BY ord)
		         FROM jsonb_array_elements(tests_taken) WITH ORDINALITY AS h(e, ord)
		         WHERE e->>'test_id' <> $1::text
		     ), '[]'::jsonb),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE tests_taken @> jsonb_build_array(jsonb_build_object('test_id', $1::text))`,
		id.String(),
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM results WHERE test_id = $1`, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *TestRepository) query(ctx context.Context, sql string, args ...any) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		tests = append(tests, *t)
	}
	return tests, rows.Err()
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mathclub/club-backend/internal/grading"
	"github.com/mathclub/club-backend/internal/model"
)

// ResultRepository handles attempt results and the embedded user history.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// RecordAttempt inserts a result and appends it to the user's embedded
// history in one transaction. A second exclusive attempt for the same
// (user, test, mode) is rejected by a partial unique index and reported
// as ErrAlreadyAttempted.
func (r *ResultRepository) RecordAttempt(ctx context.Context, res *model.Result) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO results (user_id, test_id, score, mode, duration_seconds, exclusive)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		res.UserID, res.TestID, res.Score, res.Mode, res.DurationSeconds, res.Exclusive,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyAttempted
		}
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE users
		 SET tests_taken = tests_taken || jsonb_build_array(jsonb_build_object('test_id', $1::uuid, 'score', $2::int, 'date', $3::timestamptz)),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		res.TestID, res.Score, res.CreatedAt, res.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// HasAttempt reports whether the user has any result in the given mode for a test.
func (r *ResultRepository) HasAttempt(ctx context.Context, userID int, testID uuid.UUID, mode model.AttemptMode) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM results WHERE user_id = $1 AND test_id = $2 AND mode = $3)`,
		userID, testID, mode,
	).Scan(&exists)
	return exists, err
}

// Latest returns the user's most recent result for a test.
func (r *ResultRepository) Latest(ctx context.Context, userID int, testID uuid.UUID) (*model.Result, error) {
	res := &model.Result{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, test_id, score, mode, duration_seconds, exclusive, created_at
		 FROM results WHERE user_id = $1 AND test_id = $2
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID, testID,
	).Scan(&res.ID, &res.UserID, &res.TestID, &res.Score, &res.Mode, &res.DurationSeconds, &res.Exclusive, &res.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return res, nil
}

// BestScores returns the user's best score per test.
func (r *ResultRepository) BestScores(ctx context.Context, userID int) (map[uuid.UUID]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT test_id, MAX(score) FROM results WHERE user_id = $1 GROUP BY test_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	best := make(map[uuid.UUID]int)
	for rows.Next() {
		var testID uuid.UUID
		var score int
		if err := rows.Scan(&testID, &score); err != nil {
			return nil, err
		}
		best[testID] = score
	}
	return best, rows.Err()
}

// ListByUser returns every result of a user, oldest first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID int) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, test_id, score, mode, duration_seconds, exclusive, created_at
		 FROM results WHERE user_id = $1
		 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		var res model.Result
		if err := rows.Scan(&res.ID, &res.UserID, &res.TestID, &res.Score, &res.Mode, &res.DurationSeconds, &res.Exclusive, &res.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// TimedAttempts returns the timed results of a test, optionally bounded by
// createdAt <= until.
func (r *ResultRepository) TimedAttempts(ctx context.Context, testID uuid.UUID, until *time.Time) ([]grading.TimedAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, score, duration_seconds, created_at
		 FROM results
		 WHERE test_id = $1 AND mode = 'timed' AND ($2::timestamptz IS NULL OR created_at <= $2)`,
		testID, until,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []grading.TimedAttempt
	for rows.Next() {
		var a grading.TimedAttempt
		if err := rows.Scan(&a.UserID, &a.Score, &a.DurationSeconds, &a.CreatedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ResultExportRow is a result joined with its member for spreadsheet export.
type ResultExportRow struct {
	model.Result
	UserName  string
	UserEmail string
}

// ListForTest returns every result of a test with member details, newest first.
func (r *ResultRepository) ListForTest(ctx context.Context, testID uuid.UUID) ([]ResultExportRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.user_id, r.test_id, r.score, r.mode, r.duration_seconds, r.created_at, u.name, u.email
		 FROM results r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.test_id = $1
		 ORDER BY r.created_at DESC`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResultExportRow
	for rows.Next() {
		var row ResultExportRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.TestID, &row.Score, &row.Mode, &row.DurationSeconds, &row.CreatedAt, &row.UserName, &row.UserEmail); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

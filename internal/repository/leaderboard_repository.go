package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mathclub/club-backend/internal/model"
)

// LeaderboardRepository aggregates results into rankings.
type LeaderboardRepository struct {
	pool *pgxpool.Pool
}

// NewLeaderboardRepository creates a new LeaderboardRepository.
func NewLeaderboardRepository(pool *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{pool: pool}
}

// Global ranks every member with at least one result by rounded average
// score, then by number of distinct tests taken.
func (r *LeaderboardRepository) Global(ctx context.Context) ([]model.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, ROUND(AVG(r.score))::int AS avg_score, COUNT(DISTINCT r.test_id)::int AS tests_count
		 FROM results r
		 JOIN users u ON u.id = r.user_id
		 GROUP BY u.id, u.name
		 ORDER BY avg_score DESC, tests_count DESC, u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.AvgScore, &e.TestsCount); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SeasonStanding is a member's aggregate inside a season window.
type SeasonStanding struct {
	UserID      int
	AvgScore    float64
	UniqueTests int
}

// Season ranks members by average score of results created inside
// [start, end], then by distinct tests, then by user id.
func (r *LeaderboardRepository) Season(ctx context.Context, start, end time.Time) ([]SeasonStanding, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, AVG(score)::float8 AS avg_score, COUNT(DISTINCT test_id)::int AS unique_tests
		 FROM results
		 WHERE created_at >= $1 AND created_at <= $2
		 GROUP BY user_id
		 ORDER BY avg_score DESC, unique_tests DESC, user_id`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SeasonStanding
	for rows.Next() {
		var s SeasonStanding
		if err := rows.Scan(&s.UserID, &s.AvgScore, &s.UniqueTests); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Names returns display names for the given users.
func (r *LeaderboardRepository) Names(ctx context.Context, ids []int) (map[int]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[int]string, len(ids))
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mathclub/club-backend/internal/model"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// ListUsers returns every member with attempt count and average score read
// from the embedded history.
func (r *DashboardRepository) ListUsers(ctx context.Context) ([]model.DashboardUser, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, u.stars_balance,
			jsonb_array_length(u.tests_taken) AS tests_count,
			COALESCE((SELECT ROUND(AVG((e->>'score')::int)) FROM jsonb_array_elements(u.tests_taken) e), 0)::int AS avg_score,
			u.created_at
		 FROM users u
		 ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.DashboardUser
	for rows.Next() {
		var u model.DashboardUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.StarsBalance, &u.TestsCount, &u.AvgScore, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mathclub/club-backend/internal/model"
)

// StarRepository handles the stars ledger, seasons and the reward catalog.
type StarRepository struct {
	pool *pgxpool.Pool
}

// NewStarRepository creates a new StarRepository.
func NewStarRepository(pool *pgxpool.Pool) *StarRepository {
	return &StarRepository{pool: pool}
}

// Grant writes a ledger entry and credits the balance in one transaction.
// The insert is conditional on the (user, grant key) unique index, so a
// repeated grant is a no-op reported as granted == false.
func (r *StarRepository) Grant(ctx context.Context, g model.StarGrant) (bool, error) {
	meta, err := json.Marshal(g.Meta)
	if err != nil {
		return false, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO star_transactions (user_id, amount, reason, grant_key, meta)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, grant_key) WHERE grant_key IS NOT NULL DO NOTHING
		 RETURNING id`,
		g.UserID, g.Amount, g.Reason, g.GrantKey, meta,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE users SET stars_balance = stars_balance + $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		g.Amount, g.UserID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Redeem debits the cost of a reward and records a negative ledger entry in
// one transaction. The balance never goes below zero.
func (r *StarRepository) Redeem(ctx context.Context, userID int, reward *model.StarReward) (int, error) {
	meta, err := json.Marshal(map[string]any{"reward_id": reward.ID, "title": reward.Title})
	if err != nil {
		return 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var balance int
	err = tx.QueryRow(ctx,
		`UPDATE users SET stars_balance = stars_balance - $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2 AND stars_balance >= $1
		 RETURNING stars_balance`,
		reward.CostStars, userID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrInsufficientStars
	}
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO star_transactions (user_id, amount, reason, meta) VALUES ($1, $2, $3, $4)`,
		userID, -reward.CostStars, model.StarReasonRewardRedeem, meta,
	); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return balance, nil
}

// ListTransactions returns a user's ledger, newest first.
func (r *StarRepository) ListTransactions(ctx context.Context, userID, limit int) ([]model.StarTransaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, amount, reason, grant_key, meta, created_at
		 FROM star_transactions WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []model.StarTransaction
	for rows.Next() {
		var t model.StarTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Reason, &t.GrantKey, &t.Meta, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// ─── Seasons ───────────────────────────────────────────────────────────

const seasonColumns = `id, name, start_date, end_date, is_active, max_stars_per_user, created_at`

// CreateSeason inserts a season. An active season deactivates the others.
func (r *StarRepository) CreateSeason(ctx context.Context, s *model.StarSeason) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if s.IsActive {
		if _, err := tx.Exec(ctx, `UPDATE star_seasons SET is_active = FALSE WHERE is_active`); err != nil {
			return err
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO star_seasons (name, start_date, end_date, is_active, max_stars_per_user)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		s.Name, s.StartDate, s.EndDate, s.IsActive, s.MaxStarsPerUser,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetSeason retrieves a season by ID.
func (r *StarRepository) GetSeason(ctx context.Context, id int) (*model.StarSeason, error) {
	s := &model.StarSeason{}
	err := r.pool.QueryRow(ctx, `SELECT `+seasonColumns+` FROM star_seasons WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.IsActive, &s.MaxStarsPerUser, &s.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// ListSeasons returns all seasons, newest first.
func (r *StarRepository) ListSeasons(ctx context.Context) ([]model.StarSeason, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+seasonColumns+` FROM star_seasons ORDER BY start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seasons []model.StarSeason
	for rows.Next() {
		var s model.StarSeason
		if err := rows.Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.IsActive, &s.MaxStarsPerUser, &s.CreatedAt); err != nil {
			return nil, err
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// ActivateSeason makes one season the only active one.
func (r *StarRepository) ActivateSeason(ctx context.Context, id int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `UPDATE star_seasons SET is_active = FALSE WHERE is_active AND id <> $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE star_seasons SET is_active = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// ─── Reward catalog ────────────────────────────────────────────────────

// ListRewards returns catalog items by ascending cost.
func (r *StarRepository) ListRewards(ctx context.Context, activeOnly bool) ([]model.StarReward, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, cost_stars, is_active, created_at
		 FROM star_rewards WHERE (NOT $1 OR is_active)
		 ORDER BY cost_stars, id`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rewards []model.StarReward
	for rows.Next() {
		var rw model.StarReward
		if err := rows.Scan(&rw.ID, &rw.Title, &rw.Description, &rw.CostStars, &rw.IsActive, &rw.CreatedAt); err != nil {
			return nil, err
		}
		rewards = append(rewards, rw)
	}
	return rewards, rows.Err()
}

// GetReward retrieves a catalog item by ID.
func (r *StarRepository) GetReward(ctx context.Context, id int) (*model.StarReward, error) {
	rw := &model.StarReward{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, cost_stars, is_active, created_at FROM star_rewards WHERE id = $1`, id,
	).Scan(&rw.ID, &rw.Title, &rw.Description, &rw.CostStars, &rw.IsActive, &rw.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return rw, nil
}

// CreateReward inserts a catalog item.
func (r *StarRepository) CreateReward(ctx context.Context, rw *model.StarReward) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO star_rewards (title, description, cost_stars, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		rw.Title, rw.Description, rw.CostStars, rw.IsActive,
	).Scan(&rw.ID, &rw.CreatedAt)
}

package model

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// StarReason tags why a ledger entry exists.
type StarReason string

const (
	StarReasonTestRank        StarReason = "star_test_rank"
	StarReasonLeaderboardRank StarReason = "leaderboard_rank"
	StarReasonRewardRedeem    StarReason = "reward_redeem"
)

// StarTransaction is an immutable ledger entry.
type StarTransaction struct {
	ID        int64           `json:"id"`
	UserID    int             `json:"user_id"`
	Amount    int             `json:"amount"`
	Reason    StarReason      `json:"reason"`
	GrantKey  *string         `json:"grant_key,omitempty"`
	Meta      json.RawMessage `json:"meta"`
	CreatedAt time.Time       `json:"created_at"`
}

// StarGrant is a positive, idempotent ledger entry to be written.
// GrantKey scopes the idempotency: one grant per (user, key).
type StarGrant struct {
	UserID   int
	Amount   int
	Reason   StarReason
	GrantKey string
	Meta     map[string]any
}

// TestGrantKey is the idempotency key of a per-test ranking reward.
func TestGrantKey(testID uuid.UUID) string {
	return "test:" + testID.String()
}

// SeasonGrantKey is the idempotency key of a season ranking reward.
func SeasonGrantKey(seasonID int) string {
	return "season:" + strconv.Itoa(seasonID)
}

// StarSeason is a named ranking window.
type StarSeason struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	IsActive        bool      `json:"is_active"`
	MaxStarsPerUser int       `json:"max_stars_per_user"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateSeasonRequest is the payload for creating a star season.
type CreateSeasonRequest struct {
	Name            string    `json:"name" binding:"required,notblank,max=120"`
	StartDate       time.Time `json:"start_date" binding:"required"`
	EndDate         time.Time `json:"end_date" binding:"required,gtfield=StartDate"`
	IsActive        bool      `json:"is_active"`
	MaxStarsPerUser int       `json:"max_stars_per_user" binding:"min=0"`
}

// StarReward is a catalog item members can buy with stars.
type StarReward struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CostStars   int       `json:"cost_stars"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateRewardRequest is the payload for adding a catalog item.
type CreateRewardRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200"`
	Description string `json:"description" binding:"max=2000"`
	CostStars   int    `json:"cost_stars" binding:"required,min=1"`
	IsActive    *bool  `json:"is_active"`
}

// StarAward reports one grant issued by a ranking pass.
type StarAward struct {
	UserID  int  `json:"user_id"`
	Rank    int  `json:"rank"`
	Stars   int  `json:"stars"`
	Granted bool `json:"granted"`
}

// StarsOverview is the member's stars page.
type StarsOverview struct {
	Balance int          `json:"balance"`
	Rewards []StarReward `json:"rewards"`
}

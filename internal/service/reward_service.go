package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/repository"
)

var (
	ErrRewardNotFound    = errors.New("reward not found")
	ErrRewardInactive    = errors.New("reward is not available")
	ErrInsufficientStars = errors.New("not enough stars")
)

// RewardService manages the reward catalog and redemptions.
type RewardService struct {
	users  UserStore
	ledger LedgerStore
}

// NewRewardService creates a new RewardService.
func NewRewardService(users UserStore, ledger LedgerStore) *RewardService {
	return &RewardService{users: users, ledger: ledger}
}

// Overview returns the member's balance and the active catalog.
func (s *RewardService) Overview(ctx context.Context, userID int) (*model.StarsOverview, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	rewards, err := s.ledger.ListRewards(ctx, true)
	if err != nil {
		return nil, err
	}
	return &model.StarsOverview{Balance: u.StarsBalance, Rewards: rewards}, nil
}

// List returns the catalog. Members only see active items.
func (s *RewardService) List(ctx context.Context, activeOnly bool) ([]model.StarReward, error) {
	return s.ledger.ListRewards(ctx, activeOnly)
}

// Create adds a catalog item. Items are active unless stated otherwise.
func (s *RewardService) Create(ctx context.Context, req model.CreateRewardRequest) (*model.StarReward, error) {
	rw := &model.StarReward{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CostStars:   req.CostStars,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := s.ledger.CreateReward(ctx, rw); err != nil {
		return nil, err
	}
	return rw, nil
}

// Redeem spends stars on a reward and returns the new balance.
func (s *RewardService) Redeem(ctx context.Context, userID, rewardID int) (int, error) {
	rw, err := s.ledger.GetReward(ctx, rewardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrRewardNotFound
		}
		return 0, err
	}
	if !rw.IsActive {
		return 0, ErrRewardInactive
	}

	balance, err := s.ledger.Redeem(ctx, userID, rw)
	if errors.Is(err, repository.ErrInsufficientStars) {
		return 0, ErrInsufficientStars
	}
	return balance, err
}

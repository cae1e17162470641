package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mathclub/club-backend/internal/middleware"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/response"
	"github.com/mathclub/club-backend/internal/service"
	"github.com/mathclub/club-backend/internal/validator"
	"github.com/rs/zerolog"
)

// StarHandler serves star balances, the reward catalog and season admin.
type StarHandler struct {
	starService   *service.StarService
	rewardService *service.RewardService
	testService   *service.TestService
	log           zerolog.Logger
}

// NewStarHandler creates a new StarHandler.
func NewStarHandler(starService *service.StarService, rewardService *service.RewardService, testService *service.TestService, log zerolog.Logger) *StarHandler {
	return &StarHandler{
		starService:   starService,
		rewardService: rewardService,
		testService:   testService,
		log:           log.With().Str("component", "star_handler").Logger(),
	}
}

// Overview godoc
// GET /api/v1/stars
// Returns the member's balance with the active reward catalog.
func (h *StarHandler) Overview(c *gin.Context) {
	overview, err := h.rewardService.Overview(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	if overview.Rewards == nil {
		overview.Rewards = []model.StarReward{}
	}
	response.Success(c, http.StatusOK, overview)
}

// StarTests godoc
// GET /api/v1/stars/tests
func (h *StarHandler) StarTests(c *gin.Context) {
	tests, err := h.testService.ListStarTests(c.Request.Context())
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// Transactions godoc
// GET /api/v1/stars/transactions?limit=50
func (h *StarHandler) Transactions(c *gin.Context) {
	var q struct {
		Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
	}
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	txs, err := h.starService.Transactions(c.Request.Context(), middleware.UserID(c), q.Limit)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	if txs == nil {
		txs = []model.StarTransaction{}
	}
	response.Success(c, http.StatusOK, gin.H{"transactions": txs})
}

// Rewards godoc
// GET /api/v1/stars/rewards
func (h *StarHandler) Rewards(c *gin.Context) {
	h.listRewards(c, true)
}

// Redeem godoc
// POST /api/v1/stars/rewards/:id/redeem
func (h *StarHandler) Redeem(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	userID := middleware.UserID(c)
	balance, err := h.rewardService.Redeem(c.Request.Context(), userID, id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}

	h.log.Info().Int("user_id", userID).Int("reward_id", id).Msg("Reward redeemed")
	response.Success(c, http.StatusOK, gin.H{"balance": balance})
}

// ─── Admin ──────────────────────────────────────────────────────────

// AdminRewards godoc
// GET /api/v1/admin/rewards
func (h *StarHandler) AdminRewards(c *gin.Context) {
	h.listRewards(c, false)
}

// CreateReward godoc
// POST /api/v1/admin/rewards
func (h *StarHandler) CreateReward(c *gin.Context) {
	var req model.CreateRewardRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	reward, err := h.rewardService.Create(c.Request.Context(), req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"reward": reward})
}

// Seasons godoc
// GET /api/v1/admin/star-seasons
func (h *StarHandler) Seasons(c *gin.Context) {
	seasons, err := h.starService.ListSeasons(c.Request.Context())
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	if seasons == nil {
		seasons = []model.StarSeason{}
	}
	response.Success(c, http.StatusOK, gin.H{"seasons": seasons})
}

// CreateSeason godoc
// POST /api/v1/admin/star-seasons
func (h *StarHandler) CreateSeason(c *gin.Context) {
	var req model.CreateSeasonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	season, err := h.starService.CreateSeason(c.Request.Context(), req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"season": season})
}

// ActivateSeason godoc
// POST /api/v1/admin/star-seasons/:id/activate
func (h *StarHandler) ActivateSeason(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	if err := h.starService.ActivateSeason(c.Request.Context(), id); err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// AwardSeason godoc
// POST /api/v1/admin/star-seasons/:id/award
// Grants season place rewards. Safe to repeat.
func (h *StarHandler) AwardSeason(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	awards, err := h.starService.AwardSeason(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"awards": awards})
}

// SettleTest godoc
// POST /api/v1/admin/tests/:id/settle-stars
// Pays out a closed star window now instead of waiting for the worker.
func (h *StarHandler) SettleTest(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	test, err := h.testService.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}

	awards, err := h.starService.SettleTest(c.Request.Context(), test)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"awards": awards})
}

func (h *StarHandler) listRewards(c *gin.Context, activeOnly bool) {
	rewards, err := h.rewardService.List(c.Request.Context(), activeOnly)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	if rewards == nil {
		rewards = []model.StarReward{}
	}
	response.Success(c, http.StatusOK, gin.H{"rewards": rewards})
}

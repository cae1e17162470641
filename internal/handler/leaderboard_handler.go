package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mathclub/club-backend/internal/middleware"
	"github.com/mathclub/club-backend/internal/response"
	"github.com/mathclub/club-backend/internal/service"
	"github.com/mathclub/club-backend/internal/validator"
	"github.com/rs/zerolog"
)

type pageQuery struct {
	Page    int `form:"page" binding:"omitempty,min=1"`
	PerPage int `form:"per_page" binding:"omitempty,min=1,max=200"`
}

// LeaderboardHandler serves public rankings and member profiles.
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
	adminService       *service.AdminService
	log                zerolog.Logger
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService, adminService *service.AdminService, log zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		adminService:       adminService,
		log:                log.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Global godoc
// GET /api/v1/leaderboard?page=1&per_page=50
// Returns one page of the global ranking and the caller's own row.
func (h *LeaderboardHandler) Global(c *gin.Context) {
	q := pageQuery{Page: 1, PerPage: 50}
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	page, perPage := q.Page, q.PerPage

	lb, err := h.leaderboardService.Global(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		failWith(c, h.log, err)
		return
	}

	total := len(lb.Entries)
	from := min((page-1)*perPage, total)
	to := min(from+perPage, total)

	response.SuccessWithPagination(c, http.StatusOK, gin.H{
		"entries": lb.Entries[from:to],
		"me":      lb.Me,
	}, response.NewPagination(page, perPage, total))
}

// UserProfile godoc
// GET /api/v1/leaderboard/users/:id
func (h *LeaderboardHandler) UserProfile(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	page, err := h.leaderboardService.UserStats(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

// TestRanking godoc
// GET /api/v1/leaderboard/tests/:id
func (h *LeaderboardHandler) TestRanking(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	ranking, err := h.leaderboardService.TestRanking(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, ranking)
}

// Export godoc
// GET /api/v1/admin/leaderboard/export
func (h *LeaderboardHandler) Export(c *gin.Context) {
	data, err := h.adminService.ExportLeaderboard(c.Request.Context())
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Attachment(c, "leaderboard.xlsx", xlsxContentType, data)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mathclub/club-backend/internal/response"
	"github.com/mathclub/club-backend/internal/service"
	"github.com/rs/zerolog"
)

// AdminHandler serves the admin dashboard and member maintenance.
type AdminHandler struct {
	adminService *service.AdminService
	authService  *service.AuthService
	log          zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService, authService *service.AuthService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		authService:  authService,
		log:          log.With().Str("component", "admin_handler").Logger(),
	}
}

// Dashboard godoc
// GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// ClearHistory godoc
// POST /api/v1/admin/users/:id/clear-history
func (h *AdminHandler) ClearHistory(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.ClearUserHistory(c.Request.Context(), id); err != nil {
		failWith(c, h.log, err)
		return
	}
	h.log.Info().Int("user_id", id).Msg("Member history cleared")
	response.Success(c, http.StatusOK, gin.H{"message": "history cleared"})
}

// DeleteUser godoc
// DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), id); err != nil {
		failWith(c, h.log, err)
		return
	}
	h.log.Info().Int("user_id", id).Msg("Member deleted")
	response.Success(c, http.StatusOK, gin.H{"message": "user deleted"})
}

// AdminCode godoc
// GET /api/v1/admin/code
// Shows the code valid right now so a signed-in admin can hand it over.
func (h *AdminHandler) AdminCode(c *gin.Context) {
	code, expires := h.authService.CurrentAdminCode()
	response.Success(c, http.StatusOK, gin.H{"code": code, "expires_at": expires})
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mathclub/club-backend/internal/middleware"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/response"
	"github.com/mathclub/club-backend/internal/service"
	"github.com/mathclub/club-backend/internal/validator"
	"github.com/rs/zerolog"
)

// AuthHandler handles member and admin authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	cookieTTL   time.Duration
	secure      bool
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler. Member tokens are also set as an
// HttpOnly cookie living cookieTTL; secureCookies sets its Secure flag.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService, cookieTTL time.Duration, secureCookies bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cookieTTL:   cookieTTL,
		secure:      secureCookies,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// Register godoc
// POST /api/v1/auth/register
// Creates a member account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, token, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}

	h.setTokenCookie(c, token)
	response.Success(c, http.StatusCreated, gin.H{
		"token": token,
		"user":  service.Profile(user),
	})
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password and returns a JWT. A new login replaces the
// member's previous session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, token, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}

	h.setTokenCookie(c, token)
	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  service.Profile(user),
	})
}

// Logout godoc
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.RevokeUserSession(c.Request.Context(), claims.UserID); err != nil {
		failWith(c, h.log, err)
		return
	}

	h.setTokenCookie(c, "")
	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the member's profile, star balance and attempt history.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		failWith(c, h.log, err)
		return
	}

	history := user.TestsTaken
	if history == nil {
		history = []model.HistoryEntry{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":    service.Profile(user),
		"history": history,
	})
}

// AdminLogin godoc
// POST /api/v1/admin/login
// Exchanges the rotating admin code for an admin JWT.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, err := h.authService.GenerateAdminToken(req.Code)
	if err != nil {
		h.log.Warn().Str("ip", c.ClientIP()).Msg("Rejected admin code")
		failWith(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	maxAge := int(h.cookieTTL.Seconds())
	if token == "" {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", h.secure, true)
}

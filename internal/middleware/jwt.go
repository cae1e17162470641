package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mathclub/club-backend/internal/response"
	"github.com/mathclub/club-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
	// TokenCookie is the cookie a browser client may carry the JWT in.
	TokenCookie = "token"
)

var errNoToken = errors.New("authorization header or token cookie required")

// RequireUserJWT validates a member JWT and its Redis session.
func RequireUserJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, authService, service.TokenTypeUser, tokenFromRequest(c))
		if !ok {
			return
		}
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// OptionalUserJWT attaches member claims when a valid token is present and
// lets anonymous requests through.
func OptionalUserJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			c.Next()
			return
		}
		claims, err := authService.ValidateToken(tokenStr)
		if err == nil && claims.TokenType == service.TokenTypeUser &&
			authService.ValidateUserSession(c.Request.Context(), claims.UserID, claims.ID) == nil {
			c.Set(ContextKeyClaims, claims)
		}
		c.Next()
	}
}

// RequireAdminJWT validates an admin JWT.
func RequireAdminJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, authService, service.TokenTypeAdmin, tokenFromRequest(c))
		if !ok {
			return
		}
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireUserWSAuth validates a member JWT from the query param ?token=...
// or the token cookie. Used for WebSocket upgrade requests.
func RequireUserWSAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			tokenStr, _ = c.Cookie(TokenCookie)
		}
		claims, ok := authenticate(c, authService, service.TokenTypeUser, tokenStr)
		if !ok {
			return
		}
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

// UserID returns the member id from the claims, or 0 for anonymous requests.
func UserID(c *gin.Context) int {
	if claims := GetClaims(c); claims != nil && claims.TokenType == service.TokenTypeUser {
		return claims.UserID
	}
	return 0
}

func authenticate(c *gin.Context, authService *service.AuthService, want service.TokenType, tokenStr string) (*service.Claims, bool) {
	if tokenStr == "" {
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}

	claims, err := authService.ValidateToken(tokenStr)
	if err != nil {
		code := response.ErrTokenInvalid
		if errors.Is(err, jwt.ErrTokenExpired) {
			code = response.ErrTokenExpired
		}
		response.AbortFail(c, http.StatusUnauthorized, code)
		return nil, false
	}

	if claims.TokenType != want {
		code := response.ErrUserAccessOnly
		if want == service.TokenTypeAdmin {
			code = response.ErrAdminAccessOnly
		}
		response.AbortFail(c, http.StatusForbidden, code)
		return nil, false
	}

	if want == service.TokenTypeUser {
		if err := authService.ValidateUserSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return nil, false
		}
	}

	return claims, true
}

func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mathclub/club-backend/internal/config"
	"github.com/mathclub/club-backend/internal/handler"
	"github.com/mathclub/club-backend/internal/logger"
	"github.com/mathclub/club-backend/internal/middleware"
	"github.com/mathclub/club-backend/internal/response"
	"github.com/mathclub/club-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Test        *handler.TestHandler
	Star        *handler.StarHandler
	Leaderboard *handler.LeaderboardHandler
	Message     *handler.MessageHandler
	Video       *handler.VideoHandler
	Admin       *handler.AdminHandler
	WS          *handler.WSHandler
	System      *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background helpers such as the rate limiter sweeper.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	rdb *redis.Client,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(response.AccessLog(logger.Component(log, "http")))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	settle := middleware.EnqueueStarSettlement(rdb, cfg.StarSettleInterval, log)

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	public := router.Group("/api/v1")
	{
		// The global board carries a personal row when a token is sent.
		public.GET("/leaderboard", middleware.OptionalUserJWT(authService), middleware.NoStore(), handlers.Leaderboard.Global)
		public.GET("/leaderboard/users/:id", middleware.CacheControl(30), handlers.Leaderboard.UserProfile)
		public.GET("/leaderboard/tests/:id", middleware.CacheControl(30), handlers.Leaderboard.TestRanking)
		public.GET("/videos", middleware.CacheControl(300), handlers.Video.Library)
	}

	// Rate limiter for credential routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(ctx, 30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(middleware.NoStore())
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/logout", middleware.RequireUserJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireUserJWT(authService), settle, handlers.Auth.Me)
	}

	// ─── 2. Member Group (JWT + Single Session) ────────────────────────
	user := router.Group("/api/v1")
	user.Use(middleware.RequireUserJWT(authService), middleware.NoStore(), settle)
	{
		user.GET("/tests", handlers.Test.List)
		user.GET("/tests/:id", handlers.Test.Open)
		user.POST("/tests/:id/submit", handlers.Test.Submit)
		user.GET("/tests/:id/result", handlers.Test.LatestResult)

		user.GET("/stars", handlers.Star.Overview)
		user.GET("/stars/tests", handlers.Star.StarTests)
		user.GET("/stars/transactions", handlers.Star.Transactions)
		user.GET("/stars/rewards", handlers.Star.Rewards)
		user.POST("/stars/rewards/:id/redeem", handlers.Star.Redeem)

		user.GET("/messages", handlers.Message.Thread)
		user.POST("/messages", handlers.Message.Send)
	}

	// ─── 3. WebSocket Group (Member WS Auth) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireUserWSAuth(authService))
	{
		ws.GET("/messages", handlers.WS.ChatStream)
	}

	// ─── 4. Admin Group (Rotating Code + JWT) ──────────────────────────
	router.POST("/api/v1/admin/login", authLimiter.Middleware(), middleware.NoStore(), handlers.Auth.AdminLogin)

	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.RequireAdminJWT(authService), middleware.NoStore())
	{
		admin.GET("/dashboard", handlers.Admin.Dashboard)
		admin.GET("/code", handlers.Admin.AdminCode)
		admin.GET("/system/metrics", handlers.System.SystemMetricsSSE)

		// Tests
		admin.GET("/tests", handlers.Test.AdminList)
		admin.POST("/tests", handlers.Test.Create)
		admin.GET("/tests/:id", handlers.Test.AdminGet)
		admin.PUT("/tests/:id", handlers.Test.Update)
		admin.DELETE("/tests/:id", handlers.Test.Delete)
		admin.GET("/tests/:id/export", handlers.Test.Export)
		admin.POST("/tests/:id/settle-stars", handlers.Star.SettleTest)
		admin.GET("/leaderboard/export", handlers.Leaderboard.Export)

		// Members
		admin.POST("/users/:id/clear-history", handlers.Admin.ClearHistory)
		admin.DELETE("/users/:id", handlers.Admin.DeleteUser)

		// Messages
		admin.GET("/messages", handlers.Message.Threads)
		admin.GET("/messages/:user_id", handlers.Message.AdminThread)
		admin.POST("/messages/:user_id", handlers.Message.AdminSend)

		// Stars
		admin.GET("/star-seasons", handlers.Star.Seasons)
		admin.POST("/star-seasons", handlers.Star.CreateSeason)
		admin.POST("/star-seasons/:id/activate", handlers.Star.ActivateSeason)
		admin.POST("/star-seasons/:id/award", handlers.Star.AwardSeason)
		admin.GET("/rewards", handlers.Star.AdminRewards)
		admin.POST("/rewards", handlers.Star.CreateReward)

		// Videos
		admin.POST("/videos/topics", handlers.Video.CreateTopic)
		admin.POST("/videos/lessons", handlers.Video.CreateLesson)
	}

	return router
}

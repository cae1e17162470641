package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mathclub/club-backend/internal/config"
	"github.com/mathclub/club-backend/internal/database"
	"github.com/mathclub/club-backend/internal/handler"
	"github.com/mathclub/club-backend/internal/logger"
	"github.com/mathclub/club-backend/internal/repository"
	"github.com/mathclub/club-backend/internal/router"
	"github.com/mathclub/club-backend/internal/service"
	"github.com/mathclub/club-backend/internal/validator"
	"github.com/mathclub/club-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Math Club Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	starRepo := repository.NewStarRepository(pool)
	rankingRepo := repository.NewLeaderboardRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	videoRepo := repository.NewVideoRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo, authService)
	starService := service.NewStarService(testRepo, resultRepo, starRepo, rankingRepo, log)
	leaderboardService := service.NewLeaderboardService(rankingRepo, resultRepo, userRepo, starService, rdb, cfg.LeaderboardCacheTTL, log)
	testService := service.NewTestService(testRepo, resultRepo, leaderboardService)
	scoringService := service.NewScoringService(testRepo, resultRepo, service.NewAttemptGate(resultRepo), starService, leaderboardService, log)
	rewardService := service.NewRewardService(userRepo, starRepo)
	messageService := service.NewMessageService(messageRepo, userRepo, rdb, log)
	videoService := service.NewVideoService(videoRepo)
	adminService := service.NewAdminService(userRepo, testRepo, resultRepo, messageRepo, dashboardRepo, rankingRepo, authService, leaderboardService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	secureCookies := cfg.GinMode == gin.ReleaseMode
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService, userService, cfg.JWTExpiry, secureCookies, log),
		Test:        handler.NewTestHandler(testService, scoringService, adminService, log),
		Star:        handler.NewStarHandler(starService, rewardService, testService, log),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardService, adminService, log),
		Message:     handler.NewMessageHandler(messageService, log),
		Video:       handler.NewVideoHandler(videoService, log),
		Admin:       handler.NewAdminHandler(adminService, authService, log),
		WS:          handler.NewWSHandler(messageService, log, cfg.AllowedOrigins),
		System:      handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	settleWorker := worker.NewStarSettleWorker(starService, rdb, cfg.StarSettleInterval, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		settleWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg, rdb, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the settlement worker and wait for the current sweep.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

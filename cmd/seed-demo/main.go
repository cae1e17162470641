package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mathclub/club-backend/internal/config"
	"github.com/mathclub/club-backend/internal/database"
	"github.com/mathclub/club-backend/internal/logger"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/repository"
	"github.com/mathclub/club-backend/internal/service"
)

const demoPassword = "mathclub"

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	videoRepo := repository.NewVideoRepository(pool)

	authService := service.NewAuthService(cfg, nil)
	testService := service.NewTestService(testRepo, resultRepo, nil)
	videoService := service.NewVideoService(videoRepo)

	// ─── Members ───────────────────────────────────────────────────────
	fmt.Println("=== Seeding demo members ===")

	names := []string{
		"Ada Lovelace", "Carl Gauss", "Emmy Noether", "Srinivasa Ramanujan", "Sophie Germain",
		"Leonhard Euler", "Hypatia", "Alan Turing", "Maryam Mirzakhani", "Kurt Godel",
	}

	hash, err := authService.HashPassword(demoPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	created := 0
	for i, name := range names {
		u := &model.User{
			Name:         name,
			Email:        fmt.Sprintf("member%d@mathclub.local", i+1),
			PasswordHash: hash,
		}
		if err := userRepo.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				continue
			}
			fmt.Printf("Error creating %s: %v\n", u.Email, err)
			continue
		}
		created++
	}
	fmt.Printf("Created %d/%d members (password %q)\n", created, len(names), demoPassword)

	// ─── Tests ─────────────────────────────────────────────────────────
	fmt.Println("=== Seeding demo tests ===")

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(7 * 24 * time.Hour)

	drafts := []model.UpsertTestRequest{
		{
			Title:          "Warm-up: Fractions",
			PDFLink:        "https://example.com/tests/fractions.pdf",
			TotalQuestions: 5,
			OpenCount:      1,
			AnswersText:    "1.A\n2.C\n3.B\n4.D\n5.0,75",
		},
		{
			Title:          "Weekly Star Challenge",
			PDFLink:        "https://example.com/tests/star-week.pdf",
			TotalQuestions: 6,
			OpenCount:      2,
			AnswersText:    "1.B\n2.B\n3.A\n4.D\n5.12\n6.-3,5",
			TimerMinutes:   "30",
			IsStarEligible: true,
			StarStartDate:  &start,
			StarEndDate:    &end,
		},
	}
	for _, d := range drafts {
		t, err := testService.Create(ctx, d)
		if err != nil {
			fmt.Printf("Error creating %q: %v\n", d.Title, err)
			continue
		}
		fmt.Printf("Created test %s (%s)\n", t.ID, t.Title)
	}

	// ─── Videos ────────────────────────────────────────────────────────
	topic, err := videoService.CreateTopic(ctx, model.CreateTopicRequest{Title: "Algebra basics", Order: 1})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create video topic")
	}
	if _, err := videoService.CreateLesson(ctx, model.CreateLessonRequest{
		TopicID:  &topic.ID,
		Title:    "Solving linear equations",
		VideoURL: "https://example.com/videos/linear-equations",
		Order:    1,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to create video lesson")
	}

	fmt.Println("\nSeed completed!")
}

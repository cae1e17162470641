package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mathclub/club-backend/internal/grading"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/repository"
	"github.com/rs/zerolog"
)

var ErrInvalidMode = errors.New("unknown attempt mode")

// LeaderboardCache is dropped whenever results or tests change the rankings.
type LeaderboardCache interface {
	Invalidate(ctx context.Context, testID uuid.UUID)
	InvalidateAll(ctx context.Context)
}

// ScoringService grades submissions and records them.
type ScoringService struct {
	tests   TestStore
	results ResultStore
	gate    *AttemptGate
	stars   *StarService
	cache   LeaderboardCache
	log     zerolog.Logger
}

// NewScoringService creates a new ScoringService.
func NewScoringService(
	tests TestStore,
	results ResultStore,
	gate *AttemptGate,
	stars *StarService,
	cache LeaderboardCache,
	log zerolog.Logger,
) *ScoringService {
	return &ScoringService{
		tests:   tests,
		results: results,
		gate:    gate,
		stars:   stars,
		cache:   cache,
		log:     log.With().Str("component", "scoring_service").Logger(),
	}
}

// Open returns the solve-page view of a test once the gate lets the member in.
func (s *ScoringService) Open(ctx context.Context, userID int, testID uuid.UUID, rawMode string) (*model.TestSummary, error) {
	mode, ok := ParseMode(rawMode)
	if !ok {
		return nil, ErrInvalidMode
	}
	t, err := s.loadTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Check(ctx, userID, t, mode); err != nil {
		return nil, err
	}

	sum, err := Summarize(t, s.stars.now())
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// Submit grades a submission, persists the result together with the
// member's history entry, and pays out any inline star reward.
func (s *ScoringService) Submit(ctx context.Context, userID int, testID uuid.UUID, req model.SubmitTestRequest) (*model.SubmitTestResponse, error) {
	mode, ok := ParseMode(string(req.Mode))
	if !ok {
		return nil, ErrInvalidMode
	}
	t, err := s.loadTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Check(ctx, userID, t, mode); err != nil {
		return nil, err
	}

	outcome, err := grading.Grade(
		grading.Key{
			Total:       t.TotalQuestions,
			ClosedCount: t.ClosedCount,
			OpenCount:   t.OpenCount,
			AnswersText: t.AnswersText,
		},
		grading.Submission{
			Closed:        req.ClosedAnswers,
			Open:          req.OpenAnswers,
			RequireAnswer: mode == model.AttemptModeOnce,
		},
	)
	if err != nil {
		if errors.Is(err, grading.ErrStoredDataCorrupt) {
			s.log.Error().Err(err).Str("test_id", testID.String()).Msg("Stored answer key is corrupt")
		}
		return nil, err
	}

	res := &model.Result{
		UserID:          userID,
		TestID:          t.ID,
		Score:           outcome.Score,
		Mode:            mode,
		DurationSeconds: req.DurationSeconds,
		Exclusive:       Exclusive(t, mode),
	}
	if err := s.results.RecordAttempt(ctx, res); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyAttempted):
			return nil, ErrAlreadySolved
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, t.ID)
	}

	resp := &model.SubmitTestResponse{
		ResultID:       res.ID,
		Score:          outcome.Score,
		Correct:        outcome.Correct,
		TotalClosed:    outcome.TotalClosed,
		TotalQuestions: outcome.TotalQuestions,
		Passed:         outcome.Passed,
		HasVideo:       t.VideoLink != nil && *t.VideoLink != "",
		VideoLink:      t.VideoLink,
	}

	if mode == model.AttemptModeTimed && t.IsStarEligible {
		stars, err := s.stars.AwardInline(ctx, t, userID)
		if err != nil {
			// Window-close settlement pays later.
			s.log.Warn().Err(err).Int("user_id", userID).Str("test_id", t.ID.String()).Msg("Inline star award failed")
		}
		resp.StarsAwarded = stars
	}

	return resp, nil
}

func (s *ScoringService) loadTest(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t, err := s.tests.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTestNotFound
	}
	return t, err
}

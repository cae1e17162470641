package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mathclub/club-backend/internal/grading"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/repository"
	"github.com/rs/zerolog"
)

var (
	ErrSeasonNotFound  = errors.New("season not found")
	ErrNotStarTest     = errors.New("test is not star eligible")
	ErrWindowStillOpen = errors.New("star window has not closed")
)

// StarService ranks timed attempts on star tests and seasons and writes the
// resulting grants to the ledger. Every grant carries an idempotency key, so
// repeated passes never pay twice.
type StarService struct {
	tests   TestStore
	results ResultStore
	ledger  LedgerStore
	ranking RankingStore
	log     zerolog.Logger
	now     func() time.Time
}

// NewStarService creates a new StarService.
func NewStarService(tests TestStore, results ResultStore, ledger LedgerStore, ranking RankingStore, log zerolog.Logger) *StarService {
	return &StarService{
		tests:   tests,
		results: results,
		ledger:  ledger,
		ranking: ranking,
		log:     log.With().Str("component", "star_service").Logger(),
		now:     time.Now,
	}
}

// ----------------------------------------------------------------
// Per-test ranking rewards
// ----------------------------------------------------------------

// AwardInline grants the submitting member their place reward when a timed
// submission lands inside an open window and puts them in the top places.
// It returns the stars granted by this call.
func (s *StarService) AwardInline(ctx context.Context, t *model.Test, userID int) (int, error) {
	if !t.IsStarEligible || starWindow(t).State(s.now()) != grading.WindowOpen {
		return 0, nil
	}

	standings, err := s.TestStandings(ctx, t)
	if err != nil {
		return 0, err
	}

	for _, st := range grading.Winners(standings) {
		if st.UserID != userID {
			continue
		}
		granted, err := s.ledger.Grant(ctx, model.StarGrant{
			UserID:   userID,
			Amount:   st.Stars,
			Reason:   model.StarReasonTestRank,
			GrantKey: model.TestGrantKey(t.ID),
			Meta:     map[string]any{"trigger": "submission", "test_id": t.ID.String(), "rank": st.Rank},
		})
		if err != nil || !granted {
			return 0, err
		}
		s.log.Info().Int("user_id", userID).Str("test_id", t.ID.String()).Int("rank", st.Rank).Msg("Inline star grant")
		return st.Stars, nil
	}
	return 0, nil
}

// SettleTest rewards the final top places of a closed window. Only attempts
// created before the window end count.
func (s *StarService) SettleTest(ctx context.Context, t *model.Test) ([]model.StarAward, error) {
	if !t.IsStarEligible {
		return nil, ErrNotStarTest
	}
	if starWindow(t).State(s.now()) != grading.WindowClosed {
		return nil, ErrWindowStillOpen
	}

	standings, err := s.TestStandings(ctx, t)
	if err != nil {
		return nil, err
	}

	awards := make([]model.StarAward, 0, grading.RewardedPlaces)
	for _, st := range grading.Winners(standings) {
		granted, err := s.ledger.Grant(ctx, model.StarGrant{
			UserID:   st.UserID,
			Amount:   st.Stars,
			Reason:   model.StarReasonTestRank,
			GrantKey: model.TestGrantKey(t.ID),
			Meta:     map[string]any{"trigger": "window_close", "test_id": t.ID.String(), "rank": st.Rank},
		})
		if err != nil {
			return awards, err
		}
		awards = append(awards, model.StarAward{UserID: st.UserID, Rank: st.Rank, Stars: st.Stars, Granted: granted})
	}
	return awards, nil
}

// SettleClosedWindows settles every star test whose window has ended and
// which has not been settled yet. A test that fails is left unsettled for
// the next pass.
func (s *StarService) SettleClosedWindows(ctx context.Context) (int, error) {
	now := s.now()
	tests, err := s.tests.ListUnsettledClosedWindows(ctx, now)
	if err != nil {
		return 0, err
	}

	granted := 0
	for i := range tests {
		t := &tests[i]
		awards, err := s.SettleTest(ctx, t)
		if err != nil {
			s.log.Error().Err(err).Str("test_id", t.ID.String()).Msg("Failed to settle star window")
			continue
		}
		for _, a := range awards {
			if a.Granted {
				granted++
			}
		}
		if err := s.tests.MarkSettled(ctx, t.ID, now); err != nil {
			s.log.Error().Err(err).Str("test_id", t.ID.String()).Msg("Failed to mark test settled")
		}
	}

	if len(tests) > 0 {
		s.log.Info().Int("tests", len(tests)).Int("grants", granted).Msg("Closed star windows settled")
	}
	return granted, nil
}

// TestStandings ranks the timed attempts of a test. For star tests with an
// end date, attempts after the end are ignored.
func (s *StarService) TestStandings(ctx context.Context, t *model.Test) ([]grading.Standing, error) {
	var until *time.Time
	if t.IsStarEligible {
		until = t.StarEndDate
	}
	attempts, err := s.results.TimedAttempts(ctx, t.ID, until)
	if err != nil {
		return nil, err
	}
	return grading.RankAttempts(attempts), nil
}

// ----------------------------------------------------------------
// Seasons
// ----------------------------------------------------------------

// CreateSeason stores a new season. An active season deactivates the others.
func (s *StarService) CreateSeason(ctx context.Context, req model.CreateSeasonRequest) (*model.StarSeason, error) {
	season := &model.StarSeason{
		Name:            strings.TrimSpace(req.Name),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		IsActive:        req.IsActive,
		MaxStarsPerUser: req.MaxStarsPerUser,
	}
	if err := s.ledger.CreateSeason(ctx, season); err != nil {
		return nil, err
	}
	return season, nil
}

// ListSeasons returns every season, newest first.
func (s *StarService) ListSeasons(ctx context.Context) ([]model.StarSeason, error) {
	return s.ledger.ListSeasons(ctx)
}

// ActivateSeason makes one season the active one.
func (s *StarService) ActivateSeason(ctx context.Context, id int) error {
	if err := s.ledger.ActivateSeason(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSeasonNotFound
		}
		return err
	}
	return nil
}

// AwardSeason grants place rewards for a season ranked by average score of
// the results created inside its window.
func (s *StarService) AwardSeason(ctx context.Context, id int) ([]model.StarAward, error) {
	season, err := s.ledger.GetSeason(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}

	standings, err := s.ranking.Season(ctx, season.StartDate, season.EndDate)
	if err != nil {
		return nil, err
	}

	awards := make([]model.StarAward, 0, grading.RewardedPlaces)
	for i, st := range standings {
		rank := i + 1
		stars := grading.StarsForRank(rank)
		if stars == 0 {
			break
		}
		if season.MaxStarsPerUser > 0 && stars > season.MaxStarsPerUser {
			stars = season.MaxStarsPerUser
		}

		granted, err := s.ledger.Grant(ctx, model.StarGrant{
			UserID:   st.UserID,
			Amount:   stars,
			Reason:   model.StarReasonLeaderboardRank,
			GrantKey: model.SeasonGrantKey(season.ID),
			Meta:     map[string]any{"season_id": season.ID, "rank": rank},
		})
		if err != nil {
			return awards, err
		}
		awards = append(awards, model.StarAward{UserID: st.UserID, Rank: rank, Stars: stars, Granted: granted})
	}

	s.log.Info().Int("season_id", season.ID).Int("winners", len(awards)).Msg("Season stars awarded")
	return awards, nil
}

// Transactions lists a member's ledger, newest first.
func (s *StarService) Transactions(ctx context.Context, userID, limit int) ([]model.StarTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.ledger.ListTransactions(ctx, userID, limit)
}

// StandingsForTest loads a test and ranks its timed attempts.
func (s *StarService) StandingsForTest(ctx context.Context, testID uuid.UUID) (*model.Test, []grading.Standing, error) {
	t, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrTestNotFound
		}
		return nil, nil, err
	}
	standings, err := s.TestStandings(ctx, t)
	return t, standings, err
}

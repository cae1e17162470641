package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mathclub/club-backend/internal/config"
	"github.com/mathclub/club-backend/internal/grading"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LeaderboardService builds rankings and member statistics. Rankings are
// cached in Redis and dropped on every new result.
type LeaderboardService struct {
	ranking RankingStore
	results ResultStore
	users   UserStore
	stars   *StarService
	rdb     *redis.Client
	ttl     time.Duration
	log     zerolog.Logger
}

// NewLeaderboardService creates a new LeaderboardService. rdb may be nil,
// in which case every call hits the database.
func NewLeaderboardService(
	ranking RankingStore,
	results ResultStore,
	users UserStore,
	stars *StarService,
	rdb *redis.Client,
	ttl time.Duration,
	log zerolog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		ranking: ranking,
		results: results,
		users:   users,
		stars:   stars,
		rdb:     rdb,
		ttl:     ttl,
		log:     log.With().Str("component", "leaderboard_service").Logger(),
	}
}

// Global returns the global ranking and, when userID is set, the caller's row.
func (s *LeaderboardService) Global(ctx context.Context, userID int) (*model.Leaderboard, error) {
	var entries []model.LeaderboardEntry
	key := config.CacheKey.GlobalLeaderboardKey()

	if !s.cached(ctx, key, &entries) {
		var err error
		if entries, err = s.ranking.Global(ctx); err != nil {
			return nil, err
		}
		if entries == nil {
			entries = []model.LeaderboardEntry{}
		}
		s.store(ctx, key, entries)
	}

	lb := &model.Leaderboard{Entries: entries}
	if userID != 0 {
		for i := range entries {
			if entries[i].UserID == userID {
				me := entries[i]
				lb.Me = &me
				break
			}
		}
	}
	return lb, nil
}

// TestRanking returns the timed ranking of a single test.
func (s *LeaderboardService) TestRanking(ctx context.Context, testID uuid.UUID) (*model.TestRanking, error) {
	var out model.TestRanking
	key := config.CacheKey.TestLeaderboardKey(testID.String())
	if s.cached(ctx, key, &out) {
		return &out, nil
	}

	t, standings, err := s.stars.StandingsForTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(standings))
	for _, st := range standings {
		ids = append(ids, st.UserID)
	}
	names := map[int]string{}
	if len(ids) > 0 {
		if names, err = s.ranking.Names(ctx, ids); err != nil {
			return nil, err
		}
	}

	if out.Test, err = Summarize(t, s.stars.now()); err != nil {
		return nil, err
	}
	out.Entries = make([]model.TestRankingEntry, 0, len(standings))
	for _, st := range standings {
		stars := 0
		if t.IsStarEligible {
			stars = st.Stars
		}
		out.Entries = append(out.Entries, model.TestRankingEntry{
			Rank:                st.Rank,
			UserID:              st.UserID,
			Name:                names[st.UserID],
			BestScore:           st.BestScore,
			BestDurationSeconds: st.BestDuration,
			Stars:               stars,
		})
	}

	s.store(ctx, key, out)
	return &out, nil
}

// UserStats returns a member's public profile with attempt statistics and
// their global rank.
func (s *LeaderboardService) UserStats(ctx context.Context, userID int) (*model.UserStatsPage, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	page := &model.UserStatsPage{User: Profile(u), Stats: ComputeStats(results)}
	page.User.Email = ""

	lb, err := s.Global(ctx, userID)
	if err != nil {
		return nil, err
	}
	if lb.Me != nil {
		rank := lb.Me.Rank
		page.Rank = &rank
	}
	return page, nil
}

// Invalidate drops the cached global ranking and the ranking of testID.
func (s *LeaderboardService) Invalidate(ctx context.Context, testID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	keys := []string{config.CacheKey.GlobalLeaderboardKey()}
	if testID != uuid.Nil {
		keys = append(keys, config.CacheKey.TestLeaderboardKey(testID.String()))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate leaderboard cache")
	}
}

// InvalidateAll drops the global ranking and every cached per-test ranking.
func (s *LeaderboardService) InvalidateAll(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	keys := []string{config.CacheKey.GlobalLeaderboardKey()}
	iter := s.rdb.Scan(ctx, 0, config.CacheKey.TestLeaderboardPattern(), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to scan leaderboard cache")
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate leaderboard cache")
	}
}

func (s *LeaderboardService) cached(ctx context.Context, key string, dst any) bool {
	if s.rdb == nil || s.ttl <= 0 {
		return false
	}
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("Leaderboard cache read failed")
		}
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *LeaderboardService) store(ctx context.Context, key string, v any) {
	if s.rdb == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Leaderboard cache write failed")
	}
}

// ComputeStats aggregates a member's results. Days are UTC calendar dates.
func ComputeStats(results []model.Result) model.UserStats {
	stats := model.UserStats{
		Daily: model.DailySeries{Labels: []string{}, TestCounts: []int{}, AvgScores: []int{}},
	}
	if len(results) == 0 {
		return stats
	}

	type day struct {
		tests map[uuid.UUID]struct{}
		sum   int
		n     int
	}
	days := map[string]*day{}
	tests := map[uuid.UUID]struct{}{}
	sum := 0
	last := results[0]

	for _, r := range results {
		sum += r.Score
		tests[r.TestID] = struct{}{}
		if r.Score > stats.BestScore {
			stats.BestScore = r.Score
		}
		if r.Score >= grading.PassScore {
			stats.PassedAttempts++
		}
		if !r.CreatedAt.Before(last.CreatedAt) {
			last = r
		}

		label := r.CreatedAt.UTC().Format(time.DateOnly)
		d, ok := days[label]
		if !ok {
			d = &day{tests: map[uuid.UUID]struct{}{}}
			days[label] = d
		}
		d.tests[r.TestID] = struct{}{}
		d.sum += r.Score
		d.n++
	}

	total := len(results)
	stats.TotalAttempts = total
	stats.UniqueTests = len(tests)
	stats.AvgScore = roundDiv(sum, total)
	stats.PassRate = roundDiv(stats.PassedAttempts*100, total)
	lastScore := last.Score
	stats.LastScore = &lastScore

	for label := range days {
		stats.Daily.Labels = append(stats.Daily.Labels, label)
	}
	sort.Strings(stats.Daily.Labels)
	for _, label := range stats.Daily.Labels {
		d := days[label]
		stats.Daily.TestCounts = append(stats.Daily.TestCounts, len(d.tests))
		stats.Daily.AvgScores = append(stats.Daily.AvgScores, roundDiv(d.sum, d.n))
	}

	stats.ActiveDays = len(days)
	stats.AvgPerActiveDay = math.Round(float64(total)/float64(stats.ActiveDays)*10) / 10
	return stats
}

func roundDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return int(math.Round(float64(a) / float64(b)))
}

package model

// LeaderboardEntry is one row of the global leaderboard.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	UserID     int    `json:"user_id"`
	Name       string `json:"name"`
	AvgScore   int    `json:"avg_score"`
	TestsCount int    `json:"tests_count"`
}

// Leaderboard is the global ranking plus the caller's own row, if any.
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	Me      *LeaderboardEntry  `json:"me,omitempty"`
}

// DailySeries is per-day activity, ordered by date.
type DailySeries struct {
	Labels     []string `json:"labels"`
	TestCounts []int    `json:"test_counts"`
	AvgScores  []int    `json:"avg_scores"`
}

// UserStats summarizes a member's attempts.
type UserStats struct {
	TotalAttempts   int         `json:"total_attempts"`
	UniqueTests     int         `json:"unique_tests"`
	AvgScore        int         `json:"avg_score"`
	BestScore       int         `json:"best_score"`
	LastScore       *int        `json:"last_score"`
	PassedAttempts  int         `json:"passed_attempts"`
	PassRate        int         `json:"pass_rate"`
	ActiveDays      int         `json:"active_days"`
	AvgPerActiveDay float64     `json:"avg_per_active_day"`
	Daily           DailySeries `json:"daily"`
}

// UserStatsPage is the public profile view of a member.
type UserStatsPage struct {
	User  UserProfile `json:"user"`
	Stats UserStats   `json:"stats"`
	Rank  *int        `json:"rank"`
}

// TestRankingEntry is one row of a test's timed ranking.
type TestRankingEntry struct {
	Rank                int    `json:"rank"`
	UserID              int    `json:"user_id"`
	Name                string `json:"name"`
	BestScore           int    `json:"best_score"`
	BestDurationSeconds *int   `json:"best_duration_seconds"`
	Stars               int    `json:"stars"`
}

// TestRanking is a test's timed ranking.
type TestRanking struct {
	Test    TestSummary        `json:"test"`
	Entries []TestRankingEntry `json:"entries"`
}

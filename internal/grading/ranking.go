package grading

import (
	"sort"
	"time"
)

// RewardedPlaces is how many top places earn stars.
const RewardedPlaces = 3

// TimedAttempt is a single timed result considered for ranking.
type TimedAttempt struct {
	UserID          int
	Score           int
	DurationSeconds *int
	CreatedAt       time.Time
}

// Standing is a user's aggregated position in a ranking.
type Standing struct {
	Rank         int       `json:"rank"`
	UserID       int       `json:"user_id"`
	BestScore    int       `json:"best_score"`
	BestDuration *int      `json:"best_duration_seconds"`
	FirstAttempt time.Time `json:"first_attempt_at"`
	Stars        int       `json:"stars"`
}

// StarsForRank maps a 1-based rank to its reward: 3, 2, 1, then nothing.
func StarsForRank(rank int) int {
	if rank < 1 || rank > RewardedPlaces {
		return 0
	}
	return RewardedPlaces + 1 - rank
}

// RankAttempts groups attempts by user, keeping the best score and the
// fastest duration, and orders users by score descending then duration
// ascending. A missing duration sorts after any recorded one. Remaining
// ties go to the earlier first attempt, then the lower user id, so the
// order is deterministic.
func RankAttempts(attempts []TimedAttempt) []Standing {
	byUser := make(map[int]*Standing)
	for _, a := range attempts {
		s, ok := byUser[a.UserID]
		if !ok {
			s = &Standing{UserID: a.UserID, BestScore: a.Score, FirstAttempt: a.CreatedAt}
			byUser[a.UserID] = s
		}
		if a.Score > s.BestScore {
			s.BestScore = a.Score
		}
		if a.DurationSeconds != nil && (s.BestDuration == nil || *a.DurationSeconds < *s.BestDuration) {
			d := *a.DurationSeconds
			s.BestDuration = &d
		}
		if a.CreatedAt.Before(s.FirstAttempt) {
			s.FirstAttempt = a.CreatedAt
		}
	}

	standings := make([]Standing, 0, len(byUser))
	for _, s := range byUser {
		standings = append(standings, *s)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.BestScore != b.BestScore {
			return a.BestScore > b.BestScore
		}
		if da, db := durationOrInf(a.BestDuration), durationOrInf(b.BestDuration); da != db {
			return da < db
		}
		if !a.FirstAttempt.Equal(b.FirstAttempt) {
			return a.FirstAttempt.Before(b.FirstAttempt)
		}
		return a.UserID < b.UserID
	})

	for i := range standings {
		standings[i].Rank = i + 1
		standings[i].Stars = StarsForRank(i + 1)
	}
	return standings
}

// Winners returns the standings that earn stars.
func Winners(standings []Standing) []Standing {
	if len(standings) > RewardedPlaces {
		return standings[:RewardedPlaces]
	}
	return standings
}

func durationOrInf(d *int) int64 {
	if d == nil {
		return 1<<63 - 1
	}
	return int64(*d)
}

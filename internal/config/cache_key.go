package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding the active JWT id of a user.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// GlobalLeaderboardKey returns the cache key for the serialized global leaderboard.
func (r *CacheKeyStruct) GlobalLeaderboardKey() string {
	return "leaderboard:global"
}

// TestLeaderboardKey returns the cache key for a single test's timed ranking.
func (r *CacheKeyStruct) TestLeaderboardKey(testID string) string {
	return fmt.Sprintf("leaderboard:test:%s", testID)
}

// TestLeaderboardPattern matches every per-test ranking key.
func (r *CacheKeyStruct) TestLeaderboardPattern() string {
	return "leaderboard:test:*"
}

// StarSettleMarkerKey marks a user as recently enqueued for closed-window settlement.
func (r *CacheKeyStruct) StarSettleMarkerKey(userID int) string {
	return fmt.Sprintf("stars:settle:%d", userID)
}

// UserChatChannel returns the Redis PubSub channel carrying a user's chat messages.
func (r *CacheKeyStruct) UserChatChannel(userID int) string {
	return fmt.Sprintf("chat:user:%d", userID)
}

var CacheKey = NewCacheKeyStruct()

package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mathclub/club-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SettleRequest is queued for the star settlement worker.
type SettleRequest struct {
	UserID      int       `json:"user_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// EnqueueStarSettlement asks the settlement worker to pay out closed star
// windows when a signed-in member is active. Each member triggers at most
// one request per interval. Failures never block the request.
func EnqueueStarSettlement(rdb *redis.Client, interval time.Duration, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "star_settle_trigger").Logger()

	return func(c *gin.Context) {
		userID := UserID(c)
		if rdb == nil || userID == 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		fresh, err := rdb.SetNX(ctx, config.CacheKey.StarSettleMarkerKey(userID), 1, interval).Result()
		if err != nil {
			log.Warn().Err(err).Int("user_id", userID).Msg("Settlement marker failed")
			c.Next()
			return
		}

		if fresh {
			payload, _ := json.Marshal(SettleRequest{UserID: userID, RequestedAt: time.Now().UTC()})
			if err := rdb.RPush(ctx, config.WorkerKey.StarSettleQueue, payload).Err(); err != nil {
				log.Warn().Err(err).Int("user_id", userID).Msg("Settlement enqueue failed")
			}
		}

		c.Next()
	}
}

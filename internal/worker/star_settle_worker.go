package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mathclub/club-backend/internal/config"
	"github.com/mathclub/club-backend/internal/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	SettlePollTimeout = 1 * time.Second
	// SettleDrainLimit caps how many queued requests one sweep absorbs.
	SettleDrainLimit = 100
)

// Settler pays out star windows that have closed.
type Settler interface {
	// SettleClosedWindows returns the number of star grants it made.
	SettleClosedWindows(ctx context.Context) (int, error)
}

// StarSettleWorker runs closed-window settlement when members ask for it
// through the queue and on a fixed sweep interval.
type StarSettleWorker struct {
	settler  Settler
	rdb      *redis.Client
	interval time.Duration
	log      zerolog.Logger
}

// NewStarSettleWorker creates a new StarSettleWorker. rdb may be nil, in
// which case only the periodic sweep runs.
func NewStarSettleWorker(settler Settler, rdb *redis.Client, interval time.Duration, log zerolog.Logger) *StarSettleWorker {
	return &StarSettleWorker{
		settler:  settler,
		rdb:      rdb,
		interval: interval,
		log:      log.With().Str("component", "star_settle_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop
// ----------------------------------------------------------------

func (w *StarSettleWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("StarSettleWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Catch up on anything that closed while the process was down.
	w.sweep(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("StarSettleWorker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx, "interval")
			continue
		default:
		}

		if w.rdb == nil {
			select {
			case <-ctx.Done():
			case <-ticker.C:
				w.sweep(ctx, "interval")
			}
			continue
		}

		item, err := w.rdb.BLPop(ctx, SettlePollTimeout, config.WorkerKey.StarSettleQueue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				w.log.Error().Err(err).Msg("BLPop error")
				time.Sleep(SettlePollTimeout)
			}
			continue
		}
		if len(item) < 2 {
			continue
		}

		var req middleware.SettleRequest
		if err := json.Unmarshal([]byte(item[1]), &req); err != nil {
			w.log.Error().Err(err).Msg("Invalid JSON payload")
			continue
		}

		drained := w.drain(ctx)
		w.log.Debug().Int("user_id", req.UserID).Int("coalesced", drained).Msg("Settlement requested")
		w.sweep(ctx, "request")
	}
}

// drain drops requests queued behind the one being served; a single sweep
// covers all of them.
func (w *StarSettleWorker) drain(ctx context.Context) int {
	n := 0
	for n < SettleDrainLimit {
		if err := w.rdb.LPop(ctx, config.WorkerKey.StarSettleQueue).Err(); err != nil {
			if !errors.Is(err, redis.Nil) {
				w.log.Warn().Err(err).Msg("Queue drain failed")
			}
			break
		}
		n++
	}
	return n
}

func (w *StarSettleWorker) sweep(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	grants, err := w.settler.SettleClosedWindows(ctx)
	if err != nil {
		w.log.Error().Err(err).Str("trigger", trigger).Msg("Star settlement sweep failed")
		return
	}
	if grants > 0 {
		w.log.Info().Int("grants", grants).Str("trigger", trigger).Msg("Star windows settled")
	}
}

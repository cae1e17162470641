package service

import (
	"context"
	"errors"

	"github.com/mathclub/club-backend/internal/model"
)

var (
	ErrAlreadySolved  = errors.New("test already solved")
	ErrOnceNotAllowed = errors.New("once mode is not allowed on star tests")
)

// AttemptGate decides whether a member may open or submit a test in a mode.
type AttemptGate struct {
	results ResultStore
}

// NewAttemptGate creates a new AttemptGate.
func NewAttemptGate(results ResultStore) *AttemptGate {
	return &AttemptGate{results: results}
}

// Check rejects attempts the mode policy forbids. Submissions outside a
// star window are allowed; only the reward is skipped for them.
func (g *AttemptGate) Check(ctx context.Context, userID int, t *model.Test, mode model.AttemptMode) error {
	if t.IsStarEligible && mode == model.AttemptModeOnce {
		return ErrOnceNotAllowed
	}
	if !Exclusive(t, mode) {
		return nil
	}

	done, err := g.results.HasAttempt(ctx, userID, t.ID, mode)
	if err != nil {
		return err
	}
	if done {
		return ErrAlreadySolved
	}
	return nil
}

// Exclusive reports whether a result in this mode may exist only once per
// member and test.
func Exclusive(t *model.Test, mode model.AttemptMode) bool {
	return mode == model.AttemptModeOnce || (t.IsStarEligible && mode == model.AttemptModeTimed)
}

// ParseMode normalizes a client-supplied mode, defaulting to timed.
func ParseMode(raw string) (model.AttemptMode, bool) {
	switch model.AttemptMode(raw) {
	case "", model.AttemptModeTimed:
		return model.AttemptModeTimed, true
	case model.AttemptModeOnce:
		return model.AttemptModeOnce, true
	}
	return "", false
}

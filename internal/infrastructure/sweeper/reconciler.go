package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/leaveledger/internal/domain"
)

// Checker compares every balance account with its ledger.
type Checker interface {
	CheckLedgerConsistency(ctx context.Context) error
}

// Reconciler runs the ledger consistency check on a ticker. Mismatches are
// reported, never corrected.
type Reconciler struct {
	checker  Checker
	interval time.Duration
	logger   zerolog.Logger
}

// NewReconciler creates a Reconciler. A non-positive interval disables it.
func NewReconciler(checker Checker, interval time.Duration, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		checker:  checker,
		interval: interval,
		logger:   logger.With().Str("component", "reconciler").Logger(),
	}
}

func (r *Reconciler) Enabled() bool {
	return r.interval > 0
}

// Start checks every interval until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}

	r.logger.Info().Dur("interval", r.interval).Msg("ledger reconciler started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("ledger reconciler shutting down")
			return ctx.Err()
		case <-ticker.C:
			r.check(ctx)
		}
	}
}

// check reports whether the ledger was consistent.
func (r *Reconciler) check(ctx context.Context) bool {
	err := r.checker.CheckLedgerConsistency(ctx)
	switch {
	case err == nil:
		r.logger.Debug().Msg("ledger consistent")
		return true
	case errors.Is(err, domain.ErrLedgerInconsistency):
		r.logger.Error().Err(err).Msg("ledger inconsistency detected")
	case ctx.Err() == nil:
		r.logger.Error().Err(err).Msg("ledger reconciliation failed")
	}
	return false
}

// Package sweeper runs the periodic background jobs: the time-based
// auto-approval sweep and the ledger reconciliation check.
package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Processor advances requests whose scheduled auto approval is due.
type Processor interface {
	ProcessDueAutoApprovals(ctx context.Context) (int, error)
}

// Sweeper periodically calls a Processor.
type Sweeper struct {
	processor Processor
	interval  time.Duration
	logger    zerolog.Logger
}

// New creates a Sweeper. A non-positive interval disables it.
func New(processor Processor, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{processor: processor, interval: interval, logger: logger}
}

// Enabled reports whether Start would do any work.
func (s *Sweeper) Enabled() bool {
	return s.interval > 0
}

// Start sweeps every interval until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}

	s.logger.Info().Dur("interval", s.interval).Msg("auto-approval sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("auto-approval sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.processor.ProcessDueAutoApprovals(ctx)
	if err != nil {
		s.logger.Error().Err(err).Int("advanced", n).Msg("auto-approval sweep failed")
		return
	}
	if n > 0 {
		s.logger.Info().Int("advanced", n).Msg("auto-approval sweep")
	}
}

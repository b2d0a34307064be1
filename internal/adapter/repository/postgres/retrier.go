package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATEs that mean two writers met on the same balance or request row.
const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlock             = "40P01"
	pgErrLockNotAvailable     = "55P03"
)

// Retrier re-runs a unit of work when Postgres aborts it for contention.
// Domain errors such as an insufficient balance are returned at once.
type Retrier struct {
	attempts uint64
	initial  time.Duration
	max      time.Duration
	logger   zerolog.Logger
}

type RetrierOption func(*Retrier)

// WithRetries sets how many times a failed attempt is repeated.
func WithRetries(n uint64) RetrierOption {
	return func(r *Retrier) { r.attempts = n }
}

// WithBackoff sets the first and the largest pause between attempts.
func WithBackoff(initial, max time.Duration) RetrierOption {
	return func(r *Retrier) {
		r.initial = initial
		r.max = max
	}
}

func NewRetrier(logger zerolog.Logger, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		attempts: 3,
		initial:  50 * time.Millisecond,
		max:      time.Second,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initial
	b.MaxInterval = r.max
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, r.attempts), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := operation()
		if err == nil || !isRetryableError(err) {
			return permanent(err)
		}

		r.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Msg("transaction aborted by contention, retrying")
		return err
	}, policy)
}

func permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// isRetryableError reports contention aborts and connection failures that
// happened before anything reached the server.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlock, pgErrLockNotAvailable:
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}

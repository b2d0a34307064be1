package directory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
)

// CachedDirectory serves employee records from a cache, falling through to
// the wrapped directory on a miss. Only successful lookups are cached.
type CachedDirectory struct {
	next   usecase.EmployeeDirectory
	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedDirectory wraps next with cache entries living for ttl.
func NewCachedDirectory(next usecase.EmployeeDirectory, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *CachedDirectory {
	return &CachedDirectory{next: next, cache: cache, ttl: ttl, logger: logger}
}

// GetEmployee implements usecase.EmployeeDirectory.
func (d *CachedDirectory) GetEmployee(ctx context.Context, employeeID string) (*domain.Employee, error) {
	key := "employee:" + employeeID

	raw, err := d.cache.Get(ctx, key)
	switch {
	case err == nil:
		var employee domain.Employee
		if err := json.Unmarshal(raw, &employee); err == nil {
			return &employee, nil
		}
		d.logger.Warn().Str("employee_id", employeeID).Msg("discarding undecodable cached employee")
	case !errors.Is(err, usecase.ErrCacheMiss):
		// A broken cache must not take lookups down with it.
		d.logger.Warn().Err(err).Str("employee_id", employeeID).Msg("employee cache read failed")
	}

	employee, err := d.next.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(employee); err == nil {
		if err := d.cache.Set(ctx, key, raw, d.ttl); err != nil {
			d.logger.Warn().Err(err).Str("employee_id", employeeID).Msg("employee cache write failed")
		}
	}
	return employee, nil
}

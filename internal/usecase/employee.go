package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/metrics"
)

// employeeLookup reads employee records and degrades to nil when the
// directory cannot answer. Callers treat nil as "join date and manager unknown".
type employeeLookup struct {
	directory EmployeeDirectory
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

func (l employeeLookup) get(ctx context.Context, employeeID string) *domain.Employee {
	if l.directory == nil {
		return nil
	}

	employee, err := l.directory.GetEmployee(ctx, employeeID)
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmployeeNotFound):
		result = "not_found"
		l.logger.Warn().Str("employee_id", employeeID).Msg("employee not in directory, using full entitlement")
	default:
		result = "unavailable"
		l.logger.Warn().Err(err).Str("employee_id", employeeID).Msg("employee directory unavailable, using full entitlement")
	}

	if l.metrics != nil {
		l.metrics.DirectoryLookups.WithLabelValues(result).Inc()
	}

	if err != nil {
		return nil
	}
	return employee
}

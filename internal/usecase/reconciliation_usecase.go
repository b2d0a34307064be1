package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/metrics"
)

// ReconciliationUseCase checks that materialized balances agree with the
// ledger. It reports discrepancies and never corrects them.
type ReconciliationUseCase struct {
	ledgerRepo LedgerRepository
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(ledgerRepo LedgerRepository, logger zerolog.Logger, metrics *metrics.Metrics) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		ledgerRepo: ledgerRepo,
		logger:     logger,
		metrics:    metrics,
		now:        utcNow,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	Key               domain.BalanceKey
	RecordedBalance   domain.HalfDays
	CalculatedBalance domain.HalfDays
	Difference        domain.HalfDays
	TransactionCount  int64
	IsReconciled      bool
	Reason            string
}

// Check compares one account with the sum of its transactions.
func Check(sum BalanceSum) *ReconciliationResult {
	account := sum.Account
	result := &ReconciliationResult{
		Key:               account.Key(),
		RecordedBalance:   account.CurrentBalance,
		CalculatedBalance: sum.TransactionSum,
		Difference:        account.CurrentBalance - sum.TransactionSum,
		TransactionCount:  sum.TransactionCount,
		IsReconciled:      true,
	}

	switch err := account.CheckInvariant(); {
	case err != nil:
		result.IsReconciled = false
		result.Reason = err.Error()
	case result.Difference != 0:
		result.IsReconciled = false
		result.Reason = "current balance differs from transaction sum"
	case sum.TransactionCount != account.Version:
		result.IsReconciled = false
		result.Reason = "version differs from transaction count"
	}

	return result
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// GenerateReconciliationReport walks every balance account page by page.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     uc.now(),
	}

	for offset := 0; ; offset += reconciliationPageSize {
		sums, err := uc.ledgerRepo.BalanceSums(ctx, reconciliationPageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, sum := range sums {
			result := Check(sum)
			report.TotalAccounts++
			if result.IsReconciled {
				report.ReconciledAccounts++
				continue
			}

			report.Discrepancies = append(report.Discrepancies, result)
			uc.logger.Error().
				Str("balance", result.Key.String()).
				Str("recorded", result.RecordedBalance.String()).
				Str("calculated", result.CalculatedBalance.String()).
				Str("reason", result.Reason).
				Msg("ledger discrepancy")
		}

		if len(sums) < reconciliationPageSize {
			break
		}
	}

	report.LedgerConsistent = len(report.Discrepancies) == 0

	if uc.metrics != nil {
		uc.metrics.ReconciliationRuns.Inc()
		uc.metrics.LedgerInconsistencies.Set(float64(len(report.Discrepancies)))
	}

	return report, nil
}

// CheckLedgerConsistency returns domain.ErrLedgerInconsistency when any
// account disagrees with its ledger.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	report, err := uc.GenerateReconciliationReport(ctx)
	if err != nil {
		return err
	}
	if !report.LedgerConsistent {
		return errors.Join(domain.ErrLedgerInconsistency,
			errors.New(report.Discrepancies[0].Key.String()+": "+report.Discrepancies[0].Reason))
	}
	return nil
}

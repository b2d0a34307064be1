package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
	"github.com/iho/leaveledger/internal/usecase/mocks"
)

func account(employeeID string, total, used domain.HalfDays, version int64) *domain.BalanceAccount {
	a := domain.NewBalanceAccount(domain.BalanceKey{EmployeeID: employeeID, LeaveVariantID: "var-1", Year: 2025}, time.Now())
	a.TotalEntitlement = total
	a.UsedBalance = used
	a.CurrentBalance = total - used
	a.Version = version
	return a
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		sum        usecase.BalanceSum
		reconciled bool
	}{
		{
			name:       "matching",
			sum:        usecase.BalanceSum{Account: account("emp-1", 48, 4, 2), TransactionSum: 44, TransactionCount: 2},
			reconciled: true,
		},
		{
			name:       "sum differs",
			sum:        usecase.BalanceSum{Account: account("emp-1", 48, 4, 2), TransactionSum: 48, TransactionCount: 2},
			reconciled: false,
		},
		{
			name:       "missing transaction",
			sum:        usecase.BalanceSum{Account: account("emp-1", 48, 0, 2), TransactionSum: 48, TransactionCount: 1},
			reconciled: false,
		},
		{
			name: "broken invariant",
			sum: func() usecase.BalanceSum {
				a := account("emp-1", 48, 4, 1)
				a.CurrentBalance = 48
				return usecase.BalanceSum{Account: a, TransactionSum: 48, TransactionCount: 1}
			}(),
			reconciled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := usecase.Check(tt.sum)
			if result.IsReconciled != tt.reconciled {
				t.Fatalf("expected reconciled=%v, got %+v", tt.reconciled, result)
			}
			if !tt.reconciled && result.Reason == "" {
				t.Errorf("expected a reason for the discrepancy")
			}
		})
	}
}

func TestGenerateReconciliationReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockLedgerRepository(ctrl)
	repo.EXPECT().BalanceSums(gomock.Any(), gomock.Any(), 0).Return([]usecase.BalanceSum{
		{Account: account("emp-1", 48, 4, 2), TransactionSum: 44, TransactionCount: 2},
		{Account: account("emp-2", 24, 0, 1), TransactionSum: 20, TransactionCount: 1},
	}, nil)

	uc := usecase.NewReconciliationUseCase(repo, zerolog.Nop(), nil)

	report, err := uc.GenerateReconciliationReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalAccounts != 2 || report.ReconciledAccounts != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	if report.LedgerConsistent {
		t.Fatalf("expected inconsistent ledger")
	}
	if len(report.Discrepancies) != 1 || report.Discrepancies[0].Key.EmployeeID != "emp-2" {
		t.Fatalf("unexpected discrepancies: %+v", report.Discrepancies)
	}
	if report.Discrepancies[0].Difference != 4 {
		t.Errorf("expected difference of 2d, got %s", report.Discrepancies[0].Difference)
	}
}

func TestGenerateReconciliationReport_Pages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	page := make([]usecase.BalanceSum, 500)
	for i := range page {
		page[i] = usecase.BalanceSum{Account: account("emp-1", 2, 0, 1), TransactionSum: 2, TransactionCount: 1}
	}

	repo := mocks.NewMockLedgerRepository(ctrl)
	gomock.InOrder(
		repo.EXPECT().BalanceSums(gomock.Any(), 500, 0).Return(page, nil),
		repo.EXPECT().BalanceSums(gomock.Any(), 500, 500).Return(page[:3], nil),
	)

	report, err := usecase.NewReconciliationUseCase(repo, zerolog.Nop(), nil).GenerateReconciliationReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalAccounts != 503 || !report.LedgerConsistent {
		t.Fatalf("unexpected report: total=%d consistent=%v", report.TotalAccounts, report.LedgerConsistent)
	}
}

func TestCheckLedgerConsistency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dbErr := errors.New("db down")

	repo := mocks.NewMockLedgerRepository(ctrl)
	gomock.InOrder(
		repo.EXPECT().BalanceSums(gomock.Any(), gomock.Any(), 0).Return(nil, dbErr),
		repo.EXPECT().BalanceSums(gomock.Any(), gomock.Any(), 0).Return([]usecase.BalanceSum{
			{Account: account("emp-1", 48, 0, 1), TransactionSum: 40, TransactionCount: 1},
		}, nil),
		repo.EXPECT().BalanceSums(gomock.Any(), gomock.Any(), 0).Return(nil, nil),
	)

	uc := usecase.NewReconciliationUseCase(repo, zerolog.Nop(), nil)

	if err := uc.CheckLedgerConsistency(context.Background()); !errors.Is(err, dbErr) {
		t.Fatalf("expected %v, got %v", dbErr, err)
	}
	if err := uc.CheckLedgerConsistency(context.Background()); !errors.Is(err, domain.ErrLedgerInconsistency) {
		t.Fatalf("expected ErrLedgerInconsistency, got %v", err)
	}
	if err := uc.CheckLedgerConsistency(context.Background()); err != nil {
		t.Fatalf("expected consistent ledger, got %v", err)
	}
}

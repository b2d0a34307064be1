package integration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
	"github.com/iho/leaveledger/tests/testutil"
)

var clock = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func oneDay(emp string, day time.Time) usecase.SubmitRequestInput {
	return usecase.SubmitRequestInput{
		Actor:       testutil.Employee(emp),
		Kind:        domain.RequestKindLeave,
		EmployeeID:  emp,
		OrgID:       testutil.Org,
		LeaveTypeID: "annual",
		StartDate:   day,
		EndDate:     day,
		Reason:      "errand",
	}
}

func TestConcurrentSubmissions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	svc := testDB.Services(clock)

	t.Run("concurrent reservations never overdraw", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		testDB.SeedOrg(ctx, 10, 1)
		emp := testutil.EmployeeID(1)

		// 20 single working days in March against a 10 day entitlement.
		var days []time.Time
		for d := testutil.Date(2025, time.March, 3); len(days) < 20; d = d.AddDate(0, 0, 1) {
			if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
				days = append(days, d)
			}
		}

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
			shortCount   atomic.Int32
			otherErr     atomic.Value
		)

		wg.Add(len(days))

		for _, day := range days {
			go func() {
				defer wg.Done()

				_, err := svc.Requests.Submit(ctx, oneDay(emp, day))
				switch {
				case err == nil:
					successCount.Add(1)
				case errors.Is(err, domain.ErrInsufficientBalance):
					shortCount.Add(1)
				default:
					otherErr.Store(err)
				}
			}()
		}

		wg.Wait()

		if err, ok := otherErr.Load().(error); ok {
			t.Fatalf("unexpected error: %v", err)
		}
		if successCount.Load() != 10 || shortCount.Load() != 10 {
			t.Fatalf("expected 10 reserved and 10 rejected, got %d and %d", successCount.Load(), shortCount.Load())
		}

		account, err := svc.Ledger.BalanceFor(ctx, domain.BalanceKey{EmployeeID: emp, LeaveVariantID: "var-annual", Year: 2025})
		if err != nil {
			t.Fatalf("failed to get balance: %v", err)
		}
		if account.CurrentBalance != 0 {
			t.Errorf("expected balance 0, got %s", account.CurrentBalance)
		}
		if err := account.CheckInvariant(); err != nil {
			t.Errorf("invariant violated: %v", err)
		}

		requireConsistent(ctx, t, svc.Reconciliation)
	})

	t.Run("concurrent approvals apply once", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		testDB.SeedOrg(ctx, 24, 1)
		emp := testutil.EmployeeID(1)

		req, err := svc.Requests.Submit(ctx, oneDay(emp, testutil.Date(2025, time.March, 4)))
		if err != nil {
			t.Fatalf("failed to submit: %v", err)
		}

		const approvers = 10
		var (
			wg       sync.WaitGroup
			applied  atomic.Int32
			conflict atomic.Int32
		)

		wg.Add(approvers)

		for range approvers {
			go func() {
				defer wg.Done()

				_, err := svc.Requests.Approve(ctx, req.ID, testutil.Manager(), "ok")
				switch {
				case err == nil:
					applied.Add(1)
				case errors.Is(err, domain.ErrInvalidTransition):
					conflict.Add(1)
				}
			}()
		}

		wg.Wait()

		if applied.Load() != 1 || conflict.Load() != approvers-1 {
			t.Fatalf("expected exactly one approval, got %d applied and %d conflicts", applied.Load(), conflict.Load())
		}

		got, err := svc.Requests.Get(ctx, req.ID)
		if err != nil {
			t.Fatalf("failed to get request: %v", err)
		}
		if len(got.ApprovalHistory) != 1 {
			t.Errorf("expected one history entry, got %d", len(got.ApprovalHistory))
		}

		account, err := svc.Ledger.BalanceFor(ctx, domain.BalanceKey{EmployeeID: emp, LeaveVariantID: "var-annual", Year: 2025})
		if err != nil {
			t.Fatalf("failed to get balance: %v", err)
		}
		if account.UsedBalance != domain.WholeDays(1) {
			t.Errorf("expected 1 day used, got %s", account.UsedBalance)
		}

		requireConsistent(ctx, t, svc.Reconciliation)
	})

	t.Run("parallel employees do not contend", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		const employees = 8
		testDB.SeedOrg(ctx, 24, employees)

		var wg sync.WaitGroup
		errs := make(chan error, employees)

		wg.Add(employees)

		for i := 1; i <= employees; i++ {
			go func() {
				defer wg.Done()

				if _, err := svc.Requests.Submit(ctx, oneDay(testutil.EmployeeID(i), testutil.Date(2025, time.March, 5))); err != nil {
					errs <- err
				}
			}()
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			t.Errorf("submission failed: %v", err)
		}

		report, err := svc.Reconciliation.GenerateReconciliationReport(ctx)
		if err != nil {
			t.Fatalf("reconciliation failed: %v", err)
		}
		if report.TotalAccounts != employees {
			t.Errorf("expected %d accounts, got %d", employees, report.TotalAccounts)
		}
	})
}

func requireConsistent(ctx context.Context, t *testing.T, recon *usecase.ReconciliationUseCase) {
	t.Helper()

	report, err := recon.GenerateReconciliationReport(ctx)
	if err != nil {
		t.Fatalf("reconciliation failed: %v", err)
	}
	if !report.LedgerConsistent {
		t.Fatalf("ledger inconsistent: %+v", report.Discrepancies)
	}
}

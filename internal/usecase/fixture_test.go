package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iho/leaveledger/internal/adapter/repository/memory"
	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
)

const testOrg = "org-1"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqIDs struct {
	n atomic.Int64
}

func (g *seqIDs) Generate() string {
	return fmt.Sprintf("id-%05d", g.n.Add(1))
}

type fixture struct {
	store    *memory.Store
	clock    *testClock
	ledger   *usecase.LedgerUseCase
	balances *usecase.BalanceUseCase
	accrual  *usecase.AccrualUseCase
	requests *usecase.RequestUseCase
	recon    *usecase.ReconciliationUseCase
	audit    *memory.AuditRepository
}

func hours(h int) *time.Duration {
	d := time.Duration(h) * time.Hour
	return &d
}

// newFixture wires the use cases over a memory store seeded with:
//
//	annual  in_advance 24d, reserved at submit, carry forward up to 5d
//	sick    in_advance 12d, deducted on approval
//	earned  after_earning 12d monthly
//	comp    comp-off bank, no allocation
//
// Leave requests of org-1 need the reporting manager; leave withdrawals need
// HR. PTO and comp-off have no workflow. org-2 approves annual leave
// automatically after 48h.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	store := memory.NewStore()
	clock := &testClock{now: time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)}
	ids := &seqIDs{}
	logger := zerolog.Nop()

	variants := []*domain.LeaveVariant{
		{ID: "var-annual", OrgID: testOrg, LeaveTypeID: "annual", AnnualEntitlement: domain.WholeDays(24),
			AccrualPolicy: domain.AccrualInAdvance, DeductBeforeWorkflow: true, MaxCarryForward: domain.WholeDays(5)},
		{ID: "var-sick", OrgID: testOrg, LeaveTypeID: "sick", AnnualEntitlement: domain.WholeDays(12),
			AccrualPolicy: domain.AccrualInAdvance},
		{ID: "var-earned", OrgID: testOrg, LeaveTypeID: "earned", AnnualEntitlement: domain.WholeDays(12),
			AccrualPolicy: domain.AccrualAfterEarning, AccrualFrequency: domain.AccrualMonthly},
		{ID: "var-comp", OrgID: testOrg, LeaveTypeID: "comp", AccrualPolicy: domain.AccrualInAdvance},
		{ID: "var-auto", OrgID: "org-2", LeaveTypeID: "annual", AnnualEntitlement: domain.WholeDays(10),
			AccrualPolicy: domain.AccrualInAdvance},
	}
	for _, v := range variants {
		require.NoError(t, store.PutVariant(ctx, v))
	}

	workflows := []*domain.WorkflowDefinition{
		{ID: "wf-leave", Process: domain.ProcessLeave, SubProcess: domain.SubProcessApply, OrgID: testOrg, Steps: []domain.WorkflowStep{
			{Name: "manager", Kind: domain.StepKindManual, Approver: &domain.ApproverRule{Type: domain.ApproverReportingManager}},
		}},
		{ID: "wf-withdraw", Process: domain.ProcessLeave, SubProcess: domain.SubProcessWithdraw, OrgID: testOrg, Steps: []domain.WorkflowStep{
			{Name: "hr", Kind: domain.StepKindManual, Approver: &domain.ApproverRule{Type: domain.ApproverRole, Values: []string{domain.RoleHR}}},
		}},
		{ID: "wf-auto", Process: domain.ProcessLeave, SubProcess: domain.SubProcessApply, OrgID: "org-2", Steps: []domain.WorkflowStep{
			{Name: "lead", Kind: domain.StepKindManual, Approver: &domain.ApproverRule{Type: domain.ApproverAny}, AutoApproveAfter: hours(48)},
			{Name: "record", Kind: domain.StepKindAuto},
		}},
	}
	for _, def := range workflows {
		require.NoError(t, store.PutWorkflow(ctx, def))
	}

	joinedEarly := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	employees := []*domain.Employee{
		{ID: "emp-1", OrgID: testOrg, JoinDate: &joinedEarly, ManagerID: "mgr-1"},
		{ID: "emp-2", OrgID: testOrg, JoinDate: &joinedEarly, ManagerID: "mgr-2"},
		{ID: "emp-9", OrgID: "org-2", JoinDate: &joinedEarly},
	}
	for _, e := range employees {
		require.NoError(t, store.PutEmployee(ctx, e))
	}

	balanceRepo := memory.NewBalanceRepository(store)
	txnRepo := memory.NewLedgerTransactionRepository(store)
	outboxRepo := memory.NewOutboxRepository(store)
	auditRepo := memory.NewAuditRepository(store)
	variantRepo := memory.NewVariantRepository(store)
	directory := memory.NewDirectory(store)

	ledger := usecase.NewLedgerUseCase(store, balanceRepo, txnRepo, outboxRepo, ids, nil).WithClock(clock.Now)
	balances := usecase.NewBalanceUseCase(ledger, nil)
	accrual := usecase.NewAccrualUseCase(store, ledger, usecase.NewEntitlementCalculator(), variantRepo, directory, auditRepo, ids, logger, nil).
		WithClock(clock.Now)
	engine := usecase.NewWorkflowEngine(memory.NewWorkflowRepository(store), directory, logger)

	requests := usecase.NewRequestUseCase(usecase.RequestUseCaseDeps{
		TxManager:   store,
		RequestRepo: memory.NewRequestRepository(store),
		VariantRepo: variantRepo,
		HolidayRepo: memory.NewHolidayRepository(store),
		OutboxRepo:  outboxRepo,
		AuditRepo:   auditRepo,
		Directory:   directory,
		Ledger:      ledger,
		Balances:    balances,
		Accrual:     accrual,
		Engine:      engine,
		IDGen:       ids,
		Logger:      logger,
	}).WithClock(clock.Now)

	return &fixture{
		store:    store,
		clock:    clock,
		ledger:   ledger,
		balances: balances,
		accrual:  accrual,
		requests: requests,
		recon:    usecase.NewReconciliationUseCase(memory.NewLedgerRepository(store), logger, nil),
		audit:    auditRepo,
	}
}

func employee(id string) domain.Actor {
	return domain.Actor{ID: id, OrgID: testOrg, Roles: []string{domain.RoleEmployee}}
}

func manager(id string) domain.Actor {
	return domain.Actor{ID: id, OrgID: testOrg, Roles: []string{domain.RoleManager}}
}

func hrActor() domain.Actor {
	return domain.Actor{ID: "hr-1", OrgID: testOrg, Roles: []string{domain.RoleHR}}
}

// leave builds a submission for emp-1 of leaveType over the working days
// Monday 2025-03-03 through end.
func leave(kind domain.RequestKind, leaveType string, end time.Time) usecase.SubmitRequestInput {
	return usecase.SubmitRequestInput{
		Actor:       employee("emp-1"),
		Kind:        kind,
		EmployeeID:  "emp-1",
		OrgID:       testOrg,
		LeaveTypeID: leaveType,
		StartDate:   date(2025, time.March, 3),
		EndDate:     end,
		Reason:      "family trip",
	}
}

func (f *fixture) balance(t *testing.T, employeeID, variantID string, year int) *domain.BalanceAccount {
	t.Helper()
	account, err := f.ledger.BalanceFor(context.Background(), domain.BalanceKey{EmployeeID: employeeID, LeaveVariantID: variantID, Year: year})
	require.NoError(t, err)
	return account
}

func (f *fixture) requestTxns(t *testing.T, requestID string) []*domain.LedgerTransaction {
	t.Helper()

	var out []*domain.LedgerTransaction
	for _, emp := range []string{"emp-1", "emp-2", "emp-9"} {
		txns, err := f.ledger.TransactionsFor(context.Background(), emp, nil, nil)
		require.NoError(t, err)
		for _, txn := range txns {
			if txn.RequestID != nil && *txn.RequestID == requestID {
				out = append(out, txn)
			}
		}
	}
	return out
}

// requireConsistent checks every account against its ledger.
func (f *fixture) requireConsistent(t *testing.T) {
	t.Helper()
	report, err := f.recon.GenerateReconciliationReport(context.Background())
	require.NoError(t, err)
	require.True(t, report.LedgerConsistent, "discrepancies: %+v", report.Discrepancies)
}

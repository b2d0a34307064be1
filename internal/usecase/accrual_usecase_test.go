package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/leaveledger/internal/domain"
)

func TestAccrualUseCase_TopUpAfterEarning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := hrActor()

	f.clock.Set(date(2025, time.April, 15))
	account, err := f.accrual.TopUp(ctx, actor, "emp-1", "var-earned", 2025)
	require.NoError(t, err)
	assert.Equal(t, domain.WholeDays(3), account.TotalEntitlement)

	f.clock.Set(date(2025, time.April, 30))
	account, err = f.accrual.TopUp(ctx, actor, "emp-1", "var-earned", 2025)
	require.NoError(t, err)
	assert.Equal(t, domain.WholeDays(4), account.TotalEntitlement)
	assert.Equal(t, domain.WholeDays(4), account.CurrentBalance)

	account, err = f.accrual.TopUp(ctx, actor, "emp-1", "var-earned", 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(2), account.Version)

	variant := "var-earned"
	txns, err := f.ledger.TransactionsFor(ctx, "emp-1", &variant, nil)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, domain.WholeDays(3), txns[0].Amount)
	assert.Equal(t, domain.WholeDays(1), txns[1].Amount)
	assert.Equal(t, "Accrued entitlement as of 2025-04-30", txns[1].Description)

	f.requireConsistent(t)
}

func TestAccrualUseCase_NothingEarnedLeavesEmptyAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.clock.Set(date(2025, time.January, 15))
	account, err := f.accrual.TopUp(ctx, hrActor(), "emp-1", "var-earned", 2025)
	require.NoError(t, err)
	assert.Zero(t, account.TotalEntitlement)
	assert.Zero(t, account.CurrentBalance)
	assert.Zero(t, account.Version)

	variant := "var-earned"
	txns, err := f.ledger.TransactionsFor(ctx, "emp-1", &variant, nil)
	require.NoError(t, err)
	assert.Empty(t, txns)

	// The locked row stays behind empty and still reconciles.
	stored, err := f.ledger.BalanceFor(ctx, domain.BalanceKey{EmployeeID: "emp-1", LeaveVariantID: "var-earned", Year: 2025})
	require.NoError(t, err)
	assert.Zero(t, stored.CurrentBalance)
	f.requireConsistent(t)
}

func TestAccrualUseCase_InAdvanceAllocatesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.accrual.TopUp(ctx, hrActor(), "emp-1", "var-annual", 2025)
	require.NoError(t, err)
	assert.Equal(t, domain.WholeDays(24), account.TotalEntitlement)

	account, err = f.accrual.TopUp(ctx, hrActor(), "emp-1", "var-annual", 2025)
	require.NoError(t, err)
	assert.Equal(t, domain.WholeDays(24), account.TotalEntitlement)
	assert.Equal(t, int64(1), account.Version)
}

func TestAccrualUseCase_UnknownEmployeeGetsFullEntitlement(t *testing.T) {
	f := newFixture(t)

	account, err := f.accrual.TopUp(context.Background(), hrActor(), "emp-unknown", "var-annual", 2025)
	require.NoError(t, err)
	assert.Equal(t, domain.WholeDays(24), account.TotalEntitlement)
}

func TestAccrualUseCase_CarryForward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accrual.CarryForward(ctx, hrActor(), "emp-1", "var-annual", 2025)
	require.ErrorIs(t, err, domain.ErrBalanceNotFound)

	req, err := f.requests.Submit(ctx, leave(domain.RequestKindPTO, "annual", date(2025, time.March, 4)))
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusApproved, req.Status)

	next, err := f.accrual.CarryForward(ctx, hrActor(), "emp-1", "var-annual", 2025)
	require.NoError(t, err)
	assert.Equal(t, domain.WholeDays(5), next.CarryForward)
	assert.Equal(t, domain.WholeDays(5), next.CurrentBalance)
	assert.Equal(t, 2026, next.Year)

	_, err = f.accrual.CarryForward(ctx, hrActor(), "emp-1", "var-annual", 2025)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	// The 2026 allocation still arrives on first use.
	allocated, err := f.accrual.TopUp(ctx, hrActor(), "emp-1", "var-annual", 2026)
	require.NoError(t, err)
	assert.Equal(t, domain.WholeDays(29), allocated.CurrentBalance)
	require.NoError(t, allocated.CheckInvariant())

	_, err = f.accrual.CarryForward(ctx, hrActor(), "emp-1", "var-sick", 2025)
	require.ErrorIs(t, err, domain.ErrMissingConfiguration)

	f.requireConsistent(t)
}

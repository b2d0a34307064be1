package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/logger"
	"github.com/iho/leaveledger/internal/infrastructure/metrics"
)

// AccrualUseCase grants entitlement into balance accounts: the opening
// allocation, after-earning top-ups and year-end carry-forward.
type AccrualUseCase struct {
	txManager   TransactionManager
	ledger      *LedgerUseCase
	calculator  *EntitlementCalculator
	variantRepo VariantRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	employees   employeeLookup
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewAccrualUseCase creates a new AccrualUseCase.
func NewAccrualUseCase(
	txManager TransactionManager,
	ledger *LedgerUseCase,
	calculator *EntitlementCalculator,
	variantRepo VariantRepository,
	directory EmployeeDirectory,
	auditRepo AuditRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *AccrualUseCase {
	return &AccrualUseCase{
		txManager:   txManager,
		ledger:      ledger,
		calculator:  calculator,
		variantRepo: variantRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		employees:   employeeLookup{directory: directory, logger: logger, metrics: metrics},
		metrics:     metrics,
		now:         utcNow,
	}
}

// WithClock replaces the time source.
func (uc *AccrualUseCase) WithClock(now func() time.Time) *AccrualUseCase {
	uc.now = now
	return uc
}

// Ensure locks the account for employee and variant in year and brings its
// entitlement up to date as of asOf. In-advance accounts receive their
// allocation once; after-earning accounts receive whatever has been earned
// since the last grant.
func (uc *AccrualUseCase) Ensure(ctx context.Context, tx Transaction, employeeID string, employee *domain.Employee, variant *domain.LeaveVariant, year int, asOf time.Time) (*domain.BalanceAccount, error) {
	key := domain.BalanceKey{EmployeeID: employeeID, LeaveVariantID: variant.ID, Year: year}

	account, err := uc.ledger.Lock(ctx, tx, key)
	if err != nil {
		return nil, err
	}

	entitled := uc.calculator.ComputeEntitlement(employee, variant, year, asOf)

	var (
		grant       domain.HalfDays
		description string
	)
	switch variant.AccrualPolicy {
	case domain.AccrualInAdvance:
		if account.TotalEntitlement == 0 {
			grant = entitled
			description = fmt.Sprintf("Annual allocation for %d", year)
		}
	case domain.AccrualAfterEarning:
		if entitled > account.TotalEntitlement {
			grant = entitled - account.TotalEntitlement
			description = fmt.Sprintf("Accrued entitlement as of %s", asOf.Format(time.DateOnly))
		}
	}

	if grant > 0 {
		if _, err := uc.ledger.AppendLocked(ctx, tx, account, AppendInput{
			Key:         key,
			Type:        domain.TransactionTypeGrant,
			Amount:      grant,
			Description: description,
		}); err != nil {
			return nil, err
		}
	}

	return account, nil
}

// TopUp brings one account's entitlement up to date in its own transaction.
func (uc *AccrualUseCase) TopUp(ctx context.Context, actor domain.Actor, employeeID, variantID string, year int) (*domain.BalanceAccount, error) {
	variant, err := uc.variantRepo.GetByID(ctx, variantID)
	if err != nil {
		return nil, err
	}

	employee := uc.employees.get(ctx, employeeID)
	now := uc.now()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	before, err := uc.ledger.Lock(txCtx, tx, domain.BalanceKey{EmployeeID: employeeID, LeaveVariantID: variantID, Year: year})
	if err != nil {
		return nil, err
	}
	beforeState := domain.MarshalState(before)

	account, err := uc.Ensure(txCtx, tx, employeeID, employee, variant, year, now)
	if err != nil {
		return nil, err
	}

	if err := uc.audit(txCtx, tx, actor, domain.AuditActionAccrualTopUp, account, beforeState); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return account, nil
}

// CarryForward moves up to the variant's carry-forward limit of the balance
// left in fromYear into the next year's account. It runs once per account.
func (uc *AccrualUseCase) CarryForward(ctx context.Context, actor domain.Actor, employeeID, variantID string, fromYear int) (*domain.BalanceAccount, error) {
	variant, err := uc.variantRepo.GetByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if variant.MaxCarryForward <= 0 {
		return nil, fmt.Errorf("%w: variant %s does not allow carry forward", domain.ErrMissingConfiguration, variantID)
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	from, err := uc.ledger.Lock(txCtx, tx, domain.BalanceKey{EmployeeID: employeeID, LeaveVariantID: variantID, Year: fromYear})
	if err != nil {
		return nil, err
	}
	if from.Version == 0 {
		return nil, fmt.Errorf("%w: no ledger for %d", domain.ErrBalanceNotFound, fromYear)
	}

	toKey := domain.BalanceKey{EmployeeID: employeeID, LeaveVariantID: variantID, Year: fromYear + 1}
	to, err := uc.ledger.Lock(txCtx, tx, toKey)
	if err != nil {
		return nil, err
	}
	if to.CarryForward != 0 {
		return nil, fmt.Errorf("%w: balance already carried forward into %d", domain.ErrInvalidTransition, toKey.Year)
	}
	beforeState := domain.MarshalState(to)

	amount := min(from.CurrentBalance, variant.MaxCarryForward)
	if amount > 0 {
		if _, err := uc.ledger.AppendLocked(txCtx, tx, to, AppendInput{
			Key:         toKey,
			Type:        domain.TransactionTypeCarryForward,
			Amount:      amount,
			Description: fmt.Sprintf("Carried forward from %d", fromYear),
		}); err != nil {
			return nil, err
		}
	}

	if err := uc.audit(txCtx, tx, actor, domain.AuditActionCarryForward, to, beforeState); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return to, nil
}

func (uc *AccrualUseCase) audit(ctx context.Context, tx Transaction, actor domain.Actor, action domain.AuditAction, account *domain.BalanceAccount, before domain.JSON) error {
	if uc.auditRepo == nil {
		return nil
	}

	err := uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		OrgID:        actor.OrgID,
		UserID:       actorID(actor),
		Action:       string(action),
		ResourceType: domain.AggregateTypeBalance,
		ResourceID:   account.Key().String(),
		RequestID:    logger.RequestID(ctx),
		BeforeState:  before,
		AfterState:   domain.MarshalState(account),
		CreatedAt:    uc.now(),
	})
	if err == nil && uc.metrics != nil {
		uc.metrics.AuditLogsCreated.WithLabelValues(domain.AggregateTypeBalance, string(action)).Inc()
	}
	return err
}

func actorID(actor domain.Actor) string {
	if actor.ID == "" {
		return domain.SystemActorID
	}
	return actor.ID
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/logger"
	"github.com/iho/leaveledger/internal/infrastructure/metrics"
)

// Comp-off request types.
const (
	CompOffBank     = "bank"
	CompOffAvail    = "avail"
	CompOffTransfer = "transfer"
	CompOffEncash   = "encash"
)

var compOffSubProcesses = map[string]string{
	CompOffBank:     domain.SubProcessBankCompOff,
	CompOffAvail:    domain.SubProcessAvailCompOff,
	CompOffTransfer: domain.SubProcessTransfer,
	CompOffEncash:   domain.SubProcessEncash,
	"en_cash":       domain.SubProcessEncash,
}

// RequestUseCase coordinates a request's lifecycle: it drives the workflow
// engine and writes the confirming or compensating ledger transactions each
// transition requires, in the same database transaction as the request.
type RequestUseCase struct {
	txManager   TransactionManager
	requestRepo RequestRepository
	variantRepo VariantRepository
	holidayRepo HolidayRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	ledger      *LedgerUseCase
	balances    *BalanceUseCase
	accrual     *AccrualUseCase
	engine      *WorkflowEngine
	idGen       IDGenerator
	retrier     Retrier
	employees   employeeLookup
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// RequestUseCaseDeps groups the collaborators of RequestUseCase.
type RequestUseCaseDeps struct {
	TxManager   TransactionManager
	RequestRepo RequestRepository
	VariantRepo VariantRepository
	HolidayRepo HolidayRepository
	OutboxRepo  OutboxRepository
	AuditRepo   AuditRepository
	Directory   EmployeeDirectory
	Ledger      *LedgerUseCase
	Balances    *BalanceUseCase
	Accrual     *AccrualUseCase
	Engine      *WorkflowEngine
	IDGen       IDGenerator
	Retrier     Retrier
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
}

// NewRequestUseCase creates a new RequestUseCase.
func NewRequestUseCase(deps RequestUseCaseDeps) *RequestUseCase {
	return &RequestUseCase{
		txManager:   deps.TxManager,
		requestRepo: deps.RequestRepo,
		variantRepo: deps.VariantRepo,
		holidayRepo: deps.HolidayRepo,
		outboxRepo:  deps.OutboxRepo,
		auditRepo:   deps.AuditRepo,
		ledger:      deps.Ledger,
		balances:    deps.Balances,
		accrual:     deps.Accrual,
		engine:      deps.Engine,
		idGen:       deps.IDGen,
		retrier:     deps.Retrier,
		employees:   employeeLookup{directory: deps.Directory, logger: deps.Logger, metrics: deps.Metrics},
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		now:         utcNow,
	}
}

// WithClock replaces the time source.
func (uc *RequestUseCase) WithClock(now func() time.Time) *RequestUseCase {
	uc.now = now
	return uc
}

// SubmitRequestInput represents input for submitting a request.
type SubmitRequestInput struct {
	Actor             domain.Actor
	Kind              domain.RequestKind
	CompOffType       string
	EmployeeID        string
	OrgID             string
	LeaveTypeID       string
	TargetLeaveTypeID string
	StartDate         time.Time
	EndDate           time.Time
	HalfDayStart      bool
	HalfDayEnd        bool
	// Days is an explicit amount for comp-off transfer and encash requests,
	// which are not tied to a date range.
	Days   domain.HalfDays
	Reason string
}

// Submit validates and submits a request. With deductBeforeWorkflow the
// amount is reserved immediately; either way the balance must cover it or the
// request is rejected with domain.ErrInsufficientBalance and nothing is saved.
func (uc *RequestUseCase) Submit(ctx context.Context, in SubmitRequestInput) (*domain.Request, error) {
	subProcess, err := uc.validateSubmit(in)
	if err != nil {
		return nil, err
	}

	start, end := in.StartDate, in.EndDate
	if in.Days > 0 {
		if start.IsZero() {
			start = uc.now()
		}
		end = start
	}
	start, end = domain.StartOfDay(start), domain.StartOfDay(end)

	variant, err := uc.resolveVariant(ctx, in.OrgID, in.LeaveTypeID)
	if err != nil {
		return nil, err
	}

	var target *domain.LeaveVariant
	if subProcess == domain.SubProcessTransfer {
		if target, err = uc.resolveVariant(ctx, in.OrgID, in.TargetLeaveTypeID); err != nil {
			return nil, err
		}
	}

	amount, err := uc.amountFor(ctx, in, subProcess, start, end)
	if err != nil {
		return nil, err
	}

	employee := uc.employees.get(ctx, in.EmployeeID)

	var req *domain.Request
	err = uc.inTx(ctx, "submit", func(ctx context.Context, tx Transaction) error {
		now := uc.now()
		req = &domain.Request{
			ID:             uc.idGen.Generate(),
			Kind:           in.Kind,
			SubProcess:     subProcess,
			EmployeeID:     in.EmployeeID,
			OrgID:          in.OrgID,
			LeaveTypeID:    in.LeaveTypeID,
			LeaveVariantID: variant.ID,
			StartDate:      start,
			EndDate:        end,
			HalfDayStart:   in.HalfDayStart,
			HalfDayEnd:     in.HalfDayEnd,
			WorkingDays:    amount,
			Reason:         strings.TrimSpace(in.Reason),
			Status:         domain.RequestStatusPending,
			WorkflowStatus: domain.WorkflowStatusBypassed,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if target != nil {
			req.TargetVariantID = target.ID
		}

		if _, err := uc.accrual.Ensure(ctx, tx, req.EmployeeID, employee, variant, req.Year(), now); err != nil {
			return err
		}
		if target != nil {
			if _, err := uc.accrual.Ensure(ctx, tx, req.EmployeeID, employee, target, req.Year(), now); err != nil {
				return err
			}
		}

		if !grantsBalance(req) {
			if variant.DeductBeforeWorkflow {
				if _, err := uc.balances.Reserve(ctx, tx, req.BalanceKey(), req.ID, amount,
					fmt.Sprintf("Leave balance reserved for pending request %s", req.ID)); err != nil {
					return err
				}
			} else if _, err := uc.balances.CheckAvailable(ctx, tx, req.BalanceKey(), amount); err != nil {
				return err
			}
		}

		if _, err := uc.engine.Start(ctx, req, req.Kind.Process(), req.SubProcess, in.Actor, now); err != nil {
			return err
		}

		if err := uc.applyLedgerEffects(ctx, tx, req, domain.RequestStatusPending); err != nil {
			return err
		}

		if err := uc.requestRepo.Create(ctx, tx, req); err != nil {
			return err
		}

		return uc.emit(ctx, tx, req, in.Actor, domain.AuditActionRequestSubmit, "", 0, nil)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RequestsSubmitted.WithLabelValues(string(req.Kind)).Inc()
		uc.metrics.RequestTransitions.WithLabelValues(string(domain.ActionSubmitted), string(req.Status)).Inc()
	}

	uc.logger.Info().
		Str("request_id", req.ID).
		Str("employee_id", req.EmployeeID).
		Str("status", string(req.Status)).
		Str("amount", req.WorkingDays.String()).
		Msg("request submitted")

	return req, nil
}

// Approve approves the current workflow step of a pending or
// withdrawal_pending request. Approving a request that is no longer awaiting
// a decision returns the unchanged request with domain.ErrInvalidTransition.
func (uc *RequestUseCase) Approve(ctx context.Context, requestID string, actor domain.Actor, comment string) (*domain.Request, error) {
	return uc.transition(ctx, requestID, actor, domain.AuditActionRequestApprove,
		func(ctx context.Context, req *domain.Request, now time.Time) (Transition, error) {
			return uc.engine.Approve(ctx, req, actor, comment, now)
		})
}

// Reject rejects the current workflow step. Rejecting an application releases
// any reservation; rejecting a withdrawal leaves the approved request intact.
func (uc *RequestUseCase) Reject(ctx context.Context, requestID string, actor domain.Actor, reason string) (*domain.Request, error) {
	if err := domain.ValidateReason(reason, true); err != nil {
		return nil, err
	}

	return uc.transition(ctx, requestID, actor, domain.AuditActionRequestReject,
		func(ctx context.Context, req *domain.Request, now time.Time) (Transition, error) {
			return uc.engine.Reject(ctx, req, actor, reason, now)
		})
}

// Withdraw withdraws an approved request, through the withdrawal workflow when
// one is configured and immediately otherwise.
func (uc *RequestUseCase) Withdraw(ctx context.Context, requestID string, actor domain.Actor, reason string) (*domain.Request, error) {
	if err := domain.ValidateReason(reason, false); err != nil {
		return nil, err
	}

	return uc.transition(ctx, requestID, actor, domain.AuditActionRequestWithdraw,
		func(ctx context.Context, req *domain.Request, now time.Time) (Transition, error) {
			if err := mayActFor(actor, req); err != nil {
				return Transition{}, err
			}
			return uc.engine.StartWithdrawal(ctx, req, actor, reason, now)
		})
}

// Cancel cancels a pending request and releases any reservation.
func (uc *RequestUseCase) Cancel(ctx context.Context, requestID string, actor domain.Actor, reason string) (*domain.Request, error) {
	if err := domain.ValidateReason(reason, false); err != nil {
		return nil, err
	}

	return uc.transition(ctx, requestID, actor, domain.AuditActionRequestCancel,
		func(_ context.Context, req *domain.Request, now time.Time) (Transition, error) {
			if err := mayActFor(actor, req); err != nil {
				return Transition{}, err
			}
			return uc.engine.Cancel(req, actor, reason, now)
		})
}

// Advance moves a request past automatic steps and due time-based approvals.
// It is safe to call repeatedly.
func (uc *RequestUseCase) Advance(ctx context.Context, requestID string, actor domain.Actor) (*domain.Request, error) {
	return uc.transition(ctx, requestID, actor, domain.AuditActionRequestAdvance,
		func(ctx context.Context, req *domain.Request, now time.Time) (Transition, error) {
			return uc.engine.Advance(ctx, req, now)
		})
}

// ProcessDueAutoApprovals advances every request whose scheduled auto
// approval is due and returns how many moved. Failures on one request are
// logged and do not stop the sweep.
func (uc *RequestUseCase) ProcessDueAutoApprovals(ctx context.Context) (int, error) {
	ids, err := uc.requestRepo.ListDueForAutoApproval(ctx, uc.now(), AutoApprovalBatchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}

		before, err := uc.requestRepo.GetByID(ctx, id)
		if err != nil {
			uc.logger.Error().Err(err).Str("request_id", id).Msg("auto approval: failed to load request")
			continue
		}

		after, err := uc.Advance(ctx, id, domain.SystemActor())
		switch {
		case errors.Is(err, domain.ErrInvalidTransition):
			continue
		case err != nil:
			uc.logger.Error().Err(err).Str("request_id", id).Msg("auto approval: failed to advance request")
			continue
		}

		if len(after.ApprovalHistory) > len(before.ApprovalHistory) {
			processed++
			if uc.metrics != nil {
				uc.metrics.AutoApprovals.Inc()
			}
		}
	}

	return processed, nil
}

// Get returns a request by ID.
func (uc *RequestUseCase) Get(ctx context.Context, requestID string) (*domain.Request, error) {
	return uc.requestRepo.GetByID(ctx, requestID)
}

// List lists requests matching filter.
func (uc *RequestUseCase) List(ctx context.Context, filter RequestFilter) ([]*domain.Request, error) {
	filter.Limit, filter.Offset, _ = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.requestRepo.List(ctx, filter)
}

type transitionFunc func(ctx context.Context, req *domain.Request, now time.Time) (Transition, error)

func (uc *RequestUseCase) transition(ctx context.Context, requestID string, actor domain.Actor, action domain.AuditAction, fn transitionFunc) (*domain.Request, error) {
	var (
		req     *domain.Request
		changed bool
	)

	err := uc.inTx(ctx, string(action), func(ctx context.Context, tx Transaction) error {
		var err error
		req, err = uc.requestRepo.GetByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			return err
		}

		before := domain.MarshalState(req)
		prev := req.Status
		seen := len(req.ApprovalHistory)

		tr, err := fn(ctx, req, uc.now())
		if err != nil {
			return err
		}
		changed = tr.Changed
		if !tr.Changed {
			return nil
		}

		if err := uc.applyLedgerEffects(ctx, tx, req, prev); err != nil {
			return err
		}

		if err := uc.requestRepo.Update(ctx, tx, req); err != nil {
			return err
		}

		return uc.emit(ctx, tx, req, actor, action, prev, seen, before)
	})

	if errors.Is(err, domain.ErrInvalidTransition) && req != nil {
		uc.logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("actor_id", actor.ID).
			Str("action", string(action)).
			Msg("transition ignored")
		if uc.metrics != nil {
			uc.metrics.InvalidTransitions.Inc()
		}
		return req, err
	}
	if err != nil {
		return nil, err
	}

	if changed && uc.metrics != nil {
		uc.metrics.RequestTransitions.WithLabelValues(string(action), string(req.Status)).Inc()
	}

	return req, nil
}

// applyLedgerEffects writes the ledger side of a status change from prev.
func (uc *RequestUseCase) applyLedgerEffects(ctx context.Context, tx Transaction, req *domain.Request, prev domain.RequestStatus) error {
	switch {
	case prev == domain.RequestStatusPending && req.Status == domain.RequestStatusApproved:
		return uc.completeApplication(ctx, tx, req)
	case req.Status == domain.RequestStatusWithdrawn:
		return uc.reverseApproved(ctx, tx, req)
	case req.Status == domain.RequestStatusRejected, req.Status == domain.RequestStatusCancelled:
		return uc.releaseReservation(ctx, tx, req)
	}
	return nil
}

// completeApplication confirms the request's balance effect on final approval.
// The requestId scan keeps repeated completions from deducting twice.
func (uc *RequestUseCase) completeApplication(ctx context.Context, tx Transaction, req *domain.Request) error {
	txs, err := uc.ledger.TransactionsForRequest(ctx, tx, req.ID)
	if err != nil {
		return err
	}

	key := req.BalanceKey()

	if grantsBalance(req) {
		if domain.SumOfType(txs, req.LeaveVariantID, domain.TransactionTypeGrant) != 0 {
			return nil
		}
		_, _, err := uc.ledger.Append(ctx, tx, AppendInput{
			Key:         key,
			Type:        domain.TransactionTypeGrant,
			Amount:      req.WorkingDays,
			Description: fmt.Sprintf("Comp-off banked by request %s", req.ID),
			RequestID:   req.ID,
		})
		return err
	}

	if domain.NetDeducted(txs, req.LeaveVariantID) > 0 {
		if _, err := uc.balances.Finalize(ctx, tx, key, req.ID); err != nil {
			return err
		}
	} else if _, err := uc.balances.Deduct(ctx, tx, key, req.ID, req.WorkingDays,
		fmt.Sprintf("Leave deducted for approved request %s", req.ID)); err != nil {
		return err
	}

	if req.TargetVariantID != "" && domain.SumOfType(txs, req.TargetVariantID, domain.TransactionTypeGrant) == 0 {
		_, _, err := uc.ledger.Append(ctx, tx, AppendInput{
			Key:         targetKey(req),
			Type:        domain.TransactionTypeGrant,
			Amount:      req.WorkingDays,
			Description: fmt.Sprintf("Comp-off transferred by request %s", req.ID),
			RequestID:   req.ID,
		})
		return err
	}

	return nil
}

// releaseReservation restores whatever a rejected or cancelled request still
// holds of the balance.
func (uc *RequestUseCase) releaseReservation(ctx context.Context, tx Transaction, req *domain.Request) error {
	txs, err := uc.ledger.TransactionsForRequest(ctx, tx, req.ID)
	if err != nil {
		return err
	}

	net := domain.NetDeducted(txs, req.LeaveVariantID)
	if net <= 0 {
		return nil
	}

	_, err = uc.balances.Restore(ctx, tx, req.BalanceKey(), req.ID, net,
		fmt.Sprintf("Leave restored for %s request %s", req.Status, req.ID))
	return err
}

// reverseApproved undoes every balance effect of a withdrawn request.
func (uc *RequestUseCase) reverseApproved(ctx context.Context, tx Transaction, req *domain.Request) error {
	txs, err := uc.ledger.TransactionsForRequest(ctx, tx, req.ID)
	if err != nil {
		return err
	}

	description := fmt.Sprintf("Leave restored for withdrawn request %s", req.ID)

	if grantsBalance(req) {
		granted := domain.SumOfType(txs, req.LeaveVariantID, domain.TransactionTypeGrant)
		if granted > 0 {
			_, err := uc.balances.Revoke(ctx, tx, req.BalanceKey(), req.ID, granted,
				fmt.Sprintf("Comp-off reversed for withdrawn request %s", req.ID))
			return err
		}
		return nil
	}

	if net := domain.NetDeducted(txs, req.LeaveVariantID); net > 0 {
		if _, err := uc.balances.Restore(ctx, tx, req.BalanceKey(), req.ID, net, description); err != nil {
			return err
		}
	}

	if req.TargetVariantID != "" {
		granted := domain.SumOfType(txs, req.TargetVariantID, domain.TransactionTypeGrant)
		if granted > 0 {
			if _, err := uc.balances.Revoke(ctx, tx, targetKey(req), req.ID, granted,
				fmt.Sprintf("Comp-off reversed for withdrawn request %s", req.ID)); err != nil {
				return err
			}
		}
	}

	return nil
}

// emit writes the outbox event and audit entry of a change from prev. seen
// is the history length before the change; later entries supply the comment.
func (uc *RequestUseCase) emit(ctx context.Context, tx Transaction, req *domain.Request, actor domain.Actor, action domain.AuditAction, prev domain.RequestStatus, seen int, before domain.JSON) error {
	now := uc.now()

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   req.ID,
		AggregateType: domain.AggregateTypeRequest,
		EventType:     domain.RequestEventType(req),
		Payload: domain.MarshalState(domain.RequestTransitionEvent{
			RequestID:      req.ID,
			EmployeeID:     req.EmployeeID,
			Kind:           string(req.Kind),
			Status:         string(req.Status),
			WorkflowStatus: string(req.WorkflowStatus),
			CurrentStep:    req.CurrentStep,
			ActorID:        actorID(actor),
		}),
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	if uc.auditRepo == nil {
		return nil
	}

	err := uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		OrgID:        req.OrgID,
		UserID:       actorID(actor),
		Action:       string(action),
		ResourceType: domain.AggregateTypeRequest,
		ResourceID:   req.ID,
		FromStatus:   string(prev),
		ToStatus:     string(req.Status),
		Comment:      latestComment(req.ApprovalHistory[min(seen, len(req.ApprovalHistory)):]),
		RequestID:    logger.RequestID(ctx),
		BeforeState:  before,
		AfterState:   domain.MarshalState(req),
		CreatedAt:    now,
	})
	if err == nil && uc.metrics != nil {
		uc.metrics.AuditLogsCreated.WithLabelValues(domain.AggregateTypeRequest, string(action)).Inc()
	}
	return err
}

func latestComment(entries []domain.ApprovalEntry) string {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Comment != "" {
			return entries[i].Comment
		}
	}
	return ""
}

// inTx runs fn in a database transaction, retrying transient failures.
func (uc *RequestUseCase) inTx(ctx context.Context, operation string, fn func(ctx context.Context, tx Transaction) error) error {
	start := time.Now()
	defer func() {
		if uc.metrics != nil {
			uc.metrics.RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		}
	}()

	run := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	if uc.retrier == nil {
		return run()
	}
	return uc.retrier.Retry(ctx, run)
}

func (uc *RequestUseCase) validateSubmit(in SubmitRequestInput) (string, error) {
	if !in.Kind.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidRequestKind, in.Kind)
	}

	if err := domain.ValidateRequired(
		domain.Field{Name: "employee_id", Value: in.EmployeeID},
		domain.Field{Name: "org_id", Value: in.OrgID},
		domain.Field{Name: "leave_type_id", Value: in.LeaveTypeID},
	); err != nil {
		return "", err
	}

	if err := domain.ValidateReason(in.Reason, false); err != nil {
		return "", err
	}

	if in.Actor.ID != in.EmployeeID && !in.Actor.IsSystem() && !in.Actor.HasRole(domain.RoleAdmin) && !in.Actor.HasRole(domain.RoleHR) {
		return "", fmt.Errorf("%w: cannot submit for employee %s", domain.ErrActionNotPermitted, in.EmployeeID)
	}

	subProcess := domain.SubProcessApply
	if in.Kind == domain.RequestKindCompOff {
		sp, ok := compOffSubProcesses[in.CompOffType]
		if !ok {
			return "", fmt.Errorf("%w: unknown comp-off type %q", domain.ErrInvalidRequestKind, in.CompOffType)
		}
		subProcess = sp
	}

	explicit := subProcess == domain.SubProcessTransfer || subProcess == domain.SubProcessEncash
	switch {
	case in.Days < 0:
		return "", domain.ErrInvalidAmount
	case in.Days > 0 && !explicit:
		return "", fmt.Errorf("%w: an explicit amount is only accepted for comp-off transfer and encash", domain.ErrInvalidAmount)
	case in.Days == 0 && explicit:
		return "", fmt.Errorf("%w: comp-off transfer and encash need an amount", domain.ErrInvalidAmount)
	case in.Days == 0:
		if err := domain.ValidateDateRange(in.StartDate, in.EndDate); err != nil {
			return "", err
		}
	}

	if subProcess == domain.SubProcessTransfer {
		if in.TargetLeaveTypeID == "" || in.TargetLeaveTypeID == in.LeaveTypeID {
			return "", fmt.Errorf("%w: target_leave_type_id must name a different leave type", domain.ErrMissingField)
		}
	}

	return subProcess, nil
}

func (uc *RequestUseCase) resolveVariant(ctx context.Context, orgID, leaveTypeID string) (*domain.LeaveVariant, error) {
	variant, err := uc.variantRepo.GetByLeaveType(ctx, orgID, leaveTypeID)
	if errors.Is(err, domain.ErrVariantNotFound) {
		return nil, fmt.Errorf("%w: no leave variant configured for leave type %s in org %s",
			domain.ErrMissingConfiguration, leaveTypeID, orgID)
	}
	if err != nil {
		return nil, err
	}
	return variant, nil
}

// amountFor computes the balance a request consumes or banks. Leave counts
// working days; banked comp-off counts every day worked.
func (uc *RequestUseCase) amountFor(ctx context.Context, in SubmitRequestInput, subProcess string, start, end time.Time) (domain.HalfDays, error) {
	if in.Days > 0 {
		return in.Days, nil
	}

	if subProcess == domain.SubProcessBankCompOff {
		days := domain.WholeDays(int64(end.Sub(start).Hours()/24) + 1)
		if in.HalfDayStart {
			days--
		}
		if in.HalfDayEnd && (!start.Equal(end) || !in.HalfDayStart) {
			days--
		}
		return days, nil
	}

	var holidays []domain.Holiday
	if uc.holidayRepo != nil {
		var err error
		holidays, err = uc.holidayRepo.ListBetween(ctx, in.OrgID, start, end)
		if err != nil {
			return 0, err
		}
	}

	return domain.NewCalendar(holidays).WorkingDays(start, end, in.HalfDayStart, in.HalfDayEnd)
}

func grantsBalance(req *domain.Request) bool {
	return req.SubProcess == domain.SubProcessBankCompOff
}

func targetKey(req *domain.Request) domain.BalanceKey {
	return domain.BalanceKey{EmployeeID: req.EmployeeID, LeaveVariantID: req.TargetVariantID, Year: req.Year()}
}

// mayActFor allows the requesting employee, HR, admins and the service itself.
func mayActFor(actor domain.Actor, req *domain.Request) error {
	if actor.ID == req.EmployeeID || actor.IsSystem() || actor.HasRole(domain.RoleAdmin) || actor.HasRole(domain.RoleHR) {
		return nil
	}
	return fmt.Errorf("%w: %s may not act on request %s", domain.ErrActionNotPermitted, actor.ID, req.ID)
}

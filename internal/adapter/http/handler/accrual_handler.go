package handler

import (
	"context"
	"net/http"

	"github.com/iho/leaveledger/internal/adapter/http/dto"
	"github.com/iho/leaveledger/internal/domain"
)

// AccrualService grants entitlement and closes leave years.
type AccrualService interface {
	TopUp(ctx context.Context, actor domain.Actor, employeeID, variantID string, year int) (*domain.BalanceAccount, error)
	CarryForward(ctx context.Context, actor domain.Actor, employeeID, variantID string, fromYear int) (*domain.BalanceAccount, error)
}

// AccrualHandler handles HR accrual endpoints.
type AccrualHandler struct {
	accrual AccrualService
}

// NewAccrualHandler creates a new AccrualHandler.
func NewAccrualHandler(accrual AccrualService) *AccrualHandler {
	return &AccrualHandler{accrual: accrual}
}

// TopUp grants whatever entitlement has accrued so far.
func (h *AccrualHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, http.StatusOK, "failed to top up balance", h.accrual.TopUp)
}

// CarryForward moves the unused balance of a closed year into the next one.
func (h *AccrualHandler) CarryForward(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, http.StatusCreated, "failed to carry forward balance", h.accrual.CarryForward)
}

type accrualCall func(ctx context.Context, actor domain.Actor, employeeID, variantID string, year int) (*domain.BalanceAccount, error)

func (h *AccrualHandler) handle(w http.ResponseWriter, r *http.Request, status int, failure string, call accrualCall) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if !requireRole(w, actor, domain.RoleHR, domain.RoleAdmin) {
		return
	}

	var req dto.AccrualRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	account, err := call(r.Context(), actor, req.EmployeeID, req.LeaveVariantID, req.Year)
	if err != nil {
		writeDomainError(w, failure, err)
		return
	}

	writeJSON(w, status, dto.BalanceFromDomain(account))
}

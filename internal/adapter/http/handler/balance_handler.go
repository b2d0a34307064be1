package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/leaveledger/internal/adapter/http/dto"
	"github.com/iho/leaveledger/internal/domain"
)

// BalanceService reads balance accounts and their ledger.
type BalanceService interface {
	BalanceFor(ctx context.Context, key domain.BalanceKey) (*domain.BalanceAccount, error)
	BalancesFor(ctx context.Context, employeeID string, year int) ([]*domain.BalanceAccount, error)
	TransactionsFor(ctx context.Context, employeeID string, variantID *string, year *int) ([]*domain.LedgerTransaction, error)
}

// BalanceHandler handles balance and ledger read endpoints.
type BalanceHandler struct {
	ledger BalanceService
	now    func() time.Time
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(ledger BalanceService) *BalanceHandler {
	return &BalanceHandler{ledger: ledger, now: time.Now}
}

// Get returns one balance account.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if !h.allowed(w, actor, employeeID) {
		return
	}

	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err.Error())
		return
	}

	account, err := h.ledger.BalanceFor(r.Context(), domain.BalanceKey{
		EmployeeID:     employeeID,
		LeaveVariantID: chi.URLParam(r, "variantID"),
		Year:           year,
	})
	if err != nil {
		writeDomainError(w, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(account))
}

// ListByEmployee returns every balance of an employee for ?year=, defaulting
// to the current year.
func (h *BalanceHandler) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if !h.allowed(w, actor, employeeID) {
		return
	}

	year := h.now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		var err error
		if year, err = parseYear(raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid year", err.Error())
			return
		}
	}

	accounts, err := h.ledger.BalancesFor(r.Context(), employeeID, year)
	if err != nil {
		writeDomainError(w, "failed to list balances", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromDomain(accounts))
}

// Transactions returns the ledger of ?employee_id=, optionally narrowed by
// variant_id and year.
func (h *BalanceHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	employeeID := q.Get("employee_id")
	if employeeID == "" {
		employeeID = actor.ID
	}
	if !h.allowed(w, actor, employeeID) {
		return
	}

	var variantID *string
	if v := q.Get("variant_id"); v != "" {
		variantID = &v
	}

	var year *int
	if v := q.Get("year"); v != "" {
		y, err := parseYear(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year", err.Error())
			return
		}
		year = &y
	}

	txns, err := h.ledger.TransactionsFor(r.Context(), employeeID, variantID, year)
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}

func (h *BalanceHandler) allowed(w http.ResponseWriter, actor domain.Actor, employeeID string) bool {
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "missing employee ID", "")
		return false
	}
	if !canView(actor, employeeID, "") {
		writeError(w, http.StatusForbidden, "insufficient permissions", "")
		return false
	}
	return true
}

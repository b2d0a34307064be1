package handler

import (
	"context"
	"net/http"

	"github.com/iho/leaveledger/internal/adapter/http/dto"
	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
)

// AutoApprovalProcessor runs a sweep of due auto approvals.
type AutoApprovalProcessor interface {
	ProcessDueAutoApprovals(ctx context.Context) (int, error)
}

// Reconciler checks every balance account against its ledger.
type Reconciler interface {
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// AdminHandler handles operator endpoints.
type AdminHandler struct {
	sweeper    AutoApprovalProcessor
	reconciler Reconciler
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(sweeper AutoApprovalProcessor, reconciler Reconciler) *AdminHandler {
	return &AdminHandler{sweeper: sweeper, reconciler: reconciler}
}

// ProcessAutoApprovals runs one auto-approval sweep immediately.
func (h *AdminHandler) ProcessAutoApprovals(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if !requireRole(w, actor, domain.RoleAdmin, domain.RoleHR) {
		return
	}

	n, err := h.sweeper.ProcessDueAutoApprovals(r.Context())
	if err != nil {
		writeDomainError(w, "failed to process auto approvals", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SweepResponse{Advanced: n})
}

// Reconcile returns a ledger reconciliation report.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if !requireRole(w, actor, domain.RoleAdmin, domain.RoleHR) {
		return
	}

	report, err := h.reconciler.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeDomainError(w, "failed to reconcile ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}

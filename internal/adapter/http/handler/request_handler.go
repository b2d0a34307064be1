package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/leaveledger/internal/adapter/http/dto"
	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
)

// RequestService is the request lifecycle the handler drives.
type RequestService interface {
	Submit(ctx context.Context, in usecase.SubmitRequestInput) (*domain.Request, error)
	Get(ctx context.Context, requestID string) (*domain.Request, error)
	List(ctx context.Context, filter usecase.RequestFilter) ([]*domain.Request, error)
	Approve(ctx context.Context, requestID string, actor domain.Actor, comment string) (*domain.Request, error)
	Reject(ctx context.Context, requestID string, actor domain.Actor, reason string) (*domain.Request, error)
	Withdraw(ctx context.Context, requestID string, actor domain.Actor, reason string) (*domain.Request, error)
	Cancel(ctx context.Context, requestID string, actor domain.Actor, reason string) (*domain.Request, error)
	Advance(ctx context.Context, requestID string, actor domain.Actor) (*domain.Request, error)
}

// AuditReader reads the audit trail of a resource.
type AuditReader interface {
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// RequestHandler handles leave, PTO and comp-off request endpoints.
type RequestHandler struct {
	requests RequestService
	audit    AuditReader
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(requests RequestService, audit AuditReader) *RequestHandler {
	return &RequestHandler{requests: requests, audit: audit}
}

// Submit creates a new request.
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req dto.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(actor)
	if err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	created, err := h.requests.Submit(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to submit request", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RequestFromDomain(created))
}

// Get returns a single request.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	req, ok := h.load(w, r, actor)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestFromDomain(req))
}

// List lists requests. Employees only see their own; everyone else is scoped
// to their organization unless they are an admin.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit, offset := page(r)
	filter := usecase.RequestFilter{
		EmployeeID: q.Get("employee_id"),
		OrgID:      q.Get("org_id"),
		Status:     domain.RequestStatus(q.Get("status")),
		Kind:       domain.RequestKind(q.Get("kind")),
		Limit:      limit,
		Offset:     offset,
	}
	if filter.Kind != "" && !filter.Kind.IsValid() {
		writeDomainError(w, "invalid filter", domain.ErrInvalidRequestKind)
		return
	}

	switch {
	case actor.IsSystem() || actor.HasRole(domain.RoleAdmin):
	case seesOthers(actor):
		filter.OrgID = actor.OrgID
	default:
		filter.EmployeeID = actor.ID
	}

	requests, err := h.requests.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list requests", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestsFromDomain(requests))
}

// Approve approves the current step.
func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "failed to approve request", func(ctx context.Context, id string, actor domain.Actor, body dto.TransitionRequest) (*domain.Request, error) {
		return h.requests.Approve(ctx, id, actor, body.Text())
	})
}

// Reject rejects the current step.
func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "failed to reject request", func(ctx context.Context, id string, actor domain.Actor, body dto.TransitionRequest) (*domain.Request, error) {
		return h.requests.Reject(ctx, id, actor, body.Text())
	})
}

// Withdraw withdraws an approved request.
func (h *RequestHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "failed to withdraw request", func(ctx context.Context, id string, actor domain.Actor, body dto.TransitionRequest) (*domain.Request, error) {
		return h.requests.Withdraw(ctx, id, actor, body.Text())
	})
}

// Cancel cancels a pending request.
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "failed to cancel request", func(ctx context.Context, id string, actor domain.Actor, body dto.TransitionRequest) (*domain.Request, error) {
		return h.requests.Cancel(ctx, id, actor, body.Text())
	})
}

// Advance runs automatic and due time-based steps.
func (h *RequestHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "failed to advance request", func(ctx context.Context, id string, actor domain.Actor, _ dto.TransitionRequest) (*domain.Request, error) {
		return h.requests.Advance(ctx, id, actor)
	})
}

// AuditTrail returns the audit log of a request, oldest first.
func (h *RequestHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	req, ok := h.load(w, r, actor)
	if !ok {
		return
	}

	logs, err := h.audit.GetByResourceID(r.Context(), domain.AggregateTypeRequest, req.ID)
	if err != nil {
		writeDomainError(w, "failed to load audit trail", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}

type transitionCall func(ctx context.Context, id string, actor domain.Actor, body dto.TransitionRequest) (*domain.Request, error)

func (h *RequestHandler) transition(w http.ResponseWriter, r *http.Request, failure string, call transitionCall) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing request ID", "")
		return
	}

	var body dto.TransitionRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	req, err := call(r.Context(), id, actor, body)
	if errors.Is(err, domain.ErrInvalidTransition) && req != nil {
		writeJSON(w, http.StatusConflict, dto.ConflictResponse{
			Error:   failure,
			Message: err.Error(),
			Request: dto.RequestFromDomain(req),
		})
		return
	}
	if err != nil {
		writeDomainError(w, failure, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestFromDomain(req))
}

// load fetches the request named in the URL and checks actor may see it.
func (h *RequestHandler) load(w http.ResponseWriter, r *http.Request, actor domain.Actor) (*domain.Request, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing request ID", "")
		return nil, false
	}

	req, err := h.requests.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get request", err)
		return nil, false
	}

	if !canView(actor, req.EmployeeID, req.OrgID) {
		// Hide existence from actors who may not see it.
		writeDomainError(w, "failed to get request", domain.ErrRequestNotFound)
		return nil, false
	}

	return req, true
}

func seesOthers(actor domain.Actor) bool {
	return actor.HasRole(domain.RoleManager) || actor.HasRole(domain.RoleHR)
}

// canView reports whether actor may read data belonging to employeeID.
func canView(actor domain.Actor, employeeID, orgID string) bool {
	switch {
	case actor.IsSystem(), actor.HasRole(domain.RoleAdmin), actor.ID == employeeID:
		return true
	case seesOthers(actor):
		return orgID == "" || actor.OrgID == orgID
	default:
		return false
	}
}

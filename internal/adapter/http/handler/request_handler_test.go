package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/leaveledger/internal/adapter/http/dto"
	"github.com/iho/leaveledger/internal/adapter/http/middleware"
	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
)

type requestServiceStub struct {
	submitFn     func(ctx context.Context, in usecase.SubmitRequestInput) (*domain.Request, error)
	getFn        func(ctx context.Context, id string) (*domain.Request, error)
	listFn       func(ctx context.Context, filter usecase.RequestFilter) ([]*domain.Request, error)
	transitionFn func(action, id string, actor domain.Actor, text string) (*domain.Request, error)
}

func (s *requestServiceStub) Submit(ctx context.Context, in usecase.SubmitRequestInput) (*domain.Request, error) {
	return s.submitFn(ctx, in)
}

func (s *requestServiceStub) Get(ctx context.Context, id string) (*domain.Request, error) {
	return s.getFn(ctx, id)
}

func (s *requestServiceStub) List(ctx context.Context, filter usecase.RequestFilter) ([]*domain.Request, error) {
	return s.listFn(ctx, filter)
}

func (s *requestServiceStub) Approve(_ context.Context, id string, actor domain.Actor, comment string) (*domain.Request, error) {
	return s.transitionFn("approve", id, actor, comment)
}

func (s *requestServiceStub) Reject(_ context.Context, id string, actor domain.Actor, reason string) (*domain.Request, error) {
	return s.transitionFn("reject", id, actor, reason)
}

func (s *requestServiceStub) Withdraw(_ context.Context, id string, actor domain.Actor, reason string) (*domain.Request, error) {
	return s.transitionFn("withdraw", id, actor, reason)
}

func (s *requestServiceStub) Cancel(_ context.Context, id string, actor domain.Actor, reason string) (*domain.Request, error) {
	return s.transitionFn("cancel", id, actor, reason)
}

func (s *requestServiceStub) Advance(_ context.Context, id string, actor domain.Actor) (*domain.Request, error) {
	return s.transitionFn("advance", id, actor, "")
}

type auditReaderStub struct {
	logs []*domain.AuditLog
}

func (s *auditReaderStub) GetByResourceID(_ context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	var out []*domain.AuditLog
	for _, l := range s.logs {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			out = append(out, l)
		}
	}
	return out, nil
}

// withActor attaches actor and chi URL params to req.
func withActor(req *http.Request, actor domain.Actor, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(middleware.WithActor(ctx, actor))
}

func employeeActor(id string) domain.Actor {
	return domain.Actor{ID: id, OrgID: "org-1", Roles: []string{domain.RoleEmployee}}
}

func sampleRequest() *domain.Request {
	return &domain.Request{
		ID:             "req-1",
		Kind:           domain.RequestKindLeave,
		EmployeeID:     "emp-1",
		OrgID:          "org-1",
		LeaveTypeID:    "annual",
		StartDate:      time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC),
		WorkingDays:    domain.WholeDays(3),
		Status:         domain.RequestStatusPending,
		WorkflowStatus: domain.WorkflowStatusInProgress,
	}
}

func TestRequestHandler_Submit_Success(t *testing.T) {
	var captured usecase.SubmitRequestInput
	h := NewRequestHandler(&requestServiceStub{
		submitFn: func(_ context.Context, in usecase.SubmitRequestInput) (*domain.Request, error) {
			captured = in
			return sampleRequest(), nil
		},
	}, &auditReaderStub{})

	body, _ := json.Marshal(dto.SubmitRequest{
		Kind:        "leave",
		LeaveTypeID: "annual",
		StartDate:   "2025-03-03",
		EndDate:     "2025-03-05",
		Reason:      "trip",
	})
	req := withActor(httptest.NewRequest(http.MethodPost, "/requests", bytes.NewReader(body)), employeeActor("emp-1"), nil)
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.EmployeeID != "emp-1" || captured.OrgID != "org-1" || captured.Actor.ID != "emp-1" {
		t.Fatalf("expected actor defaults in input, got %+v", captured)
	}

	var resp dto.RequestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "req-1" || resp.WorkingDays.String() != "3" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRequestHandler_Submit_InvalidBody(t *testing.T) {
	h := NewRequestHandler(&requestServiceStub{
		submitFn: func(context.Context, usecase.SubmitRequestInput) (*domain.Request, error) {
			t.Fatal("Submit should not be called")
			return nil, nil
		},
	}, &auditReaderStub{})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: "{bad json"},
		{name: "unknown field", body: `{"kind":"leave","colour":"blue"}`},
		{name: "bad date", body: `{"kind":"leave","start_date":"03/03/2025"}`},
		{name: "quarter day", body: `{"kind":"pto","days":"0.25"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withActor(httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString(tt.body)), employeeActor("emp-1"), nil)
			rec := httptest.NewRecorder()

			h.Submit(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestRequestHandler_Submit_MapsDomainErrors(t *testing.T) {
	h := NewRequestHandler(&requestServiceStub{
		submitFn: func(context.Context, usecase.SubmitRequestInput) (*domain.Request, error) {
			return nil, domain.ErrInsufficientBalance
		},
	}, &auditReaderStub{})

	req := withActor(httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString(`{"kind":"pto","leave_type_id":"annual","days":"2"}`)), employeeActor("emp-1"), nil)
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestRequestHandler_Submit_RequiresActor(t *testing.T) {
	h := NewRequestHandler(&requestServiceStub{}, &auditReaderStub{})

	rec := httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/requests", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequestHandler_Get_HidesOtherEmployeesRequests(t *testing.T) {
	h := NewRequestHandler(&requestServiceStub{
		getFn: func(context.Context, string) (*domain.Request, error) { return sampleRequest(), nil },
	}, &auditReaderStub{})

	tests := []struct {
		name   string
		actor  domain.Actor
		status int
	}{
		{name: "owner", actor: employeeActor("emp-1"), status: http.StatusOK},
		{name: "colleague", actor: employeeActor("emp-2"), status: http.StatusNotFound},
		{name: "manager in org", actor: domain.Actor{ID: "mgr-1", OrgID: "org-1", Roles: []string{domain.RoleManager}}, status: http.StatusOK},
		{name: "manager elsewhere", actor: domain.Actor{ID: "mgr-9", OrgID: "org-9", Roles: []string{domain.RoleManager}}, status: http.StatusNotFound},
		{name: "admin", actor: domain.Actor{ID: "root", Roles: []string{domain.RoleAdmin}}, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withActor(httptest.NewRequest(http.MethodGet, "/requests/req-1", nil), tt.actor, map[string]string{"id": "req-1"})
			rec := httptest.NewRecorder()

			h.Get(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestRequestHandler_List_ScopesFilter(t *testing.T) {
	var captured usecase.RequestFilter
	h := NewRequestHandler(&requestServiceStub{
		listFn: func(_ context.Context, filter usecase.RequestFilter) ([]*domain.Request, error) {
			captured = filter
			return []*domain.Request{sampleRequest()}, nil
		},
	}, &auditReaderStub{})

	req := withActor(httptest.NewRequest(http.MethodGet, "/requests?employee_id=emp-2&status=pending&limit=10", nil), employeeActor("emp-1"), nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.EmployeeID != "emp-1" {
		t.Fatalf("expected employee to be scoped to self, got %q", captured.EmployeeID)
	}
	if captured.Status != domain.RequestStatusPending || captured.Limit != 10 {
		t.Fatalf("unexpected filter: %+v", captured)
	}

	hr := domain.Actor{ID: "hr-1", OrgID: "org-1", Roles: []string{domain.RoleHR}}
	req = withActor(httptest.NewRequest(http.MethodGet, "/requests?employee_id=emp-2&org_id=org-9", nil), hr, nil)
	h.List(httptest.NewRecorder(), req)
	if captured.EmployeeID != "emp-2" || captured.OrgID != "org-1" {
		t.Fatalf("expected hr to be scoped to own org, got %+v", captured)
	}
}

func TestRequestHandler_List_RejectsUnknownKind(t *testing.T) {
	h := NewRequestHandler(&requestServiceStub{}, &auditReaderStub{})

	req := withActor(httptest.NewRequest(http.MethodGet, "/requests?kind=sabbatical", nil), employeeActor("emp-1"), nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRequestHandler_Transitions(t *testing.T) {
	manager := domain.Actor{ID: "mgr-1", OrgID: "org-1", Roles: []string{domain.RoleManager}}

	tests := []struct {
		name   string
		call   func(h *RequestHandler) http.HandlerFunc
		action string
		body   string
		text   string
	}{
		{name: "approve", call: func(h *RequestHandler) http.HandlerFunc { return h.Approve }, action: "approve", body: `{"comment":"ok"}`, text: "ok"},
		{name: "reject", call: func(h *RequestHandler) http.HandlerFunc { return h.Reject }, action: "reject", body: `{"reason":"busy"}`, text: "busy"},
		{name: "withdraw", call: func(h *RequestHandler) http.HandlerFunc { return h.Withdraw }, action: "withdraw", body: `{"reason":"plans changed"}`, text: "plans changed"},
		{name: "cancel", call: func(h *RequestHandler) http.HandlerFunc { return h.Cancel }, action: "cancel", body: ``, text: ""},
		{name: "advance", call: func(h *RequestHandler) http.HandlerFunc { return h.Advance }, action: "advance", body: ``, text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAction, gotText, gotID string
			h := NewRequestHandler(&requestServiceStub{
				transitionFn: func(action, id string, actor domain.Actor, text string) (*domain.Request, error) {
					gotAction, gotID, gotText = action, id, text
					if actor.ID != manager.ID {
						t.Errorf("expected actor %s, got %s", manager.ID, actor.ID)
					}
					return sampleRequest(), nil
				},
			}, &auditReaderStub{})

			req := withActor(httptest.NewRequest(http.MethodPost, "/requests/req-1/"+tt.action, bytes.NewBufferString(tt.body)), manager, map[string]string{"id": "req-1"})
			rec := httptest.NewRecorder()

			tt.call(h)(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if gotAction != tt.action || gotID != "req-1" || gotText != tt.text {
				t.Fatalf("unexpected call: action=%s id=%s text=%q", gotAction, gotID, gotText)
			}
		})
	}
}

func TestRequestHandler_TransitionConflictReturnsCurrentState(t *testing.T) {
	current := sampleRequest()
	current.Status = domain.RequestStatusApproved
	current.WorkflowStatus = domain.WorkflowStatusCompleted

	h := NewRequestHandler(&requestServiceStub{
		transitionFn: func(string, string, domain.Actor, string) (*domain.Request, error) {
			return current, domain.ErrInvalidTransition
		},
	}, &auditReaderStub{})

	req := withActor(httptest.NewRequest(http.MethodPost, "/requests/req-1/approve", nil), employeeActor("mgr-1"), map[string]string{"id": "req-1"})
	rec := httptest.NewRecorder()
	h.Approve(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var resp dto.ConflictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Request == nil || resp.Request.Status != "approved" {
		t.Fatalf("expected current request in conflict body, got %+v", resp)
	}
}

func TestRequestHandler_TransitionForbidden(t *testing.T) {
	h := NewRequestHandler(&requestServiceStub{
		transitionFn: func(string, string, domain.Actor, string) (*domain.Request, error) {
			return nil, domain.ErrNotAuthorizedApprover
		},
	}, &auditReaderStub{})

	req := withActor(httptest.NewRequest(http.MethodPost, "/requests/req-1/approve", nil), employeeActor("emp-2"), map[string]string{"id": "req-1"})
	rec := httptest.NewRecorder()
	h.Approve(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequestHandler_AuditTrail(t *testing.T) {
	audit := &auditReaderStub{logs: []*domain.AuditLog{
		{ID: "a-1", ResourceType: domain.AggregateTypeRequest, ResourceID: "req-1", Action: string(domain.AuditActionRequestSubmit), UserID: "emp-1"},
		{ID: "a-2", ResourceType: domain.AggregateTypeRequest, ResourceID: "req-2", Action: string(domain.AuditActionRequestSubmit), UserID: "emp-1"},
	}}
	h := NewRequestHandler(&requestServiceStub{
		getFn: func(context.Context, string) (*domain.Request, error) { return sampleRequest(), nil },
	}, audit)

	req := withActor(httptest.NewRequest(http.MethodGet, "/requests/req-1/audit", nil), employeeActor("emp-1"), map[string]string{"id": "req-1"})
	rec := httptest.NewRecorder()
	h.AuditTrail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []dto.AuditLogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != "a-1" {
		t.Fatalf("unexpected audit trail: %+v", resp)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/leaveledger/internal/adapter/http/dto"
	"github.com/iho/leaveledger/internal/domain"
)

type balanceServiceStub struct {
	accounts map[domain.BalanceKey]*domain.BalanceAccount
	txns     []*domain.LedgerTransaction

	gotVariant *string
	gotYear    *int
}

func (s *balanceServiceStub) BalanceFor(_ context.Context, key domain.BalanceKey) (*domain.BalanceAccount, error) {
	account, ok := s.accounts[key]
	if !ok {
		return nil, domain.ErrBalanceNotFound
	}
	return account, nil
}

func (s *balanceServiceStub) BalancesFor(_ context.Context, employeeID string, year int) ([]*domain.BalanceAccount, error) {
	var out []*domain.BalanceAccount
	for key, account := range s.accounts {
		if key.EmployeeID == employeeID && key.Year == year {
			out = append(out, account)
		}
	}
	return out, nil
}

func (s *balanceServiceStub) TransactionsFor(_ context.Context, employeeID string, variantID *string, year *int) ([]*domain.LedgerTransaction, error) {
	s.gotVariant, s.gotYear = variantID, year
	var out []*domain.LedgerTransaction
	for _, txn := range s.txns {
		if txn.EmployeeID == employeeID {
			out = append(out, txn)
		}
	}
	return out, nil
}

func newBalanceStub() *balanceServiceStub {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	key := domain.BalanceKey{EmployeeID: "emp-1", LeaveVariantID: "var-annual", Year: 2025}
	account := domain.NewBalanceAccount(key, now)
	account.TotalEntitlement = domain.WholeDays(24)
	account.UsedBalance = domain.HalfDays(3)
	account.CurrentBalance = account.TotalEntitlement - account.UsedBalance

	return &balanceServiceStub{
		accounts: map[domain.BalanceKey]*domain.BalanceAccount{key: account},
		txns: []*domain.LedgerTransaction{
			{ID: "txn-1", EmployeeID: "emp-1", LeaveVariantID: "var-annual", Year: 2025, Type: domain.TransactionTypeGrant, Amount: domain.WholeDays(24)},
		},
	}
}

func TestBalanceHandler_Get(t *testing.T) {
	h := NewBalanceHandler(newBalanceStub())

	params := map[string]string{"employeeID": "emp-1", "variantID": "var-annual", "year": "2025"}
	req := withActor(httptest.NewRequest(http.MethodGet, "/balances/emp-1/var-annual/2025", nil), employeeActor("emp-1"), params)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.CurrentBalance.String() != "22.5" || resp.UsedBalance.String() != "1.5" {
		t.Fatalf("unexpected balance: %+v", resp)
	}
}

func TestBalanceHandler_GetErrors(t *testing.T) {
	h := NewBalanceHandler(newBalanceStub())

	tests := []struct {
		name   string
		actor  domain.Actor
		params map[string]string
		status int
	}{
		{
			name:   "unknown account",
			actor:  employeeActor("emp-1"),
			params: map[string]string{"employeeID": "emp-1", "variantID": "var-sick", "year": "2025"},
			status: http.StatusNotFound,
		},
		{
			name:   "bad year",
			actor:  employeeActor("emp-1"),
			params: map[string]string{"employeeID": "emp-1", "variantID": "var-annual", "year": "last"},
			status: http.StatusBadRequest,
		},
		{
			name:   "colleague",
			actor:  employeeActor("emp-2"),
			params: map[string]string{"employeeID": "emp-1", "variantID": "var-annual", "year": "2025"},
			status: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withActor(httptest.NewRequest(http.MethodGet, "/balances", nil), tt.actor, tt.params)
			rec := httptest.NewRecorder()
			h.Get(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestBalanceHandler_ListByEmployeeDefaultsToCurrentYear(t *testing.T) {
	h := NewBalanceHandler(newBalanceStub())
	h.now = func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }

	hr := domain.Actor{ID: "hr-1", OrgID: "org-1", Roles: []string{domain.RoleHR}}
	req := withActor(httptest.NewRequest(http.MethodGet, "/balances/emp-1", nil), hr, map[string]string{"employeeID": "emp-1"})
	rec := httptest.NewRecorder()
	h.ListByEmployee(rec, req)

	var resp []dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Year != 2025 {
		t.Fatalf("unexpected balances: %+v", resp)
	}

	req = withActor(httptest.NewRequest(http.MethodGet, "/balances/emp-1?year=2024", nil), hr, map[string]string{"employeeID": "emp-1"})
	rec = httptest.NewRecorder()
	h.ListByEmployee(rec, req)
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected no balances for 2024, got %s", body)
	}
}

func TestBalanceHandler_Transactions(t *testing.T) {
	stub := newBalanceStub()
	h := NewBalanceHandler(stub)

	req := withActor(httptest.NewRequest(http.MethodGet, "/transactions?variant_id=var-annual&year=2025", nil), employeeActor("emp-1"), nil)
	rec := httptest.NewRecorder()
	h.Transactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.gotVariant == nil || *stub.gotVariant != "var-annual" || stub.gotYear == nil || *stub.gotYear != 2025 {
		t.Fatalf("expected filters to be passed through, got variant=%v year=%v", stub.gotVariant, stub.gotYear)
	}

	var resp []dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != "txn-1" {
		t.Fatalf("unexpected transactions: %+v", resp)
	}

	req = withActor(httptest.NewRequest(http.MethodGet, "/transactions?year=soon", nil), employeeActor("emp-1"), nil)
	rec = httptest.NewRecorder()
	h.Transactions(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad year, got %d", rec.Code)
	}
}

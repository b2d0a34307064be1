package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iho/leaveledger/internal/infrastructure/auth"
)

// runCLI executes the root command against baseURL and returns its output.
func runCLI(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--url", baseURL}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}

func TestReconcileCmd(t *testing.T) {
	consistent := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ledger/reconcile" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Actor-Roles") != "admin" {
			t.Errorf("expected admin role header, got %q", r.Header.Get("X-Actor-Roles"))
		}
		if consistent {
			w.Write([]byte(`{"total_accounts":2,"reconciled_accounts":2,"ledger_consistent":true,"discrepancies":[]}`))
			return
		}
		w.Write([]byte(`{"total_accounts":2,"reconciled_accounts":1,"ledger_consistent":false,"discrepancies":[{"employee_id":"emp-2"}]}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, srv.URL, "reconcile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Ledger consistent") {
		t.Fatalf("unexpected output: %s", out)
	}

	consistent = false
	out, err = runCLI(t, srv.URL, "reconcile")
	if err == nil || !strings.Contains(err.Error(), "1 discrepancies") {
		t.Fatalf("expected inconsistency error, got %v", err)
	}
	if !strings.Contains(out, "emp-2") {
		t.Fatalf("expected discrepancy in output: %s", out)
	}
}

func TestSweepCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Write([]byte(`{"advanced":4}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, srv.URL, "sweep")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Advanced 4 request(s)\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRequestTransitionCmd(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"id":"req-1","status":"rejected"}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, srv.URL, "--token", "tok", "request", "reject", "req-1", "--reason", "team offsite")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/v1/requests/req-1/reject" || gotBody["reason"] != "team offsite" {
		t.Fatalf("unexpected call: %s %v", gotPath, gotBody)
	}
	if out != "Request req-1 is rejected\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRequestCmdReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"failed to get request","message":"request not found"}`))
	}))
	defer srv.Close()

	_, err := runCLI(t, srv.URL, "request", "get", "missing")
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestBalanceCmdPassesYear(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{"leave_variant_id":"var-annual","current_balance":"21"}]`))
	}))
	defer srv.Close()

	out, err := runCLI(t, srv.URL, "balance", "emp-1", "--year", "2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "year=2025" {
		t.Fatalf("expected year query, got %q", gotQuery)
	}
	if !strings.Contains(out, `"current_balance": "21"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestTokenCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--secret", "s3cret", "--actor", "mgr-1", "--org", "org-1", "--roles", "manager,employee"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := auth.NewJWTManager("s3cret", time.Hour).Verify(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("token did not verify: %v", err)
	}
	actor := claims.Actor()
	if actor.ID != "mgr-1" || actor.OrgID != "org-1" || len(actor.Roles) != 2 {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestTokenCmdRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"token", "--secret", "", "--actor", "mgr-1"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error without secret")
	}
}

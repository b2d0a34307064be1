package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 5 * time.Second

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]PingFunc
}

// NewHealthHandler drops nil checks, so the in-memory deployment reports
// ready without Postgres or Redis.
func NewHealthHandler(checks map[string]PingFunc) *HealthHandler {
	active := make(map[string]PingFunc, len(checks))
	for name, check := range checks {
		if check != nil {
			active[name] = check
		}
	}
	return &HealthHandler{checks: active}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness pings every dependency concurrently and answers 503 with the
// per-dependency results if any of them fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		healthy = true
		report  = make(map[string]string, len(h.checks)+1)
	)

	var g errgroup.Group
	for name, check := range h.checks {
		g.Go(func() error {
			result := "ok"
			if err := check(ctx); err != nil {
				result = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			report[name] = result
			healthy = healthy && result == "ok"
			return nil
		})
	}
	_ = g.Wait()

	if !healthy {
		report["status"] = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, report)
		return
	}
	report["status"] = "ready"
	writeJSON(w, http.StatusOK, report)
}

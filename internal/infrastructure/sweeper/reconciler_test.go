package sweeper

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/leaveledger/internal/domain"
)

type fakeChecker struct {
	calls atomic.Int32
	err   error
}

func (c *fakeChecker) CheckLedgerConsistency(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestReconcilerCheck(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		consistent bool
		logged     string
	}{
		{name: "consistent", consistent: true},
		{name: "mismatch", err: errors.Join(domain.ErrLedgerInconsistency, errors.New("emp-1/var-1/2025")), logged: "ledger inconsistency detected"},
		{name: "store failure", err: errors.New("db down"), logged: "ledger reconciliation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewReconciler(&fakeChecker{err: tt.err}, time.Minute, zerolog.New(&buf))

			assert.Equal(t, tt.consistent, r.check(context.Background()))
			if tt.logged != "" {
				assert.True(t, strings.Contains(buf.String(), tt.logged), buf.String())
				assert.Contains(t, buf.String(), `"level":"error"`)
			}
		})
	}
}

func TestReconcilerRunsUntilCancelled(t *testing.T) {
	c := &fakeChecker{}
	r := NewReconciler(c, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool { return c.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop after cancel")
	}
}

func TestReconcilerDisabled(t *testing.T) {
	c := &fakeChecker{}
	r := NewReconciler(c, 0, zerolog.Nop())

	assert.False(t, r.Enabled())
	require.NoError(t, r.Start(context.Background()))
	assert.Zero(t, c.calls.Load())
}

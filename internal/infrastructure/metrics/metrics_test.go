package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.LedgerTransactions.WithLabelValues("grant").Inc()
	m.LedgerTransactions.WithLabelValues("grant").Inc()
	m.RequestTransitions.WithLabelValues("approve", "approved").Inc()
	m.AuditLogsCreated.WithLabelValues("leave_request", "submit").Inc()
	m.LedgerInconsistencies.Set(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LedgerTransactions.WithLabelValues("grant")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LedgerInconsistencies))
	assert.Equal(t, 1, testutil.CollectAndCount(m.AuditLogsCreated, "leaveledger_audit_logs_created_total"))

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "leaveledger_ledger_transactions_total")
	assert.Contains(t, names, "leaveledger_request_transitions_total")
}

func TestNewWithRegistryTwicePanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewWithRegistry(registry)

	assert.Panics(t, func() { NewWithRegistry(registry) })
}

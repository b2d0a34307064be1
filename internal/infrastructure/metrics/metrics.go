package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	LedgerTransactions   *prometheus.CounterVec
	LedgerAppendDuration prometheus.Histogram
	InsufficientBalance  prometheus.Counter

	// Request metrics
	RequestsSubmitted  *prometheus.CounterVec
	RequestTransitions *prometheus.CounterVec
	InvalidTransitions prometheus.Counter
	AutoApprovals      prometheus.Counter
	RequestDuration    *prometheus.HistogramVec

	// Reconciliation metrics
	ReconciliationRuns    prometheus.Counter
	LedgerInconsistencies prometheus.Gauge

	// Employee directory metrics
	DirectoryLookups *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New registers the metrics with the default Prometheus registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics with reg. Registering twice with the
// same registry panics.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LedgerTransactions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_ledger_transactions_total",
				Help: "Total number of ledger transactions appended",
			},
			[]string{"type"},
		),
		LedgerAppendDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaveledger_ledger_append_duration_seconds",
			Help:    "Duration of ledger appends including the balance update",
			Buckets: prometheus.DefBuckets,
		}),
		InsufficientBalance: f.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_insufficient_balance_total",
			Help: "Total number of reservations rejected for insufficient balance",
		}),

		RequestsSubmitted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_requests_submitted_total",
				Help: "Total number of requests submitted",
			},
			[]string{"kind"},
		),
		RequestTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_request_transitions_total",
				Help: "Total number of request transitions",
			},
			[]string{"action", "status"},
		),
		InvalidTransitions: f.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_invalid_transitions_total",
			Help: "Total number of transitions ignored because the request was not in an approvable state",
		}),
		AutoApprovals: f.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_auto_approvals_total",
			Help: "Total number of steps approved by the time-based sweep",
		}),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leaveledger_request_operation_duration_seconds",
				Help:    "Duration of request lifecycle operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		ReconciliationRuns: f.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_reconciliation_runs_total",
			Help: "Total number of reconciliation runs",
		}),
		LedgerInconsistencies: f.NewGauge(prometheus.GaugeOpts{
			Name: "leaveledger_ledger_inconsistencies",
			Help: "Balance accounts disagreeing with their ledger in the last reconciliation",
		}),

		DirectoryLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_directory_lookups_total",
				Help: "Total number of employee directory lookups",
			},
			[]string{"result"},
		),

		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_events_published_total",
				Help: "Total number of outbox events published",
			},
			[]string{"event_type", "status"},
		),

		AuditLogsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_audit_logs_created_total",
				Help: "Total number of audit entries written with a request or balance change",
			},
			[]string{"resource_type", "action"},
		),
	}
}

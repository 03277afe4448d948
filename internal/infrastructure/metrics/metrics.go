package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds the engine's Prometheus metrics.
type Metrics struct {
	// Entry metrics
	EntryMutations       *prometheus.CounterVec
	ConcurrencyConflicts *prometheus.CounterVec

	// Reconciliation metrics
	Reconciliations *prometheus.CounterVec
	BalanceDrifts   prometheus.Counter
	AccountDrift    *prometheus.GaugeVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
}

// New creates the metrics and registers them with reg.
// A nil reg registers with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		EntryMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_entry_mutations_total",
				Help: "Committed entry mutations by operation",
			},
			[]string{"operation"},
		),
		ConcurrencyConflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_concurrency_conflicts_total",
				Help: "Entry mutations that gave up on a concurrency conflict",
			},
			[]string{"operation"},
		),

		Reconciliations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_reconciliations_total",
				Help: "Account reconciliations by outcome",
			},
			[]string{"outcome"},
		),
		BalanceDrifts: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_balance_drifts_total",
			Help: "Reconciliations that found a stored balance differing from its entries",
		}),
		AccountDrift: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ledger_account_drift",
				Help: "Last observed drift (stored minus recomputed) per account",
			},
			[]string{"account_id"},
		),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_outbox_published_total",
			Help: "Outbox events published",
		}),
		OutboxFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_outbox_failures_total",
			Help: "Outbox events that failed to publish",
		}),
	}
}

func (m *Metrics) EntryMutated(operation string) {
	m.EntryMutations.WithLabelValues(operation).Inc()
}

func (m *Metrics) ConcurrencyConflict(operation string) {
	m.ConcurrencyConflicts.WithLabelValues(operation).Inc()
}

func (m *Metrics) BalanceDrift(accountID string, drift decimal.Decimal) {
	m.BalanceDrifts.Inc()
	m.AccountDrift.WithLabelValues(accountID).Set(drift.InexactFloat64())
}

func (m *Metrics) Reconciled(outcome string) {
	m.Reconciliations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) EventPublished() {
	m.OutboxPublished.Inc()
}

func (m *Metrics) EventFailed() {
	m.OutboxFailures.Inc()
}

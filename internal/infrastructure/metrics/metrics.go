package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "creditledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	Transactions        *prometheus.CounterVec
	TransactionDuration *prometheus.HistogramVec
	Statements          *prometheus.CounterVec
	StatementDuration   prometheus.Histogram

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter

	// Idempotency metrics
	IdempotencyReplays prometheus.Counter

	registerer prometheus.Registerer
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Transactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Total credit and debit requests by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		TransactionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transaction_duration_seconds",
				Help:      "Duration of credit and debit requests, lock wait included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		Statements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "statements_total",
				Help:      "Total statement reads by outcome",
			},
			[]string{"outcome"},
		),
		StatementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "statement_duration_seconds",
			Help:      "Duration of statement reads, lock wait included",
			Buckets:   prometheus.DefBuckets,
		}),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Total outbox events published",
		}),
		OutboxErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_errors_total",
			Help:      "Total outbox events that failed to publish",
		}),

		IdempotencyReplays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotency_replays_total",
			Help:      "Total responses served from the idempotency cache",
		}),

		registerer: reg,
	}
}

// ObserveTransaction implements usecase.MetricsRecorder.
func (m *Metrics) ObserveTransaction(kind, outcome string, duration time.Duration) {
	m.Transactions.WithLabelValues(kind, outcome).Inc()
	m.TransactionDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveStatement implements usecase.MetricsRecorder.
func (m *Metrics) ObserveStatement(outcome string, duration time.Duration) {
	m.Statements.WithLabelValues(outcome).Inc()
	m.StatementDuration.Observe(duration.Seconds())
}

// PoolStats is a point-in-time view of the connection pool.
type PoolStats struct {
	Acquired int32
	Idle     int32
	Max      int32
}

// RegisterPoolStats exposes connection pool gauges read from stats on every scrape.
func (m *Metrics) RegisterPoolStats(stats func() PoolStats) {
	factory := promauto.With(m.registerer)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "db_connections_acquired",
		Help:      "Connections currently in use",
	}, func() float64 { return float64(stats().Acquired) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "db_connections_idle",
		Help:      "Idle connections",
	}, func() float64 { return float64(stats().Idle) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "db_connections_max",
		Help:      "Maximum pool size",
	}, func() float64 { return float64(stats().Max) })
}

package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics exposes the domain counters for sync, ingestion and
// reconciliation.
type PrometheusMetrics struct {
	transactionsIngested *prometheus.CounterVec
	syncPagesTotal       *prometheus.CounterVec
	syncDuration         prometheus.Histogram
	accountSyncTotal     *prometheus.CounterVec
	aggregatorErrors     *prometheus.CounterVec
	receiptsIngested     *prometheus.CounterVec
	receiptDuration      prometheus.Histogram
	budgetReconciles     prometheus.Counter
	documentsIndexed     *prometheus.CounterVec
	circuitBreakerState  *prometheus.GaugeVec
	authEventsTotal      *prometheus.CounterVec
}

func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		transactionsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_ingested_total",
				Help: "Total number of transactions ingested by source and operation",
			},
			[]string{"source", "operation"},
		),
		syncPagesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sync_pages_total",
				Help: "Total number of transaction sync pages processed",
			},
			[]string{"status"},
		),
		syncDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sync_duration_milliseconds",
				Help:    "Full account transaction sync duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(10, 2, 12),
			},
		),
		accountSyncTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_sync_total",
				Help: "Total number of bank accounts created or updated by account sync",
			},
			[]string{"operation"},
		),
		aggregatorErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aggregator_errors_total",
				Help: "Total number of aggregator API failures by endpoint",
			},
			[]string{"endpoint"},
		),
		receiptsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "receipts_ingested_total",
				Help: "Total number of receipt ingestion attempts",
			},
			[]string{"status"},
		),
		receiptDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "receipt_extraction_duration_milliseconds",
				Help:    "Receipt extraction duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(10, 2, 12),
			},
		),
		budgetReconciles: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "budget_reconciliations_total",
				Help: "Total number of budget reconciliation runs",
			},
		),
		documentsIndexed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_indexed_total",
				Help: "Total number of index documents written by operation",
			},
			[]string{"operation"},
		),
		circuitBreakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
		authEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
	}
}

func (m *PrometheusMetrics) RecordIngestion(source, operation string, count int) {
	m.transactionsIngested.WithLabelValues(source, operation).Add(float64(count))
}

func (m *PrometheusMetrics) RecordSyncPage(status string) {
	m.syncPagesTotal.WithLabelValues(status).Inc()
}

func (m *PrometheusMetrics) RecordSyncDuration(duration time.Duration) {
	m.syncDuration.Observe(float64(duration.Milliseconds()))
}

func (m *PrometheusMetrics) RecordAccountSync(created, updated int) {
	m.accountSyncTotal.WithLabelValues("created").Add(float64(created))
	m.accountSyncTotal.WithLabelValues("updated").Add(float64(updated))
}

func (m *PrometheusMetrics) RecordAggregatorError(endpoint string) {
	m.aggregatorErrors.WithLabelValues(endpoint).Inc()
}

func (m *PrometheusMetrics) RecordReceipt(status string, duration time.Duration) {
	m.receiptsIngested.WithLabelValues(status).Inc()
	m.receiptDuration.Observe(float64(duration.Milliseconds()))
}

func (m *PrometheusMetrics) RecordBudgetReconcile() {
	m.budgetReconciles.Inc()
}

func (m *PrometheusMetrics) RecordDocumentIndexed(operation string) {
	m.documentsIndexed.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) SetCircuitBreakerState(service string, state CircuitBreakerState) {
	m.circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

func (m *PrometheusMetrics) RecordAuthEvent(eventType string) {
	m.authEventsTotal.WithLabelValues(eventType).Inc()
}

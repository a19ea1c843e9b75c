package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the report store and the audit requestor.
type Metrics struct {
	StoreOperations *prometheus.CounterVec // labels: op={list,upsert,save,delete}, outcome={success,error}
	StoredReports   prometheus.Gauge

	AuditRequests *prometheus.CounterVec // labels: outcome={success,empty,failed,unavailable,shared}
	AuditDuration prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		StoreOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petrodata",
			Name:      "store_operations_total",
			Help:      "Report store operations by kind and outcome.",
		}, []string{"op", "outcome"}),
		StoredReports: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "petrodata",
			Name:      "stored_reports",
			Help:      "Number of reports held by the store after the last list or write.",
		}),
		AuditRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petrodata",
			Name:      "audit_requests_total",
			Help:      "AI audit requests by outcome.",
		}, []string{"outcome"}),
		AuditDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "petrodata",
			Name:      "audit_duration_seconds",
			Help:      "Duration of calls to the text-generation service.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
	}
}

// NewMetrics creates all collectors and registers them with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.StoreOperations,
		m.StoredReports,
		m.AuditRequests,
		m.AuditDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

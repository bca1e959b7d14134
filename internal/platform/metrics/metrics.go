package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Methods are
// nil-safe so tests can pass a nil receiver without wiring a registry.
type Metrics struct {
	SalesRegistered prometheus.Counter
	PointsRedeemed  prometheus.Counter
	MutationErrors  *prometheus.CounterVec
	RequestLatency  *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SalesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pontos_sales_registered_total",
			Help: "Total number of sales registered",
		}),
		PointsRedeemed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pontos_redemptions_total",
			Help: "Total number of point redemptions applied",
		}),
		MutationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pontos_mutation_errors_total",
			Help: "Balance mutation failures by operation and error code",
		}, []string{"operation", "code"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pontos_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "status"}),
	}
}

// IncrementSales records a successfully registered sale.
func (m *Metrics) IncrementSales() {
	if m != nil {
		m.SalesRegistered.Inc()
	}
}

// IncrementRedemptions records a successfully applied redemption.
func (m *Metrics) IncrementRedemptions() {
	if m != nil {
		m.PointsRedeemed.Inc()
	}
}

// IncrementMutationError records a failed balance mutation.
func (m *Metrics) IncrementMutationError(operation, code string) {
	if m != nil {
		m.MutationErrors.WithLabelValues(operation, code).Inc()
	}
}

// ObserveRequest records an HTTP request duration.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route, status).Observe(d.Seconds())
	}
}

// Package observability exposes Prometheus primitives for the HTTP
// surface and a few domain counters.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	apiRequests    *prometheus.CounterVec
	apiDuration    *prometheus.HistogramVec
	topups         prometheus.Counter
	receiptUploads *prometheus.CounterVec
	alertsEmitted  *prometheus.CounterVec
}

// NewMetrics registers and returns the Prometheus instruments.
func NewMetrics() *Metrics {
	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdeck_api_requests_total",
		Help: "Counts API requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "opsdeck_api_duration_seconds",
		Help:    "API request latency per method/route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	topups := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "opsdeck_wallet_topups_total",
		Help: "Wallet top-ups recorded.",
	})

	receiptUploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdeck_receipt_uploads_total",
		Help: "Receipt upload outcomes.",
	}, []string{"status"})

	alertsEmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdeck_alerts_emitted_total",
		Help: "Alerts emitted per evaluation by type.",
	}, []string{"type"})

	prometheus.MustRegister(
		apiRequests,
		apiDuration,
		topups,
		receiptUploads,
		alertsEmitted,
	)

	return &Metrics{
		apiRequests:    apiRequests,
		apiDuration:    apiDuration,
		topups:         topups,
		receiptUploads: receiptUploads,
		alertsEmitted:  alertsEmitted,
	}
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordTopup increments the top-up count.
func (m *Metrics) RecordTopup() {
	if m == nil {
		return
	}
	m.topups.Inc()
}

// RecordReceiptUpload records an upload outcome ("ok" or "error").
func (m *Metrics) RecordReceiptUpload(status string) {
	if m == nil {
		return
	}
	m.receiptUploads.WithLabelValues(status).Inc()
}

// RecordAlert counts one emitted alert by type.
func (m *Metrics) RecordAlert(alertType string) {
	if m == nil {
		return
	}
	m.alertsEmitted.WithLabelValues(alertType).Inc()
}

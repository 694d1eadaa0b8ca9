package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	WebhookRequests  *prometheus.CounterVec
	DispatchRequests *prometheus.CounterVec
	ConversionErrors *prometheus.CounterVec
	DispatchLatency  prometheus.Histogram
	TapClients       prometheus.Gauge

	stages *stageWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		WebhookRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_requests_total",
			Help:      "Inbound webhook requests by platform and outcome.",
		}, []string{"platform", "outcome"}),
		DispatchRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_requests_total",
			Help:      "Dispatched requests by platform and outcome.",
		}, []string{"platform", "outcome"}),
		ConversionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversion_errors_total",
			Help:      "Adapter conversion failures by platform and direction.",
		}, []string{"platform", "direction"}),
		DispatchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_latency_ms",
			Help:      "Dispatcher handling latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		TapClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tap_clients",
			Help:      "Connected debug tap websocket clients.",
		}),
		stages: newStageWindow(256),
	}
}

// ObserveStage records one sample of a named processing stage into the
// rolling latency window backing the perf endpoint.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stages.Observe(stage, float64(d.Microseconds())/1000.0)
}

// PerfSnapshot summarizes recent per-stage latencies.
func (m *Metrics) PerfSnapshot() StageSnapshot {
	return m.stages.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

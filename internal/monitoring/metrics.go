package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the host.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Context metrics
	ContextsLive      prometheus.Gauge
	ContextsCreated   prometheus.Counter
	ContextsDestroyed prometheus.Counter

	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram
	SharedItems prometheus.Histogram

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a metrics collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hostd_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		ContextsLive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "hostd_contexts_live",
				Help: "Number of live execution contexts",
			},
		),
		ContextsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hostd_contexts_created_total",
				Help: "Total number of contexts created",
			},
		),
		ContextsDestroyed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hostd_contexts_destroyed_total",
				Help: "Total number of contexts destroyed",
			},
		),

		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostd_runs_total",
				Help: "Total number of run requests",
			},
			[]string{"status"},
		),
		RunDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hostd_run_duration_seconds",
				Help:    "Script run duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
		),
		SharedItems: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hostd_run_shared_items",
				Help:    "Shared namespace size per run request",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "hostd_uptime_seconds",
				Help: "Host uptime in seconds",
			},
		),
	}

	go m.updateUptime()

	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRun records a run request outcome.
func (m *Metrics) RecordRun(status string, duration time.Duration, sharedItems int) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(duration.Seconds())
	m.SharedItems.Observe(float64(sharedItems))
}

// SetContextsLive sets the live context gauge.
func (m *Metrics) SetContextsLive(count int) {
	m.ContextsLive.Set(float64(count))
}

// IncContextsCreated increments the created counter.
func (m *Metrics) IncContextsCreated() {
	m.ContextsCreated.Inc()
}

// IncContextsDestroyed increments the destroyed counter.
func (m *Metrics) IncContextsDestroyed() {
	m.ContextsDestroyed.Inc()
}

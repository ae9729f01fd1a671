package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetricsCollector tracks calls to the WarEra API
type UpstreamMetricsCollector struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	retriesTotal *prometheus.CounterVec
	breakerOpen  prometheus.Gauge
}

// NewUpstreamMetricsCollector creates a new upstream metrics collector
func NewUpstreamMetricsCollector() *UpstreamMetricsCollector {
	return &UpstreamMetricsCollector{
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "calls_total",
				Help:      "WarEra API calls by endpoint and status class",
			},
			[]string{"endpoint", "status"},
		),
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "call_duration_seconds",
				Help:      "WarEra API round trip time",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"endpoint"},
		),
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "retries_total",
				Help:      "Retried WarEra API calls by reason",
			},
			[]string{"endpoint", "reason"},
		),
		breakerOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "circuit_open",
				Help:      "1 while calls to WarEra are being short-circuited",
			},
		),
	}
}

// Register registers the upstream metrics with the Prometheus registry
func (c *UpstreamMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, metric := range []prometheus.Collector{c.callsTotal, c.callDuration, c.retriesTotal, c.breakerOpen} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordCall records one HTTP round trip
func (c *UpstreamMetricsCollector) RecordCall(endpoint string, statusCode int, duration time.Duration) {
	c.callsTotal.WithLabelValues(endpoint, statusClass(statusCode)).Inc()
	c.callDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordRetry records a retried attempt
func (c *UpstreamMetricsCollector) RecordRetry(endpoint string, reason string) {
	c.retriesTotal.WithLabelValues(endpoint, reason).Inc()
}

// RecordBreakerState tracks the client circuit breaker; probing counts as open
func (c *UpstreamMetricsCollector) RecordBreakerState(state string) {
	if state == "closed" {
		c.breakerOpen.Set(0)
		return
	}
	c.breakerOpen.Set(1)
}

// statusClass folds status codes into 2xx/4xx/5xx so labels stay bounded
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "other"
	}
	return fmt.Sprintf("%dxx", code/100)
}

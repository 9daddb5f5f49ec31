package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the gateway's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Requests     *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	Fallbacks    *prometheus.CounterVec
	BreakerState prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizconsole_gateway_requests_total",
				Help: "Outbound backend calls by outcome",
			},
			[]string{"method", "resource", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bizconsole_gateway_request_duration_seconds",
				Help:    "Duration of outbound backend calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resource"},
		),
		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizconsole_gateway_fallback_total",
				Help: "Responses synthesized because the endpoint was missing",
			},
			[]string{"resource"},
		),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bizconsole_gateway_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Duration, m.Fallbacks, m.BreakerState)
	}
	return m
}

func (m *Metrics) observe(method, resource, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, resource, outcome).Inc()
	m.Duration.WithLabelValues(resource).Observe(seconds)
}

func (m *Metrics) fallback(resource string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(resource).Inc()
}

func (m *Metrics) breaker(s BreakerState) {
	if m == nil {
		return
	}
	m.BreakerState.Set(float64(s))
}

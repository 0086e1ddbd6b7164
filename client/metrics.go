package client

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded per completed send.
const (
	outcomeSuccess      = "success"
	outcomeDecode       = "decode_error"
	outcomeTransport    = "transport_error"
	outcomeEmpty        = "empty_response"
	outcomeMalformedURL = "malformed_url"
)

// metrics holds the Prometheus collectors for a Client. A nil *metrics
// records nothing.
type metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "typedhttp",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of completed sends by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "typedhttp",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Time from send to handler invocation",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
			},
			[]string{"method"},
		),
		requestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "typedhttp",
				Subsystem: "client",
				Name:      "requests_in_flight",
				Help:      "Sends whose handler has not run yet",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration, m.requestsInFlight} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	return m, nil
}

func (m *metrics) started() {
	if m == nil {
		return
	}
	m.requestsInFlight.Inc()
}

func (m *metrics) finished(method, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.requestsInFlight.Dec()
	m.requestsTotal.WithLabelValues(method, outcome).Inc()
	m.requestDuration.WithLabelValues(method).Observe(took.Seconds())
}

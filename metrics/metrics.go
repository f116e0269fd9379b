// Package metrics counts outgoing calls and their latency for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Call outcomes used as the "outcome" label.
const (
	OutcomeOK             = "ok"
	OutcomeServiceError   = "service_error"
	OutcomeTransportError = "transport_error"
	OutcomeError          = "error"
)

// Collector is a prometheus.Collector over two vectors:
// <ns>_requests_total{method,outcome} and <ns>_request_duration_seconds{method}.
type Collector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func New(namespace string) *Collector {
	if namespace == "" {
		namespace = "ternary"
	}
	return &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Outgoing calls by method and outcome.",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Outgoing call latency, body read and check included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requests.Describe(ch)
	c.duration.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requests.Collect(ch)
	c.duration.Collect(ch)
}

// Register adds c to reg, or to the default registerer when reg is nil.
func (c *Collector) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return reg.Register(c)
}

func (c *Collector) Observe(method, outcome string, d time.Duration) {
	c.requests.WithLabelValues(method, outcome).Inc()
	c.duration.WithLabelValues(method).Observe(d.Seconds())
}

// Requests exposes the counter vector, mostly for tests.
func (c *Collector) Requests() *prometheus.CounterVec {
	return c.requests
}

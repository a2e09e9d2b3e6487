package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates the lifecycle counters exposed at /metrics.
type Metrics struct {
	registry *prometheus.Registry

	RequestsSubmitted prometheus.Counter
	RequestsApproved  prometheus.Counter
	RequestsRejected  prometheus.Counter
	RequestsCancelled prometheus.Counter
	SalesProcessed    prometheus.Counter
	FeedShortfalls    prometheus.Counter
}

// New builds a Metrics instance backed by its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry:          reg,
		RequestsSubmitted: newCounter(reg, "chick_requests_submitted_total", "Chick requests accepted into Pending state."),
		RequestsApproved:  newCounter(reg, "chick_requests_approved_total", "Chick requests approved with stock reserved."),
		RequestsRejected:  newCounter(reg, "chick_requests_rejected_total", "Chick requests rejected by a manager."),
		RequestsCancelled: newCounter(reg, "chick_requests_cancelled_total", "Chick requests cancelled, including stock credit-backs."),
		SalesProcessed:    newCounter(reg, "sales_processed_total", "Approved requests converted into sales."),
		FeedShortfalls:    newCounter(reg, "feed_deduction_shortfalls_total", "Sales where the feed lot was missing or short."),
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func newCounter(reg *prometheus.Registry, name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	reg.MustRegister(c)
	return c
}

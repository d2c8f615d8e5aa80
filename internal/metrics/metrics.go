package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "estateflow"

// Metrics groups the collectors exported by the sales configuration service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	schedulesGenerated     prometheus.Counter
	scheduleWritesSkipped  prometheus.Counter
	milestonesConsolidated prometheus.Counter
	discountsSkipped       prometheus.Counter
	priceViews             *prometheus.CounterVec
	requests               *prometheus.CounterVec
}

// New creates the collectors and registers them on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		schedulesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_generated_total",
			Help:      "Payment schedules generated and persisted.",
		}),
		scheduleWritesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_writes_skipped_total",
			Help:      "Regenerations skipped because the inputs did not change.",
		}),
		milestonesConsolidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "milestones_consolidated_total",
			Help:      "Elapsed installments folded into a later milestone.",
		}),
		discountsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discounts_skipped_total",
			Help:      "Selected discounts left out of a price derivation.",
		}),
		priceViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_views_total",
			Help:      "Price views served, by cache result.",
		}, []string{"cache"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "API requests, by transport, method and status code.",
		}, []string{"transport", "method", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.schedulesGenerated,
		m.scheduleWritesSkipped,
		m.milestonesConsolidated,
		m.discountsSkipped,
		m.priceViews,
		m.requests,
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ScheduleGenerated records a persisted schedule and how many installments it folded
func (m *Metrics) ScheduleGenerated(folded int) {
	if m == nil {
		return
	}
	m.schedulesGenerated.Inc()
	m.milestonesConsolidated.Add(float64(folded))
}

// ScheduleWriteSkipped records a regeneration whose inputs were unchanged
func (m *Metrics) ScheduleWriteSkipped() {
	if m == nil {
		return
	}
	m.scheduleWritesSkipped.Inc()
}

// DiscountsSkipped records discounts left out of a derivation
func (m *Metrics) DiscountsSkipped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.discountsSkipped.Add(float64(n))
}

// PriceViewServed records a price view, hit telling whether it came from the cache
func (m *Metrics) PriceViewServed(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.priceViews.WithLabelValues(result).Inc()
}

// Request records one API call
func (m *Metrics) Request(transport, method, code string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(transport, method, code).Inc()
}

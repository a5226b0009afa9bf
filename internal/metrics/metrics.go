package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

// Metrics holds the console's collectors on a private registry.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	breakerState    *prometheus.GaugeVec
	httpRequests    *prometheus.CounterVec
	auditEvents     *prometheus.CounterVec
}

// New creates and registers every collector
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "backend_requests_total",
			Help:      "Calls made to the parking backend.",
		}, []string{"resource", "method", "status"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "console",
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of calls to the parking backend.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "method"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "console",
			Name:      "circuit_breaker_state",
			Help:      "0 closed, 1 half-open, 2 open.",
		}, []string{"name"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "http_requests_total",
			Help:      "Requests served by the console.",
		}, []string{"method", "status"}),
		auditEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "audit_events_total",
			Help:      "Audit events by publish result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.backendRequests,
		m.backendDuration,
		m.breakerState,
		m.httpRequests,
		m.auditEvents,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveBackend records one backend call. Status 0 means no response was received.
func (m *Metrics) ObserveBackend(resource, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.backendRequests.WithLabelValues(resource, method, label).Inc()
	m.backendDuration.WithLabelValues(resource, method).Observe(d.Seconds())
}

// SetBreakerState tracks a circuit breaker transition
func (m *Metrics) SetBreakerState(name string, state gobreaker.State) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(float64(state))
}

// ObserveRequest counts a served console request
func (m *Metrics) ObserveRequest(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// AuditPublished counts an audit publish attempt
func (m *Metrics) AuditPublished(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.auditEvents.WithLabelValues(result).Inc()
}

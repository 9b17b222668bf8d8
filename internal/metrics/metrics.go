// Package metrics defines the Prometheus collectors exported by the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mybook"

// Content fetch outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics groups service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	purchases       *prometheus.CounterVec
	pointsCharged   prometheus.Counter
	publishFailures prometheus.Counter
	contentFetch    *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates collectors and registers them with reg (DefaultRegisterer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchases_total",
			Help:      "Completed book purchases by plan.",
		}, []string{"plan"}),
		pointsCharged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_charged_total",
			Help:      "Points charged to non-subscribers.",
		}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Purchase events that could not be published after commit.",
		}),
		contentFetch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "content_fetch_duration_seconds",
			Help:      "Latency of books service read calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.purchases, m.pointsCharged, m.publishFailures, m.contentFetch, m.httpRequests, m.httpDuration)
	return m
}

// PurchaseRecorded counts a committed purchase.
func (m *Metrics) PurchaseRecorded(subscribed bool, point int) {
	if m == nil {
		return
	}
	plan := "regular"
	if subscribed {
		plan = "subscriber"
	}
	m.purchases.WithLabelValues(plan).Inc()
	if point > 0 {
		m.pointsCharged.Add(float64(point))
	}
}

// EventPublishFailed counts an event lost after commit.
func (m *Metrics) EventPublishFailed() {
	if m == nil {
		return
	}
	m.publishFailures.Inc()
}

// ContentFetched observes a books service call.
func (m *Metrics) ContentFetched(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.contentFetch.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

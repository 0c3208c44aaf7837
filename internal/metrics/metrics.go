// Package metrics holds the prometheus collectors shared by the request pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wayfarer"

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
	OutcomeDegraded = "degraded"
	OutcomeSkipped  = "skipped"
)

// Metrics bundles the collectors. A nil *Metrics is valid and records nothing,
// so components can be built without telemetry in tests.
type Metrics struct {
	SearchRequests     *prometheus.CounterVec
	ExtractRequests    *prometheus.CounterVec
	CompletionRequests *prometheus.CounterVec
	CompletionDuration *prometheus.HistogramVec
	SearchResponses    *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SearchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Web search provider calls by outcome.",
		}, []string{"provider", "outcome"}),
		ExtractRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extract_requests_total",
			Help:      "Page content extractions by outcome.",
		}, []string{"engine", "outcome"}),
		CompletionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_requests_total",
			Help:      "LLM completion calls by mode and outcome.",
		}, []string{"mode", "outcome"}),
		CompletionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "LLM completion latency.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 90, 120},
		}, []string{"mode"}),
		SearchResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_responses_total",
			Help:      "Answers of the search endpoint by outcome; degraded means references without a generated summary.",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "code"}),
	}
	if reg != nil {
		reg.MustRegister(m.SearchRequests, m.ExtractRequests, m.CompletionRequests, m.CompletionDuration, m.SearchResponses, m.HTTPRequests)
	}
	return m
}

func (m *Metrics) ObserveSearch(provider, outcome string) {
	if m == nil {
		return
	}
	m.SearchRequests.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ObserveExtract(engine, outcome string) {
	if m == nil {
		return
	}
	m.ExtractRequests.WithLabelValues(engine, outcome).Inc()
}

func (m *Metrics) ObserveCompletion(mode, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.CompletionRequests.WithLabelValues(mode, outcome).Inc()
	m.CompletionDuration.WithLabelValues(mode).Observe(took.Seconds())
}

func (m *Metrics) ObserveSearchResponse(outcome string) {
	if m == nil {
		return
	}
	m.SearchResponses.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveHTTP(route, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, code).Inc()
}

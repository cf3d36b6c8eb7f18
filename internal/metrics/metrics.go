// Package metrics provides Prometheus collectors for the launcher.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "token_launcher"

// Launch outcomes.
const (
	OutcomeSuccess         = "success"
	OutcomeValidation      = "validation"
	OutcomeUpstream        = "upstream"
	OutcomeChainSimulation = "chain_simulation"
	OutcomeChainExecution  = "chain_execution"
	OutcomeShortCircuit    = "short_circuit"
	OutcomeInternal        = "internal"
)

// Launch stages timed by StageDuration.
const (
	StageImage    = "image"
	StageMetadata = "metadata"
	StageChain    = "chain"
	StagePersist  = "persist"
)

// Metrics holds the launcher's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	LaunchesTotal       *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec
	PersistenceFailures prometheus.Counter
	HTTPRequests        *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors with reg. A nil reg uses a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	m := &Metrics{
		LaunchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "launches_total",
			Help:      "Launch attempts by outcome",
		}, []string{"outcome"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each launch stage in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage", "status"}),
		PersistenceFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "persistence_failures_total",
			Help:      "Launches whose chain effect succeeded but whose record was not stored",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Handler returns an HTTP handler exposing the registry m was built with.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordLaunch counts one launch with the given outcome.
func (m *Metrics) RecordLaunch(outcome string) {
	if m == nil {
		return
	}
	m.LaunchesTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records how long a stage took since start.
func (m *Metrics) ObserveStage(stage string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StageDuration.WithLabelValues(stage, status).Observe(time.Since(start).Seconds())
}

// RecordPersistenceFailure counts one launch that was not stored.
func (m *Metrics) RecordPersistenceFailure() {
	if m == nil {
		return
	}
	m.PersistenceFailures.Inc()
}

// RecordHTTP counts one HTTP response.
func (m *Metrics) RecordHTTP(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Package metrics provides Prometheus metrics for focusflow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the tracker.
type Metrics struct {
	TimerCommitsTotal   *prometheus.CounterVec
	TrackedSecondsTotal prometheus.Counter
	ResetBatchesTotal   *prometheus.CounterVec
	ResetFieldsTotal    *prometheus.CounterVec
	TimerActive         prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		TimerCommitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusflow_timer_commits_total",
				Help: "Stop-commit increment writes by target kind and result.",
			},
			[]string{"target", "result"},
		),
		TrackedSecondsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "focusflow_tracked_seconds_total",
				Help: "Seconds of focus time committed by stopped sessions.",
			},
		),
		ResetBatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusflow_reset_batches_total",
				Help: "Periodic reset batch commits by result.",
			},
			[]string{"result"},
		),
		ResetFieldsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusflow_reset_periods_total",
				Help: "Calendar boundaries applied, by period.",
			},
			[]string{"period"},
		),
		TimerActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "focusflow_timer_active",
				Help: "1 while a focus session is running.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.TimerCommitsTotal)
	reg.MustRegister(m.TrackedSecondsTotal)
	reg.MustRegister(m.ResetBatchesTotal)
	reg.MustRegister(m.ResetFieldsTotal)
	reg.MustRegister(m.TimerActive)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordCommit counts one stop-commit write.
func (m *Metrics) RecordCommit(target string, err error) {
	m.TimerCommitsTotal.WithLabelValues(target, result(err)).Inc()
}

// AddTracked adds committed seconds.
func (m *Metrics) AddTracked(secs int64) {
	m.TrackedSecondsTotal.Add(float64(secs))
}

// RecordReset counts one reset batch and the periods it covered.
func (m *Metrics) RecordReset(periods []string, err error) {
	m.ResetBatchesTotal.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	for _, p := range periods {
		m.ResetFieldsTotal.WithLabelValues(p).Inc()
	}
}

// SetTimerActive flips the active-session gauge.
func (m *Metrics) SetTimerActive(active bool) {
	if active {
		m.TimerActive.Set(1)
		return
	}
	m.TimerActive.Set(0)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

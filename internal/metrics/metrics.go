// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "savetrack"

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RPCRequests  *prometheus.CounterVec
	RPCDuration  *prometheus.HistogramVec
	HTTPRequests *prometheus.CounterVec

	Predictions     *prometheus.CounterVec
	PredictionError prometheus.Counter

	GoalsByRisk    *prometheus.GaugeVec
	SweepRuns      *prometheus.CounterVec
	SweepLastRunTS prometheus.Gauge

	Exports *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, alongside the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RPCRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total connect RPCs by procedure and result code.",
		}, []string{"procedure", "code"}),

		RPCDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "duration_seconds",
			Help:      "Connect RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total REST requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),

		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "predictions_total",
			Help:      "Goal predictions served, by risk level.",
		}, []string{"risk_level"}),

		PredictionError: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "prediction_errors_total",
			Help:      "Goal predictions rejected because the goal was malformed.",
		}),

		GoalsByRisk: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "goals",
			Name:      "by_risk_level",
			Help:      "Goals per risk level as of the last risk sweep.",
		}, []string{"risk_level"}),

		SweepRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "risk_sweep_runs_total",
			Help:      "Risk sweep runs by outcome.",
		}, []string{"outcome"}),

		SweepLastRunTS: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "risk_sweep_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful risk sweep.",
		}),

		Exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "reports_total",
			Help:      "Prediction reports exported, by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RPCRequests.WithLabelValues(procedure, code).Inc()
	m.RPCDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ObservePrediction(riskLevel string) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(riskLevel).Inc()
}

func (m *Metrics) ObservePredictionError() {
	if m == nil {
		return
	}
	m.PredictionError.Inc()
}

// SetGoalsByRisk replaces the per-tier goal counts.
func (m *Metrics) SetGoalsByRisk(counts map[string]int) {
	if m == nil {
		return
	}
	m.GoalsByRisk.Reset()
	for level, n := range counts {
		m.GoalsByRisk.WithLabelValues(level).Set(float64(n))
	}
}

func (m *Metrics) ObserveSweep(err error, at time.Time) {
	if m == nil {
		return
	}
	if err != nil {
		m.SweepRuns.WithLabelValues("error").Inc()
		return
	}
	m.SweepRuns.WithLabelValues("success").Inc()
	m.SweepLastRunTS.Set(float64(at.Unix()))
}

func (m *Metrics) ObserveExport(err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.Exports.WithLabelValues(outcome).Inc()
}

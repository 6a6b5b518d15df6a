package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRPC("/x", "ok", time.Second)
		m.ObserveHTTP("GET", "/api/health", 200)
		m.ObservePrediction("low")
		m.ObservePredictionError()
		m.SetGoalsByRisk(map[string]int{"low": 1})
		m.ObserveSweep(nil, time.Now())
		m.ObserveExport(errors.New("boom"))
	})
	assert.Nil(t, m.Registry())
}

func TestCollectors(t *testing.T) {
	m := New()

	m.ObservePrediction("medium")
	m.ObservePrediction("medium")
	m.ObservePrediction("high")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Predictions.WithLabelValues("medium")))

	m.SetGoalsByRisk(map[string]int{"low": 3, "high": 1})
	m.SetGoalsByRisk(map[string]int{"low": 2})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GoalsByRisk.WithLabelValues("low")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GoalsByRisk))

	at := time.Unix(1_750_000_000, 0)
	m.ObserveSweep(nil, at)
	m.ObserveSweep(errors.New("store down"), at.Add(time.Hour))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(m.SweepLastRunTS))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepRuns.WithLabelValues("error")))

	m.ObserveHTTP("GET", "/api/goals/{id}", 404)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/goals/{id}", "404")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRPC("/savetrack.v1.GoalService/PredictGoal", "ok", 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `savetrack_rpc_requests_total{code="ok",procedure="/savetrack.v1.GoalService/PredictGoal"} 1`))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

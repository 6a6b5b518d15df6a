package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/castlemilk/savetrack/internal/export"
	"github.com/castlemilk/savetrack/internal/forecast"
	"github.com/castlemilk/savetrack/internal/metrics"
	"github.com/castlemilk/savetrack/internal/model"
	"github.com/castlemilk/savetrack/internal/rpc"
	"github.com/castlemilk/savetrack/internal/store"
)

// seedSweepGoals stores one goal per tier at 50/day plus one malformed goal.
func seedSweepGoals(t *testing.T, st store.Store) {
	t.Helper()
	in30 := testToday.AddDate(0, 0, 30)
	seedGoal(t, st, model.Goal{ID: "on-pace", Name: "Phone", TargetAmount: 1000, Deadline: in30})
	seedGoal(t, st, model.Goal{ID: "half-pace", Name: "Scooter", TargetAmount: 3000, Deadline: in30})
	seedGoal(t, st, model.Goal{ID: "behind", Name: "Car", TargetAmount: 10000, Deadline: testToday.AddDate(0, 0, 10)})
	seedGoal(t, st, model.Goal{ID: "broken", Name: "No deadline", TargetAmount: 10})
	seedSavings(t, st, 10, 50)
}

func TestSweepGoalRisk(t *testing.T) {
	st := store.NewMemoryStore()
	seedSweepGoals(t, st)
	m := metrics.New()
	service := newTestService(st, WithMetrics(m))

	res, err := service.SweepGoalRisk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Goals)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, map[forecast.RiskLevel]int{
		forecast.RiskLow:    1,
		forecast.RiskMedium: 1,
		forecast.RiskHigh:   1,
	}, res.ByRisk)
	assert.Empty(t, res.Changed)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GoalsByRisk.WithLabelValues("medium")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PredictionError))

	// A big day lifts the average to 150/day.
	require.NoError(t, st.RecordSavings(context.Background(), &model.SavingsObservation{Date: testToday, Amount: 1000}))

	res, err = service.SweepGoalRisk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.ByRisk[forecast.RiskLow])
	assert.Equal(t, 0, res.ByRisk[forecast.RiskMedium])
	assert.Equal(t, []TierChange{{GoalID: "half-pace", From: forecast.RiskMedium, To: forecast.RiskLow}}, res.Changed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GoalsByRisk.WithLabelValues("low")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SweepRuns.WithLabelValues("success")))
	assert.Equal(t, float64(fixedClock().Unix()), testutil.ToFloat64(m.SweepLastRunTS))
}

func TestSweepGoalRiskStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	m := metrics.New()
	service := newTestService(mockStore, WithMetrics(m))

	mockStore.EXPECT().
		ListSavings(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	mockStore.EXPECT().
		ListGoals(gomock.Any(), int32(store.DefaultPageSize), "").
		Return(nil, "", errors.New("permission denied"))

	_, err := service.SweepGoalRisk(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepRuns.WithLabelValues("error")))
}

func TestSweepGoalRiskFollowsPages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	service := newTestService(mockStore)

	goal := func(id string) *model.Goal {
		return &model.Goal{ID: id, TargetAmount: 100, Deadline: testToday.AddDate(0, 0, 5)}
	}
	mockStore.EXPECT().
		ListSavings(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	gomock.InOrder(
		mockStore.EXPECT().
			ListGoals(gomock.Any(), gomock.Any(), "").
			Return([]*model.Goal{goal("a"), goal("b")}, "next", nil),
		mockStore.EXPECT().
			ListGoals(gomock.Any(), gomock.Any(), "next").
			Return([]*model.Goal{goal("c")}, "", nil),
	)

	res, err := service.SweepGoalRisk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Goals)
	assert.Equal(t, 3, res.ByRisk[forecast.RiskHigh])
}

func TestExportPredictions(t *testing.T) {
	st := store.NewMemoryStore()
	seedSweepGoals(t, st)
	m := metrics.New()

	var buf bytes.Buffer
	service := newTestService(st, WithMetrics(m), WithExportSink(export.NewStreamSink(&buf, "stdout")))

	resp, err := service.ExportPredictions(context.Background(), connect.NewRequest(&rpc.ExportPredictionsRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "stdout", resp.Msg.Location)
	assert.Equal(t, 3, resp.Msg.GoalCount)

	var report export.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "2025-06-15", report.AsOf)
	require.Len(t, report.Goals, 3)
	byID := make(map[string]export.GoalPrediction)
	for _, g := range report.Goals {
		byID[g.GoalID] = g
	}
	assert.Equal(t, forecast.RiskHigh, byID["behind"].Prediction.RiskLevel)
	assert.Equal(t, "2025-07-15", byID["on-pace"].Deadline)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exports.WithLabelValues("success")))
}

type failingSink struct{}

func (failingSink) Write(context.Context, string, []byte) (string, error) {
	return "", errors.New("bucket does not exist")
}

func TestExportPredictionsErrors(t *testing.T) {
	t.Run("no sink", func(t *testing.T) {
		service := newTestService(store.NewMemoryStore())
		_, err := service.ExportPredictions(context.Background(), connect.NewRequest(&rpc.ExportPredictionsRequest{}))
		assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
	})

	t.Run("sink failure", func(t *testing.T) {
		m := metrics.New()
		service := newTestService(store.NewMemoryStore(), WithMetrics(m), WithExportSink(failingSink{}))
		_, err := service.ExportPredictions(context.Background(), connect.NewRequest(&rpc.ExportPredictionsRequest{}))
		assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Exports.WithLabelValues("error")))
	})
}

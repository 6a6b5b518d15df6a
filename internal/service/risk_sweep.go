package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"connectrpc.com/connect"
	"github.com/sirupsen/logrus"

	"github.com/castlemilk/savetrack/internal/export"
	"github.com/castlemilk/savetrack/internal/forecast"
	"github.com/castlemilk/savetrack/internal/model"
	"github.com/castlemilk/savetrack/internal/rpc"
	"github.com/castlemilk/savetrack/internal/store"
)

// sweepState remembers each goal's tier from the previous sweep.
type sweepState struct {
	mu   sync.Mutex
	last map[string]forecast.RiskLevel
}

// SweepResult summarises one risk sweep.
type SweepResult struct {
	Goals   int
	Skipped int
	ByRisk  map[forecast.RiskLevel]int
	Changed []TierChange
}

// TierChange is a goal whose risk level differs from the previous sweep.
type TierChange struct {
	GoalID string
	From   forecast.RiskLevel
	To     forecast.RiskLevel
}

// goalForecast is one goal's prediction as of a sweep or export.
type goalForecast struct {
	goal   *model.Goal
	result forecast.Result
}

// forecastAll predicts every stored goal as of today. Goals the predictor
// rejects are counted in skipped and left out.
func (s *FinanceService) forecastAll(ctx context.Context) (out []goalForecast, skipped int, err error) {
	today := s.today()
	obs, err := s.windowSavings(ctx, today)
	if err != nil {
		return nil, 0, err
	}

	var pageToken string
	for {
		goals, next, err := s.store.ListGoals(ctx, store.DefaultPageSize, pageToken)
		if err != nil {
			return nil, 0, wrapStoreError("list goals", err)
		}
		for _, g := range goals {
			result, err := s.predict(g, obs, today)
			if err != nil {
				skipped++
				continue
			}
			out = append(out, goalForecast{goal: g, result: result})
		}
		if next == "" {
			break
		}
		pageToken = next
	}
	return out, skipped, nil
}

// SweepGoalRisk recomputes every goal's prediction, publishes the per-tier
// counts and logs goals whose tier changed since the previous sweep.
func (s *FinanceService) SweepGoalRisk(ctx context.Context) (SweepResult, error) {
	forecasts, skipped, err := s.forecastAll(ctx)
	if err != nil {
		s.metrics.ObserveSweep(err, s.now())
		return SweepResult{}, err
	}

	res := SweepResult{
		Goals:   len(forecasts),
		Skipped: skipped,
		ByRisk: map[forecast.RiskLevel]int{
			forecast.RiskLow:    0,
			forecast.RiskMedium: 0,
			forecast.RiskHigh:   0,
		},
	}

	s.sweep.mu.Lock()
	if s.sweep.last == nil {
		s.sweep.last = make(map[string]forecast.RiskLevel)
	}
	current := make(map[string]forecast.RiskLevel, len(forecasts))
	for _, f := range forecasts {
		level := f.result.RiskLevel
		res.ByRisk[level]++
		current[f.goal.ID] = level
		if prev, ok := s.sweep.last[f.goal.ID]; ok && prev != level {
			res.Changed = append(res.Changed, TierChange{GoalID: f.goal.ID, From: prev, To: level})
		}
	}
	s.sweep.last = current
	s.sweep.mu.Unlock()

	for _, c := range res.Changed {
		s.log.WithFields(logrus.Fields{
			"goal_id": c.GoalID,
			"from":    c.From,
			"to":      c.To,
		}).Info("goal risk level changed")
	}

	counts := make(map[string]int, len(res.ByRisk))
	for level, n := range res.ByRisk {
		counts[string(level)] = n
	}
	s.metrics.SetGoalsByRisk(counts)
	s.metrics.ObserveSweep(nil, s.now())

	s.log.WithFields(logrus.Fields{
		"goals":   res.Goals,
		"skipped": res.Skipped,
		"low":     res.ByRisk[forecast.RiskLow],
		"medium":  res.ByRisk[forecast.RiskMedium],
		"high":    res.ByRisk[forecast.RiskHigh],
	}).Info("risk sweep complete")
	return res, nil
}

// ExportPredictions writes a report of every goal's prediction to the
// configured sink.
func (s *FinanceService) ExportPredictions(ctx context.Context, _ *connect.Request[rpc.ExportPredictionsRequest]) (*connect.Response[rpc.ExportPredictionsResponse], error) {
	location, count, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&rpc.ExportPredictionsResponse{Location: location, GoalCount: count}), nil
}

// Export builds the prediction report and hands it to the sink.
func (s *FinanceService) Export(ctx context.Context) (string, int, error) {
	if s.sink == nil {
		return "", 0, connect.NewError(connect.CodeFailedPrecondition, errors.New("no export destination configured"))
	}

	forecasts, _, err := s.forecastAll(ctx)
	if err != nil {
		s.metrics.ObserveExport(err)
		return "", 0, toConnectError(err)
	}

	now := s.now()
	report := &export.Report{
		GeneratedAt: now.UTC(),
		AsOf:        model.FormatDate(s.today()),
		Goals:       make([]export.GoalPrediction, 0, len(forecasts)),
	}
	for _, f := range forecasts {
		report.Goals = append(report.Goals, export.GoalPrediction{
			GoalID:     f.goal.ID,
			Name:       f.goal.Name,
			Deadline:   model.FormatDate(f.goal.Deadline),
			Prediction: f.result,
		})
	}

	data, err := report.Encode()
	if err != nil {
		s.metrics.ObserveExport(err)
		return "", 0, toConnectError(err)
	}
	location, err := s.sink.Write(ctx, export.ObjectName(now), data)
	s.metrics.ObserveExport(err)
	if err != nil {
		return "", 0, toConnectError(fmt.Errorf("failed to export predictions: %w", err))
	}

	s.log.WithFields(logrus.Fields{
		"location": location,
		"goals":    len(report.Goals),
	}).Info("predictions exported")
	return location, len(report.Goals), nil
}

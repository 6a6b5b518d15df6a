package forecast

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlemilk/savetrack/internal/model"
)

// 2025-06-15 is a Sunday.
var today = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return today.AddDate(0, 0, offset)
}

func goal(target, current float64, deadline time.Time) model.Goal {
	return model.Goal{
		ID:            "goal-1",
		Name:          "Emergency fund",
		Category:      model.GoalCategorySavings,
		Type:          model.GoalTypeFlexible,
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      deadline,
	}
}

func dailyObservations(days int, amount float64) []model.SavingsObservation {
	obs := make([]model.SavingsObservation, 0, days)
	for i := 0; i < days; i++ {
		obs = append(obs, model.SavingsObservation{Date: day(-i), Amount: amount})
	}
	return obs
}

func TestPredictScenarios(t *testing.T) {
	p := NewPredictor(DefaultConfig())

	t.Run("on the way but behind pace is medium risk", func(t *testing.T) {
		res, err := p.Predict(goal(10000, 2000, day(60)), dailyObservations(30, 100), today)
		require.NoError(t, err)

		assert.Equal(t, 100.0, res.DailySavingsRate)
		assert.Equal(t, 133.33, res.DailySavingsNeeded)
		assert.Equal(t, 933.33, res.WeeklySavingsNeeded)
		assert.Equal(t, 75.0, res.SuccessProbability)
		assert.Equal(t, RiskMedium, res.RiskLevel)
		assert.Equal(t, "2025-09-03", res.ExpectedCompletionDate)
		require.NotNil(t, res.ExpectedDays)
		assert.Equal(t, 80, *res.ExpectedDays)
		assert.Equal(t, 20.0, res.CurrentProgress)
		assert.Equal(t, 8000.0, res.AmountRemaining)
		assert.Equal(t, 30, res.SampleCount)
		assert.Equal(t, "daily", res.TrendGranularity)
		assert.False(t, res.NoData)
		assert.False(t, res.DeadlinePassed)
	})

	t.Run("met goal completes today", func(t *testing.T) {
		res, err := p.Predict(goal(5000, 5000, day(-400)), nil, today)
		require.NoError(t, err)

		assert.Equal(t, 100.0, res.SuccessProbability)
		assert.Equal(t, RiskLow, res.RiskLevel)
		assert.Equal(t, "2025-06-15", res.ExpectedCompletionDate)
		require.NotNil(t, res.ExpectedDays)
		assert.Zero(t, *res.ExpectedDays)
		assert.Zero(t, res.DailySavingsNeeded)
		assert.Equal(t, 100.0, res.CurrentProgress)
	})

	t.Run("passed deadline without history", func(t *testing.T) {
		res, err := p.Predict(goal(1000, 0, day(-1)), nil, today)
		require.NoError(t, err)

		assert.Equal(t, RiskHigh, res.RiskLevel)
		assert.Zero(t, res.SuccessProbability)
		assert.Zero(t, res.DailySavingsRate)
		assert.True(t, res.DeadlinePassed)
		assert.True(t, res.NoData)
		assert.Equal(t, 1000.0, res.DailySavingsNeeded)
		assert.Equal(t, "9999-12-31", res.ExpectedCompletionDate)
		assert.Nil(t, res.ExpectedDays)
	})

	t.Run("no history still produces a result", func(t *testing.T) {
		res, err := p.Predict(goal(1000, 100, day(30)), []model.SavingsObservation{}, today)
		require.NoError(t, err)

		assert.Zero(t, res.DailySavingsRate)
		assert.Equal(t, 30.0, res.DailySavingsNeeded)
		assert.Zero(t, res.SuccessProbability)
		assert.Equal(t, RiskHigh, res.RiskLevel)
		assert.True(t, res.NoData)
		assert.Zero(t, res.SampleCount)
		assert.Equal(t, "none", res.TrendGranularity)
	})

	t.Run("zero target counts as complete", func(t *testing.T) {
		res, err := p.Predict(goal(0, 0, day(10)), nil, today)
		require.NoError(t, err)
		assert.Equal(t, 100.0, res.SuccessProbability)
		assert.Equal(t, RiskLow, res.RiskLevel)
	})

	t.Run("deadline today with money left is high risk", func(t *testing.T) {
		res, err := p.Predict(goal(1000, 500, today), dailyObservations(10, 1000), today)
		require.NoError(t, err)
		assert.Equal(t, RiskHigh, res.RiskLevel)
		assert.Zero(t, res.SuccessProbability)
		assert.False(t, res.DeadlinePassed)
		assert.Equal(t, 500.0, res.DailySavingsNeeded)
	})

	t.Run("ahead of pace is low risk", func(t *testing.T) {
		res, err := p.Predict(goal(3000, 0, day(30)), dailyObservations(30, 150), today)
		require.NoError(t, err)
		assert.Equal(t, RiskLow, res.RiskLevel)
		assert.Equal(t, 100.0, res.SuccessProbability)
		assert.Equal(t, "2025-07-05", res.ExpectedCompletionDate)
	})
}

func TestPredictRejectsMalformedGoal(t *testing.T) {
	p := NewPredictor(Config{})

	tests := []struct {
		name  string
		goal  model.Goal
		field string
	}{
		{"missing deadline", goal(100, 0, time.Time{}), "deadline"},
		{"negative current", goal(100, -1, day(5)), "currentAmount"},
		{"nan target", goal(math.NaN(), 0, day(5)), "targetAmount"},
		{"infinite current", goal(100, math.Inf(1), day(5)), "currentAmount"},
		{"huge target", goal(1e308, 0, day(60)), "targetAmount"},
		{"huge negative target", goal(-1e308, 0, day(60)), "targetAmount"},
		{"huge current", goal(100, 1e300, day(60)), "currentAmount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Predict(tt.goal, nil, today)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidGoalInput))
			var goalErr *model.InvalidGoalInputError
			require.ErrorAs(t, err, &goalErr)
			assert.Equal(t, tt.field, goalErr.Field)
		})
	}
}

func TestPredictMetGoalIsAlwaysLowRisk(t *testing.T) {
	p := NewPredictor(DefaultConfig())
	histories := [][]model.SavingsObservation{
		nil,
		dailyObservations(30, 100),
		dailyObservations(5, -250),
		{{Date: day(-3), Amount: math.NaN()}},
	}
	deadlines := []time.Time{day(-100), day(0), day(1), day(365)}

	for _, history := range histories {
		for _, deadline := range deadlines {
			for _, current := range []float64{1000, 1500} {
				res, err := p.Predict(goal(1000, current, deadline), history, today)
				require.NoError(t, err)
				assert.Equal(t, 100.0, res.SuccessProbability)
				assert.Equal(t, RiskLow, res.RiskLevel)
			}
		}
	}
}

func TestPredictPassedDeadlineIsAlwaysHighRisk(t *testing.T) {
	p := NewPredictor(DefaultConfig())
	histories := [][]model.SavingsObservation{
		nil,
		dailyObservations(30, 100),
		dailyObservations(30, 1e6),
	}
	for _, history := range histories {
		for _, offset := range []int{-1, -7, -365} {
			res, err := p.Predict(goal(1000, 999.99, day(offset)), history, today)
			require.NoError(t, err)
			assert.Equal(t, RiskHigh, res.RiskLevel)
			assert.Zero(t, res.SuccessProbability)
			assert.True(t, res.DeadlinePassed)
		}
	}
}

func TestPredictIsIdempotent(t *testing.T) {
	p := NewPredictor(DefaultConfig())
	g := goal(10000, 2000, day(60))
	obs := dailyObservations(30, 100)

	first, err := p.Predict(g, obs, today)
	require.NoError(t, err)
	second, err := p.Predict(g, obs, today)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestPredictNeverEmitsNonFiniteNumbers(t *testing.T) {
	p := NewPredictor(DefaultConfig())
	goals := []model.Goal{
		goal(1e12, 0, day(1)),
		goal(1000, 0, day(-1)),
		goal(1000, 0, today),
		goal(-50, 0, day(3)),
	}
	obs := append(dailyObservations(3, 1e-3), model.SavingsObservation{Date: day(-1), Amount: math.Inf(1)})
	for _, g := range goals {
		res, err := p.Predict(g, obs, today)
		require.NoError(t, err)
		_, err = json.Marshal(res)
		require.NoError(t, err, "result must encode as JSON")
	}
}

func TestPredictLargestAmountsEncode(t *testing.T) {
	p := NewPredictor(DefaultConfig())
	res, err := p.Predict(goal(model.MaxAmount, 0, day(1)), nil, today)
	require.NoError(t, err)
	assert.Equal(t, model.MaxAmount, res.AmountRemaining)
	_, err = json.Marshal(res)
	require.NoError(t, err)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, round2(1.234))
	assert.Zero(t, round2(math.NaN()))
	assert.Zero(t, round2(math.Inf(-1)))
	assert.Zero(t, round2(math.MaxFloat64))
}

func TestPredictIgnoresObservationsOutsideWindow(t *testing.T) {
	p := NewPredictor(Config{WindowDays: 7})
	obs := []model.SavingsObservation{
		{Date: day(-1), Amount: 70},
		{Date: day(-2), Amount: 70},
		{Date: day(-3), Amount: 70},
		{Date: day(-30), Amount: 10000},
		{Date: day(5), Amount: 10000},
	}
	res, err := p.Predict(goal(1000, 0, day(100)), obs, today)
	require.NoError(t, err)
	assert.Equal(t, 70.0, res.DailySavingsRate)
	assert.Equal(t, 3, res.SampleCount)
}

func TestNewPredictorDefaults(t *testing.T) {
	p := NewPredictor(Config{Thresholds: RiskThresholds{Low: 0.2, Medium: 0.9}})
	assert.Equal(t, DefaultConfig(), p.Config())
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	var obs []model.SavingsObservation
	for i := 0; i < 30; i++ {
		obs = append(obs,
			model.SavingsObservation{Date: day(-i), Amount: 0.1},
			model.SavingsObservation{Date: day(-i).Add(9 * time.Hour), Amount: 0.2},
			model.SavingsObservation{Date: day(-i), Amount: float64(i) * 13.37},
		)
	}
	w := TrailingWindow(today, 30)
	want := Aggregate(obs, w)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.SavingsObservation(nil), obs...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Aggregate(shuffled, w))
	}
	assert.Equal(t, 0.3, want.Daily["2025-06-15"])
}

package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalProgressPercent(t *testing.T) {
	tests := []struct {
		name    string
		target  float64
		current float64
		want    float64
	}{
		{"half way", 1000, 500, 50},
		{"over target clamps", 1000, 1500, 100},
		{"zero target", 0, 100, 0},
		{"negative target", -5, 100, 0},
		{"nothing saved", 1000, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Goal{TargetAmount: tt.target, CurrentAmount: tt.current}
			assert.InDelta(t, tt.want, g.ProgressPercent(), 1e-9)
		})
	}
}

func TestGoalInputGoal(t *testing.T) {
	t.Run("numbers and strings both parse", func(t *testing.T) {
		in := GoalInput{
			Name:          " Bike ",
			Category:      "Purchase",
			Type:          "RIGID",
			TargetAmount:  "25000",
			CurrentAmount: 1200.5,
			Deadline:      "2026-12-31",
		}
		g, err := in.Goal()
		require.NoError(t, err)
		assert.Equal(t, "Bike", g.Name)
		assert.Equal(t, GoalCategoryPurchase, g.Category)
		assert.Equal(t, GoalTypeRigid, g.Type)
		assert.Equal(t, 25000.0, g.TargetAmount)
		assert.Equal(t, 1200.5, g.CurrentAmount)
		assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), g.Deadline)
	})

	t.Run("targetDate alias fills deadline", func(t *testing.T) {
		in := GoalInput{TargetAmount: 10, CurrentAmount: 0, TargetDate: "2027-01-15"}
		g, err := in.Goal()
		require.NoError(t, err)
		assert.Equal(t, "2027-01-15", FormatDate(g.Deadline))
		assert.Equal(t, "Unnamed Goal", g.Name)
		assert.Equal(t, GoalCategoryOther, g.Category)
		assert.Equal(t, GoalTypeFlexible, g.Type)
	})

	t.Run("json body decodes into loosely typed fields", func(t *testing.T) {
		var in GoalInput
		body := `{"name":"Trip","category":"savings","type":"flexible","targetAmount":"5000","currentAmount":250,"deadline":"2026-06-01T00:00:00Z"}`
		require.NoError(t, json.Unmarshal([]byte(body), &in))
		g, err := in.Goal()
		require.NoError(t, err)
		assert.Equal(t, 5000.0, g.TargetAmount)
		assert.Equal(t, 250.0, g.CurrentAmount)
		assert.Equal(t, "2026-06-01", FormatDate(g.Deadline))
	})

	errorCases := []struct {
		name   string
		in     GoalInput
		field  string
		reason string
	}{
		{"missing target", GoalInput{CurrentAmount: 1, Deadline: "2026-01-01"}, "targetAmount", "is required"},
		{"non numeric target", GoalInput{TargetAmount: "lots", CurrentAmount: 1, Deadline: "2026-01-01"}, "targetAmount", "is malformed"},
		{"missing current", GoalInput{TargetAmount: 1, Deadline: "2026-01-01"}, "currentAmount", "is required"},
		{"boolean current", GoalInput{TargetAmount: 1, CurrentAmount: true, Deadline: "2026-01-01"}, "currentAmount", "is malformed"},
		{"negative current", GoalInput{TargetAmount: 1, CurrentAmount: -1, Deadline: "2026-01-01"}, "currentAmount", "must not be negative"},
		{"missing deadline", GoalInput{TargetAmount: 1, CurrentAmount: 0}, "deadline", "is required"},
		{"bad deadline", GoalInput{TargetAmount: 1, CurrentAmount: 0, Deadline: "next tuesday"}, "deadline", "is malformed"},
		{"nan target", GoalInput{TargetAmount: math.NaN(), CurrentAmount: 0, Deadline: "2026-01-01"}, "targetAmount", "is malformed"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.in.Goal()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidGoalInput))

			var goalErr *InvalidGoalInputError
			require.True(t, errors.As(err, &goalErr))
			assert.Equal(t, tc.field, goalErr.Field)
			assert.Equal(t, tc.reason, goalErr.Reason)
		})
	}

	t.Run("zero target is accepted", func(t *testing.T) {
		g, err := GoalInput{TargetAmount: 0, CurrentAmount: 0, Deadline: "2026-01-01"}.Goal()
		require.NoError(t, err)
		assert.Zero(t, g.Remaining())
	})
}

func TestGoalFromDocument(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	deadline := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	g, err := GoalFromDocument("goal-1", map[string]any{
		"name":          "Laptop",
		"category":      "purchase",
		"type":          "rigid",
		"targetAmount":  int64(80000),
		"currentAmount": "12000",
		"deadline":      deadline,
		"createdAt":     created,
		"progress":      42.0, // stale persisted progress is ignored
	})
	require.NoError(t, err)
	assert.Equal(t, "goal-1", g.ID)
	assert.Equal(t, 80000.0, g.TargetAmount)
	assert.Equal(t, 12000.0, g.CurrentAmount)
	assert.Equal(t, deadline, g.Deadline)
	assert.Equal(t, created, g.CreatedAt)
	assert.InDelta(t, 15.0, g.ProgressPercent(), 1e-9)

	roundTrip, err := GoalFromDocument("goal-1", g.Document())
	require.NoError(t, err)
	assert.Equal(t, g, roundTrip)

	_, err = GoalFromDocument("goal-2", map[string]any{"name": "Broken", "targetAmount": 10})
	assert.ErrorIs(t, err, ErrInvalidGoalInput)
}

func TestObservationFromDocument(t *testing.T) {
	day := time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC)

	obs, ok := ObservationFromDocument("s1", map[string]any{"date": day, "amount": 150.0, "description": "Daily Savings"})
	require.True(t, ok)
	assert.Equal(t, 150.0, obs.Amount)
	assert.Equal(t, "Daily Savings", obs.Description)

	_, ok = ObservationFromDocument("s2", map[string]any{"date": day, "amount": "abc"})
	assert.False(t, ok)
	_, ok = ObservationFromDocument("s3", map[string]any{"amount": 10.0})
	assert.False(t, ok)
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 3, 8, 23, 30, 0, 0, time.UTC)
	b := time.Date(2025, 3, 10, 0, 15, 0, 0, time.UTC)
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, -2, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))

	from := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	far := time.Date(2500, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 173490, DaysBetween(from, far))
	assert.Equal(t, -173490, DaysBetween(far, from))
}

func TestGoalValidateBoundsAmounts(t *testing.T) {
	deadline := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		target  float64
		current float64
		field   string
	}{
		{"at maximum", MaxAmount, MaxAmount, ""},
		{"target above maximum", 1e308, 0, "targetAmount"},
		{"negative target above maximum", -MaxAmount * 2, 0, "targetAmount"},
		{"current above maximum", 100, MaxAmount * 2, "currentAmount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Goal{Name: "Car", TargetAmount: tt.target, CurrentAmount: tt.current, Deadline: deadline}
			err := g.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var goalErr *InvalidGoalInputError
			require.ErrorAs(t, err, &goalErr)
			assert.Equal(t, tt.field, goalErr.Field)
		})
	}
}

func TestParseDeadline(t *testing.T) {
	d, err := ParseDeadline("2025-12-31T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDeadline("soon")
	var goalErr *InvalidGoalInputError
	require.ErrorAs(t, err, &goalErr)
	assert.Equal(t, "deadline", goalErr.Field)
}

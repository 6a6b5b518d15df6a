package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTotalsFillsGaps(t *testing.T) {
	entries := []Entry{
		{Date: date("2025-06-02"), Amount: 100},
		{Date: date("2025-06-03"), Amount: 50},
		{Date: date("2025-06-17"), Amount: 25},
	}
	got := Totals(entries, PeriodWeekly)
	assert.Equal(t, []Point{
		{Date: "2025-06-01", Total: 150},
		{Date: "2025-06-08", Total: 0},
		{Date: "2025-06-15", Total: 25},
	}, got)

	monthly := Totals(append(entries, Entry{Date: date("2025-08-31"), Amount: 10}), PeriodMonthly)
	assert.Equal(t, []Point{
		{Date: "2025-06-01", Total: 175},
		{Date: "2025-07-01", Total: 0},
		{Date: "2025-08-01", Total: 10},
	}, monthly)

	assert.Nil(t, Totals(nil, PeriodMonthly))
}

func TestNextPeriodSavings(t *testing.T) {
	entries := []Entry{
		{Date: date("2025-06-02"), Amount: 700},
		{Date: date("2025-06-09"), Amount: 350},
	}
	out, err := NextPeriodSavings(entries, PeriodWeekly, "")
	require.NoError(t, err)
	assert.Equal(t, 525.0, out.Amount)
	assert.Equal(t, 2, out.Periods)
	assert.Equal(t, "By the next week, you can save: ₹525.00", out.Message)

	_, err = NextPeriodSavings(entries, PeriodMonthly, "")
	assert.ErrorIs(t, err, ErrNotEnoughData)

	big := []Entry{
		{Date: date("2025-04-10"), Amount: 1000},
		{Date: date("2025-05-10"), Amount: 1469},
	}
	out, err = NextPeriodSavings(big, PeriodMonthly, "$")
	require.NoError(t, err)
	assert.Equal(t, "By the next month, you can save: $1,234.50", out.Message)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("Monthly")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonthly, p)

	p, err = ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeekly, p)

	_, err = ParsePeriod("fortnightly")
	assert.Error(t, err)
}

func TestProjectSavings(t *testing.T) {
	entries := []Entry{
		{Date: date("2025-01-05"), Amount: 60},
		{Date: date("2025-01-20"), Amount: 40},
		{Date: date("2025-02-11"), Amount: 200},
		{Date: date("2025-03-28"), Amount: 300},
	}
	proj, err := ProjectSavings(entries, 3)
	require.NoError(t, err)

	assert.Len(t, proj.History, 3)
	assert.Equal(t, 100.0, proj.Slope)
	assert.Equal(t, 1.0, proj.RSquared)
	assert.Equal(t, []ProjectedMonth{
		{Month: "2025-04", Amount: 400, Cumulative: 400},
		{Month: "2025-05", Amount: 500, Cumulative: 900},
		{Month: "2025-06", Amount: 600, Cumulative: 1500},
	}, proj.Projected)
	assert.Equal(t, 1500.0, proj.Total)

	proj, err = ProjectSavings(entries, 100)
	require.NoError(t, err)
	assert.Len(t, proj.Projected, MaxProjectionMonths)

	proj, err = ProjectSavings(entries, 0)
	require.NoError(t, err)
	assert.Len(t, proj.Projected, DefaultProjectionMonths)

	_, err = ProjectSavings(nil, 3)
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestCategoryBudget(t *testing.T) {
	w := Window{Since: date("2025-04-17"), Until: date("2025-06-15")} // 60 days
	entries := []Entry{
		{Date: date("2025-06-01"), Amount: 300, Category: "food"},
		{Date: date("2025-05-01"), Amount: 100, Category: " FOOD "},
		{Date: date("2025-05-20"), Amount: 200, Category: "transport"},
		{Date: date("2025-01-01"), Amount: 999, Category: "food"},
		{Date: date("2025-05-21"), Amount: 0, Category: ""},
	}
	got := CategoryBudget(entries, w)
	assert.Equal(t, []CategoryShare{
		{Category: "Food", Total: 400, MonthlyAverage: 200, Share: 66.67},
		{Category: "Transport", Total: 200, MonthlyAverage: 100, Share: 33.33},
		{Category: "Uncategorized", Total: 0, MonthlyAverage: 0, Share: 0},
	}, got)
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Healthcare", CategoryLabel("HEALTHCARE"))
	assert.Equal(t, "Eating Out", CategoryLabel("eating out"))
	assert.Equal(t, "Uncategorized", CategoryLabel("  "))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "₹1,234,567.89", FormatAmount(1234567.891, ""))
	assert.Equal(t, "€0.50", FormatAmount(0.5, "€"))
}

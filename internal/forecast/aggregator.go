// Package forecast turns savings history into goal predictions and savings
// outlooks. Everything here is pure: callers pass in the data and the
// current date, and get fresh values back.
package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/castlemilk/savetrack/internal/model"
)

// DefaultWindowDays is the trailing history used when no window is configured.
const DefaultWindowDays = 30

// Window bounds a range of calendar days, inclusive at both ends.
// A zero Since or Until leaves that side open.
type Window struct {
	Since time.Time
	Until time.Time
}

// TrailingWindow covers the days days before today, through today.
func TrailingWindow(today time.Time, days int) Window {
	if days <= 0 {
		days = DefaultWindowDays
	}
	end := model.CivilDate(today)
	return Window{Since: end.AddDate(0, 0, -days), Until: end}
}

// Contains reports whether day falls inside the window.
func (w Window) Contains(day time.Time) bool {
	day = model.CivilDate(day)
	if !w.Since.IsZero() && day.Before(model.CivilDate(w.Since)) {
		return false
	}
	if !w.Until.IsZero() && day.After(model.CivilDate(w.Until)) {
		return false
	}
	return true
}

// Days is the number of calendar days covered, or 0 for an open window.
func (w Window) Days() int {
	if w.Since.IsZero() || w.Until.IsZero() {
		return 0
	}
	return model.DaysBetween(w.Since, w.Until) + 1
}

// Series holds savings totals keyed by calendar date ("2006-01-02").
// Weekly keys are the Sunday that starts each week.
type Series struct {
	Daily  map[string]float64
	Weekly map[string]float64
}

// Point is one period of a Series in chronological order.
type Point struct {
	Date  string
	Total float64
}

// WeekStart returns the Sunday on or before day.
func WeekStart(day time.Time) time.Time {
	day = model.CivilDate(day)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// Aggregate sums observations per day and per week inside the window.
// Records with no date or a non-finite amount are skipped. Sums are kept in
// minor units so the result does not depend on input order.
func Aggregate(observations []model.SavingsObservation, w Window) Series {
	dailyCents := make(map[string]int64)
	weeklyCents := make(map[string]int64)

	for _, o := range observations {
		cents, ok := toCents(o.Amount)
		if o.Date.IsZero() || !ok {
			continue
		}
		if !w.Contains(o.Date) {
			continue
		}
		day := model.CivilDate(o.Date)
		dailyCents[day.Format(model.DateLayout)] += cents
		weeklyCents[WeekStart(day).Format(model.DateLayout)] += cents
	}

	return Series{
		Daily:  fromCents(dailyCents),
		Weekly: fromCents(weeklyCents),
	}
}

// DailyPoints returns the daily totals sorted by date.
func (s Series) DailyPoints() []Point {
	return sortedPoints(s.Daily)
}

// WeeklyPoints returns the weekly totals sorted by week start.
func (s Series) WeeklyPoints() []Point {
	return sortedPoints(s.Weekly)
}

func sortedPoints(m map[string]float64) []Point {
	points := make([]Point, 0, len(m))
	for date, total := range m {
		points = append(points, Point{Date: date, Total: total})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

func toCents(amount float64) (int64, bool) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || math.Abs(amount) > model.MaxAmount {
		return 0, false
	}
	return int64(math.Round(amount * 100)), true
}

func fromCents(m map[string]int64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = float64(v) / 100
	}
	return out
}

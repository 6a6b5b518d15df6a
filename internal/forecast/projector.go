package forecast

import (
	"math"
	"time"

	"github.com/castlemilk/savetrack/internal/model"
)

// FarFuture stands in for a completion date that will never be reached.
var FarFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// maxHorizonDays caps projections to roughly a century; anything later is FarFuture.
const maxHorizonDays = 36500

// Projection extrapolates a goal along a daily savings rate.
// RequiredDailyRate and DaysToComplete are +Inf when unreachable.
type Projection struct {
	Remaining          float64
	DaysToDeadline     int
	RequiredDailyRate  float64
	DaysToComplete     float64
	ExpectedCompletion time.Time
	SuccessProbability float64
	DeadlinePassed     bool
}

// Reachable reports whether the goal completes at the projected rate.
func (p Projection) Reachable() bool {
	return !math.IsInf(p.DaysToComplete, 1)
}

// Ratio is the estimated rate over the required rate, or +Inf when no
// savings are required.
func (p Projection) Ratio(rate float64) float64 {
	switch {
	case p.RequiredDailyRate == 0:
		return math.Inf(1)
	case math.IsInf(p.RequiredDailyRate, 1):
		return 0
	default:
		return rate / p.RequiredDailyRate
	}
}

// Project computes the projection of a goal at the given daily rate as of today.
func Project(target, current float64, deadline time.Time, rate float64, today time.Time) Projection {
	today = model.CivilDate(today)
	remaining := math.Max(target-current, 0)
	daysToDeadline := model.DaysBetween(today, deadline)
	passed := daysToDeadline < 0 && remaining > 0
	if daysToDeadline < 0 {
		daysToDeadline = 0
	}

	var required float64
	switch {
	case daysToDeadline > 0:
		required = remaining / float64(daysToDeadline)
	case remaining > 0:
		required = math.Inf(1)
	}

	var daysToComplete float64
	switch {
	case remaining == 0:
		daysToComplete = 0
	case rate > 0:
		daysToComplete = remaining / rate
	default:
		daysToComplete = math.Inf(1)
	}

	p := Projection{
		Remaining:          remaining,
		DaysToDeadline:     daysToDeadline,
		RequiredDailyRate:  required,
		DaysToComplete:     daysToComplete,
		ExpectedCompletion: completionDate(today, daysToComplete),
		DeadlinePassed:     passed,
	}
	p.SuccessProbability = successProbability(rate, required)
	return p
}

func completionDate(today time.Time, days float64) time.Time {
	if math.IsInf(days, 1) || days > maxHorizonDays {
		return FarFuture
	}
	return today.AddDate(0, 0, int(math.Ceil(days)))
}

func successProbability(rate, required float64) float64 {
	switch {
	case required == 0:
		return 100
	case math.IsInf(required, 1):
		return 0
	}
	return math.Max(0, math.Min(100, rate/required*100))
}

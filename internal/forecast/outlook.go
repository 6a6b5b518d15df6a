package forecast

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/castlemilk/savetrack/internal/model"
)

// ErrNotEnoughData is returned when a series is too short to forecast from.
var ErrNotEnoughData = errors.New("not enough data for prediction")

// DefaultCurrencySymbol prefixes formatted amounts.
const DefaultCurrencySymbol = "₹"

const (
	DefaultProjectionMonths = 3
	MaxProjectionMonths     = 24
)

// Period is the bucket size of a savings or expense series.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod accepts "weekly"/"week" and "monthly"/"month".
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly", "week", "":
		return PeriodWeekly, nil
	case "monthly", "month":
		return PeriodMonthly, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Noun is the singular name of one period, as used in messages.
func (p Period) Noun() string {
	if p == PeriodMonthly {
		return "month"
	}
	return "week"
}

// Start returns the first day of the period containing day.
func (p Period) Start(day time.Time) time.Time {
	day = model.CivilDate(day)
	if p == PeriodMonthly {
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return WeekStart(day)
}

func (p Period) next(start time.Time) time.Time {
	if p == PeriodMonthly {
		return start.AddDate(0, 1, 0)
	}
	return start.AddDate(0, 0, 7)
}

// Entry is a dated amount fed into a series: a savings observation or an expense.
type Entry struct {
	Date     time.Time
	Amount   float64
	Category string
}

// EntriesFromObservations adapts savings observations into entries.
func EntriesFromObservations(obs []model.SavingsObservation) []Entry {
	out := make([]Entry, 0, len(obs))
	for _, o := range obs {
		out = append(out, Entry{Date: o.Date, Amount: o.Amount})
	}
	return out
}

// EntriesFromTransactions adapts transactions into entries keyed by category.
func EntriesFromTransactions(txns []model.Transaction) []Entry {
	out := make([]Entry, 0, len(txns))
	for _, t := range txns {
		out = append(out, Entry{Date: t.Date, Amount: t.Amount, Category: t.Category})
	}
	return out
}

// Totals sums entries per period, from the first period with data to the
// last, emitting zero totals for empty periods in between.
func Totals(entries []Entry, period Period) []Point {
	cents := make(map[string]int64)
	var first, last time.Time
	for _, e := range entries {
		c, ok := toCents(e.Amount)
		if e.Date.IsZero() || !ok {
			continue
		}
		start := period.Start(e.Date)
		cents[start.Format(model.DateLayout)] += c
		if first.IsZero() || start.Before(first) {
			first = start
		}
		if last.IsZero() || start.After(last) {
			last = start
		}
	}
	if len(cents) == 0 {
		return nil
	}

	var points []Point
	for start := first; !start.After(last); start = period.next(start) {
		key := start.Format(model.DateLayout)
		points = append(points, Point{Date: key, Total: float64(cents[key]) / 100})
	}
	return points
}

// Outlook is the expected savings for the coming period.
type Outlook struct {
	Period  Period  `json:"period"`
	Amount  float64 `json:"amount"`
	Periods int     `json:"periods"`
	Message string  `json:"message"`
}

// NextPeriodSavings averages the per-period savings totals. At least two
// periods of history are required.
func NextPeriodSavings(entries []Entry, period Period, currency string) (Outlook, error) {
	totals := Totals(entries, period)
	if len(totals) < 2 {
		return Outlook{}, ErrNotEnoughData
	}
	amount := round2(meanOf(totals))
	return Outlook{
		Period:  period,
		Amount:  amount,
		Periods: len(totals),
		Message: FormatMessage("By the next %s, you can save: %s", period.Noun(), FormatAmount(amount, currency)),
	}, nil
}

// FormatAmount renders an amount with thousands grouping and two decimals.
func FormatAmount(amount float64, currency string) string {
	if currency == "" {
		currency = DefaultCurrencySymbol
	}
	return currency + message.NewPrinter(language.English).Sprintf("%.2f", amount)
}

// FormatMessage formats a user-facing message with locale-aware numbers.
func FormatMessage(format string, args ...any) string {
	return message.NewPrinter(language.English).Sprintf(format, args...)
}

// ProjectedMonth is one future month of a savings projection.
type ProjectedMonth struct {
	Month      string  `json:"month"`
	Amount     float64 `json:"amount"`
	Cumulative float64 `json:"cumulative"`
}

// SavingsProjection is a linear extrapolation of monthly savings.
type SavingsProjection struct {
	History   []Point          `json:"history"`
	Slope     float64          `json:"slope"`
	RSquared  float64          `json:"r_squared"`
	Projected []ProjectedMonth `json:"projected"`
	Total     float64          `json:"total"`
}

// ProjectSavings fits a line through monthly savings totals and extends it
// months into the future, starting with the month after the last one observed.
func ProjectSavings(entries []Entry, months int) (SavingsProjection, error) {
	if months <= 0 {
		months = DefaultProjectionMonths
	}
	if months > MaxProjectionMonths {
		months = MaxProjectionMonths
	}
	history := Totals(entries, PeriodMonthly)
	if len(history) == 0 {
		return SavingsProjection{}, ErrNotEnoughData
	}

	values := make([]float64, len(history))
	for i, pt := range history {
		values[i] = pt.Total
	}
	slope, intercept, r2 := fitLine(values)

	lastMonth, err := time.Parse(model.DateLayout, history[len(history)-1].Date)
	if err != nil {
		return SavingsProjection{}, fmt.Errorf("failed to parse month %q: %w", history[len(history)-1].Date, err)
	}

	proj := SavingsProjection{History: history, Slope: round2(slope), RSquared: round2(r2)}
	var cumulative float64
	for i := 1; i <= months; i++ {
		x := float64(len(values) - 1 + i)
		amount := round2(intercept + slope*x)
		cumulative += amount
		proj.Projected = append(proj.Projected, ProjectedMonth{
			Month:      lastMonth.AddDate(0, i, 0).Format("2006-01"),
			Amount:     amount,
			Cumulative: round2(cumulative),
		})
	}
	proj.Total = round2(cumulative)
	return proj, nil
}

// CategoryShare is the spending attributed to one category.
type CategoryShare struct {
	Category       string  `json:"category"`
	Total          float64 `json:"total"`
	MonthlyAverage float64 `json:"monthly_average"`
	Share          float64 `json:"share"`
}

// CategoryLabel normalises a free-form category name for display.
func CategoryLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Uncategorized"
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}

// CategoryBudget totals spending per category over the window and reports
// each category's monthly average and share of all spending, largest first.
func CategoryBudget(entries []Entry, w Window) []CategoryShare {
	cents := make(map[string]int64)
	var grand int64
	for _, e := range entries {
		c, ok := toCents(e.Amount)
		if e.Date.IsZero() || !ok || !w.Contains(e.Date) {
			continue
		}
		cents[CategoryLabel(e.Category)] += c
		grand += c
	}

	months := float64(w.Days()) / 30
	if months < 1 {
		months = 1
	}

	shares := make([]CategoryShare, 0, len(cents))
	for cat, c := range cents {
		total := float64(c) / 100
		s := CategoryShare{
			Category:       cat,
			Total:          round2(total),
			MonthlyAverage: round2(total / months),
		}
		if grand != 0 {
			s.Share = round2(float64(c) / float64(grand) * 100)
		}
		shares = append(shares, s)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Total != shares[j].Total {
			return shares[i].Total > shares[j].Total
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}

package forecast

import (
	"math"
	"time"

	"github.com/castlemilk/savetrack/internal/model"
)

// Config tunes the prediction pipeline. Zero fields take defaults.
type Config struct {
	WindowDays      int            `toml:"window_days"`
	MinDailySamples int            `toml:"min_daily_samples"`
	Thresholds      RiskThresholds `toml:"risk_thresholds"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		WindowDays:      DefaultWindowDays,
		MinDailySamples: DefaultMinDailySamples,
		Thresholds:      DefaultRiskThresholds,
	}
}

// Result is a goal prediction ready for the wire. All floats are finite and
// rounded to two decimals.
type Result struct {
	GoalID                 string    `json:"goal_id,omitempty"`
	DailySavingsRate       float64   `json:"daily_savings_rate"`
	DailySavingsNeeded     float64   `json:"daily_savings_needed"`
	WeeklySavingsNeeded    float64   `json:"weekly_savings_needed"`
	ExpectedCompletionDate string    `json:"expected_completion_date"`
	ExpectedDays           *int      `json:"expected_days,omitempty"`
	SuccessProbability     float64   `json:"success_probability"`
	RiskLevel              RiskLevel `json:"risk_level"`
	CurrentProgress        float64   `json:"current_progress"`
	AmountRemaining        float64   `json:"amount_remaining"`
	AvgDailySavings        float64   `json:"avg_daily_savings"`
	AvgWeeklySavings       float64   `json:"avg_weekly_savings"`
	TrendSlope             float64   `json:"trend_slope"`
	TrendGranularity       string    `json:"trend_granularity"`
	SampleCount            int       `json:"sample_count"`
	NoData                 bool      `json:"no_data"`
	DeadlinePassed         bool      `json:"deadline_passed"`
}

// Predictor runs aggregation, trend estimation, projection and risk
// classification for one goal at a time. It holds no mutable state and is
// safe for concurrent use.
type Predictor struct {
	cfg Config
}

// NewPredictor returns a Predictor, filling unset config fields with defaults.
func NewPredictor(cfg Config) *Predictor {
	def := DefaultConfig()
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = def.WindowDays
	}
	if cfg.MinDailySamples <= 0 {
		cfg.MinDailySamples = def.MinDailySamples
	}
	if cfg.Thresholds.Validate() != nil {
		cfg.Thresholds = def.Thresholds
	}
	return &Predictor{cfg: cfg}
}

// Config returns the effective configuration.
func (p *Predictor) Config() Config {
	return p.cfg
}

// Window is the trailing history window used for a prediction made today.
func (p *Predictor) Window(today time.Time) Window {
	return TrailingWindow(today, p.cfg.WindowDays)
}

// Predict projects goal forward from the observations inside the trailing
// window ending today. Missing history is not an error; a malformed goal
// fails with *model.InvalidGoalInputError.
func (p *Predictor) Predict(goal model.Goal, observations []model.SavingsObservation, today time.Time) (Result, error) {
	if err := goal.Validate(); err != nil {
		return Result{}, err
	}
	today = model.CivilDate(today)

	series := Aggregate(observations, p.Window(today))
	trend := EstimateTrend(series, p.cfg.MinDailySamples)
	rate := trend.DailyRate
	if !finite(rate) {
		rate = 0
	}

	proj := Project(goal.TargetAmount, goal.CurrentAmount, goal.Deadline, rate, today)
	risk := p.cfg.Thresholds.Classify(proj, rate)

	needed := proj.RequiredDailyRate
	weeklyNeeded := needed * 7
	if math.IsInf(needed, 1) {
		needed = proj.Remaining
		weeklyNeeded = proj.Remaining
	}

	res := Result{
		GoalID:                 goal.ID,
		DailySavingsRate:       round2(rate),
		DailySavingsNeeded:     round2(needed),
		WeeklySavingsNeeded:    round2(weeklyNeeded),
		ExpectedCompletionDate: proj.ExpectedCompletion.Format(model.DateLayout),
		SuccessProbability:     round2(proj.SuccessProbability),
		RiskLevel:              risk,
		CurrentProgress:        round2(goal.ProgressPercent()),
		AmountRemaining:        round2(proj.Remaining),
		AvgDailySavings:        round2(meanOf(series.DailyPoints())),
		AvgWeeklySavings:       round2(meanOf(series.WeeklyPoints())),
		TrendSlope:             round2(trend.Slope),
		TrendGranularity:       string(trend.Granularity),
		SampleCount:            trend.SampleCount,
		NoData:                 trend.NoData(),
		DeadlinePassed:         proj.DeadlinePassed,
	}
	if proj.Reachable() && !proj.ExpectedCompletion.Equal(FarFuture) {
		days := int(math.Ceil(proj.DaysToComplete))
		res.ExpectedDays = &days
	}
	return res, nil
}

func meanOf(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, pt := range points {
		sum += pt.Total
	}
	return sum / float64(len(points))
}

// round2 rounds to cents and maps non-finite values to zero.
func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if !finite(r) {
		return 0
	}
	return r
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

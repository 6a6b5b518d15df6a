package forecast

// DefaultMinDailySamples is the fewest daily points needed before the daily
// series is trusted over the weekly one.
const DefaultMinDailySamples = 3

// NoVariance marks a Trend estimated from zero samples.
const NoVariance = -1.0

// Granularity names the series a Trend was estimated from.
type Granularity string

const (
	GranularityNone   Granularity = "none"
	GranularityDaily  Granularity = "daily"
	GranularityWeekly Granularity = "weekly"
)

// Trend is a daily savings rate with the evidence behind it.
type Trend struct {
	DailyRate   float64
	SampleCount int
	// Variance of the per-period daily rates; NoVariance without samples.
	Variance    float64
	Slope       float64
	RSquared    float64
	Granularity Granularity
}

// NoData reports whether the rate is a default rather than an estimate.
func (t Trend) NoData() bool {
	return t.SampleCount == 0
}

// EstimateTrend derives a daily savings rate from s. It prefers the daily
// series and falls back to weekly totals spread over seven days when fewer
// than minDailySamples days have data.
func EstimateTrend(s Series, minDailySamples int) Trend {
	if minDailySamples <= 0 {
		minDailySamples = DefaultMinDailySamples
	}

	daily := s.DailyPoints()
	if len(daily) >= minDailySamples {
		return trendOf(daily, 1, GranularityDaily)
	}
	if weekly := s.WeeklyPoints(); len(weekly) > 0 {
		return trendOf(weekly, 7, GranularityWeekly)
	}
	return Trend{Variance: NoVariance, Granularity: GranularityNone}
}

func trendOf(points []Point, periodDays float64, g Granularity) Trend {
	rates := make([]float64, len(points))
	for i, p := range points {
		rates[i] = p.Total / periodDays
	}
	mean, variance := meanVariance(rates)
	slope, _, r2 := fitLine(rates)
	return Trend{
		DailyRate:   mean,
		SampleCount: len(rates),
		Variance:    variance,
		Slope:       slope,
		RSquared:    r2,
		Granularity: g,
	}
}

// meanVariance returns the mean and population variance of values.
func meanVariance(values []float64) (mean, variance float64) {
	if len(values) == 0 {
		return 0, NoVariance
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return mean, variance / float64(len(values))
}

// fitLine computes a least-squares line through values where x = 0, 1, 2, ...
func fitLine(values []float64) (slope, intercept, rSquared float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0, 0
	}
	if n < 2 {
		return 0, values[0], 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n, 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for i, y := range values {
		predicted := slope*float64(i) + intercept
		ssRes += (y - predicted) * (y - predicted)
		ssTot += (y - meanY) * (y - meanY)
	}
	if ssTot == 0 {
		return slope, intercept, 1
	}
	return slope, intercept, 1 - ssRes/ssTot
}

package forecast

import "fmt"

// RiskLevel grades how likely a goal is to be met by its deadline.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskThresholds are the minimum estimated/required ratios for each tier.
// A ratio below Medium is high risk.
type RiskThresholds struct {
	Low    float64 `toml:"low"`
	Medium float64 `toml:"medium"`
}

// DefaultRiskThresholds: on pace or better is low, at least half pace is medium.
var DefaultRiskThresholds = RiskThresholds{Low: 1.0, Medium: 0.5}

// Validate checks that the tiers are ordered.
func (t RiskThresholds) Validate() error {
	if t.Medium <= 0 || t.Low <= 0 {
		return fmt.Errorf("risk thresholds must be positive (low=%v, medium=%v)", t.Low, t.Medium)
	}
	if t.Medium > t.Low {
		return fmt.Errorf("medium risk threshold %v exceeds low risk threshold %v", t.Medium, t.Low)
	}
	return nil
}

// Classify maps a projection and the estimated rate onto a risk tier.
func (t RiskThresholds) Classify(p Projection, rate float64) RiskLevel {
	if p.Remaining == 0 {
		return RiskLow
	}
	if p.DeadlinePassed || p.DaysToDeadline == 0 {
		return RiskHigh
	}
	ratio := p.Ratio(rate)
	switch {
	case ratio >= t.Low:
		return RiskLow
	case ratio >= t.Medium:
		return RiskMedium
	default:
		return RiskHigh
	}
}

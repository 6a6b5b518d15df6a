// Package model holds the typed records shared by the store, the forecast
// core and the service layer.
package model

import (
	"math"
	"strings"
	"time"
)

// GoalType distinguishes goals whose deadline is fixed from those that may slip.
type GoalType string

const (
	GoalTypeRigid    GoalType = "rigid"
	GoalTypeFlexible GoalType = "flexible"
)

// GoalCategory groups goals for display.
type GoalCategory string

const (
	GoalCategorySavings    GoalCategory = "savings"
	GoalCategoryInvestment GoalCategory = "investment"
	GoalCategoryPurchase   GoalCategory = "purchase"
	GoalCategoryOther      GoalCategory = "other"
)

// Goal is a savings target with a deadline. Progress is always derived.
type Goal struct {
	ID            string
	Name          string
	Category      GoalCategory
	Type          GoalType
	TargetAmount  float64
	CurrentAmount float64
	Deadline      time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProgressPercent is current/target as a percentage clamped to [0, 100].
func (g *Goal) ProgressPercent() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := g.CurrentAmount / g.TargetAmount * 100
	return math.Max(0, math.Min(100, p))
}

// Remaining is the amount still to be saved, never negative.
func (g *Goal) Remaining() float64 {
	return math.Max(g.TargetAmount-g.CurrentAmount, 0)
}

// Validate checks the fields the forecast core depends on.
// A non-positive target is allowed and means the goal is already met.
func (g *Goal) Validate() error {
	if math.IsNaN(g.TargetAmount) || math.IsInf(g.TargetAmount, 0) {
		return invalidField("targetAmount", "must be a finite number", nil)
	}
	if math.IsNaN(g.CurrentAmount) || math.IsInf(g.CurrentAmount, 0) {
		return invalidField("currentAmount", "must be a finite number", nil)
	}
	if math.Abs(g.TargetAmount) > MaxAmount {
		return invalidField("targetAmount", "exceeds the maximum amount", nil)
	}
	if g.CurrentAmount < 0 {
		return invalidField("currentAmount", "must not be negative", nil)
	}
	if g.CurrentAmount > MaxAmount {
		return invalidField("currentAmount", "exceeds the maximum amount", nil)
	}
	if g.Deadline.IsZero() {
		return invalidField("deadline", "is required", nil)
	}
	return nil
}

// GoalInput is the unvalidated shape of a goal as it arrives over the wire or
// out of a schema-less document. Amounts may be numbers or numeric strings.
type GoalInput struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	Type          string `json:"type"`
	TargetAmount  any    `json:"targetAmount"`
	CurrentAmount any    `json:"currentAmount"`
	Deadline      any    `json:"deadline"`
	// TargetDate is an alias for Deadline written by older clients.
	TargetDate any `json:"targetDate,omitempty"`
}

// Goal converts the input into a typed Goal, filling defaults for optional
// fields and failing with *InvalidGoalInputError on the required ones.
func (in GoalInput) Goal() (Goal, error) {
	target, err := ParseAmount(in.TargetAmount)
	if err != nil {
		return Goal{}, fieldError("targetAmount", err)
	}
	current, err := ParseAmount(in.CurrentAmount)
	if err != nil {
		return Goal{}, fieldError("currentAmount", err)
	}

	rawDeadline := in.Deadline
	if rawDeadline == nil || rawDeadline == "" {
		rawDeadline = in.TargetDate
	}
	deadline, err := ParseDeadline(rawDeadline)
	if err != nil {
		return Goal{}, err
	}

	g := Goal{
		Name:          strings.TrimSpace(in.Name),
		Category:      normalizeCategory(in.Category),
		Type:          normalizeGoalType(in.Type),
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      CivilDate(deadline),
	}
	if g.Name == "" {
		g.Name = "Unnamed Goal"
	}
	if err := g.Validate(); err != nil {
		return Goal{}, err
	}
	return g, nil
}

// GoalFromDocument decodes a goal stored as a loosely typed document.
func GoalFromDocument(id string, data map[string]any) (Goal, error) {
	str := func(key string) string {
		s, _ := data[key].(string)
		return s
	}
	in := GoalInput{
		Name:          str("name"),
		Category:      str("category"),
		Type:          str("type"),
		TargetAmount:  data["targetAmount"],
		CurrentAmount: data["currentAmount"],
		Deadline:      data["deadline"],
		TargetDate:    data["targetDate"],
	}
	g, err := in.Goal()
	if err != nil {
		return Goal{}, err
	}
	g.ID = id
	if t, ok := data["createdAt"].(time.Time); ok {
		g.CreatedAt = t
	}
	if t, ok := data["updatedAt"].(time.Time); ok {
		g.UpdatedAt = t
	}
	return g, nil
}

// Document renders the goal in the field layout GoalFromDocument reads.
func (g *Goal) Document() map[string]any {
	return map[string]any{
		"name":          g.Name,
		"category":      string(g.Category),
		"type":          string(g.Type),
		"targetAmount":  g.TargetAmount,
		"currentAmount": g.CurrentAmount,
		"deadline":      g.Deadline,
		"createdAt":     g.CreatedAt,
		"updatedAt":     g.UpdatedAt,
	}
}

// ParseDeadline decodes a goal deadline, failing with an
// *InvalidGoalInputError for the deadline field.
func ParseDeadline(v any) (time.Time, error) {
	d, err := ParseDate(v)
	if err != nil {
		return time.Time{}, fieldError("deadline", err)
	}
	return CivilDate(d), nil
}

func fieldError(field string, err error) error {
	if IsMissing(err) {
		return invalidField(field, "is required", nil)
	}
	return invalidField(field, "is malformed", err)
}

func normalizeCategory(s string) GoalCategory {
	switch c := GoalCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case GoalCategorySavings, GoalCategoryInvestment, GoalCategoryPurchase:
		return c
	default:
		return GoalCategoryOther
	}
}

func normalizeGoalType(s string) GoalType {
	if GoalType(strings.ToLower(strings.TrimSpace(s))) == GoalTypeRigid {
		return GoalTypeRigid
	}
	return GoalTypeFlexible
}

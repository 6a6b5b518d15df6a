package rpc

import (
	"time"

	"github.com/castlemilk/savetrack/internal/forecast"
	"github.com/castlemilk/savetrack/internal/model"
)

// Goal is the wire view of a goal. Progress is computed when the view is built.
type Goal struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Type          string  `json:"type"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	Deadline      string  `json:"deadline"`
	Progress      float64 `json:"progress"`
	CreatedAt     string  `json:"createdAt,omitempty"`
	UpdatedAt     string  `json:"updatedAt,omitempty"`
}

// GoalFromModel builds the wire view of g.
func GoalFromModel(g *model.Goal) Goal {
	out := Goal{
		ID:            g.ID,
		Name:          g.Name,
		Category:      string(g.Category),
		Type:          string(g.Type),
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Deadline:      model.FormatDate(g.Deadline),
		Progress:      g.ProgressPercent(),
	}
	if !g.CreatedAt.IsZero() {
		out.CreatedAt = g.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !g.UpdatedAt.IsZero() {
		out.UpdatedAt = g.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

// Transaction is the wire view of a UPI or cash transaction.
type Transaction struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Merchant    string  `json:"merchant,omitempty"`
	Location    string  `json:"location,omitempty"`
}

// TransactionFromModel builds the wire view of t.
func TransactionFromModel(t model.Transaction) Transaction {
	return Transaction{
		ID:          t.ID,
		Source:      string(t.Source),
		Date:        model.FormatDate(t.Date),
		Amount:      t.Amount,
		Description: t.Description,
		Category:    t.Category,
		Merchant:    t.Merchant,
		Location:    t.Location,
	}
}

// Savings is the wire view of a daily savings observation.
type Savings struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// SavingsFromModel builds the wire view of o.
func SavingsFromModel(o model.SavingsObservation) Savings {
	return Savings{ID: o.ID, Date: model.FormatDate(o.Date), Amount: o.Amount, Description: o.Description}
}

// GoalService messages

type CreateGoalRequest struct {
	model.GoalInput
}

type CreateGoalResponse struct {
	Goal Goal `json:"goal"`
}

type GetGoalRequest struct {
	GoalID string `json:"goalId"`
}

type GetGoalResponse struct {
	Goal Goal `json:"goal"`
}

type ListGoalsRequest struct {
	PageSize  int32  `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
}

type ListGoalsResponse struct {
	Goals         []Goal `json:"goals"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

type PredictGoalRequest struct {
	GoalID string `json:"goalId"`
	// AsOf overrides the prediction date ("2006-01-02"); empty means today.
	AsOf string `json:"asOf,omitempty"`
}

type PredictGoalResponse struct {
	Prediction forecast.Result `json:"prediction"`
}

// InsightsService messages

type ListTransactionsRequest struct {
	// Source is "upi", "cash" or empty for both.
	Source string `json:"source,omitempty"`
	Since  string `json:"since,omitempty"`
	Until  string `json:"until,omitempty"`
}

type ListTransactionsResponse struct {
	UPITransactions  []Transaction `json:"upiTransactions"`
	CashTransactions []Transaction `json:"cashTransactions"`
	DailySavings     []Savings     `json:"dailySavings"`
}

type RecordSavingsRequest struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

type RecordSavingsResponse struct {
	Savings Savings `json:"savings"`
}

type GetSavingsOutlookRequest struct {
	// Period is "weekly" or "monthly".
	Period string `json:"period"`
}

type GetSavingsOutlookResponse struct {
	Outlook forecast.Outlook `json:"outlook"`
}

type GetSavingsProjectionRequest struct {
	Months int `json:"months,omitempty"`
}

type GetSavingsProjectionResponse struct {
	Projection forecast.SavingsProjection `json:"projection"`
}

// Series kinds accepted by GetSeries.
const (
	SeriesKindSavings  = "savings"
	SeriesKindExpenses = "expenses"
)

type GetSeriesRequest struct {
	Kind   string `json:"kind"`
	Period string `json:"period,omitempty"`
}

type SeriesPoint struct {
	Period string  `json:"period"`
	Total  float64 `json:"total"`
}

type GetSeriesResponse struct {
	Kind   string        `json:"kind"`
	Period string        `json:"period"`
	Points []SeriesPoint `json:"points"`
}

type GetCategoryBudgetRequest struct {
	// WindowDays is the history to average over; zero means 90 days.
	WindowDays int `json:"windowDays,omitempty"`
}

type GetCategoryBudgetResponse struct {
	Since      string                   `json:"since"`
	Until      string                   `json:"until"`
	Categories []forecast.CategoryShare `json:"categories"`
}

type ExportPredictionsRequest struct{}

type ExportPredictionsResponse struct {
	Location  string `json:"location"`
	GoalCount int    `json:"goalCount"`
}

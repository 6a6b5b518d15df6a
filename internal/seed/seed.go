// Package seed generates sample transactions, savings and goals for local
// development and demos.
package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/castlemilk/savetrack/internal/model"
	"github.com/castlemilk/savetrack/internal/store"
)

// DefaultDays is how much history Generate produces by default.
const DefaultDays = 90

// Categories used for sample expenses.
var Categories = []string{"Food", "Transport", "Shopping", "Bills", "Entertainment", "Healthcare"}

// Data is one generated data set.
type Data struct {
	Transactions []model.Transaction
	Savings      []model.SavingsObservation
	Goals        []model.Goal
}

// Counts reports how many records were written.
type Counts struct {
	UPI     int
	Cash    int
	Savings int
	Goals   int
}

func (c Counts) String() string {
	return fmt.Sprintf("%d UPI transactions, %d cash transactions, %d savings, %d goals",
		c.UPI, c.Cash, c.Savings, c.Goals)
}

// Generate builds days+1 days of history ending today: 0-3 UPI payments of
// 100-5000, 0-2 cash payments of 50-2000 and one savings entry of 100-2000
// per day, plus a few goals at different risk levels.
func Generate(rng *rand.Rand, today time.Time, days int) Data {
	if days <= 0 {
		days = DefaultDays
	}
	today = model.CivilDate(today)
	start := today.AddDate(0, 0, -days)

	var data Data
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		for i, n := 0, rng.Intn(4); i < n; i++ {
			data.Transactions = append(data.Transactions, model.Transaction{
				ID:          uuid.New().String(),
				Source:      model.SourceUPI,
				Date:        d,
				Amount:      amountBetween(rng, 100, 5000),
				Description: fmt.Sprintf("UPI Payment %d", 1000+rng.Intn(9000)),
				Category:    Categories[rng.Intn(len(Categories))],
				Merchant:    fmt.Sprintf("Merchant %d", 1+rng.Intn(20)),
			})
		}
		for i, n := 0, rng.Intn(3); i < n; i++ {
			data.Transactions = append(data.Transactions, model.Transaction{
				ID:          uuid.New().String(),
				Source:      model.SourceCash,
				Date:        d,
				Amount:      amountBetween(rng, 50, 2000),
				Description: fmt.Sprintf("Cash Payment %d", 1000+rng.Intn(9000)),
				Category:    Categories[rng.Intn(len(Categories))],
				Location:    fmt.Sprintf("Location %d", 1+rng.Intn(15)),
			})
		}
		data.Savings = append(data.Savings, model.SavingsObservation{
			ID:          uuid.New().String(),
			Date:        d,
			Amount:      amountBetween(rng, 100, 2000),
			Description: "Daily Savings " + model.FormatDate(d),
		})
	}

	data.Goals = []model.Goal{
		{
			Name:          "Emergency Fund",
			Category:      model.GoalCategorySavings,
			Type:          model.GoalTypeFlexible,
			TargetAmount:  100000,
			CurrentAmount: 40000,
			Deadline:      today.AddDate(0, 6, 0),
		},
		{
			Name:          "New Laptop",
			Category:      model.GoalCategoryPurchase,
			Type:          model.GoalTypeRigid,
			TargetAmount:  90000,
			CurrentAmount: 15000,
			Deadline:      today.AddDate(0, 1, 0),
		},
		{
			Name:          "Index Fund",
			Category:      model.GoalCategoryInvestment,
			Type:          model.GoalTypeFlexible,
			TargetAmount:  250000,
			CurrentAmount: 20000,
			Deadline:      today.AddDate(0, 0, 14),
		},
	}
	return data
}

// Load writes data to st. Existing records are left in place.
func Load(ctx context.Context, st store.Store, data Data) (Counts, error) {
	var c Counts
	for i := range data.Transactions {
		txn := data.Transactions[i]
		if err := st.CreateTransaction(ctx, &txn); err != nil {
			return c, fmt.Errorf("failed to seed transaction: %w", err)
		}
		if txn.Source == model.SourceUPI {
			c.UPI++
		} else {
			c.Cash++
		}
	}
	for i := range data.Savings {
		obs := data.Savings[i]
		if err := st.RecordSavings(ctx, &obs); err != nil {
			return c, fmt.Errorf("failed to seed savings: %w", err)
		}
		c.Savings++
	}
	for i := range data.Goals {
		goal := data.Goals[i]
		if err := st.CreateGoal(ctx, &goal); err != nil {
			return c, fmt.Errorf("failed to seed goal: %w", err)
		}
		c.Goals++
	}
	return c, nil
}

func amountBetween(rng *rand.Rand, lo, hi float64) float64 {
	return math.Round((lo+rng.Float64()*(hi-lo))*100) / 100
}

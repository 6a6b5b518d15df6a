package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/castlemilk/savetrack/internal/model"
	"github.com/castlemilk/savetrack/internal/store"
)

// testToday is a Sunday, so it also starts a week bucket.
var testToday = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testToday.Add(9 * time.Hour)
}

func newTestService(st store.Store, opts ...Option) *FinanceService {
	return NewFinanceService(st, append([]Option{WithClock(fixedClock)}, opts...)...)
}

func daysAgo(n int) time.Time {
	return testToday.AddDate(0, 0, -n)
}

// seedSavings records amount on each of the last n days, today included.
func seedSavings(t *testing.T, st store.Store, n int, amount float64) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, st.RecordSavings(context.Background(), &model.SavingsObservation{
			Date:   daysAgo(i),
			Amount: amount,
		}))
	}
}

func seedGoal(t *testing.T, st store.Store, g model.Goal) *model.Goal {
	t.Helper()
	require.NoError(t, st.CreateGoal(context.Background(), &g))
	return &g
}

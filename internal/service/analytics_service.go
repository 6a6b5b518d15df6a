package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/castlemilk/savetrack/internal/forecast"
	"github.com/castlemilk/savetrack/internal/model"
	"github.com/castlemilk/savetrack/internal/rpc"
)

// DefaultBudgetWindowDays is the history GetCategoryBudget averages over
// when the request leaves it unset.
const DefaultBudgetWindowDays = 90

// ============================================================================
// Transactions and Savings
// ============================================================================

// ListTransactions returns UPI and cash transactions plus recorded daily
// savings. A source filter restricts the result to that channel.
func (s *FinanceService) ListTransactions(ctx context.Context, req *connect.Request[rpc.ListTransactionsRequest]) (*connect.Response[rpc.ListTransactionsResponse], error) {
	since, err := optionalDate("since", req.Msg.Since)
	if err != nil {
		return nil, err
	}
	until, err := optionalDate("until", req.Msg.Until)
	if err != nil {
		return nil, err
	}

	var source model.TransactionSource
	if req.Msg.Source != "" {
		src, ok := model.ParseTransactionSource(req.Msg.Source)
		if !ok {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("unknown transaction source %q", req.Msg.Source))
		}
		source = src
	}

	txns, err := s.store.ListTransactions(ctx, source, since, until)
	if err != nil {
		return nil, wrapStoreError("list transactions", err)
	}

	resp := &rpc.ListTransactionsResponse{
		UPITransactions:  []rpc.Transaction{},
		CashTransactions: []rpc.Transaction{},
		DailySavings:     []rpc.Savings{},
	}
	for _, t := range txns {
		switch t.Source {
		case model.SourceUPI:
			resp.UPITransactions = append(resp.UPITransactions, rpc.TransactionFromModel(t))
		case model.SourceCash:
			resp.CashTransactions = append(resp.CashTransactions, rpc.TransactionFromModel(t))
		}
	}

	if source == "" {
		obs, err := s.store.ListSavings(ctx, since, until)
		if err != nil {
			return nil, wrapStoreError("list savings", err)
		}
		for _, o := range obs {
			resp.DailySavings = append(resp.DailySavings, rpc.SavingsFromModel(o))
		}
	}
	return connect.NewResponse(resp), nil
}

// RecordSavings stores one daily savings observation.
func (s *FinanceService) RecordSavings(ctx context.Context, req *connect.Request[rpc.RecordSavingsRequest]) (*connect.Response[rpc.RecordSavingsResponse], error) {
	date, err := model.ParseDate(req.Msg.Date)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("date: %w", err))
	}
	amount, err := model.ParseAmount(req.Msg.Amount)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("amount: %w", err))
	}
	if amount < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("amount must not be negative"))
	}

	obs := model.SavingsObservation{
		ID:          uuid.New().String(),
		Date:        model.CivilDate(date),
		Amount:      amount,
		Description: req.Msg.Description,
	}
	if err := s.store.RecordSavings(ctx, &obs); err != nil {
		return nil, wrapStoreError("record savings", err)
	}

	s.log.WithFields(logrus.Fields{
		"savings_id": obs.ID,
		"date":       model.FormatDate(obs.Date),
		"amount":     obs.Amount,
	}).Debug("savings recorded")

	return connect.NewResponse(&rpc.RecordSavingsResponse{Savings: rpc.SavingsFromModel(obs)}), nil
}

// ============================================================================
// Savings Insights
// ============================================================================

// GetSavingsOutlook estimates how much can be saved by the end of the next
// week or month from the average of past period totals.
func (s *FinanceService) GetSavingsOutlook(ctx context.Context, req *connect.Request[rpc.GetSavingsOutlookRequest]) (*connect.Response[rpc.GetSavingsOutlookResponse], error) {
	period, err := forecast.ParsePeriod(req.Msg.Period)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	obs, err := s.store.ListSavings(ctx, nil, nil)
	if err != nil {
		return nil, wrapStoreError("list savings", err)
	}

	outlook, err := forecast.NextPeriodSavings(forecast.EntriesFromObservations(obs), period, s.currency)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.GetSavingsOutlookResponse{Outlook: outlook}), nil
}

// GetSavingsProjection extends the monthly savings trend over the coming months.
func (s *FinanceService) GetSavingsProjection(ctx context.Context, req *connect.Request[rpc.GetSavingsProjectionRequest]) (*connect.Response[rpc.GetSavingsProjectionResponse], error) {
	if req.Msg.Months < 0 || req.Msg.Months > forecast.MaxProjectionMonths {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("months must be between 0 and %d", forecast.MaxProjectionMonths))
	}

	obs, err := s.store.ListSavings(ctx, nil, nil)
	if err != nil {
		return nil, wrapStoreError("list savings", err)
	}

	projection, err := forecast.ProjectSavings(forecast.EntriesFromObservations(obs), req.Msg.Months)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.GetSavingsProjectionResponse{Projection: projection}), nil
}

// ============================================================================
// Series and Budget
// ============================================================================

// GetSeries buckets savings or expenses weekly or monthly.
func (s *FinanceService) GetSeries(ctx context.Context, req *connect.Request[rpc.GetSeriesRequest]) (*connect.Response[rpc.GetSeriesResponse], error) {
	period, err := forecast.ParsePeriod(req.Msg.Period)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	var entries []forecast.Entry
	switch req.Msg.Kind {
	case rpc.SeriesKindSavings:
		obs, err := s.store.ListSavings(ctx, nil, nil)
		if err != nil {
			return nil, wrapStoreError("list savings", err)
		}
		entries = forecast.EntriesFromObservations(obs)
	case rpc.SeriesKindExpenses:
		txns, err := s.store.ListTransactions(ctx, "", nil, nil)
		if err != nil {
			return nil, wrapStoreError("list transactions", err)
		}
		entries = forecast.EntriesFromTransactions(txns)
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("kind must be %q or %q", rpc.SeriesKindSavings, rpc.SeriesKindExpenses))
	}

	totals := forecast.Totals(entries, period)
	points := make([]rpc.SeriesPoint, 0, len(totals))
	for _, pt := range totals {
		points = append(points, rpc.SeriesPoint{Period: pt.Date, Total: pt.Total})
	}
	return connect.NewResponse(&rpc.GetSeriesResponse{
		Kind:   req.Msg.Kind,
		Period: string(period),
		Points: points,
	}), nil
}

// GetCategoryBudget reports average monthly spending per category across
// UPI and cash transactions in the last WindowDays days, today included.
func (s *FinanceService) GetCategoryBudget(ctx context.Context, req *connect.Request[rpc.GetCategoryBudgetRequest]) (*connect.Response[rpc.GetCategoryBudgetResponse], error) {
	days := req.Msg.WindowDays
	if days < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("windowDays must not be negative"))
	}
	if days == 0 {
		days = DefaultBudgetWindowDays
	}

	today := s.today()
	w := forecast.Window{Since: today.AddDate(0, 0, 1-days), Until: today}
	txns, err := s.store.ListTransactions(ctx, "", &w.Since, &w.Until)
	if err != nil {
		return nil, wrapStoreError("list transactions", err)
	}

	return connect.NewResponse(&rpc.GetCategoryBudgetResponse{
		Since:      model.FormatDate(w.Since),
		Until:      model.FormatDate(w.Until),
		Categories: forecast.CategoryBudget(forecast.EntriesFromTransactions(txns), w),
	}), nil
}

func optionalDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s: %w", field, err))
	}
	d = model.CivilDate(d)
	return &d, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/sirupsen/logrus"

	"github.com/castlemilk/savetrack/internal/export"
	"github.com/castlemilk/savetrack/internal/forecast"
	"github.com/castlemilk/savetrack/internal/logging"
	"github.com/castlemilk/savetrack/internal/metrics"
	"github.com/castlemilk/savetrack/internal/model"
	"github.com/castlemilk/savetrack/internal/rpc"
	"github.com/castlemilk/savetrack/internal/store"
)

var (
	_ rpc.GoalServiceHandler     = (*FinanceService)(nil)
	_ rpc.InsightsServiceHandler = (*FinanceService)(nil)
)

// FinanceService implements the goal and insights RPCs on top of a Store.
type FinanceService struct {
	store     store.Store
	predictor *forecast.Predictor
	log       logrus.FieldLogger
	metrics   *metrics.Metrics
	now       func() time.Time
	currency  string
	sink      export.Sink

	sweep sweepState
}

// Option configures a FinanceService.
type Option func(*FinanceService)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *FinanceService) { s.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *FinanceService) { s.metrics = m }
}

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *FinanceService) { s.now = now }
}

func WithPredictor(p *forecast.Predictor) Option {
	return func(s *FinanceService) { s.predictor = p }
}

// WithCurrency sets the symbol used in savings outlook messages.
func WithCurrency(symbol string) Option {
	return func(s *FinanceService) { s.currency = symbol }
}

// WithExportSink enables ExportPredictions.
func WithExportSink(sink export.Sink) Option {
	return func(s *FinanceService) { s.sink = sink }
}

func NewFinanceService(st store.Store, opts ...Option) *FinanceService {
	s := &FinanceService{
		store:     st,
		predictor: forecast.NewPredictor(forecast.DefaultConfig()),
		log:       logging.Discard(),
		now:       time.Now,
		currency:  forecast.DefaultCurrencySymbol,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "finance_service")
	return s
}

func (s *FinanceService) today() time.Time {
	return model.CivilDate(s.now())
}

// CreateGoal validates and stores a new goal.
func (s *FinanceService) CreateGoal(ctx context.Context, req *connect.Request[rpc.CreateGoalRequest]) (*connect.Response[rpc.CreateGoalResponse], error) {
	goal, err := req.Msg.GoalInput.Goal()
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.CreateGoal(ctx, &goal); err != nil {
		return nil, wrapStoreError("create goal", err)
	}

	s.log.WithFields(logrus.Fields{
		"goal_id":  goal.ID,
		"target":   goal.TargetAmount,
		"deadline": model.FormatDate(goal.Deadline),
	}).Info("goal created")

	return connect.NewResponse(&rpc.CreateGoalResponse{Goal: rpc.GoalFromModel(&goal)}), nil
}

// GetGoal returns a single goal with its derived progress.
func (s *FinanceService) GetGoal(ctx context.Context, req *connect.Request[rpc.GetGoalRequest]) (*connect.Response[rpc.GetGoalResponse], error) {
	if req.Msg.GoalID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("goal id is required"))
	}
	goal, err := s.store.GetGoal(ctx, req.Msg.GoalID)
	if err != nil {
		return nil, wrapStoreError("get goal", err)
	}
	return connect.NewResponse(&rpc.GetGoalResponse{Goal: rpc.GoalFromModel(goal)}), nil
}

// ListGoals pages through stored goals.
func (s *FinanceService) ListGoals(ctx context.Context, req *connect.Request[rpc.ListGoalsRequest]) (*connect.Response[rpc.ListGoalsResponse], error) {
	goals, next, err := s.store.ListGoals(ctx, req.Msg.PageSize, req.Msg.PageToken)
	if err != nil {
		return nil, wrapStoreError("list goals", err)
	}

	views := make([]rpc.Goal, 0, len(goals))
	for _, g := range goals {
		views = append(views, rpc.GoalFromModel(g))
	}
	return connect.NewResponse(&rpc.ListGoalsResponse{Goals: views, NextPageToken: next}), nil
}

// PredictGoal forecasts whether a goal will be met by its deadline from the
// savings recorded in the trailing window.
func (s *FinanceService) PredictGoal(ctx context.Context, req *connect.Request[rpc.PredictGoalRequest]) (*connect.Response[rpc.PredictGoalResponse], error) {
	if req.Msg.GoalID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("goal id is required"))
	}
	today := s.today()
	if req.Msg.AsOf != "" {
		asOf, err := model.ParseDate(req.Msg.AsOf)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("asOf: %w", err))
		}
		today = model.CivilDate(asOf)
	}

	goal, err := s.store.GetGoal(ctx, req.Msg.GoalID)
	if err != nil {
		return nil, wrapStoreError("get goal", err)
	}
	obs, err := s.windowSavings(ctx, today)
	if err != nil {
		return nil, err
	}

	result, err := s.predict(goal, obs, today)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&rpc.PredictGoalResponse{Prediction: result}), nil
}

// windowSavings loads the observations the predictor will look at.
func (s *FinanceService) windowSavings(ctx context.Context, today time.Time) ([]model.SavingsObservation, error) {
	w := s.predictor.Window(today)
	obs, err := s.store.ListSavings(ctx, &w.Since, &w.Until)
	if err != nil {
		return nil, wrapStoreError("list savings", err)
	}
	return obs, nil
}

func (s *FinanceService) predict(goal *model.Goal, obs []model.SavingsObservation, today time.Time) (forecast.Result, error) {
	result, err := s.predictor.Predict(*goal, obs, today)
	if err != nil {
		s.metrics.ObservePredictionError()
		s.log.WithError(err).WithField("goal_id", goal.ID).Warn("goal rejected by predictor")
		return forecast.Result{}, err
	}
	result.GoalID = goal.ID
	s.metrics.ObservePrediction(string(result.RiskLevel))
	return result, nil
}

// toConnectError maps domain errors onto connect codes. Errors that are
// already *connect.Error pass through.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return err
	}
	switch {
	case errors.Is(err, model.ErrInvalidGoalInput):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, store.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, forecast.ErrNotEnoughData):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func wrapStoreError(op string, err error) error {
	return toConnectError(fmt.Errorf("failed to %s: %w", op, err))
}

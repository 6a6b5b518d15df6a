package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// GoalServiceName is the fully-qualified name of the GoalService service.
const GoalServiceName = "savetrack.v1.GoalService"

// These constants are the fully-qualified names of the RPCs defined in GoalService.
const (
	GoalServiceCreateGoalProcedure  = "/savetrack.v1.GoalService/CreateGoal"
	GoalServiceGetGoalProcedure     = "/savetrack.v1.GoalService/GetGoal"
	GoalServiceListGoalsProcedure   = "/savetrack.v1.GoalService/ListGoals"
	GoalServicePredictGoalProcedure = "/savetrack.v1.GoalService/PredictGoal"
)

// GoalServiceClient is a client for the savetrack.v1.GoalService service.
type GoalServiceClient interface {
	CreateGoal(context.Context, *connect.Request[CreateGoalRequest]) (*connect.Response[CreateGoalResponse], error)
	GetGoal(context.Context, *connect.Request[GetGoalRequest]) (*connect.Response[GetGoalResponse], error)
	ListGoals(context.Context, *connect.Request[ListGoalsRequest]) (*connect.Response[ListGoalsResponse], error)
	PredictGoal(context.Context, *connect.Request[PredictGoalRequest]) (*connect.Response[PredictGoalResponse], error)
}

// NewGoalServiceClient constructs a client for the savetrack.v1.GoalService
// service. The JSON codec is always applied.
func NewGoalServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GoalServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &goalServiceClient{
		createGoal:  connect.NewClient[CreateGoalRequest, CreateGoalResponse](httpClient, baseURL+GoalServiceCreateGoalProcedure, opts...),
		getGoal:     connect.NewClient[GetGoalRequest, GetGoalResponse](httpClient, baseURL+GoalServiceGetGoalProcedure, opts...),
		listGoals:   connect.NewClient[ListGoalsRequest, ListGoalsResponse](httpClient, baseURL+GoalServiceListGoalsProcedure, opts...),
		predictGoal: connect.NewClient[PredictGoalRequest, PredictGoalResponse](httpClient, baseURL+GoalServicePredictGoalProcedure, opts...),
	}
}

type goalServiceClient struct {
	createGoal  *connect.Client[CreateGoalRequest, CreateGoalResponse]
	getGoal     *connect.Client[GetGoalRequest, GetGoalResponse]
	listGoals   *connect.Client[ListGoalsRequest, ListGoalsResponse]
	predictGoal *connect.Client[PredictGoalRequest, PredictGoalResponse]
}

func (c *goalServiceClient) CreateGoal(ctx context.Context, req *connect.Request[CreateGoalRequest]) (*connect.Response[CreateGoalResponse], error) {
	return c.createGoal.CallUnary(ctx, req)
}

func (c *goalServiceClient) GetGoal(ctx context.Context, req *connect.Request[GetGoalRequest]) (*connect.Response[GetGoalResponse], error) {
	return c.getGoal.CallUnary(ctx, req)
}

func (c *goalServiceClient) ListGoals(ctx context.Context, req *connect.Request[ListGoalsRequest]) (*connect.Response[ListGoalsResponse], error) {
	return c.listGoals.CallUnary(ctx, req)
}

func (c *goalServiceClient) PredictGoal(ctx context.Context, req *connect.Request[PredictGoalRequest]) (*connect.Response[PredictGoalResponse], error) {
	return c.predictGoal.CallUnary(ctx, req)
}

// GoalServiceHandler is an implementation of the savetrack.v1.GoalService service.
type GoalServiceHandler interface {
	CreateGoal(context.Context, *connect.Request[CreateGoalRequest]) (*connect.Response[CreateGoalResponse], error)
	GetGoal(context.Context, *connect.Request[GetGoalRequest]) (*connect.Response[GetGoalResponse], error)
	ListGoals(context.Context, *connect.Request[ListGoalsRequest]) (*connect.Response[ListGoalsResponse], error)
	PredictGoal(context.Context, *connect.Request[PredictGoalRequest]) (*connect.Response[PredictGoalResponse], error)
}

// NewGoalServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewGoalServiceHandler(svc GoalServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	createGoalHandler := connect.NewUnaryHandler(GoalServiceCreateGoalProcedure, svc.CreateGoal, opts...)
	getGoalHandler := connect.NewUnaryHandler(GoalServiceGetGoalProcedure, svc.GetGoal, opts...)
	listGoalsHandler := connect.NewUnaryHandler(GoalServiceListGoalsProcedure, svc.ListGoals, opts...)
	predictGoalHandler := connect.NewUnaryHandler(GoalServicePredictGoalProcedure, svc.PredictGoal, opts...)
	return "/" + GoalServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case GoalServiceCreateGoalProcedure:
			createGoalHandler.ServeHTTP(w, r)
		case GoalServiceGetGoalProcedure:
			getGoalHandler.ServeHTTP(w, r)
		case GoalServiceListGoalsProcedure:
			listGoalsHandler.ServeHTTP(w, r)
		case GoalServicePredictGoalProcedure:
			predictGoalHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

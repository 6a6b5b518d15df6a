package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// InsightsServiceName is the fully-qualified name of the InsightsService service.
const InsightsServiceName = "savetrack.v1.InsightsService"

// These constants are the fully-qualified names of the RPCs defined in InsightsService.
const (
	InsightsServiceListTransactionsProcedure     = "/savetrack.v1.InsightsService/ListTransactions"
	InsightsServiceRecordSavingsProcedure        = "/savetrack.v1.InsightsService/RecordSavings"
	InsightsServiceGetSavingsOutlookProcedure    = "/savetrack.v1.InsightsService/GetSavingsOutlook"
	InsightsServiceGetSavingsProjectionProcedure = "/savetrack.v1.InsightsService/GetSavingsProjection"
	InsightsServiceGetSeriesProcedure            = "/savetrack.v1.InsightsService/GetSeries"
	InsightsServiceGetCategoryBudgetProcedure    = "/savetrack.v1.InsightsService/GetCategoryBudget"
	InsightsServiceExportPredictionsProcedure    = "/savetrack.v1.InsightsService/ExportPredictions"
)

// InsightsServiceClient is a client for the savetrack.v1.InsightsService service.
type InsightsServiceClient interface {
	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
	RecordSavings(context.Context, *connect.Request[RecordSavingsRequest]) (*connect.Response[RecordSavingsResponse], error)
	GetSavingsOutlook(context.Context, *connect.Request[GetSavingsOutlookRequest]) (*connect.Response[GetSavingsOutlookResponse], error)
	GetSavingsProjection(context.Context, *connect.Request[GetSavingsProjectionRequest]) (*connect.Response[GetSavingsProjectionResponse], error)
	GetSeries(context.Context, *connect.Request[GetSeriesRequest]) (*connect.Response[GetSeriesResponse], error)
	GetCategoryBudget(context.Context, *connect.Request[GetCategoryBudgetRequest]) (*connect.Response[GetCategoryBudgetResponse], error)
	ExportPredictions(context.Context, *connect.Request[ExportPredictionsRequest]) (*connect.Response[ExportPredictionsResponse], error)
}

// NewInsightsServiceClient constructs a client for the
// savetrack.v1.InsightsService service. The JSON codec is always applied.
func NewInsightsServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) InsightsServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &insightsServiceClient{
		listTransactions:     connect.NewClient[ListTransactionsRequest, ListTransactionsResponse](httpClient, baseURL+InsightsServiceListTransactionsProcedure, opts...),
		recordSavings:        connect.NewClient[RecordSavingsRequest, RecordSavingsResponse](httpClient, baseURL+InsightsServiceRecordSavingsProcedure, opts...),
		getSavingsOutlook:    connect.NewClient[GetSavingsOutlookRequest, GetSavingsOutlookResponse](httpClient, baseURL+InsightsServiceGetSavingsOutlookProcedure, opts...),
		getSavingsProjection: connect.NewClient[GetSavingsProjectionRequest, GetSavingsProjectionResponse](httpClient, baseURL+InsightsServiceGetSavingsProjectionProcedure, opts...),
		getSeries:            connect.NewClient[GetSeriesRequest, GetSeriesResponse](httpClient, baseURL+InsightsServiceGetSeriesProcedure, opts...),
		getCategoryBudget:    connect.NewClient[GetCategoryBudgetRequest, GetCategoryBudgetResponse](httpClient, baseURL+InsightsServiceGetCategoryBudgetProcedure, opts...),
		exportPredictions:    connect.NewClient[ExportPredictionsRequest, ExportPredictionsResponse](httpClient, baseURL+InsightsServiceExportPredictionsProcedure, opts...),
	}
}

type insightsServiceClient struct {
	listTransactions     *connect.Client[ListTransactionsRequest, ListTransactionsResponse]
	recordSavings        *connect.Client[RecordSavingsRequest, RecordSavingsResponse]
	getSavingsOutlook    *connect.Client[GetSavingsOutlookRequest, GetSavingsOutlookResponse]
	getSavingsProjection *connect.Client[GetSavingsProjectionRequest, GetSavingsProjectionResponse]
	getSeries            *connect.Client[GetSeriesRequest, GetSeriesResponse]
	getCategoryBudget    *connect.Client[GetCategoryBudgetRequest, GetCategoryBudgetResponse]
	exportPredictions    *connect.Client[ExportPredictionsRequest, ExportPredictionsResponse]
}

func (c *insightsServiceClient) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *insightsServiceClient) RecordSavings(ctx context.Context, req *connect.Request[RecordSavingsRequest]) (*connect.Response[RecordSavingsResponse], error) {
	return c.recordSavings.CallUnary(ctx, req)
}

func (c *insightsServiceClient) GetSavingsOutlook(ctx context.Context, req *connect.Request[GetSavingsOutlookRequest]) (*connect.Response[GetSavingsOutlookResponse], error) {
	return c.getSavingsOutlook.CallUnary(ctx, req)
}

func (c *insightsServiceClient) GetSavingsProjection(ctx context.Context, req *connect.Request[GetSavingsProjectionRequest]) (*connect.Response[GetSavingsProjectionResponse], error) {
	return c.getSavingsProjection.CallUnary(ctx, req)
}

func (c *insightsServiceClient) GetSeries(ctx context.Context, req *connect.Request[GetSeriesRequest]) (*connect.Response[GetSeriesResponse], error) {
	return c.getSeries.CallUnary(ctx, req)
}

func (c *insightsServiceClient) GetCategoryBudget(ctx context.Context, req *connect.Request[GetCategoryBudgetRequest]) (*connect.Response[GetCategoryBudgetResponse], error) {
	return c.getCategoryBudget.CallUnary(ctx, req)
}

func (c *insightsServiceClient) ExportPredictions(ctx context.Context, req *connect.Request[ExportPredictionsRequest]) (*connect.Response[ExportPredictionsResponse], error) {
	return c.exportPredictions.CallUnary(ctx, req)
}

// InsightsServiceHandler is an implementation of the savetrack.v1.InsightsService service.
type InsightsServiceHandler interface {
	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
	RecordSavings(context.Context, *connect.Request[RecordSavingsRequest]) (*connect.Response[RecordSavingsResponse], error)
	GetSavingsOutlook(context.Context, *connect.Request[GetSavingsOutlookRequest]) (*connect.Response[GetSavingsOutlookResponse], error)
	GetSavingsProjection(context.Context, *connect.Request[GetSavingsProjectionRequest]) (*connect.Response[GetSavingsProjectionResponse], error)
	GetSeries(context.Context, *connect.Request[GetSeriesRequest]) (*connect.Response[GetSeriesResponse], error)
	GetCategoryBudget(context.Context, *connect.Request[GetCategoryBudgetRequest]) (*connect.Response[GetCategoryBudgetResponse], error)
	ExportPredictions(context.Context, *connect.Request[ExportPredictionsRequest]) (*connect.Response[ExportPredictionsResponse], error)
}

// NewInsightsServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewInsightsServiceHandler(svc InsightsServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	listTransactionsHandler := connect.NewUnaryHandler(InsightsServiceListTransactionsProcedure, svc.ListTransactions, opts...)
	recordSavingsHandler := connect.NewUnaryHandler(InsightsServiceRecordSavingsProcedure, svc.RecordSavings, opts...)
	getSavingsOutlookHandler := connect.NewUnaryHandler(InsightsServiceGetSavingsOutlookProcedure, svc.GetSavingsOutlook, opts...)
	getSavingsProjectionHandler := connect.NewUnaryHandler(InsightsServiceGetSavingsProjectionProcedure, svc.GetSavingsProjection, opts...)
	getSeriesHandler := connect.NewUnaryHandler(InsightsServiceGetSeriesProcedure, svc.GetSeries, opts...)
	getCategoryBudgetHandler := connect.NewUnaryHandler(InsightsServiceGetCategoryBudgetProcedure, svc.GetCategoryBudget, opts...)
	exportPredictionsHandler := connect.NewUnaryHandler(InsightsServiceExportPredictionsProcedure, svc.ExportPredictions, opts...)
	return "/" + InsightsServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case InsightsServiceListTransactionsProcedure:
			listTransactionsHandler.ServeHTTP(w, r)
		case InsightsServiceRecordSavingsProcedure:
			recordSavingsHandler.ServeHTTP(w, r)
		case InsightsServiceGetSavingsOutlookProcedure:
			getSavingsOutlookHandler.ServeHTTP(w, r)
		case InsightsServiceGetSavingsProjectionProcedure:
			getSavingsProjectionHandler.ServeHTTP(w, r)
		case InsightsServiceGetSeriesProcedure:
			getSeriesHandler.ServeHTTP(w, r)
		case InsightsServiceGetCategoryBudgetProcedure:
			getCategoryBudgetHandler.ServeHTTP(w, r)
		case InsightsServiceExportPredictionsProcedure:
			exportPredictionsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"

	"github.com/castlemilk/savetrack/internal/model"
	"github.com/castlemilk/savetrack/internal/rpc"
)

// errorResponse is the REST error body. Field names the offending goal field
// when the request was rejected during validation.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	body := errorResponse{Error: err.Error()}
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		body.Error = cerr.Message()
	}
	var invalid *model.InvalidGoalInputError
	if errors.As(err, &invalid) {
		body.Field = invalid.Field
	}
	writeJSON(w, httpStatus(connect.CodeOf(err)), body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// httpStatus maps connect codes used by the service onto HTTP statuses.
func httpStatus(code connect.Code) int {
	switch code {
	case connect.CodeInvalidArgument, connect.CodeFailedPrecondition, connect.CodeOutOfRange:
		return http.StatusBadRequest
	case connect.CodeNotFound:
		return http.StatusNotFound
	case connect.CodeAlreadyExists:
		return http.StatusConflict
	case connect.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	case connect.CodeCanceled:
		return 499
	case connect.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.svc.ListTransactions(r.Context(), connect.NewRequest(&rpc.ListTransactionsRequest{
		Source: q.Get("source"),
		Since:  q.Get("since"),
		Until:  q.Get("until"),
	}))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Msg)
}

func (s *Server) handleRecordSavings(w http.ResponseWriter, r *http.Request) {
	var req rpc.RecordSavingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	resp, err := s.svc.RecordSavings(r.Context(), connect.NewRequest(&req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp.Msg)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	pageSize, ok := queryInt(r, "pageSize")
	if !ok {
		badRequest(w, "pageSize must be an integer")
		return
	}
	resp, err := s.svc.ListGoals(r.Context(), connect.NewRequest(&rpc.ListGoalsRequest{
		PageSize:  int32(pageSize),
		PageToken: r.URL.Query().Get("pageToken"),
	}))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Msg)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req rpc.CreateGoalRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	resp, err := s.svc.CreateGoal(r.Context(), connect.NewRequest(&req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp.Msg)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.GetGoal(r.Context(), connect.NewRequest(&rpc.GetGoalRequest{GoalID: chi.URLParam(r, "id")}))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Msg)
}

func (s *Server) handlePredictGoal(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.PredictGoal(r.Context(), connect.NewRequest(&rpc.PredictGoalRequest{
		GoalID: chi.URLParam(r, "id"),
		AsOf:   r.URL.Query().Get("asOf"),
	}))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Msg.Prediction)
}

func (s *Server) handleOutlook(period string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := s.svc.GetSavingsOutlook(r.Context(), connect.NewRequest(&rpc.GetSavingsOutlookRequest{Period: period}))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"prediction": resp.Msg.Outlook})
	}
}

func (s *Server) handleSavingsProjection(w http.ResponseWriter, r *http.Request) {
	months, ok := queryInt(r, "months")
	if !ok {
		badRequest(w, "months must be an integer")
		return
	}
	resp, err := s.svc.GetSavingsProjection(r.Context(), connect.NewRequest(&rpc.GetSavingsProjectionRequest{Months: months}))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projection": resp.Msg.Projection})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.svc.GetSeries(r.Context(), connect.NewRequest(&rpc.GetSeriesRequest{
		Kind:   q.Get("kind"),
		Period: q.Get("period"),
	}))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Msg)
}

// handleSeriesOf serves one series kind wrapped under key.
func (s *Server) handleSeriesOf(kind, key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := s.svc.GetSeries(r.Context(), connect.NewRequest(&rpc.GetSeriesRequest{
			Kind:   kind,
			Period: r.URL.Query().Get("period"),
		}))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{key: resp.Msg.Points})
	}
}

func (s *Server) handleCategoryBudget(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(r, "days")
	if !ok {
		badRequest(w, "days must be an integer")
		return
	}
	resp, err := s.svc.GetCategoryBudget(r.Context(), connect.NewRequest(&rpc.GetCategoryBudgetRequest{WindowDays: days}))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"budget": resp.Msg})
}

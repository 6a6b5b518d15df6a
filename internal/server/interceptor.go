package server

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/castlemilk/savetrack/internal/metrics"
)

// ObservabilityInterceptor logs every unary RPC and records its outcome.
// Internal errors are logged at error level, client errors at info.
func ObservabilityInterceptor(log logrus.FieldLogger, m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			elapsed := time.Since(start)

			procedure := req.Spec().Procedure
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.ObserveRPC(procedure, code, elapsed)

			entry := log.WithFields(logrus.Fields{
				"procedure":  procedure,
				"code":       code,
				"duration":   elapsed.String(),
				"request_id": middleware.GetReqID(ctx),
			})
			switch {
			case err == nil:
				entry.Debug("rpc handled")
			case isServerError(err):
				entry.WithError(err).Error("rpc failed")
			default:
				entry.WithError(err).Info("rpc rejected")
			}
			return resp, err
		}
	}
}

func isServerError(err error) bool {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return true
	}
	switch cerr.Code() {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
		return true
	default:
		return false
	}
}

package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
)

const (
	RequestIDHeader = "x-request-id"
	OperatorHeader  = "x-operator"
)

// UnaryInterceptor tags each call with a request ID (taken from the caller when
// sent), carries the operator header into the context and logs the outcome.
func UnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 && v[0] != "" {
				ctx = common.WithRequestID(ctx, v[0])
			}
			if v := md.Get(OperatorHeader); len(v) > 0 && v[0] != "" {
				ctx = common.WithOperator(ctx, v[0])
			}
		}
		ctx, rid := common.EnsureRequestID(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, rid))

		resp, err := handler(ctx, req)
		if err != nil {
			err = common.ToStatus(err)
		}
		code := status.Code(err)
		logger.Info("grpc.call",
			"method", info.FullMethod,
			"request_id", rid,
			"code", code.String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

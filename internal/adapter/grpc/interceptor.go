package grpc

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/estateflow-backend/internal/logging"
	"github.com/simaogato/estateflow-backend/internal/metrics"
)

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the static API token from the authorization metadata.
// Both "Bearer <token>" and the bare token are accepted.
func AuthInterceptor(validToken string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeaders[0], "Bearer "))
		if subtle.ConstantTimeCompare([]byte(token), []byte(validToken)) != 1 {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(ctx, req)
	}
}

// MetricsInterceptor counts every unary call by method and status code
func MetricsInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		resp, err := handler(ctx, req)
		m.Request("grpc", info.FullMethod, status.Code(err).String())
		return resp, err
	}
}

// LoggingInterceptor logs every unary call; internal failures are logged as errors
func LoggingInterceptor(logger logging.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		ctxLogger := logger.New("method", info.FullMethod, "code", code.String(), "latency", time.Since(start))
		switch code {
		case codes.OK:
			ctxLogger.Info("gRPC request")
		case codes.Internal, codes.Unknown, codes.DataLoss:
			ctxLogger.Error("gRPC request failed", "error", err)
		default:
			ctxLogger.Warn("gRPC request rejected", "error", err)
		}
		return resp, err
	}
}

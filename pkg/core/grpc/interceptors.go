package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	mdwerror "github.com/msto63/calcscript/foundation/core/error"
	"github.com/msto63/calcscript/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Context keys for request metadata
type contextKey string

const (
	RequestIDKey    contextKey = "request_id"
	RequestIDHeader string     = "x-request-id"
)

// RecoveryInterceptor recovers from panics in gRPC handlers
func RecoveryInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger.Error("gRPC panic recovered", "panic", r, "method", info.FullMethod, "stack", string(stack))
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

// StreamRecoveryInterceptor recovers from panics in streaming gRPC handlers
func StreamRecoveryInterceptor(logger *logging.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger.Error("gRPC stream panic recovered", "panic", r, "method", info.FullMethod, "stack", string(stack))
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()
		return handler(srv, ss)
	}
}

// LoggingInterceptor logs gRPC requests
func LoggingInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		logger.Info("gRPC request",
			"request_id", GetRequestID(ctx),
			"method", info.FullMethod,
			"status", status.Code(err).String(),
			"duration", time.Since(start),
		)

		return resp, err
	}
}

// StreamLoggingInterceptor logs gRPC streaming requests
func StreamLoggingInterceptor(logger *logging.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()

		err := handler(srv, ss)

		logger.Info("gRPC stream request",
			"request_id", GetRequestID(ss.Context()),
			"method", info.FullMethod,
			"status", status.Code(err).String(),
			"duration", time.Since(start),
		)

		return err
	}
}

// RequestIDInterceptor adds a request ID to the context
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := extractRequestID(ctx)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx = context.WithValue(ctx, RequestIDKey, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

		return handler(ctx, req)
	}
}

// FaultInterceptor converts structured errors returned by handlers into
// gRPC status errors
func FaultInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			return resp, ToStatus(err)
		}
		return resp, nil
	}
}

// ToStatus maps an error to a gRPC status error. Errors that already carry a
// status pass through unchanged.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(StatusCode(mdwerror.GetCode(err)), err.Error())
}

// StatusCode returns the gRPC code for a structured error code
func StatusCode(code mdwerror.Code) codes.Code {
	switch code {
	case mdwerror.CodeSyntax, mdwerror.CodeName, mdwerror.CodeOperator,
		mdwerror.CodeArithmetic, mdwerror.CodeLexical, mdwerror.CodeInvalidInput:
		return codes.InvalidArgument
	case mdwerror.CodeTooLarge:
		return codes.ResourceExhausted
	case mdwerror.CodeNotFound:
		return codes.NotFound
	case mdwerror.CodeTimeout:
		return codes.DeadlineExceeded
	case mdwerror.CodeServiceUnavailable, mdwerror.CodeDatabaseError:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// ClientRequestIDInterceptor propagates request ID to outgoing requests
func ClientRequestIDInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		requestID := GetRequestID(ctx)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, requestID)

		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// ClientLoggingInterceptor logs outgoing gRPC requests
func ClientLoggingInterceptor(logger *logging.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()

		err := invoker(ctx, method, req, reply, cc, opts...)

		logger.Debug("gRPC client request",
			"method", method,
			"status", status.Code(err).String(),
			"duration", time.Since(start),
		)

		return err
	}
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return extractRequestID(ctx)
}

// extractRequestID extracts request ID from incoming metadata
func extractRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	values := md.Get(RequestIDHeader)
	if len(values) > 0 {
		return values[0]
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

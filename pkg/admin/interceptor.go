package admin

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ReadOnlyInterceptor rejects any RPC whose method name is not a
// read-only Get/List call, mirroring pkg/api/interceptor.go's
// Unix-socket read-only gate. Every method this package registers
// already satisfies the check; the interceptor exists to reject
// methods a future addition forgets to name accordingly.
func ReadOnlyInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if !isReadOnlyMethod(info.FullMethod) {
			return nil, status.Errorf(codes.PermissionDenied, "admin: %s is not a read-only method", info.FullMethod)
		}
		return handler(ctx, req)
	}
}

func isReadOnlyMethod(method string) bool {
	parts := strings.Split(method, "/")
	if len(parts) < 2 {
		return false
	}
	methodName := parts[len(parts)-1]

	readOnlyPrefixes := []string{"Get", "List"}
	for _, prefix := range readOnlyPrefixes {
		if strings.HasPrefix(methodName, prefix) {
			return true
		}
	}
	return false
}

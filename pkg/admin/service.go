package admin

import (
	"context"

	"google.golang.org/grpc"
)

// AdminServer is the hand-written equivalent of a protoc-generated
// server interface for the bpnode.admin.Admin service.
type AdminServer interface {
	GetPoolStats(context.Context, *PoolStatsRequest) (*PoolStatsResponse, error)
	ListInterfaces(context.Context, *ListInterfacesRequest) (*ListInterfacesResponse, error)
	GetCacheStats(context.Context, *CacheStatsRequest) (*CacheStatsResponse, error)
	GetVersion(context.Context, *VersionRequest) (*VersionResponse, error)
}

// RegisterAdminServer registers srv's methods on s under the service
// descriptor below, the hand-wired stand-in for a protoc-generated
// RegisterXServer function.
func RegisterAdminServer(s *grpc.Server, srv AdminServer) {
	s.RegisterService(&adminServiceDesc, srv)
}

func adminGetPoolStatsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PoolStatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).GetPoolStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/bpnode.admin.Admin/GetPoolStats"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServer).GetPoolStats(ctx, req.(*PoolStatsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func adminListInterfacesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListInterfacesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).ListInterfaces(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/bpnode.admin.Admin/ListInterfaces"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServer).ListInterfaces(ctx, req.(*ListInterfacesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func adminGetCacheStatsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CacheStatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).GetCacheStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/bpnode.admin.Admin/GetCacheStats"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServer).GetCacheStats(ctx, req.(*CacheStatsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func adminGetVersionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(VersionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).GetVersion(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/bpnode.admin.Admin/GetVersion"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServer).GetVersion(ctx, req.(*VersionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var adminServiceDesc = grpc.ServiceDesc{
	ServiceName: "bpnode.admin.Admin",
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetPoolStats", Handler: adminGetPoolStatsHandler},
		{MethodName: "ListInterfaces", Handler: adminListInterfacesHandler},
		{MethodName: "GetCacheStats", Handler: adminGetCacheStatsHandler},
		{MethodName: "GetVersion", Handler: adminGetVersionHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bpnode/admin.proto",
}

/*
Package admin implements a read-only gRPC introspection service over a
running node's pool, route table, and cache: GetPoolStats,
ListInterfaces, GetCacheStats, GetVersion.

Grounded on pkg/api/server.go's Server-wraps-grpc.Server-and-listens
shape and pkg/api/interceptor.go's ReadOnlyInterceptor, but without any
.proto/protoc step: since this environment cannot run the protobuf
compiler, the service is exposed through a hand-written
grpc.ServiceDesc registered against a JSON encoding.Codec
(grpc.ForceServerCodec) instead of protoc-generated stubs over the wire
format. Every method name begins with Get or List, so
ReadOnlyInterceptor's prefix check admits the whole service by
construction.
*/
package admin

package admin

import (
	"context"
	"fmt"
	"net"

	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/cache"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/dtncore/bpcore/pkg/route"
	"google.golang.org/grpc"
)

// Version is the running build's version string, overridable at link
// time (-ldflags "-X ...admin.Version=...").
var Version = "dev"

// Server implements AdminServer over a node's pool, route table, and
// optional cache.
type Server struct {
	pool  *mpool.Pool
	tbl   *route.Table
	cache *cache.Cache

	grpc *grpc.Server
}

// NewServer creates an admin server introspecting pool and tbl. c may
// be nil if the node has no cache configured.
func NewServer(pool *mpool.Pool, tbl *route.Table, c *cache.Cache) *Server {
	return &Server{pool: pool, tbl: tbl, cache: c}
}

// Start listens on addr and serves the admin service until the
// listener errors or Stop is called.
func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("admin: failed to listen: %w", err)
	}

	s.grpc = grpc.NewServer(
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.ChainUnaryInterceptor(ReadOnlyInterceptor()),
	)
	RegisterAdminServer(s.grpc, s)

	return s.grpc.Serve(lis)
}

// Stop gracefully stops the server.
func (s *Server) Stop() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
}

func (s *Server) GetPoolStats(ctx context.Context, req *PoolStatsRequest) (*PoolStatsResponse, error) {
	return &PoolStatsResponse{
		InUse:    s.pool.InUse(),
		Capacity: s.pool.Capacity(),
	}, nil
}

func (s *Server) ListInterfaces(ctx context.Context, req *ListInterfacesRequest) (*ListInterfacesResponse, error) {
	intfs := s.tbl.Interfaces()
	out := make([]InterfaceInfo, 0, len(intfs))
	for _, intf := range intfs {
		out = append(out, InterfaceInfo{
			ID:           intf.ID,
			ParentID:     intf.ParentID,
			OperUp:       intf.Flags()&route.FlagOperUp != 0,
			IngressDepth: intf.Flow.Ingress.Depth(),
			EgressDepth:  intf.Flow.Egress.Depth(),
		})
	}
	return &ListInterfacesResponse{Interfaces: out}, nil
}

func (s *Server) GetCacheStats(ctx context.Context, req *CacheStatsRequest) (*CacheStatsResponse, error) {
	if s.cache == nil {
		return &CacheStatsResponse{}, nil
	}
	return &CacheStatsResponse{EntriesTotal: s.cache.EntryCount()}, nil
}

func (s *Server) GetVersion(ctx context.Context, req *VersionRequest) (*VersionResponse, error) {
	return &VersionResponse{
		Version:         Version,
		ProtocolVersion: int(bundle.ProtocolVersion),
	}, nil
}

package admin

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/cache"
	"github.com/dtncore/bpcore/pkg/flow"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/dtncore/bpcore/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func startTestServer(t *testing.T, srv *Server) (*grpc.ClientConn, func()) {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv.grpc = grpc.NewServer(grpc.ForceServerCodec(jsonCodec{}))
	RegisterAdminServer(srv.grpc, srv)

	go func() { _ = srv.grpc.Serve(lis) }()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	return conn, func() {
		_ = conn.Close()
		srv.grpc.GracefulStop()
	}
}

func TestGetPoolStats(t *testing.T) {
	pool := mpool.NewPool(16)
	tbl := route.NewTable(pool, 4)
	srv := NewServer(pool, tbl, nil)

	conn, cleanup := startTestServer(t, srv)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var resp PoolStatsResponse
	err := conn.Invoke(ctx, "/bpnode.admin.Admin/GetPoolStats", &PoolStatsRequest{}, &resp, grpc.CallContentSubtype("json"))
	require.NoError(t, err)
	assert.Equal(t, 16, resp.Capacity)
	assert.Equal(t, 0, resp.InUse)
}

func TestListInterfaces(t *testing.T) {
	pool := mpool.NewPool(16)
	tbl := route.NewTable(pool, 4)

	fl := flow.NewFlow(0, flow.KindRelay)
	fl.SetAdminUp(true)
	intfID := tbl.RegisterGenericIntf(0, fl)
	fl.Apply(flow.EventUp, pool)

	srv := NewServer(pool, tbl, nil)
	conn, cleanup := startTestServer(t, srv)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var resp ListInterfacesResponse
	err := conn.Invoke(ctx, "/bpnode.admin.Admin/ListInterfaces", &ListInterfacesRequest{}, &resp, grpc.CallContentSubtype("json"))
	require.NoError(t, err)
	require.Len(t, resp.Interfaces, 1)
	assert.Equal(t, intfID, resp.Interfaces[0].ID)
	assert.True(t, resp.Interfaces[0].OperUp)
}

func TestGetCacheStatsWithNoCacheConfigured(t *testing.T) {
	pool := mpool.NewPool(16)
	tbl := route.NewTable(pool, 4)
	srv := NewServer(pool, tbl, nil)

	conn, cleanup := startTestServer(t, srv)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var resp CacheStatsResponse
	err := conn.Invoke(ctx, "/bpnode.admin.Admin/GetCacheStats", &CacheStatsRequest{}, &resp, grpc.CallContentSubtype("json"))
	require.NoError(t, err)
	assert.Equal(t, 0, resp.EntriesTotal)
}

func TestGetVersion(t *testing.T) {
	pool := mpool.NewPool(4)
	tbl := route.NewTable(pool, 4)
	c := cache.NewCache(pool, bundle.NewIPN(100, 0))
	srv := NewServer(pool, tbl, c)

	conn, cleanup := startTestServer(t, srv)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var resp VersionResponse
	err := conn.Invoke(ctx, "/bpnode.admin.Admin/GetVersion", &VersionRequest{}, &resp, grpc.CallContentSubtype("json"))
	require.NoError(t, err)
	assert.Equal(t, 7, resp.ProtocolVersion)
}

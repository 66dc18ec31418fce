package node

import (
	"testing"
	"time"

	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/cla"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeSocketRoundTripThroughSameNodeBaseInterface(t *testing.T) {
	n, err := New(Config{
		NodeNumber:   100,
		PoolCapacity: 64,
		MaxRoutes:    8,
	})
	require.NoError(t, err)

	sockA, err := n.NewSocket(1)
	require.NoError(t, err)
	sockA.Connect(bundle.NewIPN(100, 2))

	sockB, err := n.NewSocket(2)
	require.NoError(t, err)
	sockB.Connect(bundle.NewIPN(100, 1))

	n.Table.Start()
	defer n.Table.Stop()

	require.NoError(t, sockA.Send([]byte("hello node"), 0))

	n.Table.SetMaintenanceRequest()
	n.Table.MaintenanceCompleteWait()
	n.Table.SetMaintenanceRequest()
	n.Table.MaintenanceCompleteWait()

	buf := make([]byte, 64)
	count, err := sockB.Recv(buf, 2000)
	require.NoError(t, err)
	assert.Equal(t, "hello node", string(buf[:count]))
}

func TestNodeWithCacheAndCLALoopback(t *testing.T) {
	a, b := cla.NewLoopbackPair()

	n, err := New(Config{
		NodeNumber:   100,
		PoolCapacity: 64,
		MaxRoutes:    8,
		EnableCache:  true,
		CLAs: []CLAConfig{
			{Transport: a, Dest: 201, Mask: ^uint64(0)},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, n.Cache)

	require.NoError(t, n.Start())
	defer n.Stop()

	require.NoError(t, b.Send([]byte("not a real bundle")))

	time.Sleep(50 * time.Millisecond)
}

func TestNodeWithOffloadConfigured(t *testing.T) {
	n, err := New(Config{
		NodeNumber:     100,
		PoolCapacity:   16,
		MaxRoutes:      8,
		EnableCache:    true,
		OffloadDataDir: t.TempDir(),
	})
	require.NoError(t, err)
	require.NotNil(t, n.offloadStore)

	n.Stop()
}

func TestNodeAdminAndMetricsAreWiredWhenConfigured(t *testing.T) {
	n, err := New(Config{
		NodeNumber:      100,
		PoolCapacity:    16,
		MaxRoutes:       8,
		AdminAddr:       "127.0.0.1:0",
		MetricsInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.NotNil(t, n.Admin)
	assert.NotNil(t, n.Metrics)

	require.NoError(t, n.Start())
	time.Sleep(20 * time.Millisecond)
	n.Stop()
}

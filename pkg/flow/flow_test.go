package flow

import (
	"testing"

	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowStartsDown(t *testing.T) {
	f := NewFlow(1, KindEndpoint)
	assert.False(t, f.IsUp())
}

func TestFlowUpRaisesDepthLimitsByKind(t *testing.T) {
	pool := mpool.NewPool(4)

	endpoint := NewFlow(1, KindEndpoint)
	endpoint.SetAdminUp(true)
	endpoint.Apply(EventUp, pool)
	require.True(t, endpoint.IsUp())
	assert.Equal(t, ShortQueueDepth, endpoint.Ingress.depthLimit)
	assert.Equal(t, ShortQueueDepth, endpoint.Egress.depthLimit)

	relay := NewFlow(2, KindRelay)
	relay.SetAdminUp(true)
	relay.Apply(EventUp, pool)
	assert.Equal(t, MaxQueueDepth, relay.Ingress.depthLimit)
	assert.Equal(t, MaxQueueDepth, relay.Egress.depthLimit)
}

func TestFlowDownDrainsAndDisablesQueues(t *testing.T) {
	pool := mpool.NewPool(4)
	f := NewFlow(1, KindEndpoint)
	f.SetAdminUp(true)
	f.Apply(EventUp, pool)

	ref, err := pool.Alloc(mpool.BlockTypeGeneric, 0, nil)
	require.NoError(t, err)
	require.NoError(t, f.Ingress.Push(ref, 0))

	f.Apply(EventDown, pool)
	assert.False(t, f.IsUp())
	assert.Equal(t, 0, f.Ingress.Depth())
	assert.Equal(t, 0, f.Ingress.depthLimit)

	err = f.Ingress.Push(ref, 0)
	assert.Error(t, err, "queue must be disabled after Down")
}

func TestFlowAdminDownAloneDoesNotClearOperUp(t *testing.T) {
	pool := mpool.NewPool(4)
	f := NewFlow(1, KindEndpoint)
	f.SetAdminUp(true)
	f.Apply(EventUp, pool)

	f.SetAdminUp(false)
	assert.False(t, f.IsUp(), "IsUp requires both admin and oper up")
	assert.Equal(t, ShortQueueDepth, f.Ingress.depthLimit, "SetAdminUp alone leaves queue depth untouched")
}

func TestFlowPollIsNoOp(t *testing.T) {
	pool := mpool.NewPool(4)
	f := NewFlow(1, KindEndpoint)
	f.SetAdminUp(true)
	f.Apply(EventUp, pool)
	before := f.Ingress.depthLimit

	f.Apply(EventPoll, pool)
	assert.Equal(t, before, f.Ingress.depthLimit)
}

package cache

import (
	"testing"

	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/flow"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/dtncore/bpcore/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upFlow(pool *mpool.Pool) *flow.Flow {
	f := flow.NewFlow(0, flow.KindRelay)
	f.SetAdminUp(true)
	f.Apply(flow.EventUp, pool)
	return f
}

// makeBundleRef allocates a pool reference block wrapping b, the shape
// ingest/forwardQueued expect a routed bundle to arrive in.
func makeBundleRef(t *testing.T, pool *mpool.Pool, b *bundle.Bundle) *mpool.Block {
	t.Helper()
	target, err := pool.Alloc(mpool.BlockTypePrimary, 0, nil)
	require.NoError(t, err)
	target.Content = b
	ref, err := pool.CreateRef(target)
	require.NoError(t, err)
	return ref
}

func newTestBundle(source, dest bundle.EID, policy bundle.CustodyPolicy) *bundle.Bundle {
	return &bundle.Bundle{
		Primary: bundle.PrimaryBlock{
			Version:       bundle.ProtocolVersion,
			Destination:   dest,
			Source:        source,
			Creation:      bundle.CreationTimestamp{DtnTimeMs: 1000, SeqNum: 1},
			Lifetime:      3600000,
			CustodyPolicy: policy,
		},
		Blocks: []bundle.CanonicalBlock{
			{Type: bundle.BlockTypePayload, BlockNumber: 1, Content: []byte("payload")},
		},
	}
}

func TestCustodyStoreBundleCreatesIdleEntryWithLocalCustody(t *testing.T) {
	pool := mpool.NewPool(32)
	c := NewCache(pool, bundle.NewIPN(100, 0))

	b := newTestBundle(bundle.NewIPN(50, 0), bundle.NewIPN(201, 0), bundle.CustodyNone)
	ref := makeBundleRef(t, pool, b)

	c.custodyStoreBundle(b, ref)

	require.Len(t, c.pending, 1)
	e := c.pending[0]
	assert.Equal(t, StateIdle, e.State)
	assert.True(t, e.Flags.Has(FlagLocalCustody))
	assert.Equal(t, b.ID().Hash(), e.BundleHash)
	assert.Same(t, e, c.hashIndex[e.BundleHash])
}

func TestCustodyStoreBundleDiscardsDuplicateReceipt(t *testing.T) {
	pool := mpool.NewPool(32)
	c := NewCache(pool, bundle.NewIPN(100, 0))

	b := newTestBundle(bundle.NewIPN(50, 0), bundle.NewIPN(201, 0), bundle.CustodyNone)
	ref1 := makeBundleRef(t, pool, b)
	ref2 := makeBundleRef(t, pool, b)

	c.custodyStoreBundle(b, ref1)
	c.custodyStoreBundle(b, ref2)

	assert.Len(t, c.pending, 1)
	reclaimed := pool.Maintain()
	assert.Equal(t, 2, reclaimed, "duplicate ref and its target should both be recycled")
}

func TestFlushPendingQueuesEntryOntoEgress(t *testing.T) {
	pool := mpool.NewPool(32)
	c := NewCache(pool, bundle.NewIPN(100, 0))

	b := newTestBundle(bundle.NewIPN(50, 0), bundle.NewIPN(201, 0), bundle.CustodyNone)
	ref := makeBundleRef(t, pool, b)
	c.custodyStoreBundle(b, ref)

	c.flow.Egress.SetDepthLimit(8)
	c.FlushPending()

	require.Empty(t, c.pending)
	e := c.hashIndex[b.ID().Hash()]
	assert.Equal(t, StateQueue, e.State)
	assert.Equal(t, 1, c.flow.Egress.Depth())
}

func TestForwardQueuedRoutesAndClearsCustodyWhenPolicyNone(t *testing.T) {
	pool := mpool.NewPool(32)
	tbl := route.NewTable(pool, 8)
	c := NewCache(pool, bundle.NewIPN(100, 0))
	c.Register(tbl)

	claID := tbl.RegisterGenericIntf(0, upFlow(pool))
	require.NoError(t, tbl.AddRoute(201, ^uint64(0), claID))

	b := newTestBundle(bundle.NewIPN(50, 0), bundle.NewIPN(201, 0), bundle.CustodyNone)
	ref := makeBundleRef(t, pool, b)
	c.custodyStoreBundle(b, ref)
	c.flow.Egress.SetDepthLimit(8)
	c.FlushPending()

	dup, err := c.flow.Egress.Pull(0)
	require.NoError(t, err)
	require.NoError(t, c.forwardQueued(dup))

	claIntf := tbl.Interface(claID)
	assert.Equal(t, 1, claIntf.Flow.Ingress.Depth())

	e := c.hashIndex[b.ID().Hash()]
	assert.False(t, e.Flags.Has(FlagLocalCustody))
	assert.False(t, e.Flags.Has(FlagLocallyQueued))
}

func TestForwardQueuedSchedulesRetransmitWhenCustodyTransfer(t *testing.T) {
	pool := mpool.NewPool(32)
	tbl := route.NewTable(pool, 8)
	c := NewCache(pool, bundle.NewIPN(100, 0))
	c.Register(tbl)

	claID := tbl.RegisterGenericIntf(0, upFlow(pool))
	require.NoError(t, tbl.AddRoute(201, ^uint64(0), claID))

	b := newTestBundle(bundle.NewIPN(50, 0), bundle.NewIPN(201, 0), bundle.CustodyTransfer)
	b.Primary.RetxIntervalM = 5000
	ref := makeBundleRef(t, pool, b)
	c.custodyStoreBundle(b, ref)
	c.flow.Egress.SetDepthLimit(8)
	c.FlushPending()

	dup, err := c.flow.Egress.Pull(0)
	require.NoError(t, err)

	// forwardQueued inspects the bundle's delivery metadata via the
	// dequeued duplicate's shared target, so stamp egress metadata onto
	// it the way a CLA's send path would before this callback runs.
	e := c.hashIndex[b.ID().Hash()]
	e.primary().EgressIntf = 7
	e.primary().EgressTimeMs = 10000

	require.NoError(t, c.forwardQueued(dup))

	assert.True(t, e.Flags.Has(FlagLocalCustody))
	assert.True(t, e.Flags.Has(FlagActionTimeWait))
	assert.Equal(t, uint64(15000), e.ActionTime)
}

func TestCustodyCheckDACSClearsLocalCustody(t *testing.T) {
	pool := mpool.NewPool(32)
	c := NewCache(pool, bundle.NewIPN(100, 0))

	b := newTestBundle(bundle.NewIPN(50, 0), bundle.NewIPN(201, 0), bundle.CustodyTransfer)
	ref := makeBundleRef(t, pool, b)
	c.custodyStoreBundle(b, ref)
	e := c.hashIndex[b.ID().Hash()]
	require.True(t, e.Flags.Has(FlagLocalCustody))

	dacs := &bundle.Bundle{
		Primary: bundle.PrimaryBlock{
			Flags:       bundle.AdminRecordPayload,
			Destination: bundle.NewIPN(50, 0),
			Source:      bundle.NewIPN(201, 0),
		},
		Blocks: []bundle.CanonicalBlock{
			{
				Type:        bundle.BlockTypePayload,
				BlockNumber: 1,
				Content:     bundle.EncodeDACS([]bundle.ID{b.ID()}),
			},
		},
	}
	c.custodyCheckDACS(dacs)

	assert.False(t, e.Flags.Has(FlagLocalCustody))
}

func TestQueueDACSAcceptFinalizesAndRoutesToPreviousCustodian(t *testing.T) {
	pool := mpool.NewPool(32)
	tbl := route.NewTable(pool, 8)
	c := NewCache(pool, bundle.NewIPN(100, 0))
	c.Register(tbl)

	prevID := tbl.RegisterGenericIntf(0, upFlow(pool))
	require.NoError(t, tbl.AddRoute(50, ^uint64(0), prevID))

	b := newTestBundle(bundle.NewIPN(50, 0), bundle.NewIPN(201, 0), bundle.CustodyTransfer)
	ref := makeBundleRef(t, pool, b)
	c.custodyStoreBundle(b, ref)

	d, ok := c.dacsByCustodian[50]
	require.True(t, ok)
	require.Len(t, d.DACSPending, 1)

	c.actionTime = d.ActionTime
	c.execute(d)

	_, stillPending := c.dacsByCustodian[50]
	assert.False(t, stillPending)

	prevIntf := tbl.Interface(prevID)
	assert.Equal(t, 1, prevIntf.Flow.Ingress.Depth())
}

func TestDoPollMovesDueEntriesToPending(t *testing.T) {
	pool := mpool.NewPool(32)
	c := NewCache(pool, bundle.NewIPN(100, 0))

	b := newTestBundle(bundle.NewIPN(50, 0), bundle.NewIPN(201, 0), bundle.CustodyNone)
	ref := makeBundleRef(t, pool, b)
	c.custodyStoreBundle(b, ref)
	e := c.pending[0]
	c.pending = nil
	c.reschedule(e)
	require.NotNil(t, e.timeNode)

	c.actionTime = FastRetryTimeMs + 1
	c.DoPoll()

	assert.Contains(t, c.pending, e)
	assert.Nil(t, e.timeNode)
}

func TestRouteUpSweepRependsMatchingDestinations(t *testing.T) {
	pool := mpool.NewPool(32)
	c := NewCache(pool, bundle.NewIPN(100, 0))

	b := newTestBundle(bundle.NewIPN(50, 0), bundle.NewIPN(201, 0), bundle.CustodyNone)
	ref := makeBundleRef(t, pool, b)
	c.custodyStoreBundle(b, ref)
	e := c.pending[0]
	c.pending = nil
	c.reschedule(e)

	c.RouteUpSweep(201, ^uint64(0))

	assert.Contains(t, c.pending, e)
	assert.True(t, e.Flags.Has(FlagActivity))
	assert.Nil(t, e.timeNode)
}

func TestIdleEvalDeletesEntryWithoutLocalCustody(t *testing.T) {
	pool := mpool.NewPool(32)
	c := NewCache(pool, bundle.NewIPN(100, 0))

	e := &Entry{State: StateIdle, Flags: FlagActivity, ExpireTime: TimeInfinite}
	c.actionTime = 1

	next := c.evalState(e)
	assert.Equal(t, StateDelete, next)
}

func TestIdleEvalExpiresEntryPastLifetime(t *testing.T) {
	pool := mpool.NewPool(32)
	c := NewCache(pool, bundle.NewIPN(100, 0))

	e := &Entry{State: StateIdle, Flags: FlagLocalCustody, ExpireTime: 100}
	c.actionTime = 200

	assert.Equal(t, StateUndefined, c.evalState(e))
}

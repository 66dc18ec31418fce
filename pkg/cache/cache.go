package cache

import (
	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/flow"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/dtncore/bpcore/pkg/osal"
	"github.com/dtncore/bpcore/pkg/rbtree"
	"github.com/dtncore/bpcore/pkg/route"
)

// Offload is the hook a caller registers to move an entry's content to
// and from secondary storage (spec.md §4.6 "Offload hook"). pkg/offload
// provides a bbolt-backed implementation.
type Offload interface {
	// Offload serializes b to secondary storage and returns a session
	// id to retrieve it later.
	Offload(b *bundle.Bundle) (sid uint64, err error)
	// Restore allocates a fresh, unwrapped pool content block whose
	// Content is the *bundle.Bundle previously offloaded under sid. The
	// caller wraps it with Pool.CreateRef.
	Restore(sid uint64) (*mpool.Block, error)
	// Release discards whatever Offload retained under sid.
	Release(sid uint64)
}

// Cache is the delay-tolerant storage service: a route.Interface whose
// forward-ingress callback accepts bundles to retain, indexed for
// time-driven eviction and route-up re-pend sweeps.
type Cache struct {
	pool *mpool.Pool
	flow *flow.Flow

	selfAddr bundle.EID

	destIndex *rbtree.Tree // key: destination node number, duplicates allowed
	timeIndex *rbtree.Tree // key: action_time >> TimeBucketShift, duplicates allowed
	hashIndex map[uint64]*Entry

	// dacsByCustodian accumulates acceptances awaiting assembly into a
	// single DACS per previous custodian (keyed by custodian node
	// number), one synthetic StateGenerateDACS entry per key.
	dacsByCustodian map[uint64]*Entry

	refOwners map[*mpool.Block]*Entry

	pending []*Entry

	actionTime uint64
	dacsSeq    uint32

	offload Offload

	intfID uint16
	tbl    *route.Table
}

// NewCache creates a cache backed by pool, not yet registered with any
// route table.
func NewCache(pool *mpool.Pool, selfAddr bundle.EID) *Cache {
	return &Cache{
		pool:            pool,
		flow:            flow.NewFlow(0, flow.KindRelay),
		selfAddr:        selfAddr,
		destIndex:       rbtree.New(),
		timeIndex:       rbtree.New(),
		hashIndex:       make(map[uint64]*Entry),
		dacsByCustodian: make(map[uint64]*Entry),
		refOwners:       make(map[*mpool.Block]*Entry),
	}
}

// SetOffload installs the secondary-storage hook.
func (c *Cache) SetOffload(o Offload) { c.offload = o }

// Register installs the cache as an interface on tbl. Bundles the
// route table resolves to this interface land on its ingress subqueue,
// so the forward-ingress callback is the accept-for-retention path
// (custody_check_dacs / custody_store_bundle); the forward-egress
// callback is the FSM's own re-dispatch path, firing when queueEnter
// pushes a retained entry's reference back out for forwarding.
func (c *Cache) Register(tbl *route.Table) uint16 {
	c.tbl = tbl
	c.flow.SetAdminUp(true)
	c.intfID = tbl.RegisterGenericIntf(0, c.flow)
	c.flow.Apply(flow.EventUp, c.pool)

	_ = tbl.RegisterForwardIngressHandler(c.intfID, func(tbl *route.Table, intf *route.Interface, ref *mpool.Block) error {
		return c.ingest(ref)
	})
	_ = tbl.RegisterForwardEgressHandler(c.intfID, func(tbl *route.Table, intf *route.Interface, ref *mpool.Block) error {
		return c.forwardQueued(ref)
	})
	_ = tbl.RegisterEventHandler(c.intfID, func(tbl *route.Table, intf *route.Interface, evt flow.Event) {
		c.onEvent(evt)
	})
	return c.intfID
}

// IntfID returns the interface id the cache was registered under.
func (c *Cache) IntfID() uint16 { return c.intfID }

// EntryCount returns the number of bundles currently retained, for
// pkg/metrics and pkg/admin introspection.
func (c *Cache) EntryCount() int { return len(c.hashIndex) }

// forwardQueued is the cache's own forward-egress callback: it
// consumes a reference pushed by queueEnter, routes the bundle onward,
// and applies the queue-exit metadata inspection.
func (c *Cache) forwardQueued(ref *mpool.Block) error {
	entry, owned := c.refOwners[ref]
	if owned {
		delete(c.refOwners, ref)
		entry.Flags &^= FlagLocallyQueued
	}

	b := bundleOf(ref)
	if b == nil {
		_ = c.pool.ReleaseRef(ref)
		return nil
	}

	err := c.tbl.IngressRouteSingleBundle(&b.Primary, ref)
	if owned {
		c.queueExit(entry)
	}
	return err
}

// onEvent handles Up/Down/Poll delivered to the cache's own interface.
// Poll drains the time index up to the current action time and flushes
// the pending list, matching the maintenance worker's per-pass duty.
func (c *Cache) onEvent(evt flow.Event) {
	if evt != flow.EventPoll {
		return
	}
	c.actionTime = nowMs()
	c.DoPoll()
	c.FlushPending()
}

// DoPoll detaches every time-index entry whose bucket is due and moves
// it onto the pending list.
func (c *Cache) DoPoll() {
	bound := c.actionTime >> TimeBucketShift
	it := c.timeIndex.GotoMin(0)
	for it.Valid() && it.Node().Key <= bound {
		node := it.Node()
		it.Next()
		_ = c.timeIndex.ExtractNode(node)
		e := node.Value.(*Entry)
		e.timeNode = nil
		c.pending = append(c.pending, e)
	}
}

// FlushPending drains the pending list through the FSM until the
// cache's own egress subqueue (where queueEnter re-dispatches a
// retained entry) is full, rescheduling anything left for the next
// pass.
func (c *Cache) FlushPending() {
	i := 0
	for ; i < len(c.pending); i++ {
		if c.flow.Egress.Depth() >= c.flow.Egress.DepthLimit() {
			break
		}
		c.execute(c.pending[i])
	}

	remaining := c.pending[i:]
	c.pending = c.pending[:0]
	for _, e := range remaining {
		c.reschedule(e)
	}
}

// RouteUpSweep re-pends every entry whose destination still matches
// (key & mask) == dest, giving bundles stuck behind a down interface a
// chance to flow once the interface behind dest comes back up.
func (c *Cache) RouteUpSweep(dest, mask uint64) {
	it := c.destIndex.GotoMin(dest & mask)
	for it.Valid() {
		node := it.Node()
		if node.Key&mask != dest&mask {
			break
		}
		it.Next()
		e := node.Value.(*Entry)
		e.Flags |= FlagActivity
		if e.timeNode != nil {
			_ = c.timeIndex.ExtractNode(e.timeNode)
			e.timeNode = nil
		}
		c.pending = append(c.pending, e)
	}
}

func nowMs() uint64 {
	return osal.NowMs()
}

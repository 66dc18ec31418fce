package dataservice

import (
	"github.com/dtncore/bpcore/pkg/bpe"
	"github.com/dtncore/bpcore/pkg/flow"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/dtncore/bpcore/pkg/rbtree"
	"github.com/dtncore/bpcore/pkg/route"
)

// BaseIntf is the per-node-number half of the socket layer (spec.md
// §4.7): a route.Interface that fans bundles the route table resolves
// here out to whichever Socket is bound to their destination service
// number.
type BaseIntf struct {
	pool *mpool.Pool
	flow *flow.Flow
	node uint64

	services *rbtree.Tree // key: service number (unique), value: *Socket

	intfID uint16
	tbl    *route.Table
}

// NewBaseIntf creates a base interface for IPN node number node, not
// yet registered with any route table.
func NewBaseIntf(pool *mpool.Pool, node uint64) *BaseIntf {
	return &BaseIntf{
		pool:     pool,
		flow:     flow.NewFlow(0, flow.KindRelay),
		node:     node,
		services: rbtree.New(),
	}
}

// Node returns the IPN node number this base interface answers for.
func (b *BaseIntf) Node() uint64 { return b.node }

// Register installs the base interface on tbl under a route covering
// its whole node number, and brings its flow up.
func (b *BaseIntf) Register(tbl *route.Table) (uint16, error) {
	b.tbl = tbl
	b.flow.SetAdminUp(true)
	b.intfID = tbl.RegisterGenericIntf(0, b.flow)
	b.flow.Apply(flow.EventUp, b.pool)

	if err := tbl.AddRoute(b.node, ^uint64(0), b.intfID); err != nil {
		return 0, err
	}

	_ = tbl.RegisterForwardIngressHandler(b.intfID, func(tbl *route.Table, intf *route.Interface, ref *mpool.Block) error {
		return b.deliver(ref)
	})
	return b.intfID, nil
}

// IntfID returns the interface id the base interface was registered
// under.
func (b *BaseIntf) IntfID() uint16 { return b.intfID }

// bindService registers s under service in this base interface's
// service index. It fails with ErrDuplicate if the service number is
// already bound.
func (b *BaseIntf) bindService(service uint64, s *Socket) error {
	_, err := b.services.Insert(service, s, false)
	return err
}

// deliver is the base interface's forward-ingress callback: it reads
// the destination service number off the routed bundle and hands the
// reference to the bound socket's egress subqueue, where Recv pulls
// it from. A bundle for an unbound service number is dropped.
func (b *BaseIntf) deliver(ref *mpool.Block) error {
	primary := bundlePrimary(ref)
	if primary == nil {
		_ = b.pool.ReleaseRef(ref)
		return nil
	}

	node := b.services.Search(primary.Destination.Service)
	if node == nil {
		_ = b.pool.ReleaseRef(ref)
		return bpe.Wrap(bpe.ErrAPI, "dataservice: no socket bound to service %d", primary.Destination.Service)
	}

	s := node.Value.(*Socket)
	if err := s.flow.Egress.Push(ref, 0); err != nil {
		_ = b.pool.ReleaseRef(ref)
		return err
	}
	return nil
}

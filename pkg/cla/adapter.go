package cla

import (
	"bytes"
	"sync"

	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/codec"
	"github.com/dtncore/bpcore/pkg/flow"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/dtncore/bpcore/pkg/route"
)

// Adapter is a route.Interface that drives a Transport: bundles the
// route table resolves here are encoded and sent out; datagrams the
// Transport receives are decoded and routed onward.
type Adapter struct {
	pool      *mpool.Pool
	flow      *flow.Flow
	transport Transport

	intfID uint16
	tbl    *route.Table

	wg      sync.WaitGroup
	started bool
}

// NewAdapter creates an adapter over transport, not yet registered
// with any route table or started.
func NewAdapter(pool *mpool.Pool, transport Transport) *Adapter {
	return &Adapter{
		pool:      pool,
		flow:      flow.NewFlow(0, flow.KindRelay),
		transport: transport,
	}
}

// Register installs the adapter as an interface on tbl and brings its
// flow up.
func (a *Adapter) Register(tbl *route.Table) uint16 {
	a.tbl = tbl
	a.flow.SetAdminUp(true)
	a.intfID = tbl.RegisterGenericIntf(0, a.flow)
	a.flow.Apply(flow.EventUp, a.pool)

	_ = tbl.RegisterForwardIngressHandler(a.intfID, func(tbl *route.Table, intf *route.Interface, ref *mpool.Block) error {
		return a.transmit(ref)
	})
	_ = tbl.RegisterForwardEgressHandler(a.intfID, func(tbl *route.Table, intf *route.Interface, ref *mpool.Block) error {
		return a.routeInbound(ref)
	})
	return a.intfID
}

// IntfID returns the interface id the adapter was registered under.
func (a *Adapter) IntfID() uint16 { return a.intfID }

// Start launches the adapter's receive loop. It is a no-op if already
// started.
func (a *Adapter) Start() {
	if a.started {
		return
	}
	a.started = true
	a.wg.Add(1)
	go a.recvLoop()
}

// Stop closes the transport, which unblocks the receive loop's
// in-flight Recv, then waits for it to exit.
func (a *Adapter) Stop() {
	if !a.started {
		return
	}
	_ = a.transport.Close()
	a.wg.Wait()
	a.started = false
}

// recvLoop reads datagrams off the transport and pushes each one,
// still encoded, onto the adapter's own egress subqueue for the
// forward-egress callback to decode and route.
func (a *Adapter) recvLoop() {
	defer a.wg.Done()
	for {
		datagram, err := a.transport.Recv()
		if err != nil {
			return
		}

		blk, err := a.pool.Alloc(mpool.BlockTypeGeneric, 0, nil)
		if err != nil {
			continue
		}
		blk.Content = datagram

		if err := a.flow.Egress.Push(blk, 0); err != nil {
			a.pool.Recycle(blk)
			continue
		}
		a.tbl.SetMaintenanceRequest()
	}
}

// transmit is the adapter's forward-ingress callback: encode ref's
// bundle and hand the bytes to the transport.
func (a *Adapter) transmit(ref *mpool.Block) error {
	b := bundleOf(ref)
	if b == nil {
		_ = a.pool.ReleaseRef(ref)
		return nil
	}

	var buf bytes.Buffer
	if err := codec.EncodeBundle(&buf, b); err != nil {
		_ = a.pool.ReleaseRef(ref)
		return err
	}

	err := a.transport.Send(buf.Bytes())
	_ = a.pool.ReleaseRef(ref)
	return err
}

// routeInbound is the adapter's forward-egress callback: decode a raw
// datagram the receive loop pushed and hand the resulting bundle to
// the route table for onward delivery.
func (a *Adapter) routeInbound(ref *mpool.Block) error {
	datagram, ok := ref.Content.([]byte)
	a.pool.Recycle(ref)
	if !ok {
		return nil
	}

	b, err := codec.DecodeBundle(bytes.NewReader(datagram))
	if err != nil {
		return err
	}

	target, err := a.pool.Alloc(mpool.BlockTypePrimary, 0, nil)
	if err != nil {
		return err
	}
	target.Content = b

	newRef, err := a.pool.CreateRef(target)
	if err != nil {
		a.pool.Recycle(target)
		return err
	}

	return a.tbl.IngressRouteSingleBundle(&b.Primary, newRef)
}

func bundleOf(ref *mpool.Block) *bundle.Bundle {
	if ref == nil {
		return nil
	}
	rc, ok := ref.Content.(*mpool.RefContent)
	if !ok {
		return nil
	}
	b, _ := rc.Target.Content.(*bundle.Bundle)
	return b
}

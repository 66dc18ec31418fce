package dataservice

import (
	"github.com/dtncore/bpcore/pkg/bpe"
	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/crc"
	"github.com/dtncore/bpcore/pkg/flow"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/dtncore/bpcore/pkg/osal"
	"github.com/dtncore/bpcore/pkg/route"
)

// Socket is the application-facing endpoint of spec.md §4.7: a
// route.Interface of flow.KindEndpoint bound to one local IPN service
// number and connected to one remote endpoint.
type Socket struct {
	pool *mpool.Pool
	flow *flow.Flow
	base *BaseIntf

	local  bundle.EID
	remote bundle.EID

	CRCType       crc.Algorithm
	CustodyPolicy bundle.CustodyPolicy
	Lifetime      uint64
	RetxIntervalM uint64
	ReportTo      bundle.EID

	seq uint64

	intfID uint16
	tbl    *route.Table
}

// NewSocket allocates a socket backed by pool, not yet bound to any
// base interface.
func NewSocket(pool *mpool.Pool) *Socket {
	return &Socket{
		pool:     pool,
		flow:     flow.NewFlow(0, flow.KindEndpoint),
		Lifetime: 3600000,
	}
}

// Bind attaches the socket to the base interface whose node number
// matches localService's owner, registering the socket in base's
// service-number index (spec.md §4.7 "bind").
func (s *Socket) Bind(tbl *route.Table, base *BaseIntf, localService uint64) error {
	if err := base.bindService(localService, s); err != nil {
		return err
	}
	s.base = base
	s.tbl = tbl
	s.local = bundle.NewIPN(base.Node(), localService)
	s.intfID = tbl.RegisterGenericIntf(base.IntfID(), s.flow)

	_ = tbl.RegisterForwardIngressHandler(s.intfID, func(tbl *route.Table, intf *route.Interface, ref *mpool.Block) error {
		return s.forwardOutbound(ref)
	})
	return nil
}

// IntfID returns the interface id the socket was registered under.
func (s *Socket) IntfID() uint16 { return s.intfID }

// Local returns the socket's bound local endpoint ID.
func (s *Socket) Local() bundle.EID { return s.local }

// Connect records remote as the socket's peer and brings the socket
// admin+operationally up, enabling its subqueues (spec.md §4.7
// "connect").
func (s *Socket) Connect(remote bundle.EID) {
	s.remote = remote
	s.flow.SetAdminUp(true)
	s.flow.Apply(flow.EventUp, s.pool)
}

// Send builds a bundle from payload and the socket's bound/connected
// addressing and pushes a reference onto the socket's own ingress
// subqueue, where the socket's forward-ingress callback routes it to
// the next hop. It blocks up to timeoutMs milliseconds (0 meaning
// forever) for subqueue room, returning ErrTimeout if none opens up in
// time. Pool exhaustion is not waited on: if no pool block is free,
// Send returns ErrTimeout at once.
func (s *Socket) Send(payload []byte, timeoutMs uint64) error {
	s.seq++
	b := &bundle.Bundle{
		Primary: bundle.PrimaryBlock{
			Version:       bundle.ProtocolVersion,
			CRCType:       s.CRCType,
			Destination:   s.remote,
			Source:        s.local,
			ReportTo:      s.ReportTo,
			Creation:      bundle.CreationTimestamp{DtnTimeMs: osal.NowMs(), SeqNum: s.seq},
			Lifetime:      s.Lifetime,
			CustodyPolicy: s.CustodyPolicy,
			RetxIntervalM: s.RetxIntervalM,
		},
		Blocks: []bundle.CanonicalBlock{
			{Type: bundle.BlockTypePayload, BlockNumber: 1, Content: payload},
		},
	}

	target, err := s.pool.Alloc(mpool.BlockTypePrimary, 0, nil)
	if err != nil {
		return bpe.ErrTimeout
	}
	target.Content = b

	ref, err := s.pool.CreateRef(target)
	if err != nil {
		s.pool.Recycle(target)
		return bpe.ErrTimeout
	}

	if err := s.flow.Ingress.Push(ref, deadlineFromTimeout(timeoutMs)); err != nil {
		_ = s.pool.ReleaseRef(ref)
		return err
	}
	return nil
}

// forwardOutbound is the socket's own forward-ingress callback: the
// "parent node's forward-ingress callback" of spec.md §4.7, routing a
// bundle Send just built to its next hop.
func (s *Socket) forwardOutbound(ref *mpool.Block) error {
	primary := bundlePrimary(ref)
	if primary == nil {
		_ = s.pool.ReleaseRef(ref)
		return nil
	}
	return s.tbl.IngressRouteSingleBundle(primary, ref)
}

// Recv pulls the next reference delivered to the socket's egress
// subqueue (by its base interface's deliver callback), copies its
// payload block's content into buf, and releases the reference. It
// blocks up to timeoutMs milliseconds (0 meaning forever), returning
// ErrTimeout if nothing arrives in time, or ErrIncomplete if buf is
// too small to hold the full payload (the truncated prefix is still
// copied in).
func (s *Socket) Recv(buf []byte, timeoutMs uint64) (int, error) {
	ref, err := s.flow.Egress.Pull(deadlineFromTimeout(timeoutMs))
	if err != nil {
		return 0, err
	}
	defer func() { _ = s.pool.ReleaseRef(ref) }()

	b := bundleOf(ref)
	if b == nil {
		return 0, bpe.Wrap(bpe.ErrAPI, "dataservice: recv: reference does not hold a bundle")
	}
	payload := b.Payload()
	if payload == nil {
		return 0, bpe.Wrap(bpe.ErrAPI, "dataservice: recv: bundle has no payload block")
	}

	n := copy(buf, payload.Content)
	if n < len(payload.Content) {
		return n, bpe.ErrIncomplete
	}
	return n, nil
}

func deadlineFromTimeout(timeoutMs uint64) uint64 {
	if timeoutMs == 0 {
		return 0
	}
	return osal.NowMs() + timeoutMs
}

package flow

import "github.com/dtncore/bpcore/pkg/mpool"

// Event is delivered to a Flow by the route table's maintenance
// worker (spec.md §4.4).
type Event int

const (
	EventUp Event = iota
	EventDown
	EventPoll
)

// Kind affects the depth limit an Up event applies: endpoints get the
// short queue depth, relays and CLAs get the larger one.
type Kind int

const (
	KindEndpoint Kind = iota
	KindRelay
)

const (
	// ShortQueueDepth is the subqueue depth limit applied to endpoint
	// flows when they come up.
	ShortQueueDepth = 64
	// MaxQueueDepth is the subqueue depth limit applied to relay/CLA
	// flows when they come up.
	MaxQueueDepth = 1024
)

// AdminOper is the administrative/operational up bitmask a Flow
// tracks. Both must be set for the flow to be considered usable.
type AdminOper uint32

const (
	AdminUp AdminOper = 1 << 0
	OperUp  AdminOper = 1 << 1
)

func (f AdminOper) Has(want AdminOper) bool { return f&want == want }

// Flow bundles an ingress and egress subqueue under one interface
// handle, plus the admin/operational state gating them.
type Flow struct {
	Ingress *Subqueue
	Egress  *Subqueue

	InterfaceID    uint16
	ParentIntfID   uint16
	StorageCapable bool
	Kind           Kind

	state AdminOper
}

// NewFlow returns a flow for intfID with both subqueues disabled
// until SetAdminUp and an Up event bring it into service.
func NewFlow(intfID uint16, kind Kind) *Flow {
	return &Flow{
		Ingress:     NewSubqueue(),
		Egress:      NewSubqueue(),
		InterfaceID: intfID,
		Kind:        kind,
	}
}

// SetAdminUp sets or clears the administrative-up bit. It does not by
// itself change subqueue depth limits; that happens when an Up/Down
// Event is applied.
func (f *Flow) SetAdminUp(up bool) {
	if up {
		f.state |= AdminUp
	} else {
		f.state &^= AdminUp
	}
}

// IsUp reports whether the flow is both administratively and
// operationally up.
func (f *Flow) IsUp() bool {
	return f.state.Has(AdminUp | OperUp)
}

// State returns the flow's current admin/operational bitmask, used by
// the route table's get_next_intf_with_flags LPM matching.
func (f *Flow) State() AdminOper {
	return f.state
}

// depthLimitForKind returns the subqueue depth limit a flow of this
// kind gets on Up.
func depthLimitForKind(k Kind) int {
	if k == KindRelay {
		return MaxQueueDepth
	}
	return ShortQueueDepth
}

// Apply handles an Event from the maintenance worker's dispatcher. Up
// raises both subqueues' depth limits (operational-up is implied to
// follow from the transport signalling Up); Down clears operational-
// up, disables both subqueues, and recycles anything still queued.
// Poll is a no-op at the flow level — the maintenance worker itself
// invokes forward-ingress/forward-egress callbacks on non-empty
// subqueues.
func (f *Flow) Apply(evt Event, pool *mpool.Pool) {
	switch evt {
	case EventUp:
		f.state |= OperUp
		limit := depthLimitForKind(f.Kind)
		f.Ingress.SetDepthLimit(limit)
		f.Egress.SetDepthLimit(limit)
	case EventDown:
		f.state &^= OperUp
		f.Ingress.SetDepthLimit(0)
		f.Egress.SetDepthLimit(0)
		f.Ingress.Drain(pool)
		f.Egress.Drain(pool)
	case EventPoll:
	}
}

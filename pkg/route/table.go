package route

import (
	"math/bits"
	"sync"

	"github.com/dtncore/bpcore/pkg/bpe"
	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/flow"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/dtncore/bpcore/pkg/osal"
)

// Flags is the bitmask get_next_intf_with_flags matches against,
// mirroring BPLIB_INTF_STATE_ADMIN_UP/OPER_UP/STORAGE.
type Flags uint32

const (
	FlagAdminUp Flags = 1 << iota
	FlagOperUp
	FlagStorage
)

// ForwardFunc is a per-interface forward-ingress or forward-egress
// callback, invoked by the maintenance worker on a non-empty subqueue.
type ForwardFunc func(tbl *Table, intf *Interface, ref *mpool.Block) error

// EventFunc is a per-interface event callback, invoked with Up/Down/
// Poll notifications.
type EventFunc func(tbl *Table, intf *Interface, evt flow.Event)

// Interface pairs a flow with the callbacks a registrant installs.
type Interface struct {
	ID       uint16
	ParentID uint16
	Flow     *flow.Flow

	forwardIngress ForwardFunc
	forwardEgress  ForwardFunc
	eventHandler   EventFunc
}

// Flags reports the interface's current admin/operational/storage
// bitmask.
func (i *Interface) Flags() Flags {
	var f Flags
	state := i.Flow.State()
	if state.Has(flow.AdminUp) {
		f |= FlagAdminUp
	}
	if state.Has(flow.OperUp) {
		f |= FlagOperUp
	}
	if i.Flow.StorageCapable {
		f |= FlagStorage
	}
	return f
}

// route is one (dest, mask, interface) entry.
type route struct {
	dest, mask uint64
	intfID     uint16
}

// Table is the route table and interface registry for one node.
type Table struct {
	mu        sync.Mutex
	pool      *mpool.Pool
	maxRoutes int

	routes     []route
	interfaces map[uint16]*Interface
	nextIntfID uint16

	maintLock  *osal.Lock
	requested  uint64
	processed  uint64
	shutdown   bool
	workerDone chan struct{}
}

// NewTable allocates a route table backed by pool, accepting up to
// maxRoutes entries.
func NewTable(pool *mpool.Pool, maxRoutes int) *Table {
	return &Table{
		pool:       pool,
		maxRoutes:  maxRoutes,
		interfaces: make(map[uint16]*Interface),
		maintLock:  osal.NewLock(),
	}
}

// Pool returns the table's backing block pool.
func (t *Table) Pool() *mpool.Pool { return t.pool }

// RegisterGenericIntf assigns the next interface id to fl and returns
// it. parentID is recorded for child interfaces (a CLA registered
// under a base interface) and is zero for top-level interfaces.
func (t *Table) RegisterGenericIntf(parentID uint16, fl *flow.Flow) uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextIntfID++
	id := t.nextIntfID
	fl.InterfaceID = id
	fl.ParentIntfID = parentID
	t.interfaces[id] = &Interface{ID: id, ParentID: parentID, Flow: fl}
	return id
}

// DelIntf removes an interface and every route referencing it.
func (t *Table) DelIntf(intfID uint16) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.interfaces[intfID]; !ok {
		return bpe.Wrap(bpe.ErrAPI, "route: unknown interface %d", intfID)
	}
	delete(t.interfaces, intfID)

	kept := t.routes[:0]
	for _, r := range t.routes {
		if r.intfID != intfID {
			kept = append(kept, r)
		}
	}
	t.routes = kept
	return nil
}

// Interface returns the registered interface, or nil.
func (t *Table) Interface(intfID uint16) *Interface {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interfaces[intfID]
}

// Interfaces returns a snapshot of every registered interface.
func (t *Table) Interfaces() []*Interface {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Interface, 0, len(t.interfaces))
	for _, i := range t.interfaces {
		out = append(out, i)
	}
	return out
}

// AddRoute appends a (dest, mask, intf) entry.
func (t *Table) AddRoute(dest, mask uint64, intfID uint16) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.interfaces[intfID]; !ok {
		return bpe.Wrap(bpe.ErrAPI, "route: unknown interface %d", intfID)
	}
	if len(t.routes) >= t.maxRoutes {
		return bpe.Wrap(bpe.ErrOutOfMemory, "route: table full at %d routes", t.maxRoutes)
	}
	t.routes = append(t.routes, route{dest: dest, mask: mask, intfID: intfID})
	return nil
}

// DelRoute removes the route exactly matching (dest, mask, intf).
func (t *Table) DelRoute(dest, mask uint64, intfID uint16) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for idx, r := range t.routes {
		if r.dest == dest && r.mask == mask && r.intfID == intfID {
			t.routes = append(t.routes[:idx], t.routes[idx+1:]...)
			return nil
		}
	}
	return bpe.Wrap(bpe.ErrAPI, "route: no matching route %d/%d via %d", dest, mask, intfID)
}

// GetNextIntfWithFlags resolves dest to an interface under longest-
// mask semantics, restricted to interfaces whose flags AND flagMask
// equal reqFlags. Among matching routes, the one with the most mask
// bits set wins; ties favor whichever was added first.
func (t *Table) GetNextIntfWithFlags(dest uint64, reqFlags, flagMask Flags) (uint16, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var best *route
	bestBits := -1
	for i := range t.routes {
		r := &t.routes[i]
		if dest&r.mask != r.dest&r.mask {
			continue
		}
		intf, ok := t.interfaces[r.intfID]
		if !ok {
			continue
		}
		if intf.Flags()&flagMask != reqFlags {
			continue
		}
		if n := bits.OnesCount64(r.mask); n > bestBits {
			bestBits = n
			best = r
		}
	}
	if best == nil {
		return 0, false
	}
	return best.intfID, true
}

// GetNextAvailIntf resolves dest to any operationally-up interface,
// ignoring administrative state.
func (t *Table) GetNextAvailIntf(dest uint64) (uint16, bool) {
	return t.GetNextIntfWithFlags(dest, FlagOperUp, FlagOperUp)
}

// RegisterForwardIngressHandler installs fn as intfID's forward-
// ingress callback.
func (t *Table) RegisterForwardIngressHandler(intfID uint16, fn ForwardFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	intf, ok := t.interfaces[intfID]
	if !ok {
		return bpe.Wrap(bpe.ErrAPI, "route: unknown interface %d", intfID)
	}
	intf.forwardIngress = fn
	return nil
}

// RegisterForwardEgressHandler installs fn as intfID's forward-egress
// callback.
func (t *Table) RegisterForwardEgressHandler(intfID uint16, fn ForwardFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	intf, ok := t.interfaces[intfID]
	if !ok {
		return bpe.Wrap(bpe.ErrAPI, "route: unknown interface %d", intfID)
	}
	intf.forwardEgress = fn
	return nil
}

// RegisterEventHandler installs fn as intfID's event callback.
func (t *Table) RegisterEventHandler(intfID uint16, fn EventFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	intf, ok := t.interfaces[intfID]
	if !ok {
		return bpe.Wrap(bpe.ErrAPI, "route: unknown interface %d", intfID)
	}
	intf.eventHandler = fn
	return nil
}

// IngressRouteSingleBundle reads primary's destination node number,
// resolves an operationally-up interface via LPM, and pushes ref onto
// that interface's ingress subqueue. On any failure — no route, or a
// full/disabled subqueue — ref is recycled and an error is returned.
func (t *Table) IngressRouteSingleBundle(primary *bundle.PrimaryBlock, ref *mpool.Block) error {
	intfID, ok := t.GetNextAvailIntf(primary.Destination.Node)
	if !ok {
		_ = t.pool.ReleaseRef(ref)
		return bpe.Wrap(bpe.ErrAPI, "route: no route to %s", primary.Destination)
	}

	intf := t.Interface(intfID)
	if intf == nil {
		_ = t.pool.ReleaseRef(ref)
		return bpe.Wrap(bpe.ErrAPI, "route: interface %d vanished", intfID)
	}

	if err := intf.Flow.Ingress.Push(ref, osal.NowMs()); err != nil {
		_ = t.pool.ReleaseRef(ref)
		return err
	}
	return nil
}

package cache

import (
	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/dtncore/bpcore/pkg/rbtree"
	"github.com/google/uuid"
)

// bundleOf returns the decoded bundle a pool reference block points at,
// or nil if ref is not a reference block or its target does not hold a
// *bundle.Bundle.
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

// State is one of an Entry's five FSM states (spec.md §4.6).
type State int

const (
	StateUndefined State = iota
	StateIdle
	StateQueue
	StateDelete
	StateGenerateDACS
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQueue:
		return "queue"
	case StateDelete:
		return "delete"
	case StateGenerateDACS:
		return "generate_dacs"
	default:
		return "undefined"
	}
}

// Flags are the per-entry bits the FSM reads and sets, matching
// original_source/cache/src/v7_cache_internal.h's BPLIB_STORE_FLAG_*.
type Flags uint32

const (
	FlagActivity Flags = 1 << iota
	FlagLocalCustody
	FlagActionTimeWait
	FlagLocallyQueued
)

// FlagsActionWaitState is the set of bits that, when any is set, means
// the entry is already waiting on some external action and should not
// be immediately re-evaluated.
const FlagsActionWaitState = FlagActionTimeWait | FlagLocallyQueued

func (f Flags) Has(want Flags) bool { return f&want != 0 }

// Timing constants, in milliseconds, matching the C source's
// BP_CACHE_* macros.
const (
	DacsLifetimeMs  = 86400000
	DacsOpenTimeMs  = 10000
	FastRetryTimeMs = 3000
	IdleRetryTimeMs = 3600000
	AgeOutTimeMs    = 60000

	// TimeBucketShift batches the time index's keys so that entries due
	// within roughly the same second collapse into one R-B tree key,
	// trading sub-second eviction precision for a shallower tree under
	// the always-go-right duplicate policy.
	TimeBucketShift = 10

	// TimeInfinite is used as action_time while a queued entry's
	// retransmit timer is suspended pending confirmation it was really
	// sent (spec.md §4.6 "queue" state, mirroring BP_CACHE_TIME_INFINITE).
	TimeInfinite = ^uint64(0)
)

// Entry is one retained bundle's cache-resident metadata.
type Entry struct {
	ID uuid.UUID

	Destination   bundle.EID
	PrevCustodian bundle.EID
	BundleHash    uint64

	State State
	Flags Flags

	// Ref is a pool reference block (mpool.RefContent) whose target holds
	// the retained bundle as a *bundle.Bundle, so the FSM can read and
	// update delivery metadata in place without re-decoding CBOR.
	Ref *mpool.Block

	ExpireTime uint64
	ActionTime uint64

	OffloadSID uint64

	// DACSPending accumulates the IDs (source EID and creation
	// timestamp) of bundles being assembled into one DACS while in
	// StateGenerateDACS.
	DACSPending []DACSAccept

	destNode *rbtree.Node
	timeNode *rbtree.Node
}

// DACSAccept is one bundle accepted for custody, awaiting
// acknowledgement in a generated DACS record.
type DACSAccept struct {
	Source   bundle.EID
	Creation bundle.CreationTimestamp
}

// primary returns the entry's retained primary block, or nil if the
// entry currently has no resident reference (offloaded, or mid-swap).
func (e *Entry) primary() *bundle.PrimaryBlock {
	b := bundleOf(e.Ref)
	if b == nil {
		return nil
	}
	return &b.Primary
}

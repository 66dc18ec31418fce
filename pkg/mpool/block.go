// Package mpool implements a fixed-capacity, typed block allocator: a
// free list of pre-sized blocks, a recycle queue for deferred
// reclamation, and refcounted references into the pool. Every bundle
// that transits this node — its primary block, its canonical blocks,
// its chunked encoded form, its place on a flow's subqueue — is a
// block owned by one Pool.
package mpool

// BlockType tags what a Block's Content holds, mirroring
// original_source/common/v7_mpool.h's bplib_mpool_blocktype_t.
type BlockType int

const (
	BlockTypeUndefined BlockType = iota
	// BlockTypeHead marks a sentinel node: the head of an intrusive
	// list, never itself holding content.
	BlockTypeHead
	// BlockTypeCBORData holds an opaque chunk of encoded bytes — a
	// link in a primary or canonical block's encoded-chunk chain.
	BlockTypeCBORData
	// BlockTypeGeneric holds caller-defined content identified by a
	// registered signature (RegisterType).
	BlockTypeGeneric
	// BlockTypePrimary holds a primary block plus its canonical-block
	// list and encoded-chunk list.
	BlockTypePrimary
	// BlockTypeCanonical holds a canonical block plus its encoded-
	// chunk list.
	BlockTypeCanonical
	// BlockTypeBaseIntf holds a route table interface's subflow list.
	BlockTypeBaseIntf
	// BlockTypeFlow holds a flow's input/output subqueues.
	BlockTypeFlow
	// BlockTypePrimaryRef and BlockTypeCanonicalRef are refcounted
	// indirection blocks: they sit in a subqueue or list in place of
	// the thing they point to, so several lists can reference one
	// block without copying it.
	BlockTypePrimaryRef
	BlockTypeCanonicalRef
)

func (t BlockType) String() string {
	switch t {
	case BlockTypeHead:
		return "head"
	case BlockTypeCBORData:
		return "cbor-data"
	case BlockTypeGeneric:
		return "generic"
	case BlockTypePrimary:
		return "primary"
	case BlockTypeCanonical:
		return "canonical"
	case BlockTypeBaseIntf:
		return "base-interface"
	case BlockTypeFlow:
		return "flow"
	case BlockTypePrimaryRef:
		return "primary-ref"
	case BlockTypeCanonicalRef:
		return "canonical-ref"
	default:
		return "undefined"
	}
}

// IsRef reports whether t is one of the indirection block types.
func (t BlockType) IsRef() bool {
	return t == BlockTypePrimaryRef || t == BlockTypeCanonicalRef
}

// Block is one node of the pool's fixed-size allocation unit. It is
// simultaneously an intrusive doubly-linked list node (next/prev) and
// the holder of typed content. A zero-value Block is a detached,
// unattached list link: next and prev point to itself once reset is
// called, matching the circular-sentinel convention
// original_source/common/v7_mpool.c relies on throughout.
type Block struct {
	Type     BlockType
	Sig      uint32
	Refcount int32
	Content  any

	next, prev *Block
	owner      *Pool
}

// reset makes b a self-referencing, unattached link of the given type.
func (b *Block) reset(t BlockType) {
	b.Type = t
	b.next = b
	b.prev = b
}

// Attached reports whether b currently sits in some list other than
// itself.
func (b *Block) Attached() bool {
	return b.next != b
}

// IsEmptyListHead reports whether b is a head sentinel with no items
// attached.
func (b *Block) IsEmptyListHead() bool {
	return b.Type == BlockTypeHead && !b.Attached()
}

package mpool

import (
	"sync"
	"sync/atomic"

	"github.com/dtncore/bpcore/pkg/bpe"
)

// Constructor initializes a newly allocated block's Content from
// initArg. A non-nil error still leaves the block allocated —
// Alloc's caller decides whether to recycle it.
type Constructor func(initArg any) (any, error)

// Destructor releases anything a Constructor acquired. It runs during
// Maintain, never during Recycle itself.
type Destructor func(content any)

// TypeOps are the constructor/destructor pair registered for one
// content signature.
type TypeOps struct {
	Construct Constructor
	Destruct  Destructor
}

// Recyclable is implemented by block content that itself owns nested
// block lists (a primary block's canonical-block list and encoded-
// chunk list, a flow's subqueues). Maintain recycles every node on
// every returned list before running the block's own destructor.
type Recyclable interface {
	MpoolSubLists() []*Block
}

// Pool is a fixed-capacity allocator: Capacity blocks are carved up
// front and linked onto a free list; Alloc removes one, Recycle
// appends a spent one to a deferred-reclamation queue, and Maintain
// drains that queue, running destructors and returning blocks to the
// free list. One mutex guards every mutating operation, mirroring the
// single coarse lock pattern the storage and manager layers in the
// rest of this module use.
type Pool struct {
	mu           sync.Mutex
	blocks       []Block
	freeList     *Block
	recycleQueue *Block
	registry     map[uint32]TypeOps
	inUse        int
}

// NewPool allocates capacity blocks and links them onto the free
// list.
func NewPool(capacity int) *Pool {
	p := &Pool{
		blocks:       make([]Block, capacity),
		freeList:     NewListHead(),
		recycleQueue: NewListHead(),
		registry:     make(map[uint32]TypeOps),
	}
	for i := range p.blocks {
		p.blocks[i].owner = p
		p.blocks[i].reset(BlockTypeUndefined)
		InsertBefore(p.freeList, &p.blocks[i])
	}
	return p
}

// Capacity returns the total number of blocks the pool was created
// with.
func (p *Pool) Capacity() int {
	return len(p.blocks)
}

// InUse returns the number of blocks not on the free list. Blocks
// pending in the recycle queue still count until Maintain drains them.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// RegisterType associates constructor/destructor hooks with a content
// signature. Registering the same sig twice fails with ErrDuplicate.
func (p *Pool) RegisterType(sig uint32, ops TypeOps) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.registry[sig]; exists {
		return bpe.Wrap(bpe.ErrDuplicate, "mpool: blocktype signature %d already registered", sig)
	}
	p.registry[sig] = ops
	return nil
}

// Alloc removes a block from the free list, tags it with t and sig,
// and runs sig's registered constructor (if any) with initArg. It
// returns ErrOutOfMemory if the free list is empty.
func (p *Pool) Alloc(t BlockType, sig uint32, initArg any) (*Block, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.freeList.next == p.freeList {
		return nil, bpe.Wrap(bpe.ErrOutOfMemory, "mpool: free list exhausted (capacity %d)", len(p.blocks))
	}

	blk := p.freeList.next
	ExtractNode(blk)
	blk.Type = t
	blk.Sig = sig
	blk.Refcount = 0
	blk.Content = nil
	p.inUse++

	if ops, ok := p.registry[sig]; ok && ops.Construct != nil {
		content, err := ops.Construct(initArg)
		blk.Content = content
		if err != nil {
			return blk, err
		}
	}
	return blk, nil
}

// Recycle detaches blk from whatever list holds it and appends it to
// the recycle queue. blk's refcount must already be zero; Recycle
// does not check this itself (ReleaseRef is the path that does).
func (p *Pool) Recycle(blk *Block) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recycleLocked(blk)
}

func (p *Pool) recycleLocked(blk *Block) {
	ExtractNode(blk)
	InsertBefore(p.recycleQueue, blk)
}

// RecycleList moves every node currently attached to list onto the
// recycle queue, leaving list empty.
func (p *Pool) RecycleList(list *Block) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ForEach(list, true, func(n *Block) {
		InsertBefore(p.recycleQueue, n)
	})
}

// Maintain drains the recycle queue: for each pending block it
// recursively recycles any sub-lists its content owns, runs the
// registered destructor for its signature, wipes it, and returns it
// to the free list. It returns the number of blocks reclaimed.
func (p *Pool) Maintain() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	reclaim := func(blk *Block) {
		if sub, ok := blk.Content.(Recyclable); ok {
			for _, list := range sub.MpoolSubLists() {
				ForEach(list, true, func(n *Block) {
					InsertBefore(p.recycleQueue, n)
				})
			}
		}
		if ops, ok := p.registry[blk.Sig]; ok && ops.Destruct != nil {
			ops.Destruct(blk.Content)
		}
		blk.Content = nil
		blk.Sig = 0
		blk.Refcount = 0
		blk.reset(BlockTypeUndefined)
		InsertBefore(p.freeList, blk)
		p.inUse--
	}

	// Sub-list blocks queued while the last pending block is processed
	// land after the point ForEach stops at, so repeat until empty.
	reclaimed := 0
	for p.recycleQueue.next != p.recycleQueue {
		reclaimed += ForEach(p.recycleQueue, true, reclaim)
	}
	return reclaimed
}

// RefContent is the content of a reference block: an indirection
// pointing at some other block in this pool, used so several lists
// can hold a handle to one block without copying it.
type RefContent struct {
	Target *Block
}

// CreateRef allocates a reference block pointing at target and
// increments target's refcount.
func (p *Pool) CreateRef(target *Block) (*Block, error) {
	refType := BlockTypePrimaryRef
	if target.Type == BlockTypeCanonical || target.Type == BlockTypeCanonicalRef {
		refType = BlockTypeCanonicalRef
	}
	ref, err := p.Alloc(refType, 0, nil)
	if err != nil {
		return nil, err
	}
	ref.Content = &RefContent{Target: target}
	atomic.AddInt32(&target.Refcount, 1)
	return ref, nil
}

// DuplicateRef increments the target's refcount and returns a cloned
// reference block.
func (p *Pool) DuplicateRef(ref *Block) (*Block, error) {
	rc, ok := ref.Content.(*RefContent)
	if !ok {
		return nil, bpe.Wrap(bpe.ErrAPI, "mpool: DuplicateRef called on a non-reference block")
	}
	dup, err := p.Alloc(ref.Type, 0, nil)
	if err != nil {
		return nil, err
	}
	dup.Content = &RefContent{Target: rc.Target}
	atomic.AddInt32(&rc.Target.Refcount, 1)
	return dup, nil
}

// ReleaseRef decrements the target's refcount, recycling ref itself
// unconditionally and recycling the target too once its refcount
// reaches zero.
func (p *Pool) ReleaseRef(ref *Block) error {
	rc, ok := ref.Content.(*RefContent)
	if !ok {
		return bpe.Wrap(bpe.ErrAPI, "mpool: ReleaseRef called on a non-reference block")
	}
	remaining := atomic.AddInt32(&rc.Target.Refcount, -1)
	p.Recycle(ref)
	if remaining <= 0 {
		p.Recycle(rc.Target)
	}
	return nil
}

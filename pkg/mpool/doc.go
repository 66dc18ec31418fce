/*
Package mpool is the allocator every other bpcore package builds on: a
fixed-capacity set of blocks, carved up front, linked into a free
list, and handed out by Alloc. Recycling is deferred — Recycle only
detaches a block and queues it; Maintain is the one place destructors
run and blocks return to the free list, matching
original_source/common/v7_mpool.c's alloc/recycle/maintain split.

Blocks double as intrusive doubly-linked list nodes (see list.go), so
a primary block's canonical-block list, a flow's subqueues, and the
pool's own free/recycle queues are all the same InsertAfter/
InsertBefore/ExtractNode primitives operating on *Block.

Reference blocks (CreateRef/DuplicateRef/ReleaseRef) let several lists
point at one block without copying it; a block's refcount reaching
zero on ReleaseRef is what actually queues it for recycling.
*/
package mpool

package flow

import (
	"github.com/dtncore/bpcore/pkg/bpe"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/dtncore/bpcore/pkg/osal"
)

// Stats are the running counters a Subqueue keeps for introspection
// (pkg/metrics and pkg/admin surface these).
type Stats struct {
	Enqueued uint64
	Dequeued uint64
	Dropped  uint64
	Errors   uint64
}

// Subqueue is a bounded FIFO of block references. DepthLimit of zero
// disables the queue: every Push fails until it is raised again by a
// Flow state transition.
type Subqueue struct {
	lock       *osal.Lock
	list       *mpool.Block
	depth      int
	depthLimit int
	stats      Stats
}

// NewSubqueue returns an empty, disabled (depth limit 0) subqueue.
func NewSubqueue() *Subqueue {
	return &Subqueue{
		lock: osal.NewLock(),
		list: mpool.NewListHead(),
	}
}

// SetDepthLimit changes the subqueue's capacity. A limit of 0 disables
// it; Push then fails immediately instead of blocking.
func (q *Subqueue) SetDepthLimit(limit int) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.depthLimit = limit
	if limit > q.depth {
		q.lock.Broadcast()
	}
}

// Depth returns the current number of entries.
func (q *Subqueue) Depth() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.depth
}

// DepthLimit returns the subqueue's current capacity (0 means
// disabled).
func (q *Subqueue) DepthLimit() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.depthLimit
}

// Stats returns a snapshot of the running counters.
func (q *Subqueue) Stats() Stats {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.stats
}

// Push appends ref to the tail of the queue, blocking until the queue
// has room or deadlineMs (an absolute DTN millisecond time, 0 meaning
// wait forever) elapses. It fails immediately with ErrAPI if the queue
// is disabled (depth limit 0).
func (q *Subqueue) Push(ref *mpool.Block, deadlineMs uint64) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.depthLimit == 0 {
		q.stats.Dropped++
		return bpe.Wrap(bpe.ErrAPI, "flow: subqueue is disabled")
	}

	for q.depth >= q.depthLimit {
		if !q.lock.WaitUntilMs(deadlineMs) {
			q.stats.Errors++
			return bpe.ErrTimeout
		}
		if q.depthLimit == 0 {
			q.stats.Dropped++
			return bpe.Wrap(bpe.ErrAPI, "flow: subqueue disabled while waiting")
		}
	}

	mpool.InsertBefore(q.list, ref)
	q.depth++
	q.stats.Enqueued++
	q.lock.Broadcast()
	return nil
}

// Pull removes and returns the oldest reference, blocking until one
// is available or deadlineMs elapses.
func (q *Subqueue) Pull(deadlineMs uint64) (*mpool.Block, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	for q.depth == 0 {
		if !q.lock.WaitUntilMs(deadlineMs) {
			return nil, bpe.ErrTimeout
		}
	}

	ref := mpool.Front(q.list)
	mpool.ExtractNode(ref)
	q.depth--
	q.stats.Dequeued++
	q.lock.Broadcast()
	return ref, nil
}

// Drain removes every entry and hands each to pool.Recycle, used when
// a Flow transitions down.
func (q *Subqueue) Drain(pool *mpool.Pool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	pool.RecycleList(q.list)
	q.depth = 0
}

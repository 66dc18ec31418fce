package cache

import "github.com/dtncore/bpcore/pkg/bundle"

// evalState dispatches to the per-state evaluation function, matching
// original_source/cache/src/v7_cache_fsm.c's STATE_EVAL_TABLE.
func (c *Cache) evalState(e *Entry) State {
	switch e.State {
	case StateIdle:
		return c.idleEval(e)
	case StateQueue:
		return c.queueEval(e)
	case StateDelete:
		return c.deleteEval(e)
	case StateGenerateDACS:
		return c.generateDACSEval(e)
	default:
		return StateUndefined
	}
}

func (c *Cache) enterState(s State, e *Entry) {
	switch s {
	case StateQueue:
		c.queueEnter(e)
	case StateDelete:
		c.deleteEnter(e)
	}
}

func (c *Cache) exitState(s State, e *Entry) {
	switch s {
	case StateQueue:
		c.queueExit(e)
	case StateGenerateDACS:
		c.generateDACSExit(e)
	}
}

func (c *Cache) idleEval(e *Entry) State {
	if c.actionTime >= e.ExpireTime {
		return StateUndefined
	}
	if !e.Flags.Has(FlagLocalCustody) {
		return StateDelete
	}
	if !e.Flags.Has(FlagsActionWaitState) {
		if e.Ref == nil && e.OffloadSID != 0 && c.offload != nil {
			if blk, err := c.offload.Restore(e.OffloadSID); err == nil {
				ref, err := c.pool.CreateRef(blk)
				if err == nil {
					e.Ref = ref
				}
			}
		}
		if e.Ref != nil {
			return StateQueue
		}
	}
	return StateIdle
}

func (c *Cache) queueEval(e *Entry) State {
	if !e.Flags.Has(FlagLocallyQueued) {
		return StateIdle
	}
	return StateQueue
}

// queueEnter pushes a duplicate reference onto the cache's own egress
// subqueue; the forward-egress callback (cache.go) routes it onward
// and clears FlagLocallyQueued once consumed.
func (c *Cache) queueEnter(e *Entry) {
	dup, err := c.pool.DuplicateRef(e.Ref)
	if err != nil {
		return
	}
	e.Flags |= FlagLocallyQueued
	c.refOwners[dup] = e
	if err := c.flow.Egress.Push(dup, 0); err != nil {
		delete(c.refOwners, dup)
		_ = c.pool.ReleaseRef(dup)
		e.Flags &^= FlagLocallyQueued
	}
}

func (c *Cache) queueExit(e *Entry) {
	pb := e.primary()
	if pb == nil {
		return
	}
	if pb.EgressIntf != 0 {
		if pb.CustodyPolicy == bundle.CustodyNone {
			e.Flags &^= FlagLocalCustody
		} else {
			e.ActionTime = pb.EgressTimeMs + pb.RetxIntervalM
			e.Flags |= FlagActionTimeWait
			c.maybeOffload(e)
		}
	}
}

// maybeOffload moves e's resident reference to secondary storage once
// it has settled into a long retransmit wait, freeing the pool block
// until the retry (or a DACS) brings it back.
func (c *Cache) maybeOffload(e *Entry) {
	if c.offload == nil || e.Ref == nil || e.OffloadSID != 0 {
		return
	}
	b := bundleOf(e.Ref)
	if b == nil {
		return
	}
	sid, err := c.offload.Offload(b)
	if err != nil {
		return
	}
	e.OffloadSID = sid
	_ = c.pool.ReleaseRef(e.Ref)
	e.Ref = nil
}

func (c *Cache) deleteEval(e *Entry) State {
	if !e.Flags.Has(FlagActionTimeWait) {
		if !e.Flags.Has(FlagActivity) {
			return StateUndefined
		}
		e.Flags &^= FlagActivity
		e.Flags |= FlagActionTimeWait
		e.ActionTime = c.actionTime + AgeOutTimeMs
	}
	return StateDelete
}

func (c *Cache) deleteEnter(e *Entry) {
	if e.Ref != nil {
		_ = c.pool.ReleaseRef(e.Ref)
		e.Ref = nil
	}
	if e.OffloadSID != 0 && c.offload != nil {
		c.offload.Release(e.OffloadSID)
		e.OffloadSID = 0
	}
	e.Flags |= FlagActionTimeWait
	e.ActionTime = c.actionTime + AgeOutTimeMs
}

func (c *Cache) generateDACSEval(e *Entry) State {
	if !e.Flags.Has(FlagActionTimeWait) {
		return StateIdle
	}
	return StateGenerateDACS
}

func (c *Cache) generateDACSExit(e *Entry) {
	c.finalizeDACS(e)
}

// reschedule recomputes e's time-index bucket after an FSM pass,
// taking the sooner of a generic retry delay and any explicit
// action_time wait the entry already carries.
func (c *Cache) reschedule(e *Entry) {
	refTime := c.actionTime
	if !e.Flags.Has(FlagsActionWaitState) {
		refTime += FastRetryTimeMs
	} else {
		refTime += IdleRetryTimeMs
	}
	if e.Flags.Has(FlagActionTimeWait) && e.ActionTime < refTime {
		refTime = e.ActionTime
	}

	bucket := refTime >> TimeBucketShift
	if e.timeNode != nil && e.timeNode.Key == bucket {
		return
	}
	if e.timeNode != nil {
		_ = c.timeIndex.ExtractNode(e.timeNode)
	}
	node, err := c.timeIndex.Insert(bucket, e, true)
	if err == nil {
		e.timeNode = node
	}
}

// discard removes e from every index and releases its resources, the
// terminal action for StateUndefined.
func (c *Cache) discard(e *Entry) {
	if e.destNode != nil {
		_ = c.destIndex.ExtractNode(e.destNode)
		e.destNode = nil
	}
	if e.timeNode != nil {
		_ = c.timeIndex.ExtractNode(e.timeNode)
		e.timeNode = nil
	}
	delete(c.hashIndex, e.BundleHash)
	if e.Ref != nil {
		_ = c.pool.ReleaseRef(e.Ref)
		e.Ref = nil
	}
	if e.OffloadSID != 0 && c.offload != nil {
		c.offload.Release(e.OffloadSID)
		e.OffloadSID = 0
	}
}

// execute runs one FSM evaluation pass on e, transitioning state and
// rescheduling (or discarding) as original_source's
// bplib_cache_fsm_execute does.
func (c *Cache) execute(e *Entry) {
	if e.Flags.Has(FlagActionTimeWait) && c.actionTime >= e.ActionTime {
		e.Flags &^= FlagActionTimeWait
		e.ActionTime = TimeInfinite
	}

	next := c.evalState(e)
	if next != e.State {
		c.exitState(e.State, e)
		c.enterState(next, e)
		e.State = next
	}

	if next == StateUndefined {
		c.discard(e)
	} else {
		c.reschedule(e)
	}
}

// Package osal is the OS-abstraction collaborator spec.md §6 describes as
// "consumed": locks with wait-until-DTN-time semantics, and monotonic DTN
// time. Subqueues and the route table's maintenance signalling wait
// through this package; plain mutexes elsewhere use sync directly.
package osal

import (
	"sync"
	"time"
)

// DtnEpoch is 2000-01-01T00:00:00Z, the DTN time origin (RFC 9171 §4.1.6).
var DtnEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// NowMs returns the current monotonic time in milliseconds since the DTN
// epoch. It is the sole place wall-clock time enters bpcore; every
// deadline elsewhere in the module is an absolute DTN-time millisecond
// value produced by this function.
func NowMs() uint64 {
	return uint64(time.Since(DtnEpoch).Milliseconds())
}

// Lock is a single-resource mutex with an attached wait/signal condition,
// matching the "one lock per resource address" contract of
// lock_prepare/lock_wait: a subqueue or a route table's maintenance
// signal each own exactly one Lock for their lifetime.
type Lock struct {
	mu   sync.Mutex
	cond *sync.Cond
}

// NewLock allocates and prepares a Lock. It stands in for
// create_lock(resource_addr): callers own one Lock per guarded resource.
func NewLock() *Lock {
	l := &Lock{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Lock acquires the mutex.
func (l *Lock) Lock() { l.mu.Lock() }

// Unlock releases the mutex.
func (l *Lock) Unlock() { l.mu.Unlock() }

// Signal wakes one goroutine blocked in Wait/WaitUntilMs. Callers must
// hold the lock, matching the usual condvar discipline.
func (l *Lock) Signal() { l.cond.Signal() }

// Broadcast wakes every goroutine blocked in Wait/WaitUntilMs.
func (l *Lock) Broadcast() { l.cond.Broadcast() }

// WaitUntilMs blocks on the condition until Signal/Broadcast fires or the
// absolute DTN-time deadline (in milliseconds) passes, whichever is
// first. The caller must hold the lock; it is released while blocked and
// re-acquired before returning, matching sync.Cond.Wait. It returns false
// on timeout (spec.md's wait_until_ms TIMEOUT), true otherwise.
//
// deadlineMs == 0 waits forever (no deadline supplied); this mirrors the
// C source's convention of treating a zero deadline as "block
// indefinitely" rather than "timeout immediately".
//
// A caller whose predicate is still false on a true return is expected to
// loop (the same discipline sync.Cond already requires for spurious
// wakeups); WaitUntilMs only distinguishes "woke before the deadline"
// from "the deadline passed".
func (l *Lock) WaitUntilMs(deadlineMs uint64) bool {
	if deadlineMs == 0 {
		l.cond.Wait()
		return true
	}

	now := NowMs()
	if now >= deadlineMs {
		return false
	}

	timer := time.AfterFunc(time.Duration(deadlineMs-now)*time.Millisecond, func() {
		l.mu.Lock()
		l.cond.Broadcast()
		l.mu.Unlock()
	})
	defer timer.Stop()

	l.cond.Wait()
	return NowMs() < deadlineMs
}

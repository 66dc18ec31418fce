package route

import (
	"github.com/dtncore/bpcore/pkg/flow"
	"github.com/dtncore/bpcore/pkg/osal"
)

// Start launches the table's maintenance worker goroutine. It is a
// no-op if already running.
func (t *Table) Start() {
	t.mu.Lock()
	if t.workerDone != nil {
		t.mu.Unlock()
		return
	}
	t.workerDone = make(chan struct{})
	t.mu.Unlock()

	go t.run()
}

// Stop signals the maintenance worker to exit and blocks until it
// does.
func (t *Table) Stop() {
	t.maintLock.Lock()
	t.shutdown = true
	t.maintLock.Broadcast()
	t.maintLock.Unlock()

	t.mu.Lock()
	done := t.workerDone
	t.mu.Unlock()
	if done != nil {
		<-done
	}
}

// SetMaintenanceRequest wakes the maintenance worker for one pass.
func (t *Table) SetMaintenanceRequest() {
	t.maintLock.Lock()
	t.requested++
	t.maintLock.Broadcast()
	t.maintLock.Unlock()
}

// MaintenanceRequestWait blocks until a pending request exists (or the
// table is stopped), returning true unless the table was stopped with
// no pending request.
func (t *Table) MaintenanceRequestWait() bool {
	t.maintLock.Lock()
	defer t.maintLock.Unlock()
	for t.requested == t.processed && !t.shutdown {
		t.maintLock.WaitUntilMs(0)
	}
	return t.requested != t.processed
}

// MaintenanceCompleteWait blocks until every maintenance pass
// requested as of the call returns, forcing processing of any
// in-flight bundles — used by recv and by tests that need a
// deterministic post-pass state.
func (t *Table) MaintenanceCompleteWait() {
	t.maintLock.Lock()
	defer t.maintLock.Unlock()
	target := t.requested
	for t.processed < target {
		t.maintLock.WaitUntilMs(0)
	}
}

// ProcessActiveFlows drains every non-empty ingress/egress subqueue
// through its registered forward callback and delivers a Poll event
// to every interface's event handler.
func (t *Table) ProcessActiveFlows() {
	for _, intf := range t.Interfaces() {
		if intf.forwardIngress != nil {
			for intf.Flow.Ingress.Depth() > 0 {
				ref, err := intf.Flow.Ingress.Pull(osal.NowMs())
				if err != nil {
					break
				}
				if err := intf.forwardIngress(t, intf, ref); err != nil {
					_ = t.pool.ReleaseRef(ref)
				}
			}
		}
		if intf.forwardEgress != nil {
			for intf.Flow.Egress.Depth() > 0 {
				ref, err := intf.Flow.Egress.Pull(osal.NowMs())
				if err != nil {
					break
				}
				if err := intf.forwardEgress(t, intf, ref); err != nil {
					_ = t.pool.ReleaseRef(ref)
				}
			}
		}
		if intf.eventHandler != nil {
			intf.eventHandler(t, intf, flow.EventPoll)
		}
	}
}

// PeriodicMaintenance drains the pool's recycle queue.
func (t *Table) PeriodicMaintenance() {
	t.pool.Maintain()
}

func (t *Table) run() {
	t.mu.Lock()
	done := t.workerDone
	t.mu.Unlock()
	defer close(done)

	for {
		if !t.MaintenanceRequestWait() {
			return
		}

		t.maintLock.Lock()
		gen := t.requested
		t.maintLock.Unlock()

		t.ProcessActiveFlows()
		t.PeriodicMaintenance()

		t.maintLock.Lock()
		t.processed = gen
		t.maintLock.Broadcast()
		t.maintLock.Unlock()
	}
}

/*
Package osal is the one place bpcore touches wall-clock time and raw
sync primitives.

Waits against a DTN-time deadline go through osal.Lock, and DTN
timestamps come from osal.NowMs. Plain mutual exclusion does not: the
pool, the route table's registry and the CLA adapter use sync.Mutex
directly, and pkg/metrics times callbacks with time.Now.

# Resource locks

A Lock is created once per guarded resource — a subqueue, a route
table's maintenance signal — and lives for that resource's lifetime,
matching the C source's one-lock-per-resource-address convention
(lock_prepare/lock_wait). WaitUntilMs blocks the calling goroutine until
either Signal/Broadcast fires or an absolute DTN-time millisecond
deadline passes.

# Time

NowMs returns milliseconds since the DTN epoch (2000-01-01T00:00:00Z).
All deadlines in bpcore (send/recv timeouts, cache action_time,
maintenance worker poll periods) are absolute values in this unit, never
relative durations, so that a goroutine can be asked to wait until an
arbitrary point regardless of how long it has already been scheduled.
*/
package osal

/*
Package route implements the longest-prefix-match route table and the
maintenance worker that drives per-interface forwarding, matching
spec.md §4.5.

A Table owns a set of Interfaces, each wrapping a *flow.Flow plus the
three callbacks a registrant installs: forward-ingress (invoked when
the interface's ingress subqueue has work), forward-egress (same, for
egress), and an event handler receiving Up/Down/Poll notifications.
Routes are (dest, mask, interface) triples; GetNextIntfWithFlags
resolves a destination node number to an interface under longest-mask
semantics, filtered by a caller-supplied admin/operational flag
requirement.

The maintenance worker is a single goroutine per Table, woken by
SetMaintenanceRequest and blocking otherwise, mirroring the cooperative
scheduling model of maintenance_request_wait/maintenance_complete_wait
in the reference implementation.
*/
package route

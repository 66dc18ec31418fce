/*
Package cache implements the delay-tolerant storage service of spec.md
§4.6: bundles whose destination is unreachable or whose custody policy
requires local retransmission are retained here, indexed both by
destination EID (for route-up re-pend sweeps) and by due time (for the
maintenance eviction loop).

Cache is registered with a route.Table as an ordinary interface; its
forward-ingress callback is the accept-for-retention path for bundles
the table resolved here, and its forward-egress callback is the FSM's
own re-dispatch path for a retained entry being forwarded onward. Each
retained bundle gets an Entry driven through a five-state FSM (idle,
queue, delete, generate_dacs, undefined) by the maintenance worker's
periodic Poll event, mirroring the evaluate/enter/exit dispatch of
original_source/cache/src/v7_cache_fsm.c.
*/
package cache

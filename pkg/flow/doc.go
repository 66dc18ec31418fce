/*
Package flow implements the per-interface queueing layer: bounded
subqueues of block references, the admin/operational state machine
that gates them, and the block-stream writer/reader abstraction used
to serialize bundles into (and read them back out of) chains of
pool.Block chunks.

A Flow pairs an ingress subqueue (bundles entering this node's
processing from the interface) with an egress subqueue (bundles
leaving via the interface), matching spec.md §4.4. Subqueue push/pull
block up to a caller deadline using pkg/osal's condition-variable
wait, keyed per-subqueue the way pkg/mpool's pool lock is keyed per-
pool.
*/
package flow

/*
Package node wires a complete bpnode instance together: a pool, a
route table, an optional cache (with an optional bbolt offload store
behind it), the local dataservice base interface, a CLA adapter per
configured convergence-layer peer, and optional metrics/admin
servers.

Grounded on pkg/manager/manager.go's Config-struct-driven
construct-and-wire-every-subsystem shape, generalized from Warren's
Raft/store/DNS/ingress stack to bpcore's pool/route/cache/dataservice/
cla stack.
*/
package node

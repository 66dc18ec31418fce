/*
Package dataservice implements the socket layer of spec.md §4.7: the
application-facing side of a node, where a base interface fans a
node's inbound bundles out to the socket bound to their destination
service number, and a socket's outbound sends are injected back into
the route table.

A BaseIntf is a route.Interface registered under one IPN node number.
Bundles the route table resolves there land on its ingress subqueue;
its forward-ingress callback reads the destination EID's service
number, looks it up in a service-number-keyed index, and hands the
reference to the bound Socket's own egress subqueue for Recv to pull.

A Socket is itself a route.Interface (flow.KindEndpoint). Send builds
a bundle from the socket's bound/connected addressing and pushes a
reference onto the socket's own ingress subqueue; the socket's
forward-ingress callback — the "parent node's forward-ingress
callback" of spec.md §4.7 — routes it onward via
route.Table.IngressRouteSingleBundle, exactly as pkg/cache's queued
re-dispatch does for retained bundles.
*/
package dataservice

/*
Package cla implements the convergence-layer adapter contract spec.md
§6 describes as consumed ("cla_ingress(table, intf, bytes, size,
timeout)" / "cla_egress(table, intf, buffer, &size, timeout)"): the
core hands an Adapter encoded bundles to transmit and receives raw
datagrams back from it to decode and route onward.

An Adapter is a route.Interface like any other: bundles the route
table resolves to it via route.Table.IngressRouteSingleBundle land on
its ingress subqueue, where the forward-ingress callback encodes the
bundle (pkg/codec) and hands the bytes to a Transport. A background
goroutine reads datagrams off the Transport and pushes them, still
encoded, onto the adapter's own egress subqueue; the forward-egress
callback decodes each one and routes it onward, mirroring the
ingress/egress convention pkg/cache and pkg/dataservice already
establish (ingress = accept what was routed here; egress = content
this module produced that needs routing).

Two Transport implementations are provided: udp.go (a real UDP
socket pair) and loopback.go (an in-memory channel pair for
same-process tests, per spec.md's socket round-trip acceptance test).
*/
package cla

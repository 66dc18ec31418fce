/*
Package metrics exposes Prometheus collectors over a running node's
pool, route table, and cache (spec.md's ambient observability
surface), grounded on pkg/metrics/metrics.go's package-level
MustRegister pattern and pkg/metrics/collector.go's ticker-driven
Collector.
*/
package metrics

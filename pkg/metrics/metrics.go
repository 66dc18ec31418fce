package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pool metrics
	PoolBlocksInUse = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bpnode_pool_blocks_in_use",
			Help: "Number of mpool blocks currently allocated",
		},
	)

	PoolCapacity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bpnode_pool_capacity",
			Help: "Total number of blocks the mpool was created with",
		},
	)

	// Interface/subqueue metrics
	InterfaceOperUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bpnode_interface_oper_up",
			Help: "Whether a route table interface is operationally up (1) or not (0)",
		},
		[]string{"intf_id", "direction"},
	)

	SubqueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bpnode_subqueue_depth",
			Help: "Current number of references resident in a subqueue",
		},
		[]string{"intf_id", "direction"},
	)

	// These mirror flow.Subqueue's own running Stats counters, so they
	// are exposed as gauges set to that absolute value on each collection
	// pass rather than Prometheus Counters incremented by a delta.
	SubqueueEnqueuedTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bpnode_subqueue_enqueued_total",
			Help: "Total references successfully pushed onto a subqueue",
		},
		[]string{"intf_id", "direction"},
	)

	SubqueueDequeuedTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bpnode_subqueue_dequeued_total",
			Help: "Total references successfully pulled off a subqueue",
		},
		[]string{"intf_id", "direction"},
	)

	SubqueueDroppedTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bpnode_subqueue_dropped_total",
			Help: "Total references refused by a disabled subqueue",
		},
		[]string{"intf_id", "direction"},
	)

	SubqueueErrorsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bpnode_subqueue_errors_total",
			Help: "Total push timeouts observed on a subqueue",
		},
		[]string{"intf_id", "direction"},
	)

	// Cache metrics
	CacheEntriesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bpnode_cache_entries_total",
			Help: "Total number of bundles currently retained by the cache",
		},
	)

	// Forwarding latency
	ForwardDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bpnode_forward_duration_seconds",
			Help:    "Time taken for a single forward-ingress or forward-egress callback to run",
			Buckets: prometheus.DefBuckets,
		},
	)

	BundlesForwardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bpnode_bundles_forwarded_total",
			Help: "Total number of bundles successfully routed onward",
		},
	)

	BundlesForwardFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bpnode_bundles_forward_failed_total",
			Help: "Total number of bundles that failed forward-ingress or forward-egress routing",
		},
	)
)

func init() {
	prometheus.MustRegister(PoolBlocksInUse)
	prometheus.MustRegister(PoolCapacity)
	prometheus.MustRegister(InterfaceOperUp)
	prometheus.MustRegister(SubqueueDepth)
	prometheus.MustRegister(SubqueueEnqueuedTotal)
	prometheus.MustRegister(SubqueueDequeuedTotal)
	prometheus.MustRegister(SubqueueDroppedTotal)
	prometheus.MustRegister(SubqueueErrorsTotal)
	prometheus.MustRegister(CacheEntriesTotal)
	prometheus.MustRegister(ForwardDuration)
	prometheus.MustRegister(BundlesForwardedTotal)
	prometheus.MustRegister(BundlesForwardFailedTotal)
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer times a single operation and records its duration to a
// histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

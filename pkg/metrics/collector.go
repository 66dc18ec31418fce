package metrics

import (
	"strconv"
	"time"

	"github.com/dtncore/bpcore/pkg/cache"
	"github.com/dtncore/bpcore/pkg/flow"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/dtncore/bpcore/pkg/route"
)

// Collector periodically samples a node's pool, route table, and cache
// into the package's Prometheus gauges and counters.
type Collector struct {
	pool  *mpool.Pool
	tbl   *route.Table
	cache *cache.Cache

	stopCh chan struct{}
}

// NewCollector creates a collector over the given node components. c
// may be nil if the node has no cache configured.
func NewCollector(pool *mpool.Pool, tbl *route.Table, c *cache.Cache) *Collector {
	return &Collector{
		pool:   pool,
		tbl:    tbl,
		cache:  c,
		stopCh: make(chan struct{}),
	}
}

// Start begins periodic collection every interval, collecting once
// immediately.
func (c *Collector) Start(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts periodic collection.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectPool()
	c.collectInterfaces()
	c.collectCache()
}

func (c *Collector) collectPool() {
	PoolBlocksInUse.Set(float64(c.pool.InUse()))
	PoolCapacity.Set(float64(c.pool.Capacity()))
}

func (c *Collector) collectInterfaces() {
	for _, intf := range c.tbl.Interfaces() {
		id := strconv.Itoa(int(intf.ID))
		c.collectSubqueue(id, "ingress", intf.Flow)
		c.collectSubqueue(id, "egress", intf.Flow)

		up := 0.0
		if intf.Flags()&route.FlagOperUp != 0 {
			up = 1
		}
		InterfaceOperUp.WithLabelValues(id, "ingress").Set(up)
		InterfaceOperUp.WithLabelValues(id, "egress").Set(up)
	}
}

func (c *Collector) collectSubqueue(id, direction string, fl *flow.Flow) {
	var q *flow.Subqueue
	if direction == "ingress" {
		q = fl.Ingress
	} else {
		q = fl.Egress
	}

	SubqueueDepth.WithLabelValues(id, direction).Set(float64(q.Depth()))

	stats := q.Stats()
	SubqueueEnqueuedTotal.WithLabelValues(id, direction).Set(float64(stats.Enqueued))
	SubqueueDequeuedTotal.WithLabelValues(id, direction).Set(float64(stats.Dequeued))
	SubqueueDroppedTotal.WithLabelValues(id, direction).Set(float64(stats.Dropped))
	SubqueueErrorsTotal.WithLabelValues(id, direction).Set(float64(stats.Errors))
}

func (c *Collector) collectCache() {
	if c.cache == nil {
		return
	}
	CacheEntriesTotal.Set(float64(c.cache.EntryCount()))
}

package node

import (
	"time"

	"github.com/dtncore/bpcore/pkg/cla"
)

// CLAConfig wires one convergence-layer peer into the route table: a
// transport plus the destination prefix routed through it.
type CLAConfig struct {
	Transport cla.Transport
	Dest      uint64
	Mask      uint64
}

// Config describes a bpnode instance's static wiring. Zero-valued
// optional fields disable the corresponding subsystem.
type Config struct {
	// NodeNumber is this node's IPN node number (spec.md §3 EID).
	NodeNumber uint64

	// PoolCapacity is the number of blocks the shared mpool.Pool is
	// created with.
	PoolCapacity int

	// MaxRoutes bounds the route table's static route list.
	MaxRoutes int

	// EnableCache registers a pkg/cache instance as a route interface.
	EnableCache bool

	// OffloadDataDir, if non-empty, backs the cache's offload hook with
	// a bbolt store rooted at this directory.
	OffloadDataDir string

	// OffloadEncryptionKey, if non-nil, must be 32 bytes and enables
	// AES-256-GCM encryption at rest for offloaded bundle content.
	OffloadEncryptionKey []byte

	// CLAs are the convergence-layer peers to register and start.
	CLAs []CLAConfig

	// AdminAddr, if non-empty, is the "host:port" the admin
	// introspection service listens on.
	AdminAddr string

	// MetricsInterval, if non-zero, enables periodic Prometheus
	// collection at this interval.
	MetricsInterval time.Duration
}

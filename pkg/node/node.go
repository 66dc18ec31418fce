package node

import (
	"fmt"

	"github.com/dtncore/bpcore/internal/log"
	"github.com/dtncore/bpcore/pkg/admin"
	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/cache"
	"github.com/dtncore/bpcore/pkg/cla"
	"github.com/dtncore/bpcore/pkg/dataservice"
	"github.com/dtncore/bpcore/pkg/metrics"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/dtncore/bpcore/pkg/offload"
	"github.com/dtncore/bpcore/pkg/route"
)

// Node is a fully wired bpnode instance.
type Node struct {
	cfg Config

	Pool  *mpool.Pool
	Table *route.Table
	Cache *cache.Cache
	Base  *dataservice.BaseIntf

	offloadStore *offload.Store
	adapters     []*cla.Adapter

	Admin   *admin.Server
	Metrics *metrics.Collector

	selfAddr bundle.EID
}

// New constructs a Node from cfg. It wires every configured subsystem
// but does not start any background goroutine; call Start for that.
func New(cfg Config) (*Node, error) {
	pool := mpool.NewPool(cfg.PoolCapacity)
	tbl := route.NewTable(pool, cfg.MaxRoutes)
	selfAddr := bundle.NewIPN(cfg.NodeNumber, 0)

	n := &Node{
		cfg:      cfg,
		Pool:     pool,
		Table:    tbl,
		selfAddr: selfAddr,
	}

	if cfg.EnableCache {
		n.Cache = cache.NewCache(pool, selfAddr)
		n.Cache.Register(tbl)

		if cfg.OffloadDataDir != "" {
			var opts []offload.Option
			if cfg.OffloadEncryptionKey != nil {
				opts = append(opts, offload.WithEncryptionKey(cfg.OffloadEncryptionKey))
			}
			store, err := offload.Open(cfg.OffloadDataDir, pool, opts...)
			if err != nil {
				return nil, fmt.Errorf("node: offload: %w", err)
			}
			n.offloadStore = store
			n.Cache.SetOffload(store)
		}
	}

	n.Base = dataservice.NewBaseIntf(pool, cfg.NodeNumber)
	if _, err := n.Base.Register(tbl); err != nil {
		return nil, fmt.Errorf("node: dataservice: %w", err)
	}

	for _, c := range cfg.CLAs {
		adapter := cla.NewAdapter(pool, c.Transport)
		intfID := adapter.Register(tbl)
		if err := tbl.AddRoute(c.Dest, c.Mask, intfID); err != nil {
			return nil, fmt.Errorf("node: cla route: %w", err)
		}
		n.adapters = append(n.adapters, adapter)
	}

	if cfg.AdminAddr != "" {
		n.Admin = admin.NewServer(pool, tbl, n.Cache)
	}
	if cfg.MetricsInterval > 0 {
		n.Metrics = metrics.NewCollector(pool, tbl, n.Cache)
	}

	return n, nil
}

// SelfAddr returns this node's IPN endpoint ID at service number 0.
func (n *Node) SelfAddr() bundle.EID { return n.selfAddr }

// NewSocket allocates a socket bound to localService on this node's
// base interface, ready for Connect.
func (n *Node) NewSocket(localService uint64) (*dataservice.Socket, error) {
	s := dataservice.NewSocket(n.Pool)
	if err := s.Bind(n.Table, n.Base, localService); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the route table's maintenance worker, every
// configured CLA adapter's receive loop, and (if configured) the
// metrics collector and admin server.
func (n *Node) Start() error {
	n.Table.Start()

	for _, a := range n.adapters {
		a.Start()
	}

	if n.Metrics != nil {
		n.Metrics.Start(n.cfg.MetricsInterval)
	}

	if n.Admin != nil {
		addr := n.cfg.AdminAddr
		go func() {
			if err := n.Admin.Start(addr); err != nil {
				log.WithComponent("admin").Error().Err(err).Msg("admin server stopped")
			}
		}()
	}

	return nil
}

// Stop tears down every subsystem Start brought up, in reverse order.
func (n *Node) Stop() {
	if n.Admin != nil {
		n.Admin.Stop()
	}
	if n.Metrics != nil {
		n.Metrics.Stop()
	}
	for _, a := range n.adapters {
		a.Stop()
	}
	n.Table.Stop()
	if n.offloadStore != nil {
		_ = n.offloadStore.Close()
	}
}

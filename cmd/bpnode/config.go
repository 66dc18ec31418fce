package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/dtncore/bpcore/pkg/cla"
	"github.com/dtncore/bpcore/pkg/node"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk YAML shape a "serve" invocation loads.
type fileConfig struct {
	NodeNumber   uint64 `yaml:"node_number"`
	PoolCapacity int    `yaml:"pool_capacity"`
	MaxRoutes    int    `yaml:"max_routes"`

	Cache struct {
		Enabled              bool   `yaml:"enabled"`
		OffloadDir           string `yaml:"offload_dir"`
		OffloadEncryptionKey string `yaml:"offload_encryption_key_hex"`
	} `yaml:"cache"`

	Admin struct {
		Addr string `yaml:"addr"`
	} `yaml:"admin"`

	Metrics struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"metrics"`

	CLAs []struct {
		Dest       uint64 `yaml:"dest"`
		Mask       uint64 `yaml:"mask"`
		LocalAddr  string `yaml:"local_addr"`
		RemoteAddr string `yaml:"remote_addr"`
	} `yaml:"clas"`
}

// loadNodeConfig reads path as YAML and builds the node.Config it
// describes, dialing a UDPTransport for each configured CLA peer.
func loadNodeConfig(path string) (node.Config, error) {
	var cfg node.Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("config: parse: %w", err)
	}

	cfg = node.Config{
		NodeNumber:      fc.NodeNumber,
		PoolCapacity:    fc.PoolCapacity,
		MaxRoutes:       fc.MaxRoutes,
		EnableCache:     fc.Cache.Enabled,
		OffloadDataDir:  fc.Cache.OffloadDir,
		AdminAddr:       fc.Admin.Addr,
		MetricsInterval: time.Duration(fc.Metrics.IntervalSeconds) * time.Second,
	}

	if fc.Cache.OffloadEncryptionKey != "" {
		key, err := hex.DecodeString(fc.Cache.OffloadEncryptionKey)
		if err != nil {
			return cfg, fmt.Errorf("config: offload_encryption_key_hex: %w", err)
		}
		cfg.OffloadEncryptionKey = key
	}

	for _, c := range fc.CLAs {
		transport, err := cla.DialUDP(c.LocalAddr, c.RemoteAddr)
		if err != nil {
			return cfg, fmt.Errorf("config: cla %s: %w", c.RemoteAddr, err)
		}
		cfg.CLAs = append(cfg.CLAs, node.CLAConfig{
			Transport: transport,
			Dest:      c.Dest,
			Mask:      c.Mask,
		})
	}

	return cfg, nil
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dtncore/bpcore/internal/log"
	"github.com/dtncore/bpcore/pkg/node"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a bpnode instance from a YAML config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := loadNodeConfig(configPath)
		if err != nil {
			return err
		}

		n, err := node.New(cfg)
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}

		if err := n.Start(); err != nil {
			return fmt.Errorf("serve: start: %w", err)
		}

		logger := log.WithComponent("serve")
		logger.Info().Uint64("node_number", cfg.NodeNumber).Msg("bpnode started")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		logger.Info().Msg("shutting down")
		n.Stop()
		logger.Info().Msg("shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("config", "bpnode.yaml", "Path to the node's YAML config file")
}

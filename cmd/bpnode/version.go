package main

import (
	"fmt"

	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print bpnode build and protocol version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("bpnode version %s\n", Version)
		fmt.Printf("  commit:            %s\n", Commit)
		fmt.Printf("  built:             %s\n", BuildTime)
		fmt.Printf("  bundle protocol:   %d\n", bundle.ProtocolVersion)
		return nil
	},
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dtncore/bpcore/pkg/admin"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Query a running node's routing interfaces",
}

var routeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the interfaces a running node has registered",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("route list: dial: %w", err)
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var resp admin.ListInterfacesResponse
		err = conn.Invoke(ctx, "/bpnode.admin.Admin/ListInterfaces", &admin.ListInterfacesRequest{}, &resp, grpc.CallContentSubtype("json"))
		if err != nil {
			return fmt.Errorf("route list: %w", err)
		}

		fmt.Printf("%-6s %-6s %-8s %-8s %-8s\n", "ID", "PARENT", "OPER UP", "INGRESS", "EGRESS")
		for _, intf := range resp.Interfaces {
			fmt.Printf("%-6d %-6d %-8t %-8d %-8d\n", intf.ID, intf.ParentID, intf.OperUp, intf.IngressDepth, intf.EgressDepth)
		}
		return nil
	},
}

func init() {
	routeCmd.PersistentFlags().String("addr", "127.0.0.1:7070", "Admin service address")
	routeCmd.AddCommand(routeListCmd)
}

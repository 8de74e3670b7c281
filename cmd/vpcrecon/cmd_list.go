package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/netscribe/vpcrecon/inventory"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List VPCs in the region",
	Example: `  vpcrecon list
  vpcrecon list --region eu-west-1`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	q, cache, err := newQueryClient(ctx)
	if err != nil {
		return err
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}

	vpcs, err := inventory.ListVPCs(ctx, q)
	if err != nil {
		return err
	}
	if len(vpcs) == 0 {
		fmt.Printf("No VPCs found in %s\n", q.Region())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VPC ID\tNAME\tCIDR\tSTATE\tDEFAULT")
	for _, vpc := range vpcs {
		name := "-"
		if vpc.Name != nil {
			name = *vpc.Name
		}
		isDefault := ""
		if vpc.IsDefault {
			isDefault = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", vpc.VPCID, name, vpc.CIDRBlock, vpc.State, isDefault)
	}
	return w.Flush()
}

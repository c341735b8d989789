package main

import (
	"fmt"
	"text/tabwriter"

	"sku-renamer/internal/descriptor"

	"github.com/spf13/cobra"
)

func newDescriptorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "descriptors",
		Short: "List the accepted descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DESCRIPTOR\tLABEL")
			for _, d := range descriptor.All() {
				fmt.Fprintf(tw, "%s\t%s\n", d, d.Label())
			}
			return tw.Flush()
		},
	}
}

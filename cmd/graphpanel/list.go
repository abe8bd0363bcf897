package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recera/graphpanel/cmd/graphpanel/internal/ui"
)

func newListCommand(a *app) *cobra.Command {
	var refsOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the graphs the Render Service knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			graphs, err := client.ListGraphs(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if refsOnly {
				for _, g := range graphs {
					fmt.Fprintln(out, g.Ref)
				}
				return nil
			}
			fmt.Fprintln(out, ui.GraphTable(graphs))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&refsOnly, "quiet", "q", false, "Print graph references only")
	return cmd
}

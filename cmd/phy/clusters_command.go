package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KnierimLab/phy/internal/ipc"
)

func newClustersCommand(ctx *commandContext) *cobra.Command {
	var groups []string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "List session clusters with group and quality",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Clusters(groups)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Clusters)
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Clusters) == 0 {
					fmt.Fprintln(stdout, "No clusters found")
					return nil
				}
				rows := make([][]string, 0, len(resp.Clusters))
				for _, cluster := range resp.Clusters {
					rows = append(rows, []string{
						strconv.FormatInt(cluster.ID, 10),
						cluster.Group,
						strconv.FormatFloat(cluster.Quality, 'f', 2, 64),
					})
				}
				table := renderTable(
					[]string{"ID", "Group", "Quality"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight},
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&groups, "group", nil, "Filter by group (repeatable: unsorted, good, ignored)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit clusters as JSON")
	return cmd
}

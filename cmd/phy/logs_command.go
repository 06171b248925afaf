package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KnierimLab/phy/internal/ipc"
	"github.com/KnierimLab/phy/internal/logstream"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				printed, err := logstream.Stream(cmd.Context(), client, logstream.Options{
					Lines:  lines,
					Follow: follow,
				}, func(line string) {
					fmt.Fprintln(stdout, line)
				})
				if err != nil {
					return err
				}
				if !printed && !follow {
					fmt.Fprintln(stdout, "No log entries available")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream new log entries until interrupted")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of recent lines to show")
	return cmd
}

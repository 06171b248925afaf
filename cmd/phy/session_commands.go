package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KnierimLab/phy/internal/ipc"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Import and inspect review sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	sessionCmd.AddCommand(newSessionImportCommand(ctx))
	sessionCmd.AddCommand(newSessionInfoCommand(ctx))

	return sessionCmd
}

func newSessionImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot>",
		Short: "Load a session snapshot into the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The daemon reads the snapshot itself, so hand it an absolute
			// path regardless of where the CLI was invoked.
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve snapshot path: %w", err)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionImport(path)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Imported session %q: %d clusters (%s)\n",
					resp.Session.Name, resp.Session.Clusters, groupBreakdown(resp.Session.GroupCounts))
				printPanel(stdout, resp.Panel)
				return nil
			})
		},
	}
}

func newSessionInfoCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Describe the imported session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionInfo()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Session)
				}
				stdout := cmd.OutOrStdout()
				summary := resp.Session
				fmt.Fprintf(stdout, "%-10s %s\n", "Session:", summary.Name)
				fmt.Fprintf(stdout, "%-10s %s\n", "ID:", summary.SessionID)
				if summary.SourcePath != "" {
					fmt.Fprintf(stdout, "%-10s %s\n", "Source:", summary.SourcePath)
				}
				fmt.Fprintf(stdout, "%-10s %d (%s)\n", "Clusters:", summary.Clusters, groupBreakdown(summary.GroupCounts))
				fmt.Fprintf(stdout, "%-10s %d undoable, %d redoable\n", "History:", summary.Undoable, summary.Redoable)
				fmt.Fprintf(stdout, "%-10s %s\n", "Created:", summary.CreatedAt)
				fmt.Fprintf(stdout, "%-10s %s\n", "Updated:", summary.UpdatedAt)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit session info as JSON")
	return cmd
}

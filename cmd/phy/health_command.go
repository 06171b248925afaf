package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KnierimLab/phy/internal/ipc"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Report session database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DatabaseHealth()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)
				for _, line := range renderSectionHeader("Database Health", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, line := range healthLines(resp, colorize) {
					fmt.Fprintln(stdout, line)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit health report as JSON")
	return cmd
}

func healthLines(health *ipc.DatabaseHealthResponse, colorize bool) []string {
	okOrError := func(ok bool) statusKind {
		if ok {
			return statusOK
		}
		return statusError
	}

	lines := make([]string, 0, 8)
	lines = append(lines, renderStatusLine("Database", statusInfo, health.DBPath, colorize))
	lines = append(lines, renderStatusLine("Exists", okOrError(health.DatabaseExists), yesNo(health.DatabaseExists), colorize))
	lines = append(lines, renderStatusLine("Readable", okOrError(health.DatabaseReadable), yesNo(health.DatabaseReadable), colorize))
	if health.SchemaVersion != "" {
		lines = append(lines, renderStatusLine("Schema version", statusInfo, health.SchemaVersion, colorize))
	}
	lines = append(lines, renderStatusLine("Clusters table", okOrError(health.TableExists), yesNo(health.TableExists), colorize))
	if len(health.MissingColumns) > 0 {
		lines = append(lines, renderStatusLine("Missing columns", statusError, strings.Join(health.MissingColumns, ", "), colorize))
	}
	lines = append(lines, renderStatusLine("Integrity check", okOrError(health.IntegrityCheck), yesNo(health.IntegrityCheck), colorize))
	lines = append(lines, renderStatusLine("Total clusters", statusInfo, fmt.Sprintf("%d", health.TotalClusters), colorize))
	if strings.TrimSpace(health.Error) != "" {
		lines = append(lines, renderStatusLine("Error", statusError, health.Error, colorize))
	}
	return lines
}

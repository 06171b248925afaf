package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KnierimLab/phy/internal/daemonctl"
	"github.com/KnierimLab/phy/internal/ipc"
	"github.com/KnierimLab/phy/internal/textutil"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statusResp, err := daemonctl.BuildStatusSnapshot(cmd.Context(), ctx.socketPath(), cfg)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, statusResp)
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range daemonStatusLines(statusResp, colorize) {
				fmt.Fprintln(stdout, line)
			}

			fmt.Fprintln(stdout)
			for _, line := range renderSectionHeader("Session", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if statusResp.Session == nil {
				fmt.Fprintln(stdout, "No session imported (run `phy session import <snapshot>`)")
			} else {
				for _, line := range sessionStatusLines(statusResp.Session, colorize) {
					fmt.Fprintln(stdout, line)
				}
			}

			if statusResp.Panel != nil {
				fmt.Fprintln(stdout)
				for _, line := range renderSectionHeader("Review", colorize) {
					fmt.Fprintln(stdout, line)
				}
				printPanel(stdout, statusResp.Panel)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit status as JSON")
	return cmd
}

func daemonStatusLines(status *ipc.StatusResponse, colorize bool) []string {
	lines := make([]string, 0, 4)
	if status.Running {
		detail := "Running"
		if status.PID > 0 {
			detail = fmt.Sprintf("Running (pid %d)", status.PID)
		}
		lines = append(lines, renderStatusLine("Daemon", statusOK, detail, colorize))
	} else {
		lines = append(lines, renderStatusLine("Daemon", statusWarn, "Not running (run `phy daemon start`)", colorize))
	}
	if status.DBPath != "" {
		kind := statusOK
		detail := status.DBPath
		if _, err := os.Stat(status.DBPath); err != nil {
			kind = statusWarn
			detail = fmt.Sprintf("%s (missing)", status.DBPath)
		}
		lines = append(lines, renderStatusLine("Database", kind, detail, colorize))
	}
	if status.LockPath != "" {
		lines = append(lines, renderStatusLine("Lock", statusInfo, status.LockPath, colorize))
	}
	if status.LogPath != "" {
		lines = append(lines, renderStatusLine("Log", statusInfo, status.LogPath, colorize))
	}
	return lines
}

func sessionStatusLines(summary *ipc.SessionSummary, colorize bool) []string {
	lines := make([]string, 0, 5)
	lines = append(lines, renderStatusLine("Session", statusOK, textutil.Title(summary.Name), colorize))
	if summary.SourcePath != "" {
		lines = append(lines, renderStatusLine("Source", statusInfo, summary.SourcePath, colorize))
	}
	clusterDetail := fmt.Sprintf("%d total (%s)", summary.Clusters, groupBreakdown(summary.GroupCounts))
	lines = append(lines, renderStatusLine("Clusters", statusInfo, clusterDetail, colorize))
	historyDetail := fmt.Sprintf("%d undoable, %d redoable", summary.Undoable, summary.Redoable)
	lines = append(lines, renderStatusLine("History", statusInfo, historyDetail, colorize))
	if summary.UpdatedAt != "" {
		lines = append(lines, renderStatusLine("Updated", statusInfo, summary.UpdatedAt, colorize))
	}
	return lines
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KnierimLab/phy/internal/ipc"
)

// newReviewCommands returns the wizard-facing commands that are mounted at
// the top level: review navigation is the primary surface of the CLI, so
// `phy next` beats `phy review next`.
func newReviewCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newStartCommand(ctx),
		newPinCommand(ctx),
		newUnpinCommand(ctx),
		newNextCommand(ctx),
		newPrevCommand(ctx),
		newFirstCommand(ctx),
		newLastCommand(ctx),
		newLabelCommand(ctx),
		newMergeCommand(ctx),
		newSplitCommand(ctx),
		newUndoCommand(ctx),
		newRedoCommand(ctx),
	}
}

func newStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start or restart the review pass over unsorted clusters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.StartReview()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintln(stdout, "Review started")
				printPanel(stdout, resp.Panel)
				return nil
			})
		},
	}
}

func newPinCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pin [cluster]",
		Short: "Pin a cluster as the merge reference (defaults to the current best)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cluster := int64(-1)
			if len(args) == 1 {
				parsed, err := parseClusterID(args[0])
				if err != nil {
					return err
				}
				cluster = parsed
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Pin(cluster)
				if err != nil {
					return err
				}
				printPanel(cmd.OutOrStdout(), resp.Panel)
				return nil
			})
		},
	}
}

func newUnpinCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unpin",
		Short: "Clear the pinned cluster and its match candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Unpin()
				if err != nil {
					return err
				}
				printPanel(cmd.OutOrStdout(), resp.Panel)
				return nil
			})
		},
	}
}

func newNextCommand(ctx *commandContext) *cobra.Command {
	var bestOnly bool
	var matchOnly bool
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Advance the selection (match first, then best)",
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := resolveStep(ipc.StepNext, ipc.StepNextBest, ipc.StepNextMatch, bestOnly, matchOnly)
			if err != nil {
				return err
			}
			return moveSelection(ctx, cmd, step)
		},
	}
	cmd.Flags().BoolVar(&bestOnly, "best", false, "Advance the best selection only")
	cmd.Flags().BoolVar(&matchOnly, "match", false, "Advance the match selection only")
	return cmd
}

func newPrevCommand(ctx *commandContext) *cobra.Command {
	var bestOnly bool
	var matchOnly bool
	cmd := &cobra.Command{
		Use:     "prev",
		Aliases: []string{"previous"},
		Short:   "Rewind the selection (match first, then best)",
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := resolveStep(ipc.StepPrevious, ipc.StepPreviousBest, ipc.StepPreviousMatch, bestOnly, matchOnly)
			if err != nil {
				return err
			}
			return moveSelection(ctx, cmd, step)
		},
	}
	cmd.Flags().BoolVar(&bestOnly, "best", false, "Rewind the best selection only")
	cmd.Flags().BoolVar(&matchOnly, "match", false, "Rewind the match selection only")
	return cmd
}

func newFirstCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "first",
		Short: "Jump to the first candidate in the current list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return moveSelection(ctx, cmd, ipc.StepFirst)
		},
	}
}

func newLastCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Jump to the last candidate in the current list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return moveSelection(ctx, cmd, ipc.StepLast)
		},
	}
}

func newLabelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "label <group> [cluster]",
		Short: "Label a cluster as good, ignored, or unsorted (defaults to the current selection)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			group := strings.ToLower(strings.TrimSpace(args[0]))
			cluster := int64(-1)
			if len(args) == 2 {
				parsed, err := parseClusterID(args[1])
				if err != nil {
					return err
				}
				cluster = parsed
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Label(cluster, group)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Labeled cluster %d as %s\n", resp.Cluster, resp.Group)
				printPanel(stdout, resp.Panel)
				return nil
			})
		},
	}
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "merge [clusters...]",
		Short: "Merge clusters into a new one (defaults to pinned plus match)",
		RunE: func(cmd *cobra.Command, args []string) error {
			clusters, err := parseClusterIDs(args)
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Merge(clusters)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Merged clusters %s into %s\n",
					formatClusterList(resp.Removed), formatClusterList(resp.Created))
				printPanel(stdout, resp.Panel)
				return nil
			})
		},
	}
}

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var into int
	cmd := &cobra.Command{
		Use:   "split [clusters...]",
		Short: "Split clusters into new ones (defaults to the current selection)",
		RunE: func(cmd *cobra.Command, args []string) error {
			clusters, err := parseClusterIDs(args)
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Split(clusters, into)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Split clusters %s into %s\n",
					formatClusterList(resp.Removed), formatClusterList(resp.Created))
				printPanel(stdout, resp.Panel)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&into, "into", 2, "Number of result clusters")
	return cmd
}

func newUndoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the most recent clustering action",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Undo()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Undid %s\n", describeAction(resp.Action))
				printPanel(stdout, resp.Panel)
				return nil
			})
		},
	}
}

func newRedoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Replay the most recently undone clustering action",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Redo()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Redid %s\n", describeAction(resp.Action))
				printPanel(stdout, resp.Panel)
				return nil
			})
		},
	}
}

func moveSelection(ctx *commandContext, cmd *cobra.Command, step string) error {
	return ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.Move(step)
		if err != nil {
			return err
		}
		printPanel(cmd.OutOrStdout(), resp.Panel)
		return nil
	})
}

func resolveStep(combined, bestStep, matchStep string, bestOnly, matchOnly bool) (string, error) {
	switch {
	case bestOnly && matchOnly:
		return "", fmt.Errorf("--best and --match are mutually exclusive")
	case bestOnly:
		return bestStep, nil
	case matchOnly:
		return matchStep, nil
	default:
		return combined, nil
	}
}

func parseClusterID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cluster id %q", arg)
	}
	return id, nil
}

func parseClusterIDs(args []string) ([]int64, error) {
	if len(args) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseClusterID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatClusterList(ids []int64) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}

func describeAction(action string) string {
	switch action {
	case "merge":
		return "merge"
	case "assign":
		return "split"
	case "metadata_group":
		return "label"
	}
	return action
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/KnierimLab/phy/internal/ipc"
)

// printPanel renders the review panel returned by wizard operations as
// aligned plain-text lines.
func printPanel(w io.Writer, p *ipc.Panel) {
	if p == nil {
		return
	}
	fmt.Fprintf(w, "%-10s %s\n", "Best:", formatSelection(p.Best, p.BestGroup, p.BestQuality, p.BestList))
	if p.Pinned {
		fmt.Fprintf(w, "%-10s %s\n", "Match:", formatSelection(p.Match, p.MatchGroup, p.MatchQuality, p.MatchList))
	}
	fmt.Fprintf(w, "%-10s %s\n", "Pinned:", yesNo(p.Pinned))
	fmt.Fprintf(w, "%-10s best %d%%, labeled %d%%\n", "Progress:", p.BestProgress, p.LabeledProgress)
	fmt.Fprintf(w, "%-10s %d undoable, %d redoable\n", "History:", p.Undoable, p.Redoable)
	if p.Finished {
		fmt.Fprintf(w, "Review finished: no further best candidates\n")
	}
}

// formatSelection renders one side of the panel, e.g.
// "cluster 7 (unsorted, quality 7.00) [1/7]".
func formatSelection(cluster int64, group string, quality float64, list []int64) string {
	if cluster < 0 {
		return "none"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "cluster %d", cluster)
	if group != "" {
		fmt.Fprintf(&b, " (%s, quality %.2f)", group, quality)
	}
	if pos := positionIn(list, cluster); pos > 0 {
		fmt.Fprintf(&b, " [%d/%d]", pos, len(list))
	}
	return b.String()
}

// positionIn returns the 1-based position of cluster in list, or 0 when the
// cluster is not a member.
func positionIn(list []int64, cluster int64) int {
	for i, id := range list {
		if id == cluster {
			return i + 1
		}
	}
	return 0
}

// groupBreakdown renders group counts in a stable order, e.g.
// "3 unsorted, 2 good, 2 ignored".
func groupBreakdown(counts map[string]int) string {
	if len(counts) == 0 {
		return "no clusters"
	}
	parts := make([]string, 0, len(counts))
	for _, group := range []string{"unsorted", "good", "ignored"} {
		if n, ok := counts[group]; ok {
			parts = append(parts, fmt.Sprintf("%d %s", n, group))
		}
	}
	return strings.Join(parts, ", ")
}

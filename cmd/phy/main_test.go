package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/KnierimLab/phy/internal/ipc"
)

func TestCLISessionImportAndInfo(t *testing.T) {
	env := setupCLITestEnv(t)
	importTestSession(t, env)

	out, _, err := runCLI(t, []string{"session", "info"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("session info: %v", err)
	}
	requireContains(t, out, "probe-a")
	requireContains(t, out, "7 (3 unsorted, 2 good, 2 ignored)")
	requireContains(t, out, "0 undoable, 0 redoable")
}

func TestCLIReviewFlow(t *testing.T) {
	env := setupCLITestEnv(t)
	importTestSession(t, env)

	out, _, err := runCLI(t, []string{"start"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	requireContains(t, out, "Review started")
	requireContains(t, out, "cluster 7 (unsorted, quality 7.00) [1/7]")

	out, _, err = runCLI(t, []string{"pin"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	requireContains(t, out, "cluster 5 (good, quality 5.00) [1/6]")
	requireContains(t, out, "yes")

	out, _, err = runCLI(t, []string{"next", "--match"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("next --match: %v", err)
	}
	requireContains(t, out, "cluster 4 (unsorted, quality 4.00) [2/6]")

	out, _, err = runCLI(t, []string{"merge"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	requireContains(t, out, "Merged clusters 7, 4 into 8")

	out, _, err = runCLI(t, []string{"undo"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	requireContains(t, out, "Undid merge")

	out, _, err = runCLI(t, []string{"redo"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("redo: %v", err)
	}
	requireContains(t, out, "Redid merge")
}

func TestCLISplitCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	importTestSession(t, env)

	out, _, err := runCLI(t, []string{"split", "7", "--into", "3"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	requireContains(t, out, "Split clusters 7 into 8, 9, 10")
}

func TestCLILabelAndClusters(t *testing.T) {
	env := setupCLITestEnv(t)
	importTestSession(t, env)

	out, _, err := runCLI(t, []string{"label", "good", "3"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("label: %v", err)
	}
	requireContains(t, out, "Labeled cluster 3 as good")

	out, _, err = runCLI(t, []string{"clusters", "--json", "--group", "good"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("clusters --json: %v", err)
	}
	var rows []ipc.ClusterInfo
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode clusters: %v", err)
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if row.Group != "good" {
			t.Fatalf("expected only good clusters, got %+v", row)
		}
		ids = append(ids, row.ID)
	}
	if len(ids) != 3 || ids[0] != 2 || ids[1] != 3 || ids[2] != 5 {
		t.Fatalf("unexpected good cluster ids: %v", ids)
	}

	out, _, err = runCLI(t, []string{"clusters"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("clusters: %v", err)
	}
	requireContains(t, out, "Quality")

	if _, _, err := runCLI(t, []string{"label", "bogus", "3"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected error for unknown group")
	}
}

func TestCLIUndoWithoutActions(t *testing.T) {
	env := setupCLITestEnv(t)
	importTestSession(t, env)

	_, _, err := runCLI(t, []string{"undo"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected undo error with empty journal")
	}
	if !strings.Contains(err.Error(), "nothing to undo") {
		t.Fatalf("unexpected undo error: %v", err)
	}
}

func TestCLIReviewWithoutSession(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"pin"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected pin error without session")
	}
	if !strings.Contains(err.Error(), "no session imported") {
		t.Fatalf("unexpected pin error: %v", err)
	}
}

package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/KnierimLab/phy/internal/session"
)

// ReviewSnapshot returns a seven-cluster session with a spread of groups and
// monotonic scores. Quality equals the cluster id, and the similarity of a
// pair is 10*max(a,b) + min(a,b), so ranking order is easy to reason about
// in tests.
func ReviewSnapshot() *session.Snapshot {
	snap := &session.Snapshot{
		Name: "probe-a",
		Clusters: []session.SnapshotCluster{
			{ID: 1, Group: "ignored", Quality: 1},
			{ID: 2, Group: "good", Quality: 2},
			{ID: 3, Quality: 3},
			{ID: 4, Quality: 4},
			{ID: 5, Group: "good", Quality: 5},
			{ID: 6, Group: "ignored", Quality: 6},
			{ID: 7, Quality: 7},
		},
	}
	for a := int64(1); a <= 7; a++ {
		for b := a + 1; b <= 7; b++ {
			snap.Similarity = append(snap.Similarity, session.SnapshotScore{A: a, B: b, Score: float64(10*b + a)})
		}
	}
	return snap
}

// WriteSnapshotFile marshals the snapshot into dir and returns the file path.
func WriteSnapshotFile(t testing.TB, dir string, snap *session.Snapshot) string {
	t.Helper()

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	path := filepath.Join(dir, "snapshot.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

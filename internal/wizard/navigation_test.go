package wizard

import (
	"errors"
	"testing"
)

func TestStartSelectsTopCluster(t *testing.T) {
	w := reviewFixture()
	if got := w.Best(); got != NoCluster {
		t.Fatalf("best before start = %d, want NoCluster", got)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := w.Best(); got != 7 {
		t.Fatalf("best = %d, want 7", got)
	}
	wantIDs(t, "best list", w.BestList(), []ClusterID{7, 4, 3, 5, 2, 6, 1})
	if w.Pinned() {
		t.Fatal("start should not pin")
	}
}

func TestStartRequiresQualityFunc(t *testing.T) {
	w := NewFromIDs([]ClusterID{1, 2})
	if err := w.Start(); !errors.Is(err, ErrNoQualityFunc) {
		t.Fatalf("expected ErrNoQualityFunc, got %v", err)
	}
}

func TestPinBuildsMatchList(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Pin(NoCluster); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if got := w.Best(); got != 7 {
		t.Fatalf("best = %d, want 7", got)
	}
	if got := w.Match(); got != 5 {
		t.Fatalf("match = %d, want 5", got)
	}
	wantIDs(t, "match list", w.MatchList(), []ClusterID{5, 4, 3, 2, 6, 1})
}

func TestPinExplicitCluster(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Pin(4); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if got := w.Best(); got != 4 {
		t.Fatalf("best = %d, want 4", got)
	}
	wantIDs(t, "match list", w.MatchList(), []ClusterID{7, 5, 3, 2, 6, 1})
	if got := w.Match(); got != 7 {
		t.Fatalf("match = %d, want 7", got)
	}
}

func TestPinSamePinnedClusterIsNoop(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Pin(NoCluster); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if err := w.NextMatch(); err != nil {
		t.Fatalf("next match: %v", err)
	}
	moved := w.Match()
	if moved != 4 {
		t.Fatalf("match after next = %d, want 4", moved)
	}
	// Re-pinning the pinned cluster must not rebuild the candidate list.
	if err := w.Pin(7); err != nil {
		t.Fatalf("re-pin: %v", err)
	}
	if got := w.Match(); got != moved {
		t.Fatalf("match after re-pin = %d, want %d", got, moved)
	}
}

func TestPinUnknownClusterFails(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Pin(99); !errors.Is(err, ErrNotInList) {
		t.Fatalf("expected ErrNotInList, got %v", err)
	}
}

func TestPinRequiresSimilarityFunc(t *testing.T) {
	w := NewFromIDs([]ClusterID{1, 2})
	w.SetQualityFunc(idQuality)
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Pin(NoCluster); !errors.Is(err, ErrNoSimilarityFunc) {
		t.Fatalf("expected ErrNoSimilarityFunc, got %v", err)
	}
}

func TestUnpinClearsMatchState(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Unpin(); err != nil {
		t.Fatalf("unpin unpinned: %v", err)
	}
	if err := w.Pin(NoCluster); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if err := w.Unpin(); err != nil {
		t.Fatalf("unpin: %v", err)
	}
	if w.Match() != NoCluster {
		t.Fatalf("match = %d, want NoCluster", w.Match())
	}
	if got := w.MatchList(); len(got) != 0 {
		t.Fatalf("match list = %v, want empty", got)
	}
	// Pin again and the candidates come back.
	if err := w.Pin(NoCluster); err != nil {
		t.Fatalf("second pin: %v", err)
	}
	wantIDs(t, "match list", w.MatchList(), []ClusterID{5, 4, 3, 2, 6, 1})
}

func TestNextBestClampsAtEnd(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	want := []ClusterID{4, 3, 5, 2, 6, 1, 1, 1}
	for i, id := range want {
		if err := w.NextBest(); err != nil {
			t.Fatalf("next best %d: %v", i, err)
		}
		if got := w.Best(); got != id {
			t.Fatalf("step %d: best = %d, want %d", i, got, id)
		}
	}
}

func TestPreviousBestClampsAtStart(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.PreviousBest(); err != nil {
		t.Fatalf("previous best: %v", err)
	}
	if got := w.Best(); got != 7 {
		t.Fatalf("best = %d, want 7 (clamped)", got)
	}
	if err := w.NextBest(); err != nil {
		t.Fatalf("next best: %v", err)
	}
	if err := w.PreviousBest(); err != nil {
		t.Fatalf("previous best: %v", err)
	}
	if got := w.Best(); got != 7 {
		t.Fatalf("best = %d, want 7", got)
	}
}

func TestNextBestRebuildsMatchesWhenPinned(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Pin(NoCluster); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if err := w.NextBest(); err != nil {
		t.Fatalf("next best: %v", err)
	}
	if got := w.Best(); got != 4 {
		t.Fatalf("best = %d, want 4", got)
	}
	wantIDs(t, "match list", w.MatchList(), []ClusterID{7, 5, 3, 2, 6, 1})
	if got := w.Match(); got != 7 {
		t.Fatalf("match = %d, want 7", got)
	}
}

func TestNextBestFinishedIsNoop(t *testing.T) {
	w := NewFromIDs([]ClusterID{1})
	w.SetQualityFunc(idQuality)
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !w.HasFinished() {
		t.Fatal("single-cluster review should be finished")
	}
	if err := w.NextBest(); err != nil {
		t.Fatalf("next best: %v", err)
	}
	if got := w.Best(); got != 1 {
		t.Fatalf("best = %d, want 1", got)
	}
}

func TestNextMatchWalksCandidates(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Pin(NoCluster); err != nil {
		t.Fatalf("pin: %v", err)
	}
	want := []ClusterID{4, 3, 2, 6, 1, 1}
	for i, id := range want {
		if err := w.NextMatch(); err != nil {
			t.Fatalf("next match %d: %v", i, err)
		}
		if got := w.Match(); got != id {
			t.Fatalf("step %d: match = %d, want %d", i, got, id)
		}
	}
	if err := w.PreviousMatch(); err != nil {
		t.Fatalf("previous match: %v", err)
	}
	if got := w.Match(); got != 6 {
		t.Fatalf("match = %d, want 6", got)
	}
}

func TestNextMatchHandsOverAtSingleCandidate(t *testing.T) {
	w := NewFromIDs([]ClusterID{1, 2})
	w.SetQualityFunc(idQuality)
	w.SetSimilarityFunc(concatSimilarity)
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Pin(NoCluster); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if got := w.Match(); got != 1 {
		t.Fatalf("match = %d, want 1", got)
	}
	// A single candidate delegates to NextBest, which rebuilds the matches.
	if err := w.NextMatch(); err != nil {
		t.Fatalf("next match: %v", err)
	}
	if got := w.Best(); got != 1 {
		t.Fatalf("best = %d, want 1", got)
	}
	if got := w.Match(); got != 2 {
		t.Fatalf("match = %d, want 2", got)
	}
}

func TestPreviousMatchUnpinnedFails(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.PreviousMatch(); !errors.Is(err, ErrNotInList) {
		t.Fatalf("expected ErrNotInList, got %v", err)
	}
}

func TestNextMatchUnpinnedIsNoop(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.NextMatch(); err != nil {
		t.Fatalf("next match: %v", err)
	}
	if w.Match() != NoCluster {
		t.Fatalf("match = %d, want NoCluster", w.Match())
	}
}

func TestNextAndPreviousDispatch(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if got := w.Best(); got != 4 {
		t.Fatalf("best = %d, want 4", got)
	}
	if err := w.Previous(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if got := w.Best(); got != 7 {
		t.Fatalf("best = %d, want 7", got)
	}
	if err := w.Pin(NoCluster); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if err := w.Next(); err != nil {
		t.Fatalf("next pinned: %v", err)
	}
	if got := w.Match(); got != 4 {
		t.Fatalf("match = %d, want 4", got)
	}
	if got := w.Best(); got != 7 {
		t.Fatalf("best moved to %d during match traversal", got)
	}
	if err := w.Previous(); err != nil {
		t.Fatalf("previous pinned: %v", err)
	}
	if got := w.Match(); got != 5 {
		t.Fatalf("match = %d, want 5", got)
	}
}

func TestFirstAndLast(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Last(); err != nil {
		t.Fatalf("last: %v", err)
	}
	if got := w.Best(); got != 1 {
		t.Fatalf("best = %d, want 1", got)
	}
	if err := w.First(); err != nil {
		t.Fatalf("first: %v", err)
	}
	if got := w.Best(); got != 7 {
		t.Fatalf("best = %d, want 7", got)
	}
	if err := w.Pin(NoCluster); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if err := w.Last(); err != nil {
		t.Fatalf("last pinned: %v", err)
	}
	if got := w.Match(); got != 1 {
		t.Fatalf("match = %d, want 1", got)
	}
	if err := w.First(); err != nil {
		t.Fatalf("first pinned: %v", err)
	}
	if got := w.Match(); got != 5 {
		t.Fatalf("match = %d, want 5", got)
	}
}

func TestNavigationBeforeStart(t *testing.T) {
	w := reviewFixture()
	if err := w.NextBest(); !errors.Is(err, ErrNotInList) {
		t.Fatalf("next best: expected ErrNotInList, got %v", err)
	}
	if err := w.PreviousBest(); !errors.Is(err, ErrNotInList) {
		t.Fatalf("previous best: expected ErrNotInList, got %v", err)
	}
	if err := w.First(); !errors.Is(err, ErrEmptyList) {
		t.Fatalf("first: expected ErrEmptyList, got %v", err)
	}
	if err := w.Last(); !errors.Is(err, ErrEmptyList) {
		t.Fatalf("last: expected ErrEmptyList, got %v", err)
	}
}

func TestHasFinished(t *testing.T) {
	w := reviewFixture()
	if w.HasFinished() {
		t.Fatal("unstarted wizard reported finished")
	}
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if w.HasFinished() {
		t.Fatal("seven clusters reported finished")
	}

	single := NewFromIDs([]ClusterID{9})
	single.SetQualityFunc(idQuality)
	if err := single.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !single.HasFinished() {
		t.Fatal("single cluster not reported finished")
	}
}

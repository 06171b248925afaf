package wizard

import (
	"slices"
	"testing"
)

// reviewFixture builds a wizard over seven clusters spanning all groups,
// scored by id: quality(c) = c and similarity(a, b) = 10a + b.
func reviewFixture() *Wizard {
	w := New(map[ClusterID]Group{
		1: GroupIgnored,
		2: GroupGood,
		3: GroupUnsorted,
		4: GroupUnsorted,
		5: GroupGood,
		6: GroupIgnored,
		7: GroupUnsorted,
	})
	w.SetQualityFunc(idQuality)
	w.SetSimilarityFunc(concatSimilarity)
	return w
}

func idQuality(id ClusterID) float64 {
	return float64(id)
}

func concatSimilarity(a, b ClusterID) float64 {
	return float64(a)*10 + float64(b)
}

func qualityFrom(scores map[ClusterID]float64) QualityFunc {
	return func(id ClusterID) float64 {
		return scores[id]
	}
}

func wantIDs(t *testing.T, label string, got, want []ClusterID) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Fatalf("%s = %v, want %v", label, got, want)
	}
}

func TestParseGroup(t *testing.T) {
	tests := []struct {
		input string
		want  Group
		ok    bool
	}{
		{"good", GroupGood, true},
		{"  Ignored ", GroupIgnored, true},
		{"UNSORTED", GroupUnsorted, true},
		{"", "", false},
		{"noise", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseGroup(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseGroup(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewNormalizesUnknownGroups(t *testing.T) {
	w := New(map[ClusterID]Group{1: "", 2: "mystery", 3: GroupGood})
	if got := w.GroupOf(1); got != GroupUnsorted {
		t.Errorf("GroupOf(1) = %q, want %q", got, GroupUnsorted)
	}
	if got := w.GroupOf(2); got != GroupUnsorted {
		t.Errorf("GroupOf(2) = %q, want %q", got, GroupUnsorted)
	}
	if got := w.GroupOf(3); got != GroupGood {
		t.Errorf("GroupOf(3) = %q, want %q", got, GroupGood)
	}
}

func TestGroupOfUnknownCluster(t *testing.T) {
	w := NewFromIDs([]ClusterID{1})
	if got := w.GroupOf(42); got != GroupUnsorted {
		t.Errorf("GroupOf(unknown) = %q, want %q", got, GroupUnsorted)
	}
}

func TestClusterIDsSorted(t *testing.T) {
	w := NewFromIDs([]ClusterID{30, 1, 12})
	wantIDs(t, "ClusterIDs()", w.ClusterIDs(), []ClusterID{1, 12, 30})
}

func TestSelectionShape(t *testing.T) {
	w := reviewFixture()
	if sel := w.Selection(); len(sel) != 0 {
		t.Fatalf("selection before start = %v, want empty", sel)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	wantIDs(t, "selection after start", w.Selection(), []ClusterID{7})
	if err := w.Pin(NoCluster); err != nil {
		t.Fatalf("pin: %v", err)
	}
	wantIDs(t, "selection after pin", w.Selection(), []ClusterID{7, 5})
}

func TestListAccessorsReturnCopies(t *testing.T) {
	w := reviewFixture()
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	list := w.BestList()
	list[0] = 999
	if w.BestList()[0] == 999 {
		t.Fatal("BestList exposed internal state")
	}
	groups := w.Groups()
	groups[1] = GroupGood
	if w.GroupOf(1) == GroupGood {
		t.Fatal("Groups exposed internal state")
	}
}

func TestProcessedCount(t *testing.T) {
	w := reviewFixture()
	if got := w.ProcessedCount(); got != 0 {
		t.Fatalf("ProcessedCount before start = %d, want 0", got)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Good 2 and 5, ignored 1 and 6.
	if got := w.ProcessedCount(); got != 4 {
		t.Fatalf("ProcessedCount = %d, want 4", got)
	}
	if got := w.ClusterCount(); got != 7 {
		t.Fatalf("ClusterCount = %d, want 7", got)
	}
}

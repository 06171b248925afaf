package wizard

import (
	"errors"
	"testing"
)

func TestBestClustersOrdersByGroupThenQuality(t *testing.T) {
	w := reviewFixture()
	got, err := w.BestClusters(0)
	if err != nil {
		t.Fatalf("best clusters: %v", err)
	}
	// Unsorted by quality, then good, then ignored.
	wantIDs(t, "BestClusters(0)", got, []ClusterID{7, 4, 3, 5, 2, 6, 1})
}

func TestBestClustersTruncatesBeforeGrouping(t *testing.T) {
	w := New(map[ClusterID]Group{
		1: GroupGood,
		2: GroupUnsorted,
		3: GroupIgnored,
		4: GroupUnsorted,
	})
	w.SetQualityFunc(idQuality)

	got, err := w.BestClusters(2)
	if err != nil {
		t.Fatalf("best clusters: %v", err)
	}
	// Truncation keeps the two highest-quality clusters (4 and 3) before
	// the ignored one sinks; lower-quality unsorted clusters never appear.
	wantIDs(t, "BestClusters(2)", got, []ClusterID{4, 3})

	all, err := w.BestClusters(0)
	if err != nil {
		t.Fatalf("best clusters: %v", err)
	}
	wantIDs(t, "BestClusters(0)", all, []ClusterID{4, 2, 1, 3})
}

func TestBestClustersStableOnTies(t *testing.T) {
	w := NewFromIDs([]ClusterID{1, 2, 3})
	w.SetQualityFunc(func(ClusterID) float64 { return 1 })
	got, err := w.BestClusters(0)
	if err != nil {
		t.Fatalf("best clusters: %v", err)
	}
	wantIDs(t, "BestClusters ties", got, []ClusterID{1, 2, 3})
}

func TestBestClustersRequiresQualityFunc(t *testing.T) {
	w := NewFromIDs([]ClusterID{1, 2})
	if _, err := w.BestClusters(0); !errors.Is(err, ErrNoQualityFunc) {
		t.Fatalf("expected ErrNoQualityFunc, got %v", err)
	}
	got, err := w.BestClustersBy(idQuality, 0)
	if err != nil {
		t.Fatalf("explicit quality func: %v", err)
	}
	wantIDs(t, "BestClustersBy", got, []ClusterID{2, 1})
}

func TestMostSimilarClustersOrdering(t *testing.T) {
	w := reviewFixture()
	got, err := w.MostSimilarClusters(7, 0)
	if err != nil {
		t.Fatalf("most similar: %v", err)
	}
	// Good and unsorted interleave by similarity; ignored sink to the end.
	wantIDs(t, "MostSimilarClusters(7)", got, []ClusterID{5, 4, 3, 2, 6, 1})
}

func TestMostSimilarClustersTruncates(t *testing.T) {
	w := reviewFixture()
	got, err := w.MostSimilarClusters(7, 3)
	if err != nil {
		t.Fatalf("most similar: %v", err)
	}
	// The three most similar to 7 are 6, 5, 4; the ignored 6 then sinks.
	wantIDs(t, "MostSimilarClusters(7, 3)", got, []ClusterID{5, 4, 6})
}

func TestMostSimilarClustersDefaultsToBest(t *testing.T) {
	w := reviewFixture()

	// Before start the target falls back to the top-quality cluster.
	got, err := w.MostSimilarClusters(NoCluster, 0)
	if err != nil {
		t.Fatalf("most similar: %v", err)
	}
	wantIDs(t, "MostSimilarClusters default", got, []ClusterID{5, 4, 3, 2, 6, 1})

	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.NextBest(); err != nil {
		t.Fatalf("next best: %v", err)
	}
	// Now the target is the current best, cluster 4.
	got, err = w.MostSimilarClusters(NoCluster, 0)
	if err != nil {
		t.Fatalf("most similar: %v", err)
	}
	wantIDs(t, "MostSimilarClusters current best", got, []ClusterID{7, 5, 3, 2, 6, 1})
}

func TestMostSimilarClustersEmptyWizard(t *testing.T) {
	w := New(nil)
	w.SetQualityFunc(idQuality)
	w.SetSimilarityFunc(concatSimilarity)
	got, err := w.MostSimilarClusters(NoCluster, 0)
	if err != nil {
		t.Fatalf("most similar: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %v", got)
	}
}

func TestMostSimilarClustersRequiresSimilarityFunc(t *testing.T) {
	w := NewFromIDs([]ClusterID{1, 2})
	w.SetQualityFunc(idQuality)
	if _, err := w.MostSimilarClusters(1, 0); !errors.Is(err, ErrNoSimilarityFunc) {
		t.Fatalf("expected ErrNoSimilarityFunc, got %v", err)
	}
	got, err := w.MostSimilarClustersBy(concatSimilarity, 1, 0)
	if err != nil {
		t.Fatalf("explicit similarity func: %v", err)
	}
	wantIDs(t, "MostSimilarClustersBy", got, []ClusterID{2})
}

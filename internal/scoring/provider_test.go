package scoring_test

import (
	"context"
	"testing"

	"github.com/KnierimLab/phy/internal/scoring"
	"github.com/KnierimLab/phy/internal/testsupport"
	"github.com/KnierimLab/phy/internal/wizard"
)

func TestProviderServesStoredScores(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.ImportSnapshot(t, store, testsupport.ReviewSnapshot())

	provider := scoring.NewProvider(store)
	if err := provider.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if got := provider.Quality(3); got != 3 {
		t.Fatalf("Quality(3) = %v, want 3", got)
	}
	if got := provider.Quality(99); got != 0 {
		t.Fatalf("Quality(99) = %v, want 0", got)
	}
	if got := provider.Similarity(3, 7); got != 73 {
		t.Fatalf("Similarity(3,7) = %v, want 73", got)
	}
	if got := provider.Similarity(7, 3); got != 73 {
		t.Fatalf("Similarity(7,3) = %v, want 73", got)
	}
	if got := provider.Similarity(1, 99); got != 0 {
		t.Fatalf("Similarity(1,99) = %v, want 0", got)
	}

	groups := provider.Groups()
	if len(groups) != 7 {
		t.Fatalf("expected 7 groups, got %d", len(groups))
	}
	if groups[2] != wizard.GroupGood || groups[6] != wizard.GroupIgnored {
		t.Fatalf("unexpected groups: %v", groups)
	}
	if provider.ClusterCount() != 7 || provider.PairCount() != 21 {
		t.Fatalf("counts = %d clusters / %d pairs", provider.ClusterCount(), provider.PairCount())
	}
}

func TestProviderRefreshTracksActions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.ImportSnapshot(t, store, testsupport.ReviewSnapshot())
	ctx := context.Background()

	provider := scoring.NewProvider(store)
	if err := provider.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if _, err := store.Merge(ctx, []wizard.ClusterID{7, 3}); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	// Until the next refresh the provider keeps serving the old copy.
	if got := provider.Quality(7); got != 7 {
		t.Fatalf("stale Quality(7) = %v, want 7", got)
	}

	if err := provider.Refresh(ctx); err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
	if got := provider.Quality(7); got != 0 {
		t.Fatalf("Quality(7) after merge = %v, want 0", got)
	}
	if got := provider.Quality(8); got != 7 {
		t.Fatalf("Quality(8) = %v, want 7", got)
	}
	if got := provider.Similarity(1, 8); got != 71 {
		t.Fatalf("Similarity(1,8) = %v, want 71", got)
	}
	if _, merged := provider.Groups()[3]; merged {
		t.Fatal("merged parent should leave the group map")
	}
}

func TestProviderDrivesWizardRanking(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.ImportSnapshot(t, store, testsupport.ReviewSnapshot())

	provider := scoring.NewProvider(store)
	if err := provider.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	w := wizard.New(provider.Groups())
	w.SetQualityFunc(provider.Quality)
	w.SetSimilarityFunc(provider.Similarity)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	wantBest := []wizard.ClusterID{7, 4, 3, 5, 2, 6, 1}
	if got := w.BestList(); len(got) != len(wantBest) {
		t.Fatalf("best list = %v, want %v", got, wantBest)
	} else {
		for i, id := range wantBest {
			if got[i] != id {
				t.Fatalf("best list = %v, want %v", got, wantBest)
			}
		}
	}
	if w.Best() != 7 {
		t.Fatalf("best = %d, want 7", w.Best())
	}
}

package scoring

import (
	"context"
	"fmt"
	"sync"

	"github.com/KnierimLab/phy/internal/session"
	"github.com/KnierimLab/phy/internal/wizard"
)

type pairKey struct {
	a wizard.ClusterID
	b wizard.ClusterID
}

// canonicalPair orders a pair so lookups are orientation independent.
func canonicalPair(a, b wizard.ClusterID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Provider caches session scores for wizard ranking. Lookups never touch the
// database; Refresh swaps in a fresh copy after the store has changed.
type Provider struct {
	store *session.Store

	mu         sync.RWMutex
	groups     map[wizard.ClusterID]wizard.Group
	quality    map[wizard.ClusterID]float64
	similarity map[pairKey]float64
}

// NewProvider returns an empty provider over the given store. Call Refresh
// before handing its score functions to a wizard.
func NewProvider(store *session.Store) *Provider {
	return &Provider{store: store}
}

// Refresh reloads groups, qualities, and similarity scores from the store.
// On error the previous copy stays in place.
func (p *Provider) Refresh(ctx context.Context) error {
	groups, err := p.store.GroupMap(ctx)
	if err != nil {
		return fmt.Errorf("refresh groups: %w", err)
	}
	quality, err := p.store.QualityMap(ctx)
	if err != nil {
		return fmt.Errorf("refresh qualities: %w", err)
	}
	scores, err := p.store.SimilarityScores(ctx)
	if err != nil {
		return fmt.Errorf("refresh similarities: %w", err)
	}
	similarity := make(map[pairKey]float64, len(scores))
	for _, score := range scores {
		similarity[canonicalPair(score.A, score.B)] = score.Score
	}

	p.mu.Lock()
	p.groups = groups
	p.quality = quality
	p.similarity = similarity
	p.mu.Unlock()
	return nil
}

// Quality returns the stored quality of a cluster, or zero when unknown.
func (p *Provider) Quality(id wizard.ClusterID) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.quality[id]
}

// Similarity returns the stored score of a pair in either orientation, or
// zero when the pair was never scored.
func (p *Provider) Similarity(a, b wizard.ClusterID) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.similarity[canonicalPair(a, b)]
}

// Groups returns a copy of the cluster-to-group assignment from the last
// refresh, in the shape wizard.New expects.
func (p *Provider) Groups() map[wizard.ClusterID]wizard.Group {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cp := make(map[wizard.ClusterID]wizard.Group, len(p.groups))
	for id, group := range p.groups {
		cp[id] = group
	}
	return cp
}

// ClusterCount reports how many clusters the last refresh loaded.
func (p *Provider) ClusterCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.groups)
}

// PairCount reports how many scored pairs the last refresh loaded.
func (p *Provider) PairCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.similarity)
}

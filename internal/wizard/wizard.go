package wizard

import (
	"fmt"
	"slices"
)

// ClusterID identifies a cluster within a session.
type ClusterID int64

// NoCluster marks an undefined best or match selection.
const NoCluster ClusterID = -1

// QualityFunc scores a single cluster. Higher is better.
type QualityFunc func(ClusterID) float64

// SimilarityFunc scores a pair of clusters. Higher means more similar.
type SimilarityFunc func(a, b ClusterID) float64

// Selection is one (best, match) snapshot, with NoCluster for undefined.
type Selection struct {
	Best  ClusterID
	Match ClusterID
}

// Wizard proposes clusters for review by decreasing quality and match
// candidates by decreasing similarity. See the package documentation for the
// traversal and reconciliation model.
type Wizard struct {
	groups     map[ClusterID]Group
	quality    QualityFunc
	similarity SimilarityFunc

	bestList  []ClusterID
	matchList []ClusterID
	best      ClusterID
	match     ClusterID

	historyLimit int
	history      *history
}

// Option configures optional Wizard behavior.
type Option func(*Wizard)

// WithHistoryLimit caps the number of selection snapshots kept for undo and
// redo restoration. Zero keeps the history unbounded.
func WithHistoryLimit(limit int) Option {
	return func(w *Wizard) {
		if limit > 0 {
			w.historyLimit = limit
		}
	}
}

// New constructs a wizard over the given cluster-to-group assignment. An
// empty or unknown group falls back to unsorted.
func New(groups map[ClusterID]Group, opts ...Option) *Wizard {
	w := &Wizard{
		groups: make(map[ClusterID]Group, len(groups)),
		best:   NoCluster,
		match:  NoCluster,
	}
	for id, group := range groups {
		if _, known := groupSet[group]; !known {
			group = GroupUnsorted
		}
		w.groups[id] = group
	}
	for _, opt := range opts {
		opt(w)
	}
	w.history = newHistory(Selection{Best: NoCluster, Match: NoCluster}, w.historyLimit)
	return w
}

// NewFromIDs constructs a wizard where every cluster starts unsorted.
func NewFromIDs(ids []ClusterID, opts ...Option) *Wizard {
	groups := make(map[ClusterID]Group, len(ids))
	for _, id := range ids {
		groups[id] = GroupUnsorted
	}
	return New(groups, opts...)
}

// SetQualityFunc registers the cluster quality function, replacing any
// previous one. Scores are recomputed on use, never cached.
func (w *Wizard) SetQualityFunc(fn QualityFunc) {
	w.quality = fn
}

// SetSimilarityFunc registers the pairwise similarity function, replacing
// any previous one.
func (w *Wizard) SetSimilarityFunc(fn SimilarityFunc) {
	w.similarity = fn
}

// ClusterIDs returns all known cluster ids in ascending order.
func (w *Wizard) ClusterIDs() []ClusterID {
	ids := make([]ClusterID, 0, len(w.groups))
	for id := range w.groups {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Groups returns a copy of the cluster-to-group assignment.
func (w *Wizard) Groups() map[ClusterID]Group {
	cp := make(map[ClusterID]Group, len(w.groups))
	for id, group := range w.groups {
		cp[id] = group
	}
	return cp
}

// GroupOf returns the review group of a cluster. Unknown clusters and empty
// assignments report unsorted, mirroring how scoring treats them.
func (w *Wizard) GroupOf(id ClusterID) Group {
	group, ok := w.groups[id]
	if !ok || group == "" {
		return GroupUnsorted
	}
	return group
}

// ClusterCount returns the number of known clusters.
func (w *Wizard) ClusterCount() int {
	return len(w.groups)
}

// ProcessedCount returns how many clusters in the best list already carry a
// good or ignored label.
func (w *Wizard) ProcessedCount() int {
	n := 0
	for _, id := range w.bestList {
		if w.GroupOf(id).Processed() {
			n++
		}
	}
	return n
}

// Best returns the current best cluster, or NoCluster before Start.
func (w *Wizard) Best() ClusterID {
	return w.best
}

// Match returns the current match cluster, or NoCluster when unpinned.
func (w *Wizard) Match() ClusterID {
	return w.match
}

// Pinned reports whether a match candidate is currently selected.
func (w *Wizard) Pinned() bool {
	return w.match != NoCluster
}

// Selection returns the active selection: empty, [best], or [best, match].
func (w *Wizard) Selection() []ClusterID {
	if w.best == NoCluster {
		return nil
	}
	if w.match == NoCluster {
		return []ClusterID{w.best}
	}
	return []ClusterID{w.best, w.match}
}

// BestList returns a copy of the current review ordering.
func (w *Wizard) BestList() []ClusterID {
	return slices.Clone(w.bestList)
}

// MatchList returns a copy of the current match candidate ordering.
func (w *Wizard) MatchList() []ClusterID {
	return slices.Clone(w.matchList)
}

// HasFinished reports whether review is complete: a best cluster is selected
// and at most one cluster remains in the best list.
func (w *Wizard) HasFinished() bool {
	return w.best != NoCluster && len(w.bestList) <= 1
}

// setBest moves the best selection. The value must be a member of the best
// list.
func (w *Wizard) setBest(id ClusterID) error {
	if !slices.Contains(w.bestList, id) {
		return fmt.Errorf("best cluster %d: %w", id, ErrNotInList)
	}
	w.best = id
	return nil
}

// setMatch moves the match selection. NoCluster clears it; any other value
// must be a member of the match list.
func (w *Wizard) setMatch(id ClusterID) error {
	if id != NoCluster && !slices.Contains(w.matchList, id) {
		return fmt.Errorf("match cluster %d: %w", id, ErrNotInList)
	}
	w.match = id
	return nil
}

// check verifies the structural invariants after a mutation: both lists
// contain only known clusters, a defined selection is a member of its
// non-empty list, and best and match never coincide.
func (w *Wizard) check() error {
	for _, id := range w.bestList {
		if _, known := w.groups[id]; !known {
			return fmt.Errorf("best list contains unknown cluster %d: %w", id, ErrInvariant)
		}
	}
	for _, id := range w.matchList {
		if _, known := w.groups[id]; !known {
			return fmt.Errorf("match list contains unknown cluster %d: %w", id, ErrInvariant)
		}
	}
	if w.best != NoCluster && len(w.bestList) >= 1 && !slices.Contains(w.bestList, w.best) {
		return fmt.Errorf("best cluster %d is not in the best list: %w", w.best, ErrInvariant)
	}
	if w.match != NoCluster && len(w.matchList) >= 1 && !slices.Contains(w.matchList, w.match) {
		return fmt.Errorf("match cluster %d is not in the match list: %w", w.match, ErrInvariant)
	}
	if w.best != NoCluster && w.match != NoCluster && w.best == w.match {
		return fmt.Errorf("best and match both point at cluster %d: %w", w.best, ErrInvariant)
	}
	return nil
}

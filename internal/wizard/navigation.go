package wizard

import (
	"fmt"
	"slices"
)

// filterFunc restricts traversal to accepted clusters. Nil accepts all.
type filterFunc func(ClusterID) bool

// nextIn returns the nearest accepted successor of current, clamping at the
// end of the list. An empty list returns current unchanged; a current value
// missing from a non-empty list is a precondition violation.
func nextIn(items []ClusterID, current ClusterID, accept filterFunc) (ClusterID, error) {
	if len(items) == 0 {
		return current, nil
	}
	i := slices.Index(items, current)
	if i < 0 {
		return NoCluster, fmt.Errorf("cluster %d: %w", current, ErrNotInList)
	}
	if i == len(items)-1 {
		return current, nil
	}
	for _, candidate := range items[i+1:] {
		if accept == nil || accept(candidate) {
			return candidate, nil
		}
	}
	return current, nil
}

// previousIn returns the nearest accepted predecessor of current, clamping
// at the start of the list. Unlike nextIn there is no empty-list escape: a
// current value missing from the list is always a precondition violation.
func previousIn(items []ClusterID, current ClusterID, accept filterFunc) (ClusterID, error) {
	i := slices.Index(items, current)
	if i < 0 {
		return NoCluster, fmt.Errorf("cluster %d: %w", current, ErrNotInList)
	}
	if i == 0 {
		return current, nil
	}
	for j := i - 1; j >= 0; j-- {
		if accept == nil || accept(items[j]) {
			return items[j], nil
		}
	}
	return current, nil
}

// rebuildBestList recomputes the review ordering and selects its head.
func (w *Wizard) rebuildBestList() error {
	clusters, err := w.BestClusters(0)
	if err != nil {
		return err
	}
	w.bestList = clusters
	if len(clusters) > 0 {
		return w.setBest(clusters[0])
	}
	return nil
}

// rebuildMatchList recomputes match candidates for a cluster (NoCluster
// targets the current best) and selects the top candidate. When the
// candidate list comes back empty the match selection is left untouched.
func (w *Wizard) rebuildMatchList(cluster ClusterID) error {
	if cluster == NoCluster {
		cluster = w.best
	}
	clusters, err := w.MostSimilarClusters(cluster, 0)
	if err != nil {
		return err
	}
	w.matchList = clusters
	if len(clusters) > 0 {
		return w.setMatch(clusters[0])
	}
	return nil
}

// Start computes the initial review ordering and selects the first cluster
// to review. Calling it again rebuilds the ordering from current groups.
func (w *Wizard) Start() error {
	return w.rebuildBestList()
}

// Pin selects a cluster as the merge reference and builds its match
// candidate list, selecting the most similar candidate. NoCluster pins the
// current best. Pinning the already pinned cluster, or anything once review
// has finished, is a no-op.
func (w *Wizard) Pin(cluster ClusterID) error {
	if w.HasFinished() {
		return nil
	}
	if cluster == NoCluster {
		cluster = w.best
	}
	if w.match != NoCluster && w.best == cluster {
		return nil
	}
	if err := w.setBest(cluster); err != nil {
		return err
	}
	if err := w.rebuildMatchList(cluster); err != nil {
		return err
	}
	return w.check()
}

// Unpin clears the match selection and candidate list. Unpinned wizards are
// left untouched.
func (w *Wizard) Unpin() error {
	if w.match != NoCluster {
		w.match = NoCluster
		w.matchList = nil
	}
	return nil
}

// NextBest advances the best selection, clamping at the end of the list.
// When pinned, match candidates are rebuilt for the new best cluster. A
// finished review is left untouched.
func (w *Wizard) NextBest() error {
	if w.HasFinished() {
		return nil
	}
	next, err := nextIn(w.bestList, w.best, nil)
	if err != nil {
		return err
	}
	if err := w.setBest(next); err != nil {
		return err
	}
	if w.match != NoCluster {
		return w.rebuildMatchList(NoCluster)
	}
	return nil
}

// PreviousBest moves the best selection backward, clamping at the start of
// the list. When pinned, match candidates are rebuilt for the new best
// cluster. A finished review is left untouched.
func (w *Wizard) PreviousBest() error {
	if w.HasFinished() {
		return nil
	}
	prev, err := previousIn(w.bestList, w.best, nil)
	if err != nil {
		return err
	}
	if err := w.setBest(prev); err != nil {
		return err
	}
	if w.match != NoCluster {
		return w.rebuildMatchList(NoCluster)
	}
	return nil
}

// NextMatch advances the match selection, clamping at the end of the list.
// Reaching the end of the candidate list hands over to NextBest so review
// keeps moving.
func (w *Wizard) NextMatch() error {
	if w.match != NoCluster && len(w.matchList) <= 1 {
		return w.NextBest()
	}
	next, err := nextIn(w.matchList, w.match, nil)
	if err != nil {
		return err
	}
	return w.setMatch(next)
}

// PreviousMatch moves the match selection backward, clamping at the start
// of the candidate list.
func (w *Wizard) PreviousMatch() error {
	prev, err := previousIn(w.matchList, w.match, nil)
	if err != nil {
		return err
	}
	return w.setMatch(prev)
}

// Next advances the match selection when pinned, otherwise the best one.
func (w *Wizard) Next() error {
	if w.match == NoCluster {
		return w.NextBest()
	}
	return w.NextMatch()
}

// Previous moves the match selection backward when pinned, otherwise the
// best one.
func (w *Wizard) Previous() error {
	if w.match == NoCluster {
		return w.PreviousBest()
	}
	return w.PreviousMatch()
}

// First jumps to the head of the active list: the match candidates when
// pinned, the review ordering otherwise.
func (w *Wizard) First() error {
	if w.match == NoCluster {
		if len(w.bestList) == 0 {
			return fmt.Errorf("best list: %w", ErrEmptyList)
		}
		return w.setBest(w.bestList[0])
	}
	if len(w.matchList) == 0 {
		return fmt.Errorf("match list: %w", ErrEmptyList)
	}
	return w.setMatch(w.matchList[0])
}

// Last jumps to the tail of the active list: the match candidates when
// pinned, the review ordering otherwise.
func (w *Wizard) Last() error {
	if w.match == NoCluster {
		if len(w.bestList) == 0 {
			return fmt.Errorf("best list: %w", ErrEmptyList)
		}
		return w.setBest(w.bestList[len(w.bestList)-1])
	}
	if len(w.matchList) == 0 {
		return fmt.Errorf("match list: %w", ErrEmptyList)
	}
	return w.setMatch(w.matchList[len(w.matchList)-1])
}

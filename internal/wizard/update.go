package wizard

import (
	"fmt"
	"slices"
)

// UpdateKind names the clustering action behind a ClusterUpdate.
type UpdateKind string

const (
	UpdateMerge         UpdateKind = "merge"
	UpdateAssign        UpdateKind = "assign"
	UpdateMetadataGroup UpdateKind = "metadata_group"
)

// HistoryKind marks an update as history replay rather than a fresh action.
// Replayed updates restore selections from recorded snapshots instead of
// recording new ones.
type HistoryKind string

const (
	HistoryNone HistoryKind = ""
	HistoryUndo HistoryKind = "undo"
	HistoryRedo HistoryKind = "redo"
)

// Descendant links a cluster that produced spikes (Parent) to a cluster
// created from them (Child).
type Descendant struct {
	Parent ClusterID
	Child  ClusterID
}

// ClusterUpdate describes one structural change to the cluster set, emitted
// by the session action journal after a merge, split, relabel, undo, or
// redo has been applied to the store.
type ClusterUpdate struct {
	Description     UpdateKind
	Added           []ClusterID
	Deleted         []ClusterID
	Descendants     []Descendant
	MetadataChanged []ClusterID
	MetadataValue   Group
	History         HistoryKind
}

// firstParent returns the parent of the first descendant pair naming child.
func firstParent(descendants []Descendant, child ClusterID) (ClusterID, bool) {
	for _, d := range descendants {
		if d.Child == child {
			return d.Parent, true
		}
	}
	return NoCluster, false
}

// OnClusterUpdate reconciles the wizard with a structural change to the
// cluster set.
//
// A finished review ignores events. While either list is still empty (review
// not started, or nothing pinned yet) only the structural part is applied
// and no snapshots are recorded. Otherwise the update is bracketed by
// selection snapshots — one before and one after — unless it is itself
// history replay, and the selection is moved according to the action: merges
// and splits pin their first created cluster, relabeling the current best or
// match advances past it, and undo/redo restore a recorded selection.
//
// A structural defect in the event (unknown deleted id, duplicate added id,
// missing descendant pair) aborts with ErrMalformedUpdate; a consistency
// violation detected afterwards aborts with ErrInvariant. In both cases the
// wizard state should be rebuilt from the session.
func (w *Wizard) OnClusterUpdate(up *ClusterUpdate) error {
	if up == nil {
		return nil
	}
	if w.HasFinished() {
		return nil
	}
	if len(w.bestList) == 0 || len(w.matchList) == 0 {
		if err := w.applyStructural(up); err != nil {
			return err
		}
		if len(w.bestList) > 0 {
			return w.applySelection(up)
		}
		return nil
	}
	if up.History == HistoryNone {
		w.history.add(Selection{Best: w.best, Match: w.match})
	}
	if err := w.applyStructural(up); err != nil {
		return err
	}
	if err := w.applySelection(up); err != nil {
		return err
	}
	if up.History == HistoryNone {
		w.history.add(Selection{Best: w.best, Match: w.match})
	}
	return nil
}

// applyStructural updates groups and both lists without touching history.
func (w *Wizard) applyStructural(up *ClusterUpdate) error {
	if up.Description == UpdateMetadataGroup {
		if len(up.MetadataChanged) == 0 {
			return fmt.Errorf("metadata_group update names no cluster: %w", ErrMalformedUpdate)
		}
		w.groups[up.MetadataChanged[0]] = up.MetadataValue
	}
	for _, added := range up.Added {
		parent, ok := firstParent(up.Descendants, added)
		if !ok {
			return fmt.Errorf("added cluster %d has no descendant pair: %w", added, ErrMalformedUpdate)
		}
		if err := w.addCluster(added, w.GroupOf(parent), parent); err != nil {
			return err
		}
	}
	for _, deleted := range up.Deleted {
		if err := w.deleteCluster(deleted); err != nil {
			return err
		}
	}
	return nil
}

// addCluster registers a new cluster under the given group. While a best
// cluster is selected the new cluster enters the best list at its parent's
// position, or at the end when the parent is no longer listed; while pinned
// it also joins the end of the match list.
func (w *Wizard) addCluster(id ClusterID, group Group, parent ClusterID) error {
	if _, known := w.groups[id]; known {
		return fmt.Errorf("added cluster %d already exists: %w", id, ErrMalformedUpdate)
	}
	w.groups[id] = group
	if w.best != NoCluster {
		if pos := slices.Index(w.bestList, parent); pos >= 0 {
			w.bestList = slices.Insert(w.bestList, pos, id)
		} else {
			w.bestList = append(w.bestList, id)
		}
	}
	if w.match != NoCluster {
		w.matchList = append(w.matchList, id)
	}
	return nil
}

// deleteCluster forgets a cluster. A deleted best moves to the head of the
// remaining best list; a deleted match clears the match selection without
// rebuilding the candidate list.
func (w *Wizard) deleteCluster(id ClusterID) error {
	if _, known := w.groups[id]; !known {
		return fmt.Errorf("deleted cluster %d is not known: %w", id, ErrMalformedUpdate)
	}
	delete(w.groups, id)
	if pos := slices.Index(w.bestList, id); pos >= 0 {
		w.bestList = slices.Delete(w.bestList, pos, pos+1)
	}
	if pos := slices.Index(w.matchList, id); pos >= 0 {
		w.matchList = slices.Delete(w.matchList, pos, pos+1)
	}
	if id == w.best {
		if len(w.bestList) > 0 {
			w.best = w.bestList[0]
		} else {
			w.best = NoCluster
		}
	}
	if id == w.match {
		w.match = NoCluster
	}
	return nil
}

// applySelection moves the selection according to the action that produced
// the update, then verifies the invariants.
func (w *Wizard) applySelection(up *ClusterUpdate) error {
	switch {
	case up.History == HistoryUndo:
		// Selections are snapshotted both before and after each action, so
		// undo steps the cursor past the bracketing pair: twice, unless it
		// already sits on the newest snapshot.
		if !w.history.isLast() {
			w.history.back()
		}
		w.history.back()
		if err := w.restoreSelection(); err != nil {
			return err
		}
	case up.History == HistoryRedo:
		if !w.history.isFirst() {
			w.history.forward()
		}
		w.history.forward()
		if err := w.restoreSelection(); err != nil {
			return err
		}
	case up.Description == UpdateMerge || up.Description == UpdateAssign:
		if len(up.Added) == 0 {
			return fmt.Errorf("%s update added no clusters: %w", up.Description, ErrMalformedUpdate)
		}
		if err := w.Pin(up.Added[0]); err != nil {
			return err
		}
	case up.Description == UpdateMetadataGroup:
		cluster := up.MetadataChanged[0]
		if cluster == w.best {
			if err := w.NextBest(); err != nil {
				return err
			}
		} else if cluster == w.match {
			if err := w.NextMatch(); err != nil {
				return err
			}
		}
	}
	return w.check()
}

// restoreSelection applies the snapshot under the history cursor, clamping
// each recorded value to membership in its current list: a recorded best or
// match that no longer exists falls back to the head of its list. Restoring
// a recorded match rebuilds the candidate list for the restored best first.
func (w *Wizard) restoreSelection() error {
	snap := w.history.current()
	if snap.Best != NoCluster && len(w.bestList) > 0 && slices.Contains(w.bestList, snap.Best) {
		w.best = snap.Best
	}
	if w.best != NoCluster && !slices.Contains(w.bestList, w.best) {
		if len(w.bestList) > 0 {
			w.best = w.bestList[0]
		} else {
			w.best = NoCluster
		}
	}
	if snap.Match != NoCluster && len(w.matchList) > 0 {
		if err := w.rebuildMatchList(NoCluster); err != nil {
			return err
		}
		if slices.Contains(w.matchList, snap.Match) {
			w.match = snap.Match
		}
	}
	if w.match != NoCluster && !slices.Contains(w.matchList, w.match) {
		if len(w.matchList) > 0 {
			w.match = w.matchList[0]
		} else {
			w.match = NoCluster
		}
	}
	return nil
}

// HistoryLen reports how many selection snapshots are currently retained,
// including the base snapshot.
func (w *Wizard) HistoryLen() int {
	return w.history.len()
}

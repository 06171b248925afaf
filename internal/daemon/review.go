package daemon

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/KnierimLab/phy/internal/logging"
	"github.com/KnierimLab/phy/internal/session"
	"github.com/KnierimLab/phy/internal/textutil"
	"github.com/KnierimLab/phy/internal/wizard"
)

// ImportSession loads a snapshot file into the store, replacing any previous
// session, and restarts the review from the top of the new ordering.
func (d *Daemon) ImportSession(ctx context.Context, path string) (*SessionSummary, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve snapshot path: %w", err)
	}
	snap, err := session.ReadSnapshotFile(absPath)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	info, err := d.store.ImportSnapshot(ctx, snap, absPath)
	if err != nil {
		return nil, err
	}
	if err := d.reloadLocked(ctx); err != nil {
		return nil, err
	}

	d.logger.Info("session imported",
		logging.String("name", info.Name),
		logging.String("source", absPath),
		logging.Int("clusters", d.provider.ClusterCount()),
		logging.String(logging.FieldEventType, "session_imported"))
	return d.sessionSummaryLocked(ctx)
}

// SessionInfo describes the loaded session and its journal counters.
func (d *Daemon) SessionInfo(ctx context.Context) (*SessionSummary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessionSummaryLocked(ctx)
}

// StartReview recomputes the review ordering from current groups and
// qualities and selects the first cluster to review.
func (d *Daemon) StartReview(ctx context.Context) (*Panel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.reloadLocked(ctx); err != nil {
		return nil, err
	}
	d.logger.Info("review started",
		logging.Int("clusters", d.provider.ClusterCount()),
		logging.String(logging.FieldEventType, "review_started"))
	return d.panelLocked(ctx)
}

// navigate runs a wizard operation under the daemon mutex and reports the
// panel state afterwards.
func (d *Daemon) navigate(ctx context.Context, op func(*wizard.Wizard) error) (*Panel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.wiz == nil {
		return nil, session.ErrNoSession
	}
	if err := op(d.wiz); err != nil {
		return nil, err
	}
	return d.panelLocked(ctx)
}

// Pin selects a cluster as the merge reference and builds its match
// candidates. NoCluster pins the current best.
func (d *Daemon) Pin(ctx context.Context, cluster wizard.ClusterID) (*Panel, error) {
	return d.navigate(ctx, func(w *wizard.Wizard) error { return w.Pin(cluster) })
}

// Unpin clears the match selection and candidate list.
func (d *Daemon) Unpin(ctx context.Context) (*Panel, error) {
	return d.navigate(ctx, func(w *wizard.Wizard) error { return w.Unpin() })
}

// Next advances the match selection when pinned, otherwise the best one.
func (d *Daemon) Next(ctx context.Context) (*Panel, error) {
	return d.navigate(ctx, func(w *wizard.Wizard) error { return w.Next() })
}

// Previous moves the match selection backward when pinned, otherwise the
// best one.
func (d *Daemon) Previous(ctx context.Context) (*Panel, error) {
	return d.navigate(ctx, func(w *wizard.Wizard) error { return w.Previous() })
}

// NextBest advances the best selection regardless of pin state.
func (d *Daemon) NextBest(ctx context.Context) (*Panel, error) {
	return d.navigate(ctx, func(w *wizard.Wizard) error { return w.NextBest() })
}

// PreviousBest moves the best selection backward regardless of pin state.
func (d *Daemon) PreviousBest(ctx context.Context) (*Panel, error) {
	return d.navigate(ctx, func(w *wizard.Wizard) error { return w.PreviousBest() })
}

// NextMatch advances the match selection.
func (d *Daemon) NextMatch(ctx context.Context) (*Panel, error) {
	return d.navigate(ctx, func(w *wizard.Wizard) error { return w.NextMatch() })
}

// PreviousMatch moves the match selection backward.
func (d *Daemon) PreviousMatch(ctx context.Context) (*Panel, error) {
	return d.navigate(ctx, func(w *wizard.Wizard) error { return w.PreviousMatch() })
}

// First jumps to the head of the active list.
func (d *Daemon) First(ctx context.Context) (*Panel, error) {
	return d.navigate(ctx, func(w *wizard.Wizard) error { return w.First() })
}

// Last jumps to the tail of the active list.
func (d *Daemon) Last(ctx context.Context) (*Panel, error) {
	return d.navigate(ctx, func(w *wizard.Wizard) error { return w.Last() })
}

// Label assigns a group to a cluster. NoCluster targets the current match
// when pinned, otherwise the current best, so labeling follows whichever
// cluster the reviewer is looking at.
func (d *Daemon) Label(ctx context.Context, cluster wizard.ClusterID, group wizard.Group) (*ActionResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.wiz == nil {
		return nil, session.ErrNoSession
	}

	if cluster == wizard.NoCluster {
		cluster = textutil.Ternary(d.wiz.Pinned(), d.wiz.Match(), d.wiz.Best())
	}
	if cluster == wizard.NoCluster {
		return nil, errors.New("no cluster selected")
	}

	update, err := d.store.SetGroup(ctx, cluster, group)
	if err != nil {
		return nil, err
	}
	if err := d.applyUpdateLocked(ctx, update); err != nil {
		return nil, err
	}

	d.logger.Info("cluster labeled",
		logging.Int64(logging.FieldCluster, int64(cluster)),
		logging.String("group", string(group)),
		logging.String(logging.FieldEventType, "cluster_labeled"))
	return d.actionResultLocked(ctx, update)
}

// Merge combines clusters into a new one inheriting the best quality and
// strongest similarities of its parents. An empty id list merges the current
// selection, which requires a pinned match.
func (d *Daemon) Merge(ctx context.Context, ids []wizard.ClusterID) (*ActionResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(ids) == 0 {
		if d.wiz == nil {
			return nil, session.ErrNoSession
		}
		ids = d.wiz.Selection()
	}

	update, err := d.store.Merge(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := d.applyUpdateLocked(ctx, update); err != nil {
		return nil, err
	}

	d.logger.Info("clusters merged",
		logging.Any(logging.FieldClusters, ids),
		logging.Any("created", update.Added),
		logging.String(logging.FieldEventType, "clusters_merged"))
	return d.actionResultLocked(ctx, update)
}

// Split divides clusters into the requested number of children. An empty id
// list splits the current selection.
func (d *Daemon) Split(ctx context.Context, ids []wizard.ClusterID, into int) (*ActionResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(ids) == 0 {
		if d.wiz == nil {
			return nil, session.ErrNoSession
		}
		ids = d.wiz.Selection()
	}

	update, err := d.store.Split(ctx, ids, into)
	if err != nil {
		return nil, err
	}
	if err := d.applyUpdateLocked(ctx, update); err != nil {
		return nil, err
	}

	d.logger.Info("clusters split",
		logging.Any(logging.FieldClusters, ids),
		logging.Any("created", update.Added),
		logging.String(logging.FieldEventType, "clusters_split"))
	return d.actionResultLocked(ctx, update)
}

// Undo reverts the most recent clustering action and restores the selection
// active when it was applied.
func (d *Daemon) Undo(ctx context.Context) (*ActionResult, error) {
	return d.walkJournal(ctx, "action undone", "action_undone", d.store.Undo)
}

// Redo replays the most recently undone clustering action.
func (d *Daemon) Redo(ctx context.Context) (*ActionResult, error) {
	return d.walkJournal(ctx, "action redone", "action_redone", d.store.Redo)
}

func (d *Daemon) walkJournal(ctx context.Context, msg, eventType string, op func(context.Context) (*wizard.ClusterUpdate, error)) (*ActionResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	update, err := op(ctx)
	if err != nil {
		return nil, err
	}
	if err := d.applyUpdateLocked(ctx, update); err != nil {
		return nil, err
	}

	d.logger.Info(msg,
		logging.String(logging.FieldAction, string(update.Description)),
		logging.String(logging.FieldEventType, eventType))
	return d.actionResultLocked(ctx, update)
}

// Clusters lists session clusters ordered by id, optionally filtered to the
// given groups.
func (d *Daemon) Clusters(ctx context.Context, groups []wizard.Group) ([]*session.Cluster, error) {
	if d.store == nil {
		return nil, errors.New("session store unavailable")
	}
	rows, err := d.store.Clusters(ctx)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return rows, nil
	}

	wanted := make(map[wizard.Group]struct{}, len(groups))
	for _, g := range groups {
		wanted[g] = struct{}{}
	}
	filtered := make([]*session.Cluster, 0, len(rows))
	for _, row := range rows {
		if _, ok := wanted[row.Group]; ok {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// applyUpdateLocked refreshes scores and hands a cluster event to the
// wizard. A rejected event means the wizard diverged from the store, so the
// review state is rebuilt from scratch. Callers hold d.mu.
func (d *Daemon) applyUpdateLocked(ctx context.Context, update *wizard.ClusterUpdate) error {
	if err := d.provider.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh scores: %w", err)
	}
	if d.wiz == nil {
		return nil
	}
	if err := d.wiz.OnClusterUpdate(update); err != nil {
		d.logger.Warn("cluster event rejected; rebuilding review state",
			logging.String(logging.FieldAction, string(update.Description)),
			logging.Error(err),
			logging.String(logging.FieldEventType, "review_rebuilt"))
		return d.reloadLocked(ctx)
	}
	return nil
}

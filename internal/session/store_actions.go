package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/KnierimLab/phy/internal/wizard"
)

const (
	actionMerge  = "merge"
	actionAssign = "assign"
	actionLabel  = "label"
)

// clusterSnapshot captures one cluster row plus its similarity scores so undo
// can restore it exactly.
type clusterSnapshot struct {
	ID      int64             `json:"id"`
	Group   string            `json:"group"`
	Quality float64           `json:"quality"`
	Similar map[int64]float64 `json:"similar,omitempty"`
}

// descendantPair links a consumed parent cluster to a created child cluster
// in journal payloads.
type descendantPair struct {
	Parent int64 `json:"parent"`
	Child  int64 `json:"child"`
}

// labelChange records a group relabel so it can be walked in both directions.
type labelChange struct {
	Cluster int64  `json:"cluster"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// actionRecord is the JSON payload journaled for every mutation. Merge and
// assign actions carry full row snapshots of the consumed and created
// clusters; label actions carry the before and after group.
type actionRecord struct {
	Kind        string            `json:"kind"`
	Descendants []descendantPair  `json:"descendants,omitempty"`
	Removed     []clusterSnapshot `json:"removed,omitempty"`
	Created     []clusterSnapshot `json:"created,omitempty"`
	Label       *labelChange      `json:"label,omitempty"`
}

// forwardUpdate builds the wizard event for applying this action.
func (r actionRecord) forwardUpdate(history wizard.HistoryKind) *wizard.ClusterUpdate {
	switch r.Kind {
	case actionMerge, actionAssign:
		description := wizard.UpdateMerge
		if r.Kind == actionAssign {
			description = wizard.UpdateAssign
		}
		return &wizard.ClusterUpdate{
			Description: description,
			Added:       snapshotIDs(r.Created),
			Deleted:     snapshotIDs(r.Removed),
			Descendants: wizardDescendants(r.Descendants, false),
			History:     history,
		}
	case actionLabel:
		return &wizard.ClusterUpdate{
			Description:     wizard.UpdateMetadataGroup,
			MetadataChanged: []wizard.ClusterID{wizard.ClusterID(r.Label.Cluster)},
			MetadataValue:   wizard.Group(r.Label.To),
			History:         history,
		}
	}
	return nil
}

// inverseUpdate builds the wizard event for rolling this action back. Created
// and removed clusters trade places and each descendant pair flips, so the
// restored clusters re-enter the best list at the positions of the clusters
// they replace.
func (r actionRecord) inverseUpdate() *wizard.ClusterUpdate {
	switch r.Kind {
	case actionMerge, actionAssign:
		description := wizard.UpdateMerge
		if r.Kind == actionAssign {
			description = wizard.UpdateAssign
		}
		return &wizard.ClusterUpdate{
			Description: description,
			Added:       snapshotIDs(r.Removed),
			Deleted:     snapshotIDs(r.Created),
			Descendants: wizardDescendants(r.Descendants, true),
			History:     wizard.HistoryUndo,
		}
	case actionLabel:
		return &wizard.ClusterUpdate{
			Description:     wizard.UpdateMetadataGroup,
			MetadataChanged: []wizard.ClusterID{wizard.ClusterID(r.Label.Cluster)},
			MetadataValue:   wizard.Group(r.Label.From),
			History:         wizard.HistoryUndo,
		}
	}
	return nil
}

func snapshotIDs(snapshots []clusterSnapshot) []wizard.ClusterID {
	if len(snapshots) == 0 {
		return nil
	}
	ids := make([]wizard.ClusterID, 0, len(snapshots))
	for _, snapshot := range snapshots {
		ids = append(ids, wizard.ClusterID(snapshot.ID))
	}
	return ids
}

func wizardDescendants(pairs []descendantPair, flip bool) []wizard.Descendant {
	if len(pairs) == 0 {
		return nil
	}
	descendants := make([]wizard.Descendant, 0, len(pairs))
	for _, p := range pairs {
		if flip {
			descendants = append(descendants, wizard.Descendant{Parent: wizard.ClusterID(p.Child), Child: wizard.ClusterID(p.Parent)})
		} else {
			descendants = append(descendants, wizard.Descendant{Parent: wizard.ClusterID(p.Parent), Child: wizard.ClusterID(p.Child)})
		}
	}
	return descendants
}

// SetGroup relabels a cluster and journals the change.
func (s *Store) SetGroup(ctx context.Context, id wizard.ClusterID, group wizard.Group) (*wizard.ClusterUpdate, error) {
	canonical, ok := wizard.ParseGroup(string(group))
	if !ok {
		return nil, fmt.Errorf("group %q: %w", group, ErrUnknownGroup)
	}

	var record actionRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT grp FROM clusters WHERE cluster_id = ?`, int64(id)).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("cluster %d: %w", id, ErrUnknownCluster)
		}
		if err != nil {
			return fmt.Errorf("load cluster %d: %w", id, err)
		}

		now := nowTimestamp()
		if _, err := tx.ExecContext(ctx,
			`UPDATE clusters SET grp = ?, updated_at = ? WHERE cluster_id = ?`,
			string(canonical), now, int64(id),
		); err != nil {
			return fmt.Errorf("update group: %w", err)
		}

		record = actionRecord{
			Kind:  actionLabel,
			Label: &labelChange{Cluster: int64(id), From: current, To: string(canonical)},
		}
		return journalTx(ctx, tx, record, now)
	})
	if err != nil {
		return nil, err
	}
	return record.forwardUpdate(wizard.HistoryNone), nil
}

// Merge combines two or more clusters into one fresh cluster and journals the
// action. The merged cluster takes the next free id, the first parent's
// group, the parents' maximum quality, and for every other cluster the
// maximum similarity any parent had with it. Parents are consumed.
func (s *Store) Merge(ctx context.Context, ids []wizard.ClusterID) (*wizard.ClusterUpdate, error) {
	if len(ids) < 2 {
		return nil, errors.New("merge requires at least two clusters")
	}

	var record actionRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		parents, err := snapshotClustersTx(ctx, tx, ids)
		if err != nil {
			return err
		}
		newID, err := nextClusterIDTx(ctx, tx)
		if err != nil {
			return err
		}

		child := clusterSnapshot{
			ID:      newID,
			Group:   parents[0].Group,
			Quality: maxQuality(parents),
			Similar: inheritedSimilarity(parents, idSet(ids)),
		}
		pairs := make([]descendantPair, 0, len(parents))
		for _, parent := range parents {
			pairs = append(pairs, descendantPair{Parent: parent.ID, Child: newID})
		}
		record = actionRecord{
			Kind:        actionMerge,
			Descendants: pairs,
			Removed:     parents,
			Created:     []clusterSnapshot{child},
		}

		now := nowTimestamp()
		if err := removeClustersTx(ctx, tx, record.Removed); err != nil {
			return err
		}
		if err := insertClustersTx(ctx, tx, record.Created, now); err != nil {
			return err
		}
		return journalTx(ctx, tx, record, now)
	})
	if err != nil {
		return nil, err
	}
	return record.forwardUpdate(wizard.HistoryNone), nil
}

// Split consumes the listed clusters and reassigns their spikes to fresh
// clusters. Each child takes the first parent's group, the parents' maximum
// quality, and the parents' maximum similarity per other cluster; children
// carry no similarity with each other until scores are recomputed.
func (s *Store) Split(ctx context.Context, ids []wizard.ClusterID, into int) (*wizard.ClusterUpdate, error) {
	if len(ids) == 0 {
		return nil, errors.New("split requires at least one cluster")
	}
	if into < 2 {
		return nil, errors.New("split requires at least two result clusters")
	}

	var record actionRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		parents, err := snapshotClustersTx(ctx, tx, ids)
		if err != nil {
			return err
		}
		base, err := nextClusterIDTx(ctx, tx)
		if err != nil {
			return err
		}

		quality := maxQuality(parents)
		similar := inheritedSimilarity(parents, idSet(ids))
		created := make([]clusterSnapshot, 0, into)
		pairs := make([]descendantPair, 0, into*len(parents))
		for i := 0; i < into; i++ {
			child := clusterSnapshot{
				ID:      base + int64(i),
				Group:   parents[0].Group,
				Quality: quality,
				Similar: maps.Clone(similar),
			}
			created = append(created, child)
			for _, parent := range parents {
				pairs = append(pairs, descendantPair{Parent: parent.ID, Child: child.ID})
			}
		}
		record = actionRecord{
			Kind:        actionAssign,
			Descendants: pairs,
			Removed:     parents,
			Created:     created,
		}

		now := nowTimestamp()
		if err := removeClustersTx(ctx, tx, record.Removed); err != nil {
			return err
		}
		if err := insertClustersTx(ctx, tx, record.Created, now); err != nil {
			return err
		}
		return journalTx(ctx, tx, record, now)
	})
	if err != nil {
		return nil, err
	}
	return record.forwardUpdate(wizard.HistoryNone), nil
}

// Undo rolls the session back one journaled action and returns the inverse
// event for the wizard.
func (s *Store) Undo(ctx context.Context) (*wizard.ClusterUpdate, error) {
	var record actionRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		cursor, err := actionCursorTx(ctx, tx)
		if err != nil {
			return err
		}
		if cursor == 0 {
			return ErrNothingToUndo
		}
		record, err = actionAtTx(ctx, tx, cursor)
		if err != nil {
			return err
		}

		now := nowTimestamp()
		switch record.Kind {
		case actionMerge, actionAssign:
			if err := removeClustersTx(ctx, tx, record.Created); err != nil {
				return err
			}
			if err := insertClustersTx(ctx, tx, record.Removed, now); err != nil {
				return err
			}
		case actionLabel:
			if record.Label == nil {
				return fmt.Errorf("label action %d has no payload", cursor)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE clusters SET grp = ?, updated_at = ? WHERE cluster_id = ?`,
				record.Label.From, now, record.Label.Cluster,
			); err != nil {
				return fmt.Errorf("restore group: %w", err)
			}
		default:
			return fmt.Errorf("unknown action kind %q at seq %d", record.Kind, cursor)
		}

		var prev int64
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM actions WHERE seq < ?`, cursor).Scan(&prev); err != nil {
			return fmt.Errorf("previous action: %w", err)
		}
		return setActionCursorTx(ctx, tx, prev, now)
	})
	if err != nil {
		return nil, err
	}
	return record.inverseUpdate(), nil
}

// Redo replays the next undone action and returns its event for the wizard.
func (s *Store) Redo(ctx context.Context) (*wizard.ClusterUpdate, error) {
	var record actionRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		cursor, err := actionCursorTx(ctx, tx)
		if err != nil {
			return err
		}
		var next sql.NullInt64
		if err := tx.QueryRowContext(ctx, `SELECT MIN(seq) FROM actions WHERE seq > ?`, cursor).Scan(&next); err != nil {
			return fmt.Errorf("next action: %w", err)
		}
		if !next.Valid {
			return ErrNothingToRedo
		}
		record, err = actionAtTx(ctx, tx, next.Int64)
		if err != nil {
			return err
		}

		now := nowTimestamp()
		switch record.Kind {
		case actionMerge, actionAssign:
			if err := removeClustersTx(ctx, tx, record.Removed); err != nil {
				return err
			}
			if err := insertClustersTx(ctx, tx, record.Created, now); err != nil {
				return err
			}
		case actionLabel:
			if record.Label == nil {
				return fmt.Errorf("label action %d has no payload", next.Int64)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE clusters SET grp = ?, updated_at = ? WHERE cluster_id = ?`,
				record.Label.To, now, record.Label.Cluster,
			); err != nil {
				return fmt.Errorf("reapply group: %w", err)
			}
		default:
			return fmt.Errorf("unknown action kind %q at seq %d", record.Kind, next.Int64)
		}

		return setActionCursorTx(ctx, tx, next.Int64, now)
	})
	if err != nil {
		return nil, err
	}
	return record.forwardUpdate(wizard.HistoryRedo), nil
}

// journalTx truncates the redo tail, appends the record, and moves the cursor
// onto it.
func journalTx(ctx context.Context, tx *sql.Tx, record actionRecord, now string) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode action payload: %w", err)
	}
	cursor, err := actionCursorTx(ctx, tx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM actions WHERE seq > ?`, cursor); err != nil {
		return fmt.Errorf("truncate redo tail: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO actions (kind, payload, created_at) VALUES (?, ?, ?)`,
		record.Kind, string(payload), now,
	)
	if err != nil {
		return fmt.Errorf("journal action: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("action seq: %w", err)
	}
	return setActionCursorTx(ctx, tx, seq, now)
}

func actionCursorTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	var cursor int64
	err := tx.QueryRowContext(ctx, `SELECT action_cursor FROM session_info WHERE id = 1`).Scan(&cursor)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("read action cursor: %w", err)
	}
	return cursor, nil
}

func setActionCursorTx(ctx context.Context, tx *sql.Tx, cursor int64, now string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE session_info SET action_cursor = ?, updated_at = ? WHERE id = 1`,
		cursor, now,
	); err != nil {
		return fmt.Errorf("move action cursor: %w", err)
	}
	return nil
}

func actionAtTx(ctx context.Context, tx *sql.Tx, seq int64) (actionRecord, error) {
	var payload string
	err := tx.QueryRowContext(ctx, `SELECT payload FROM actions WHERE seq = ?`, seq).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return actionRecord{}, fmt.Errorf("action %d missing from journal", seq)
	}
	if err != nil {
		return actionRecord{}, fmt.Errorf("load action %d: %w", seq, err)
	}
	var record actionRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return actionRecord{}, fmt.Errorf("decode action %d: %w", seq, err)
	}
	return record, nil
}

// snapshotClustersTx loads full row snapshots for ids in argument order.
func snapshotClustersTx(ctx context.Context, tx *sql.Tx, ids []wizard.ClusterID) ([]clusterSnapshot, error) {
	snapshots := make([]clusterSnapshot, 0, len(ids))
	seen := make(map[wizard.ClusterID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("cluster %d listed twice", id)
		}
		seen[id] = struct{}{}

		var (
			group   string
			quality float64
		)
		err := tx.QueryRowContext(ctx, `SELECT grp, quality FROM clusters WHERE cluster_id = ?`, int64(id)).Scan(&group, &quality)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cluster %d: %w", id, ErrUnknownCluster)
		}
		if err != nil {
			return nil, fmt.Errorf("load cluster %d: %w", id, err)
		}
		similar, err := similarityRowsTx(ctx, tx, int64(id))
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, clusterSnapshot{ID: int64(id), Group: group, Quality: quality, Similar: similar})
	}
	return snapshots, nil
}

func similarityRowsTx(ctx context.Context, tx *sql.Tx, id int64) (map[int64]float64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT cluster_a, cluster_b, score FROM similarities WHERE cluster_a = ? OR cluster_b = ?`, id, id)
	if err != nil {
		return nil, fmt.Errorf("load similarities for %d: %w", id, err)
	}
	defer rows.Close()

	var similar map[int64]float64
	for rows.Next() {
		var (
			a, b  int64
			score float64
		)
		if err := rows.Scan(&a, &b, &score); err != nil {
			return nil, fmt.Errorf("scan similarity: %w", err)
		}
		other := b
		if other == id {
			other = a
		}
		if similar == nil {
			similar = make(map[int64]float64)
		}
		similar[other] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similarities: %w", err)
	}
	return similar, nil
}

func nextClusterIDTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(cluster_id), 0) + 1 FROM clusters`).Scan(&next); err != nil {
		return 0, fmt.Errorf("next cluster id: %w", err)
	}
	return next, nil
}

func maxQuality(snapshots []clusterSnapshot) float64 {
	quality := snapshots[0].Quality
	for _, snapshot := range snapshots[1:] {
		if snapshot.Quality > quality {
			quality = snapshot.Quality
		}
	}
	return quality
}

// inheritedSimilarity folds the parents' similarity rows into one map,
// keeping the maximum score per other cluster and dropping scores between
// the parents themselves.
func inheritedSimilarity(parents []clusterSnapshot, parentIDs map[int64]struct{}) map[int64]float64 {
	var inherited map[int64]float64
	for _, parent := range parents {
		for other, score := range parent.Similar {
			if _, isParent := parentIDs[other]; isParent {
				continue
			}
			if inherited == nil {
				inherited = make(map[int64]float64)
			}
			if existing, ok := inherited[other]; !ok || score > existing {
				inherited[other] = score
			}
		}
	}
	return inherited
}

func removeClustersTx(ctx context.Context, tx *sql.Tx, snapshots []clusterSnapshot) error {
	for _, snapshot := range snapshots {
		if _, err := tx.ExecContext(ctx, `DELETE FROM clusters WHERE cluster_id = ?`, snapshot.ID); err != nil {
			return fmt.Errorf("delete cluster %d: %w", snapshot.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM similarities WHERE cluster_a = ? OR cluster_b = ?`, snapshot.ID, snapshot.ID,
		); err != nil {
			return fmt.Errorf("delete similarities for %d: %w", snapshot.ID, err)
		}
	}
	return nil
}

func insertClustersTx(ctx context.Context, tx *sql.Tx, snapshots []clusterSnapshot, now string) error {
	for _, snapshot := range snapshots {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO clusters (cluster_id, grp, quality, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			snapshot.ID, snapshot.Group, snapshot.Quality, now, now,
		); err != nil {
			return fmt.Errorf("insert cluster %d: %w", snapshot.ID, err)
		}
		for other, score := range snapshot.Similar {
			if err := insertSimilarityTx(ctx, tx, snapshot.ID, other, score); err != nil {
				return err
			}
		}
	}
	return nil
}

// insertSimilarityTx stores a pair score in canonical orientation. Restoring
// both sides of a pair writes the same row twice, so replacement keeps that
// idempotent.
func insertSimilarityTx(ctx context.Context, tx *sql.Tx, a, b int64, score float64) error {
	if a == b {
		return nil
	}
	if a > b {
		a, b = b, a
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO similarities (cluster_a, cluster_b, score) VALUES (?, ?, ?)`,
		a, b, score,
	); err != nil {
		return fmt.Errorf("insert similarity (%d, %d): %w", a, b, err)
	}
	return nil
}

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/KnierimLab/phy/internal/wizard"
)

// Clusters returns every cluster row ordered by id.
func (s *Store) Clusters(ctx context.Context) ([]*Cluster, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+clusterColumns+` FROM clusters ORDER BY cluster_id`)
	if err != nil {
		return nil, fmt.Errorf("query clusters: %w", err)
	}
	defer rows.Close()

	var clusters []*Cluster
	for rows.Next() {
		cluster, err := scanCluster(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cluster: %w", err)
		}
		clusters = append(clusters, cluster)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clusters: %w", err)
	}
	return clusters, nil
}

// ClusterByID returns a single cluster row.
func (s *Store) ClusterByID(ctx context.Context, id wizard.ClusterID) (*Cluster, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+clusterColumns+` FROM clusters WHERE cluster_id = ?`, int64(id))
	cluster, err := scanCluster(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cluster %d: %w", id, ErrUnknownCluster)
	}
	if err != nil {
		return nil, fmt.Errorf("query cluster %d: %w", id, err)
	}
	return cluster, nil
}

// GroupMap returns every cluster id mapped to its current group.
func (s *Store) GroupMap(ctx context.Context) (map[wizard.ClusterID]wizard.Group, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT cluster_id, grp FROM clusters`)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	groups := make(map[wizard.ClusterID]wizard.Group)
	for rows.Next() {
		var (
			id    int64
			group string
		)
		if err := rows.Scan(&id, &group); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups[wizard.ClusterID(id)] = wizard.Group(group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}

// QualityMap returns every cluster id mapped to its quality score.
func (s *Store) QualityMap(ctx context.Context) (map[wizard.ClusterID]float64, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT cluster_id, quality FROM clusters`)
	if err != nil {
		return nil, fmt.Errorf("query qualities: %w", err)
	}
	defer rows.Close()

	qualities := make(map[wizard.ClusterID]float64)
	for rows.Next() {
		var (
			id      int64
			quality float64
		)
		if err := rows.Scan(&id, &quality); err != nil {
			return nil, fmt.Errorf("scan quality: %w", err)
		}
		qualities[wizard.ClusterID(id)] = quality
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate qualities: %w", err)
	}
	return qualities, nil
}

// SimilarityScores returns every stored pair score in canonical orientation.
func (s *Store) SimilarityScores(ctx context.Context) ([]SimilarityScore, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT cluster_a, cluster_b, score FROM similarities ORDER BY cluster_a, cluster_b`)
	if err != nil {
		return nil, fmt.Errorf("query similarities: %w", err)
	}
	defer rows.Close()

	var scores []SimilarityScore
	for rows.Next() {
		var (
			a, b  int64
			score float64
		)
		if err := rows.Scan(&a, &b, &score); err != nil {
			return nil, fmt.Errorf("scan similarity: %w", err)
		}
		scores = append(scores, SimilarityScore{A: wizard.ClusterID(a), B: wizard.ClusterID(b), Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similarities: %w", err)
	}
	return scores, nil
}

// GroupCounts returns the number of clusters per group.
func (s *Store) GroupCounts(ctx context.Context) (map[wizard.Group]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT grp, COUNT(1) FROM clusters GROUP BY grp`)
	if err != nil {
		return nil, fmt.Errorf("query group counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[wizard.Group]int)
	for rows.Next() {
		var (
			group string
			count int
		)
		if err := rows.Scan(&group, &count); err != nil {
			return nil, fmt.Errorf("scan group count: %w", err)
		}
		counts[wizard.Group(group)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group counts: %w", err)
	}
	return counts, nil
}

// Info returns the imported session metadata. ErrNoSession is returned when
// no snapshot has been imported yet.
func (s *Store) Info(ctx context.Context) (*Info, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, name, source_path, action_cursor, created_at, updated_at FROM session_info WHERE id = 1`)

	var (
		info    Info
		created string
		updated string
	)
	err := row.Scan(&info.SessionID, &info.Name, &info.SourcePath, &info.ActionCursor, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("query session info: %w", err)
	}
	if ts, err := parseTimeString(created); err == nil {
		info.CreatedAt = ts
	}
	if ts, err := parseTimeString(updated); err == nil {
		info.UpdatedAt = ts
	}
	return &info, nil
}

// ActionCounts reports journal entries on either side of the cursor.
func (s *Store) ActionCounts(ctx context.Context) (ActionCounts, error) {
	ctx = ensureContext(ctx)
	info, err := s.Info(ctx)
	if err != nil {
		return ActionCounts{}, err
	}

	var counts ActionCounts
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM actions WHERE seq <= ?`, info.ActionCursor)
	if err := row.Scan(&counts.Undoable); err != nil {
		return ActionCounts{}, fmt.Errorf("count undoable actions: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM actions WHERE seq > ?`, info.ActionCursor)
	if err := row.Scan(&counts.Redoable); err != nil {
		return ActionCounts{}, fmt.Errorf("count redoable actions: %w", err)
	}
	return counts, nil
}

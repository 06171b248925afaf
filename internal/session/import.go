package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/KnierimLab/phy/internal/wizard"
)

// Snapshot is the interchange document imported into a session database. It
// carries the cluster set exported by a spike sorter: per-cluster group and
// quality, plus pairwise similarity scores.
type Snapshot struct {
	Name       string            `json:"name,omitempty"`
	Clusters   []SnapshotCluster `json:"clusters"`
	Similarity []SnapshotScore   `json:"similarity,omitempty"`
}

// SnapshotCluster is one cluster entry in a snapshot document. An empty
// group means unsorted; a missing quality means zero.
type SnapshotCluster struct {
	ID      int64   `json:"id"`
	Group   string  `json:"group,omitempty"`
	Quality float64 `json:"quality,omitempty"`
}

// SnapshotScore is one undirected similarity entry in a snapshot document.
type SnapshotScore struct {
	A     int64   `json:"a"`
	B     int64   `json:"b"`
	Score float64 `json:"score"`
}

// Validate checks a snapshot for structural defects. All errors wrap
// ErrInvalidSnapshot.
func (snap *Snapshot) Validate() error {
	if snap == nil {
		return fmt.Errorf("%w: snapshot is nil", ErrInvalidSnapshot)
	}
	if len(snap.Clusters) == 0 {
		return fmt.Errorf("%w: snapshot has no clusters", ErrInvalidSnapshot)
	}

	known := make(map[int64]struct{}, len(snap.Clusters))
	for _, cluster := range snap.Clusters {
		if cluster.ID < 0 {
			return fmt.Errorf("%w: cluster id %d is negative", ErrInvalidSnapshot, cluster.ID)
		}
		if _, dup := known[cluster.ID]; dup {
			return fmt.Errorf("%w: duplicate cluster id %d", ErrInvalidSnapshot, cluster.ID)
		}
		known[cluster.ID] = struct{}{}
		if cluster.Group != "" {
			if _, ok := wizard.ParseGroup(cluster.Group); !ok {
				return fmt.Errorf("%w: cluster %d has unknown group %q", ErrInvalidSnapshot, cluster.ID, cluster.Group)
			}
		}
		if math.IsNaN(cluster.Quality) || math.IsInf(cluster.Quality, 0) {
			return fmt.Errorf("%w: cluster %d has non-finite quality", ErrInvalidSnapshot, cluster.ID)
		}
	}

	seenPairs := make(map[[2]int64]struct{}, len(snap.Similarity))
	for _, score := range snap.Similarity {
		if score.A == score.B {
			return fmt.Errorf("%w: similarity pair (%d, %d) is self-referential", ErrInvalidSnapshot, score.A, score.B)
		}
		if _, ok := known[score.A]; !ok {
			return fmt.Errorf("%w: similarity pair references unknown cluster %d", ErrInvalidSnapshot, score.A)
		}
		if _, ok := known[score.B]; !ok {
			return fmt.Errorf("%w: similarity pair references unknown cluster %d", ErrInvalidSnapshot, score.B)
		}
		if math.IsNaN(score.Score) || math.IsInf(score.Score, 0) {
			return fmt.Errorf("%w: similarity pair (%d, %d) has non-finite score", ErrInvalidSnapshot, score.A, score.B)
		}
		key := [2]int64{score.A, score.B}
		if score.A > score.B {
			key = [2]int64{score.B, score.A}
		}
		if _, dup := seenPairs[key]; dup {
			return fmt.Errorf("%w: duplicate similarity pair (%d, %d)", ErrInvalidSnapshot, key[0], key[1])
		}
		seenPairs[key] = struct{}{}
	}
	return nil
}

// ReadSnapshotFile parses and validates a snapshot document from disk.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ImportSnapshot replaces the stored session with the snapshot contents and
// resets the action journal. The sourcePath is recorded for reference and
// names the session when the snapshot itself carries no name.
func (s *Store) ImportSnapshot(ctx context.Context, snap *Snapshot, sourcePath string) (*Info, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(snap.Name)
	if name == "" && sourcePath != "" {
		base := filepath.Base(sourcePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if name == "" {
		name = "session"
	}

	now := nowTimestamp()
	info := &Info{
		SessionID:  uuid.NewString(),
		Name:       name,
		SourcePath: sourcePath,
	}
	if ts, err := parseTimeString(now); err == nil {
		info.CreatedAt = ts
		info.UpdatedAt = ts
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"actions", "similarities", "clusters", "session_info"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		for _, cluster := range snap.Clusters {
			group := wizard.GroupUnsorted
			if cluster.Group != "" {
				group, _ = wizard.ParseGroup(cluster.Group)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO clusters (cluster_id, grp, quality, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
				cluster.ID, string(group), cluster.Quality, now, now,
			); err != nil {
				return fmt.Errorf("insert cluster %d: %w", cluster.ID, err)
			}
		}

		for _, score := range snap.Similarity {
			if err := insertSimilarityTx(ctx, tx, score.A, score.B, score.Score); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_info (id, session_id, name, source_path, action_cursor, created_at, updated_at)
			 VALUES (1, ?, ?, ?, 0, ?, ?)`,
			info.SessionID, info.Name, info.SourcePath, now, now,
		); err != nil {
			return fmt.Errorf("record session info: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

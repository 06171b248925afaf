package session

import (
	"errors"
	"time"

	"github.com/KnierimLab/phy/internal/wizard"
)

const clusterColumns = `cluster_id, grp, quality, created_at, updated_at`

func scanCluster(scanner interface{ Scan(dest ...any) error }) (*Cluster, error) {
	var (
		id      int64
		group   string
		quality float64
		created string
		updated string
	)
	if err := scanner.Scan(&id, &group, &quality, &created, &updated); err != nil {
		return nil, err
	}

	cluster := &Cluster{
		ID:      wizard.ClusterID(id),
		Group:   wizard.Group(group),
		Quality: quality,
	}
	if ts, err := parseTimeString(created); err == nil {
		cluster.CreatedAt = ts
	}
	if ts, err := parseTimeString(updated); err == nil {
		cluster.UpdatedAt = ts
	}
	return cluster, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func idSet(ids []wizard.ClusterID) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[int64(id)] = struct{}{}
	}
	return set
}

package session

import (
	"time"

	"github.com/KnierimLab/phy/internal/wizard"
)

// Cluster is one row of the clusters table.
type Cluster struct {
	ID        wizard.ClusterID
	Group     wizard.Group
	Quality   float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SimilarityScore is one scored cluster pair. Pairs are stored once in
// canonical orientation (A < B) and treated as undirected.
type SimilarityScore struct {
	A     wizard.ClusterID
	B     wizard.ClusterID
	Score float64
}

// Info describes the imported session and the journal cursor position.
// ActionCursor is the sequence number of the last applied action, zero when
// nothing has been applied.
type Info struct {
	SessionID    string
	Name         string
	SourcePath   string
	ActionCursor int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ActionCounts reports how many journaled actions sit on either side of the
// cursor: Undoable actions have been applied, Redoable actions were undone
// and can be replayed.
type ActionCounts struct {
	Undoable int
	Redoable int
}

// DatabaseHealth captures the results of a session database health check.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalClusters    int
	Error            string
}

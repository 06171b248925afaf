package ipc

// Move steps accepted by the Move RPC.
const (
	StepNext          = "next"
	StepPrevious      = "previous"
	StepNextBest      = "next-best"
	StepPreviousBest  = "previous-best"
	StepNextMatch     = "next-match"
	StepPreviousMatch = "previous-match"
	StepFirst         = "first"
	StepLast          = "last"
)

// Panel is the review state returned after wizard operations.
type Panel struct {
	Best            int64   `json:"best"`
	BestGroup       string  `json:"best_group"`
	BestQuality     float64 `json:"best_quality"`
	Match           int64   `json:"match"`
	MatchGroup      string  `json:"match_group"`
	MatchQuality    float64 `json:"match_quality"`
	Pinned          bool    `json:"pinned"`
	Finished        bool    `json:"finished"`
	BestList        []int64 `json:"best_list"`
	MatchList       []int64 `json:"match_list"`
	BestProgress    int     `json:"best_progress"`
	LabeledProgress int     `json:"labeled_progress"`
	Undoable        int     `json:"undoable"`
	Redoable        int     `json:"redoable"`
}

// SessionSummary describes the imported session and its journal counters.
type SessionSummary struct {
	SessionID   string         `json:"session_id"`
	Name        string         `json:"name"`
	SourcePath  string         `json:"source_path"`
	Clusters    int            `json:"clusters"`
	GroupCounts map[string]int `json:"group_counts"`
	Undoable    int            `json:"undoable"`
	Redoable    int            `json:"redoable"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// ClusterInfo is one row of the cluster listing.
type ClusterInfo struct {
	ID      int64   `json:"id"`
	Group   string  `json:"group"`
	Quality float64 `json:"quality"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon/session status information.
type StatusResponse struct {
	Running  bool            `json:"running"`
	PID      int             `json:"pid"`
	DBPath   string          `json:"db_path"`
	LockPath string          `json:"lock_path"`
	LogPath  string          `json:"log_path"`
	Session  *SessionSummary `json:"session"`
	Panel    *Panel          `json:"panel"`
}

// SessionImportRequest loads a snapshot file into the store.
type SessionImportRequest struct {
	Path string `json:"path"`
}

// SessionImportResponse reports the imported session and the opening panel.
type SessionImportResponse struct {
	Session SessionSummary `json:"session"`
	Panel   *Panel         `json:"panel"`
}

// SessionInfoRequest fetches the loaded session description.
type SessionInfoRequest struct{}

// SessionInfoResponse describes the loaded session.
type SessionInfoResponse struct {
	Session SessionSummary `json:"session"`
}

// StartReviewRequest recomputes the review ordering from current groups.
type StartReviewRequest struct{}

// StartReviewResponse returns the panel after the restart.
type StartReviewResponse struct {
	Panel *Panel `json:"panel"`
}

// PinRequest pins a cluster as the merge reference. A negative cluster pins
// the current best.
type PinRequest struct {
	Cluster int64 `json:"cluster"`
}

// PinResponse returns the panel after pinning.
type PinResponse struct {
	Panel *Panel `json:"panel"`
}

// UnpinRequest clears the match selection.
type UnpinRequest struct{}

// UnpinResponse returns the panel after unpinning.
type UnpinResponse struct {
	Panel *Panel `json:"panel"`
}

// MoveRequest advances or rewinds the selection by one step.
type MoveRequest struct {
	Step string `json:"step"`
}

// MoveResponse returns the panel after the move.
type MoveResponse struct {
	Panel *Panel `json:"panel"`
}

// LabelRequest assigns a group to a cluster. A negative cluster targets the
// current match when pinned, otherwise the current best.
type LabelRequest struct {
	Cluster int64  `json:"cluster"`
	Group   string `json:"group"`
}

// LabelResponse reports which cluster was labeled and the panel after the
// selection advanced past it.
type LabelResponse struct {
	Cluster int64  `json:"cluster"`
	Group   string `json:"group"`
	Panel   *Panel `json:"panel"`
}

// MergeRequest merges clusters. An empty list merges the current selection.
type MergeRequest struct {
	Clusters []int64 `json:"clusters"`
}

// MergeResponse reports the created and consumed clusters.
type MergeResponse struct {
	Created []int64 `json:"created"`
	Removed []int64 `json:"removed"`
	Panel   *Panel  `json:"panel"`
}

// SplitRequest splits clusters into the requested number of children. An
// empty list splits the current selection.
type SplitRequest struct {
	Clusters []int64 `json:"clusters"`
	Into     int     `json:"into"`
}

// SplitResponse reports the created and consumed clusters.
type SplitResponse struct {
	Created []int64 `json:"created"`
	Removed []int64 `json:"removed"`
	Panel   *Panel  `json:"panel"`
}

// UndoRequest reverts the most recent clustering action.
type UndoRequest struct{}

// UndoResponse names the undone action.
type UndoResponse struct {
	Action string `json:"action"`
	Panel  *Panel `json:"panel"`
}

// RedoRequest replays the most recently undone clustering action.
type RedoRequest struct{}

// RedoResponse names the redone action.
type RedoResponse struct {
	Action string `json:"action"`
	Panel  *Panel `json:"panel"`
}

// ClustersRequest lists session clusters, optionally filtered by group.
type ClustersRequest struct {
	Groups []string `json:"groups"`
}

// ClustersResponse contains cluster listing rows.
type ClustersResponse struct {
	Clusters []ClusterInfo `json:"clusters"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// DatabaseHealthRequest fetches detailed database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse reports database health information.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	SchemaVersion    string   `json:"schema_version"`
	TableExists      bool     `json:"table_exists"`
	ColumnsPresent   []string `json:"columns_present"`
	MissingColumns   []string `json:"missing_columns"`
	IntegrityCheck   bool     `json:"integrity_check"`
	TotalClusters    int      `json:"total_clusters"`
	Error            string   `json:"error"`
}

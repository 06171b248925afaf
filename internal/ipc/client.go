package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Phy.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionImport loads a snapshot file into the daemon's store.
func (c *Client) SessionImport(path string) (*SessionImportResponse, error) {
	var resp SessionImportResponse
	if err := c.client.Call("Phy.SessionImport", SessionImportRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionInfo describes the loaded session.
func (c *Client) SessionInfo() (*SessionInfoResponse, error) {
	var resp SessionInfoResponse
	if err := c.client.Call("Phy.SessionInfo", SessionInfoRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartReview recomputes the review ordering from current groups.
func (c *Client) StartReview() (*StartReviewResponse, error) {
	var resp StartReviewResponse
	if err := c.client.Call("Phy.StartReview", StartReviewRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pin pins a cluster as the merge reference. A negative cluster pins the
// current best.
func (c *Client) Pin(cluster int64) (*PinResponse, error) {
	var resp PinResponse
	if err := c.client.Call("Phy.Pin", PinRequest{Cluster: cluster}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Unpin clears the match selection.
func (c *Client) Unpin() (*UnpinResponse, error) {
	var resp UnpinResponse
	if err := c.client.Call("Phy.Unpin", UnpinRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Move advances or rewinds the selection by one step.
func (c *Client) Move(step string) (*MoveResponse, error) {
	var resp MoveResponse
	if err := c.client.Call("Phy.Move", MoveRequest{Step: step}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Label assigns a group to a cluster. A negative cluster targets the current
// match when pinned, otherwise the current best.
func (c *Client) Label(cluster int64, group string) (*LabelResponse, error) {
	var resp LabelResponse
	if err := c.client.Call("Phy.Label", LabelRequest{Cluster: cluster, Group: group}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Merge merges clusters. An empty list merges the current selection.
func (c *Client) Merge(clusters []int64) (*MergeResponse, error) {
	var resp MergeResponse
	if err := c.client.Call("Phy.Merge", MergeRequest{Clusters: clusters}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Split splits clusters into the requested number of children. An empty
// list splits the current selection.
func (c *Client) Split(clusters []int64, into int) (*SplitResponse, error) {
	var resp SplitResponse
	if err := c.client.Call("Phy.Split", SplitRequest{Clusters: clusters, Into: into}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Undo reverts the most recent clustering action.
func (c *Client) Undo() (*UndoResponse, error) {
	var resp UndoResponse
	if err := c.client.Call("Phy.Undo", UndoRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Redo replays the most recently undone clustering action.
func (c *Client) Redo() (*RedoResponse, error) {
	var resp RedoResponse
	if err := c.client.Call("Phy.Redo", RedoRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Clusters lists session clusters, optionally filtered by group.
func (c *Client) Clusters(groups []string) (*ClustersResponse, error) {
	var resp ClustersResponse
	if err := c.client.Call("Phy.Clusters", ClustersRequest{Groups: groups}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Phy.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call("Phy.DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"github.com/KnierimLab/phy/internal/daemon"
	"github.com/KnierimLab/phy/internal/logging"
	"github.com/KnierimLab/phy/internal/logs"
	"github.com/KnierimLab/phy/internal/wizard"
)

// Server exposes daemon review operations via JSON-RPC over a Unix domain
// socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Phy", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func clusterIDs64(ids []wizard.ClusterID) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func clusterIDsFromWire(ids []int64) []wizard.ClusterID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]wizard.ClusterID, len(ids))
	for i, id := range ids {
		out[i] = wizard.ClusterID(id)
	}
	return out
}

func panelDTO(p *daemon.Panel) *Panel {
	if p == nil {
		return nil
	}
	return &Panel{
		Best:            int64(p.Best),
		BestGroup:       string(p.BestGroup),
		BestQuality:     p.BestQuality,
		Match:           int64(p.Match),
		MatchGroup:      string(p.MatchGroup),
		MatchQuality:    p.MatchQuality,
		Pinned:          p.Pinned,
		Finished:        p.Finished,
		BestList:        clusterIDs64(p.BestList),
		MatchList:       clusterIDs64(p.MatchList),
		BestProgress:    p.BestProgress,
		LabeledProgress: p.LabeledProgress,
		Undoable:        p.Actions.Undoable,
		Redoable:        p.Actions.Redoable,
	}
}

func summaryDTO(s *daemon.SessionSummary) SessionSummary {
	if s == nil {
		return SessionSummary{}
	}
	out := SessionSummary{
		SessionID:  s.Info.SessionID,
		Name:       s.Info.Name,
		SourcePath: s.Info.SourcePath,
		Clusters:   s.Clusters,
		Undoable:   s.Actions.Undoable,
		Redoable:   s.Actions.Redoable,
		CreatedAt:  s.Info.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  s.Info.UpdatedAt.UTC().Format(time.RFC3339),
	}
	out.GroupCounts = make(map[string]int, len(s.GroupCounts))
	for group, n := range s.GroupCounts {
		out.GroupCounts[string(group)] = n
	}
	return out
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status, err := s.daemon.Status(s.ctx)
	if err != nil {
		return err
	}
	resp.Running = status.Running
	resp.PID = status.PID
	resp.DBPath = status.DBPath
	resp.LockPath = status.LockPath
	resp.LogPath = status.LogPath
	if status.Session != nil {
		summary := summaryDTO(status.Session)
		resp.Session = &summary
	}
	resp.Panel = panelDTO(status.Panel)
	return nil
}

func (s *service) SessionImport(req SessionImportRequest, resp *SessionImportResponse) error {
	if req.Path == "" {
		return errors.New("session import requires a snapshot path")
	}
	s.logger.Debug("session import requested", logging.String("path", req.Path))
	summary, err := s.daemon.ImportSession(s.ctx, req.Path)
	if err != nil {
		return err
	}
	resp.Session = summaryDTO(summary)
	panel, err := s.daemon.Panel(s.ctx)
	if err != nil {
		return err
	}
	resp.Panel = panelDTO(panel)
	return nil
}

func (s *service) SessionInfo(_ SessionInfoRequest, resp *SessionInfoResponse) error {
	summary, err := s.daemon.SessionInfo(s.ctx)
	if err != nil {
		return err
	}
	resp.Session = summaryDTO(summary)
	return nil
}

func (s *service) StartReview(_ StartReviewRequest, resp *StartReviewResponse) error {
	s.logger.Debug("review restart requested")
	panel, err := s.daemon.StartReview(s.ctx)
	if err != nil {
		return err
	}
	resp.Panel = panelDTO(panel)
	return nil
}

func (s *service) Pin(req PinRequest, resp *PinResponse) error {
	cluster := wizard.ClusterID(req.Cluster)
	if req.Cluster < 0 {
		cluster = wizard.NoCluster
	}
	panel, err := s.daemon.Pin(s.ctx, cluster)
	if err != nil {
		return err
	}
	resp.Panel = panelDTO(panel)
	return nil
}

func (s *service) Unpin(_ UnpinRequest, resp *UnpinResponse) error {
	panel, err := s.daemon.Unpin(s.ctx)
	if err != nil {
		return err
	}
	resp.Panel = panelDTO(panel)
	return nil
}

func (s *service) Move(req MoveRequest, resp *MoveResponse) error {
	var (
		panel *daemon.Panel
		err   error
	)
	switch req.Step {
	case StepNext:
		panel, err = s.daemon.Next(s.ctx)
	case StepPrevious:
		panel, err = s.daemon.Previous(s.ctx)
	case StepNextBest:
		panel, err = s.daemon.NextBest(s.ctx)
	case StepPreviousBest:
		panel, err = s.daemon.PreviousBest(s.ctx)
	case StepNextMatch:
		panel, err = s.daemon.NextMatch(s.ctx)
	case StepPreviousMatch:
		panel, err = s.daemon.PreviousMatch(s.ctx)
	case StepFirst:
		panel, err = s.daemon.First(s.ctx)
	case StepLast:
		panel, err = s.daemon.Last(s.ctx)
	default:
		return fmt.Errorf("unknown move step %q", req.Step)
	}
	if err != nil {
		return err
	}
	resp.Panel = panelDTO(panel)
	return nil
}

func (s *service) Label(req LabelRequest, resp *LabelResponse) error {
	cluster := wizard.ClusterID(req.Cluster)
	if req.Cluster < 0 {
		cluster = wizard.NoCluster
	}
	s.logger.Debug("label requested",
		logging.Int64(logging.FieldCluster, req.Cluster),
		logging.String("group", req.Group))
	res, err := s.daemon.Label(s.ctx, cluster, wizard.Group(req.Group))
	if err != nil {
		return err
	}
	if len(res.Update.MetadataChanged) > 0 {
		resp.Cluster = int64(res.Update.MetadataChanged[0])
	}
	resp.Group = string(res.Update.MetadataValue)
	resp.Panel = panelDTO(res.Panel)
	return nil
}

func (s *service) Merge(req MergeRequest, resp *MergeResponse) error {
	s.logger.Debug("merge requested", logging.Int("cluster_count", len(req.Clusters)))
	res, err := s.daemon.Merge(s.ctx, clusterIDsFromWire(req.Clusters))
	if err != nil {
		return err
	}
	resp.Created = clusterIDs64(res.Update.Added)
	resp.Removed = clusterIDs64(res.Update.Deleted)
	resp.Panel = panelDTO(res.Panel)
	return nil
}

func (s *service) Split(req SplitRequest, resp *SplitResponse) error {
	into := req.Into
	if into == 0 {
		into = 2
	}
	s.logger.Debug("split requested",
		logging.Int("cluster_count", len(req.Clusters)),
		logging.Int("into", into))
	res, err := s.daemon.Split(s.ctx, clusterIDsFromWire(req.Clusters), into)
	if err != nil {
		return err
	}
	resp.Created = clusterIDs64(res.Update.Added)
	resp.Removed = clusterIDs64(res.Update.Deleted)
	resp.Panel = panelDTO(res.Panel)
	return nil
}

func (s *service) Undo(_ UndoRequest, resp *UndoResponse) error {
	res, err := s.daemon.Undo(s.ctx)
	if err != nil {
		return err
	}
	resp.Action = string(res.Update.Description)
	resp.Panel = panelDTO(res.Panel)
	return nil
}

func (s *service) Redo(_ RedoRequest, resp *RedoResponse) error {
	res, err := s.daemon.Redo(s.ctx)
	if err != nil {
		return err
	}
	resp.Action = string(res.Update.Description)
	resp.Panel = panelDTO(res.Panel)
	return nil
}

func (s *service) Clusters(req ClustersRequest, resp *ClustersResponse) error {
	groups := make([]wizard.Group, 0, len(req.Groups))
	for _, value := range req.Groups {
		parsed, ok := wizard.ParseGroup(value)
		if !ok {
			return fmt.Errorf("group %q is not unsorted, good, or ignored", value)
		}
		groups = append(groups, parsed)
	}
	rows, err := s.daemon.Clusters(s.ctx, groups)
	if err != nil {
		return err
	}
	resp.Clusters = make([]ClusterInfo, 0, len(rows))
	for _, row := range rows {
		resp.Clusters = append(resp.Clusters, ClusterInfo{
			ID:      int64(row.ID),
			Group:   string(row.Group),
			Quality: row.Quality,
		})
	}
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	// An error with detail attached still produces a useful report; only a
	// bare failure aborts the call, since net/rpc drops the reply on error.
	health, err := s.daemon.DatabaseHealth(s.ctx)
	if err != nil && health.Error == "" {
		return err
	}
	resp.DBPath = health.DBPath
	resp.DatabaseExists = health.DatabaseExists
	resp.DatabaseReadable = health.DatabaseReadable
	resp.SchemaVersion = health.SchemaVersion
	resp.TableExists = health.TableExists
	resp.ColumnsPresent = append(resp.ColumnsPresent, health.ColumnsPresent...)
	resp.MissingColumns = append(resp.MissingColumns, health.MissingColumns...)
	resp.IntegrityCheck = health.IntegrityCheck
	resp.TotalClusters = health.TotalClusters
	resp.Error = health.Error
	return nil
}

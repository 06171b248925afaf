package daemon

import (
	"context"
	"errors"
	"os"

	"github.com/KnierimLab/phy/internal/session"
	"github.com/KnierimLab/phy/internal/wizard"
)

// Status represents daemon runtime information.
type Status struct {
	Running  bool
	PID      int
	DBPath   string
	LockPath string
	LogPath  string
	Session  *SessionSummary
	Panel    *Panel
}

// SessionSummary describes the loaded session together with group and
// journal counters.
type SessionSummary struct {
	Info        session.Info
	Clusters    int
	GroupCounts map[wizard.Group]int
	Actions     session.ActionCounts
}

// Panel is the review state shown after every wizard operation: the current
// best and match selections, the lists they come from, and progress through
// the session.
type Panel struct {
	Best            wizard.ClusterID
	BestGroup       wizard.Group
	BestQuality     float64
	Match           wizard.ClusterID
	MatchGroup      wizard.Group
	MatchQuality    float64
	Pinned          bool
	Finished        bool
	BestList        []wizard.ClusterID
	MatchList       []wizard.ClusterID
	BestProgress    int
	LabeledProgress int
	Actions         session.ActionCounts
}

// ActionResult pairs the cluster event produced by a clustering action with
// the panel state after the wizard absorbed it.
type ActionResult struct {
	Update *wizard.ClusterUpdate
	Panel  *Panel
}

// Status returns current daemon runtime information. A store without an
// imported session yields a status with nil Session and Panel.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	st := Status{
		Running:  d.running.Load(),
		PID:      os.Getpid(),
		DBPath:   d.store.Path(),
		LockPath: d.lockPath,
		LogPath:  d.logPath,
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	summary, err := d.sessionSummaryLocked(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return st, nil
	}
	if err != nil {
		return Status{}, err
	}
	st.Session = summary

	if d.wiz != nil {
		panel, err := d.panelLocked(ctx)
		if err != nil {
			return Status{}, err
		}
		st.Panel = panel
	}
	return st, nil
}

// Panel reports the current review state.
func (d *Daemon) Panel(ctx context.Context) (*Panel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.panelLocked(ctx)
}

func (d *Daemon) panelLocked(ctx context.Context) (*Panel, error) {
	if d.wiz == nil {
		return nil, session.ErrNoSession
	}
	actions, err := d.store.ActionCounts(ctx)
	if err != nil {
		return nil, err
	}

	w := d.wiz
	p := &Panel{
		Best:            w.Best(),
		Match:           w.Match(),
		Pinned:          w.Pinned(),
		Finished:        w.HasFinished(),
		BestList:        w.BestList(),
		MatchList:       w.MatchList(),
		BestProgress:    w.BestProgress(),
		LabeledProgress: w.LabeledProgress(),
		Actions:         actions,
	}
	if p.Best != wizard.NoCluster {
		p.BestGroup = w.GroupOf(p.Best)
		p.BestQuality = d.provider.Quality(p.Best)
	}
	if p.Match != wizard.NoCluster {
		p.MatchGroup = w.GroupOf(p.Match)
		p.MatchQuality = d.provider.Quality(p.Match)
	}
	return p, nil
}

func (d *Daemon) sessionSummaryLocked(ctx context.Context) (*SessionSummary, error) {
	info, err := d.store.Info(ctx)
	if err != nil {
		return nil, err
	}
	groupCounts, err := d.store.GroupCounts(ctx)
	if err != nil {
		return nil, err
	}
	actions, err := d.store.ActionCounts(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range groupCounts {
		total += n
	}
	return &SessionSummary{
		Info:        *info,
		Clusters:    total,
		GroupCounts: groupCounts,
		Actions:     actions,
	}, nil
}

func (d *Daemon) actionResultLocked(ctx context.Context, update *wizard.ClusterUpdate) (*ActionResult, error) {
	res := &ActionResult{Update: update}
	if d.wiz == nil {
		return res, nil
	}
	panel, err := d.panelLocked(ctx)
	if err != nil {
		return nil, err
	}
	res.Panel = panel
	return res, nil
}

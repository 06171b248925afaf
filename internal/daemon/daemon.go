package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"github.com/KnierimLab/phy/internal/config"
	"github.com/KnierimLab/phy/internal/logging"
	"github.com/KnierimLab/phy/internal/logs"
	"github.com/KnierimLab/phy/internal/scoring"
	"github.com/KnierimLab/phy/internal/session"
	"github.com/KnierimLab/phy/internal/wizard"
)

// Daemon owns the review session and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *session.Store
	provider *scoring.Provider
	logPath  string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	// mu serializes every wizard and store mutation; the wizard itself is
	// not safe for concurrent use.
	mu  sync.Mutex
	wiz *wizard.Wizard
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *session.Store, provider *scoring.Provider, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || provider == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, scoring provider, and logger")
	}

	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		provider: provider,
		logPath:  logs.CurrentLogPath(cfg.Paths.LogDir),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and restores review state for any session
// already present in the store.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another phy daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	d.mu.Lock()
	err = d.reloadLocked(d.ctx)
	d.mu.Unlock()
	switch {
	case errors.Is(err, session.ErrNoSession):
		d.logger.Info("no session imported yet; waiting for import")
	case err != nil:
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("restore session: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("phy daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop releases the daemon lock and halts request handling.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("phy daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether Start has completed without a matching Stop.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LogPath returns the path of the stable daemon log pointer.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// DatabaseHealth returns detailed session database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (session.DatabaseHealth, error) {
	if d.store == nil {
		return session.DatabaseHealth{}, errors.New("session store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// reloadLocked rebuilds the scoring provider and wizard from the store and
// starts the review at the top of the ordering. Callers hold d.mu.
func (d *Daemon) reloadLocked(ctx context.Context) error {
	if _, err := d.store.Info(ctx); err != nil {
		return err
	}
	if err := d.provider.Refresh(ctx); err != nil {
		return err
	}

	w := wizard.New(d.provider.Groups(), wizard.WithHistoryLimit(d.cfg.Wizard.HistoryLimit))
	w.SetQualityFunc(d.provider.Quality)
	w.SetSimilarityFunc(d.provider.Similarity)
	if err := w.Start(); err != nil {
		return fmt.Errorf("start review: %w", err)
	}
	d.wiz = w
	return nil
}

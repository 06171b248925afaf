package daemonctl_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/KnierimLab/phy/internal/daemonctl"
	"github.com/KnierimLab/phy/internal/testsupport"
)

func TestProcessInfoWithoutSocket(t *testing.T) {
	running, pid, err := daemonctl.ProcessInfo(filepath.Join(t.TempDir(), "phyd.sock"))
	if err != nil {
		t.Fatalf("ProcessInfo: %v", err)
	}
	if running || pid != 0 {
		t.Fatalf("expected offline daemon, got running=%v pid=%d", running, pid)
	}
}

func TestStopAndTerminateWhenNotRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := daemonctl.StopAndTerminate(cfg.Paths.SocketPath, cfg, time.Second); !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestForceKillRefusesCurrentProcess(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "phyd.pid")
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}
	if _, err := daemonctl.ForceKillProcess(pidPath, "", 0); err == nil {
		t.Fatal("expected refusal to kill current process")
	}
}

func TestForceKillWithoutPID(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "phyd.pid")
	if _, err := daemonctl.ForceKillProcess(pidPath, "", 0); err == nil {
		t.Fatal("expected error when pid cannot be determined")
	}
}

func TestDeriveRuntimeDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	if got := daemonctl.DeriveRuntimeDir("/run/phy/phyd.lock", "", nil); got != "/run/phy" {
		t.Fatalf("lock path should win, got %q", got)
	}
	if got := daemonctl.DeriveRuntimeDir("", "/var/lib/phy/session.db", nil); got != "/var/lib/phy" {
		t.Fatalf("db path fallback failed, got %q", got)
	}
	if got := daemonctl.DeriveRuntimeDir("", "", cfg); got != cfg.Paths.DataDir {
		t.Fatalf("config fallback failed, got %q", got)
	}
	if got := daemonctl.DeriveRuntimeDir("", "", nil); got != "" {
		t.Fatalf("expected empty dir without hints, got %q", got)
	}
}

func TestBuildStatusSnapshotOffline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.ImportSnapshot(t, store, testsupport.ReviewSnapshot())
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	status, err := daemonctl.BuildStatusSnapshot(context.Background(), cfg.Paths.SocketPath, cfg)
	if err != nil {
		t.Fatalf("BuildStatusSnapshot: %v", err)
	}
	if status.Running {
		t.Fatal("expected daemon to report offline")
	}
	if status.DBPath != cfg.DatabasePath() {
		t.Fatalf("unexpected db path %q", status.DBPath)
	}
	if status.LockPath != cfg.LockPath() {
		t.Fatalf("unexpected lock path %q", status.LockPath)
	}
	if status.Session == nil {
		t.Fatal("expected offline session summary")
	}
	if status.Session.Name != "probe-a" {
		t.Fatalf("unexpected session name %q", status.Session.Name)
	}
	if status.Session.Clusters != 7 {
		t.Fatalf("expected 7 clusters, got %d", status.Session.Clusters)
	}
	if got := status.Session.GroupCounts["good"]; got != 2 {
		t.Fatalf("expected 2 good clusters, got %d", got)
	}
	if status.Panel != nil {
		t.Fatal("expected no panel when daemon is offline")
	}
}

func TestBuildStatusSnapshotWithoutSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	status, err := daemonctl.BuildStatusSnapshot(context.Background(), cfg.Paths.SocketPath, cfg)
	if err != nil {
		t.Fatalf("BuildStatusSnapshot: %v", err)
	}
	if status.Running || status.Session != nil {
		t.Fatalf("expected empty offline snapshot, got %+v", status)
	}
}

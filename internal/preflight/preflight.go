package preflight

import (
	"github.com/KnierimLab/phy/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config. All checks are
// local filesystem probes, so no context is needed.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDatabaseFile("Session database", cfg.DatabasePath()),
		CheckSocketPath("Daemon socket", cfg.Paths.SocketPath),
	}
	return results
}

// Passed reports whether every result in the slice passed.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

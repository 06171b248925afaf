package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// sun_path is 108 bytes on Linux but only 104 on the BSDs; stay under the
// smaller bound.
const maxSocketPathLen = 104

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDatabaseFile verifies that the session database either does not exist
// yet, or exists as a plain readable and writable file.
func CheckDatabaseFile(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "missing path"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSocketPath verifies that the daemon socket can be created: the path is
// short enough for a unix socket, its parent directory is writable, and the
// path is not occupied by anything other than a leftover socket.
func CheckSocketPath(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "missing path"}
	}
	if len(path) >= maxSocketPathLen {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %d bytes exceeds the unix socket path limit)", path, len(path))}
	}
	dir := filepath.Dir(path)
	if dirResult := CheckDirectoryAccess(name, dir); !dirResult.Passed {
		return Result{Name: name, Detail: dirResult.Detail}
	}
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (ready)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.Mode()&os.ModeSocket == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: occupied by a non-socket file)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (stale socket, will be replaced)", path)}
}

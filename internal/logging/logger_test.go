package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KnierimLab/phy/internal/config"
	"github.com/KnierimLab/phy/internal/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Info("startup message")

	content := readLog(t, filepath.Join(cfg.Paths.LogDir, "phy.log"))
	if !strings.Contains(content, "startup message") {
		t.Fatalf("expected log line in phy.log, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	if content := readLog(t, logPath); strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "debug",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	if content := readLog(t, logPath); !strings.Contains(content, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleComponentBecomesPrefix(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-component.log")

	base, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger := logging.NewComponentLogger(base, "daemon")
	logger.Info("session imported", logging.Int("clusters", 7))

	content := readLog(t, logPath)
	if !strings.Contains(content, "daemon: session imported") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if !strings.Contains(content, "clusters=7") {
		t.Fatalf("expected key=value attribute, got %q", content)
	}
	if strings.Contains(content, "component=") {
		t.Fatalf("component should not repeat as an attribute, got %q", content)
	}
}

func TestJSONLoggerWritesStructuredLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "daemon.log")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("merged clusters", logging.Int("count", 2))

	content := readLog(t, logPath)
	if !strings.Contains(content, `"level":"info"`) || !strings.Contains(content, `"msg":"merged clusters"`) {
		t.Fatalf("unexpected JSON log line: %q", content)
	}
	if !strings.Contains(content, `"count":2`) {
		t.Fatalf("expected count attribute, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "fancy"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestSessionIDStampsEveryRecord(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "session.log")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "info",
		OutputPaths: []string{logPath},
		SessionID:   "run-1234",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("first")
	logger.With(logging.String("extra", "yes")).Info("second")

	content := readLog(t, logPath)
	if strings.Count(content, `"session_id":"run-1234"`) != 2 {
		t.Fatalf("expected session_id on every record, got %q", content)
	}
}

func TestTeeLoggerDuplicatesRecords(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.log")
	debugPath := filepath.Join(dir, "debug.log")

	mainLogger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{mainPath}})
	if err != nil {
		t.Fatalf("New main: %v", err)
	}
	debugLogger, err := logging.New(logging.Options{Format: "json", Level: "debug", OutputPaths: []string{debugPath}})
	if err != nil {
		t.Fatalf("New debug: %v", err)
	}

	tee := logging.TeeLogger(mainLogger, debugLogger.Handler())
	tee.Info("visible everywhere")
	tee.Debug("debug only")

	mainContent := readLog(t, mainPath)
	debugContent := readLog(t, debugPath)
	if !strings.Contains(mainContent, "visible everywhere") || strings.Contains(mainContent, "debug only") {
		t.Fatalf("unexpected main log content: %q", mainContent)
	}
	if !strings.Contains(debugContent, "visible everywhere") || !strings.Contains(debugContent, "debug only") {
		t.Fatalf("unexpected debug log content: %q", debugContent)
	}
}

func TestWithContextAddsRequestID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")

	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithRequestID(context.Background(), "req-7")
	logging.WithContext(ctx, logger).Info("contextual log")

	content := readLog(t, logPath)
	if !strings.Contains(content, `"request_id":"req-7"`) {
		t.Fatalf("expected request_id field, got %q", content)
	}
}

func TestCleanupOldLogsPrunesByAge(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "phy-old.log")
	keepPath := filepath.Join(dir, "phy-current.log")
	otherPath := filepath.Join(dir, "notes.txt")
	for _, path := range []string{oldPath, keepPath, otherPath} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -10)
	for _, path := range []string{oldPath, keepPath, otherPath} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("age %s: %v", path, err)
		}
	}

	logging.CleanupOldLogs(logging.NewNop(), 7,
		logging.RetentionTarget{Dir: dir, Pattern: "phy-*.log", Exclude: []string{keepPath}},
	)

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be pruned", oldPath)
	}
	if _, err := os.Stat(keepPath); err != nil {
		t.Fatalf("excluded file should remain: %v", err)
	}
	if _, err := os.Stat(otherPath); err != nil {
		t.Fatalf("non-matching file should remain: %v", err)
	}
}

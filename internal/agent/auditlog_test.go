package agent

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAuditLoggerWritesPerSessionNDJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := NewAuditLogger(AuditLogConfig{
		Enabled:   true,
		Dir:       dir,
		QueueSize: 16,
	}, slog.Default())
	if err != nil {
		t.Fatalf("NewAuditLogger failed: %v", err)
	}
	defer func() { _ = logger.Close() }()

	logger.Log(AuditEvent{
		UserID:    "user-1",
		SessionID: "sess-1",
		Direction: "user",
		Content:   "create a job",
	})

	path := filepath.Join(dir, "user-1", "sess-1.ndjson")
	line := waitForLogLine(t, path)
	var got AuditEvent
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("failed to unmarshal log line: %v", err)
	}
	if got.Content != "create a job" {
		t.Fatalf("unexpected Content: %q", got.Content)
	}
	if got.Timestamp == "" {
		t.Fatal("expected timestamp to be stamped")
	}
}

func TestAuditLoggerDisabledIsNoop(t *testing.T) {
	t.Parallel()

	logger, err := NewAuditLogger(AuditLogConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewAuditLogger failed: %v", err)
	}
	if _, ok := logger.(NoopAuditLogger); !ok {
		t.Fatalf("expected noop logger, got %T", logger)
	}
	logger.Log(AuditEvent{UserID: "user-1"})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestSanitizePathComponent(t *testing.T) {
	t.Parallel()

	if got := sanitizePathComponent("../../etc/passwd"); strings.Contains(got, "/") || strings.Contains(got, "..") {
		t.Fatalf("path traversal survived: %q", got)
	}
	if got := sanitizePathComponent(""); got != "unknown" {
		t.Fatalf("empty component = %q", got)
	}
	if got := sanitizePathComponent("anon_ab12-cd"); got != "anon_ab12-cd" {
		t.Fatalf("safe component mangled: %q", got)
	}
}

func waitForLogLine(t *testing.T, path string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			if len(lines) > 0 {
				return lines[len(lines)-1]
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for log file %s", path)
	return ""
}

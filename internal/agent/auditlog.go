package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEvent is one line in a user's NDJSON audit trail. Every agent turn
// produces two events: the user message and the assistant reply.
type AuditEvent struct {
	Timestamp    string         `json:"timestamp"`
	UserID       string         `json:"user_id"`
	SessionID    string         `json:"session_id"`
	Direction    string         `json:"direction"` // "user" or "assistant"
	Intent       string         `json:"intent,omitempty"`
	Content      string         `json:"content"`
	SQLGenerated string         `json:"sql_generated,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
}

// AuditLogger records agent turns for compliance review. Log must never
// block the request path.
type AuditLogger interface {
	Log(event AuditEvent)
	Close() error
}

// NoopAuditLogger discards all events. Used when auditing is disabled.
type NoopAuditLogger struct{}

func (NoopAuditLogger) Log(AuditEvent) {}
func (NoopAuditLogger) Close() error   { return nil }

// AuditLogConfig configures the NDJSON audit logger.
type AuditLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// NDJSONAuditLogger appends events to per-user NDJSON files under Dir,
// one file per session (<dir>/<user_id>/<session_id>.ndjson). Writes go
// through a bounded queue drained by a single goroutine; when the queue
// is full the event is dropped and counted, never blocking the caller.
type NDJSONAuditLogger struct {
	dir     string
	queue   chan AuditEvent
	done    chan struct{}
	wg      sync.WaitGroup
	log     *slog.Logger
	dropped int64
	mu      sync.Mutex
}

// NewAuditLogger creates an NDJSON audit logger, or a noop logger when
// cfg.Enabled is false.
func NewAuditLogger(cfg AuditLogConfig, log *slog.Logger) (AuditLogger, error) {
	if !cfg.Enabled {
		return NoopAuditLogger{}, nil
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("audit log dir is required when auditing is enabled")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log dir: %w", err)
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	if log == nil {
		log = slog.Default()
	}

	l := &NDJSONAuditLogger{
		dir:   cfg.Dir,
		queue: make(chan AuditEvent, queueSize),
		done:  make(chan struct{}),
		log:   log,
	}
	l.wg.Add(1)
	go l.drain()
	return l, nil
}

// Log enqueues the event. If the timestamp is unset it is stamped here so
// the queue delay never skews the recorded time.
func (l *NDJSONAuditLogger) Log(event AuditEvent) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case l.queue <- event:
	case <-l.done:
	default:
		l.mu.Lock()
		l.dropped++
		n := l.dropped
		l.mu.Unlock()
		l.log.Warn("audit log queue full, dropping event", "dropped_total", n)
	}
}

// Close stops accepting events, flushes the queue, and waits for the
// drain goroutine to exit.
func (l *NDJSONAuditLogger) Close() error {
	close(l.done)
	l.wg.Wait()
	return nil
}

func (l *NDJSONAuditLogger) drain() {
	defer l.wg.Done()
	for {
		select {
		case event := <-l.queue:
			l.write(event)
		case <-l.done:
			// Flush whatever is left before exiting.
			for {
				select {
				case event := <-l.queue:
					l.write(event)
				default:
					return
				}
			}
		}
	}
}

func (l *NDJSONAuditLogger) write(event AuditEvent) {
	userDir := filepath.Join(l.dir, sanitizePathComponent(event.UserID))
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		l.log.Warn("failed to create audit user dir", "error", err)
		return
	}
	path := filepath.Join(userDir, sanitizePathComponent(event.SessionID)+".ndjson")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.log.Warn("failed to open audit log file", "path", path, "error", err)
		return
	}
	defer func() { _ = f.Close() }()

	line, err := json.Marshal(event)
	if err != nil {
		l.log.Warn("failed to marshal audit event", "error", err)
		return
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		l.log.Warn("failed to write audit event", "path", path, "error", err)
	}
}

// sanitizePathComponent keeps user-supplied IDs from escaping the audit
// directory.
func sanitizePathComponent(s string) string {
	if s == "" {
		return "unknown"
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

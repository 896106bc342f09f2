package agent

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/hirelane/hirelane/internal/domain"
)

// KV is the injected key-value store behind per-session caches. A TTL of
// zero means no expiry. Implementations must be safe for concurrent use.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
	Delete(key string)
}

// MemoryKV is the default in-process KV implementation.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	done    chan struct{}
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero = never
}

// NewMemoryKV creates an in-memory KV and starts its expiry sweeper.
func NewMemoryKV() *MemoryKV {
	kv := &MemoryKV{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}
	go kv.sweep()
	return kv
}

// Get returns the value for key if present and unexpired.
func (m *MemoryKV) Get(key string) (string, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.Delete(key)
		return "", false
	}
	return entry.value, true
}

// Set stores a value with an optional TTL.
func (m *MemoryKV) Set(key, value string, ttl time.Duration) {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
}

// Delete removes a key.
func (m *MemoryKV) Delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Close stops the expiry sweeper.
func (m *MemoryKV) Close() {
	close(m.done)
}

func (m *MemoryKV) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
		}
		now := time.Now()
		m.mu.Lock()
		for key, entry := range m.entries {
			if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
				delete(m.entries, key)
			}
		}
		m.mu.Unlock()
	}
}

// SessionCache holds the per-session auxiliary state: the pending operation
// slot, the cached conversation summary, and the last routed intent.
// Pending-slot read-modify-write is serialized per session via Lock.
type SessionCache struct {
	kv    KV
	ttl   time.Duration
	locks sync.Map // sessionID -> *sync.Mutex
}

// NewSessionCache creates a SessionCache over the given KV store. Entries
// expire after ttl (zero = never).
func NewSessionCache(kv KV, ttl time.Duration) *SessionCache {
	return &SessionCache{kv: kv, ttl: ttl}
}

// Lock acquires the per-session mutex and returns its unlock function.
// Callers hold it across the check-missing-fields / store-pending sequence
// so concurrent turns for one session cannot lose updates.
func (c *SessionCache) Lock(sessionID string) func() {
	lock, _ := c.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func pendingKey(sessionID string) string { return "pending_job:" + sessionID }
func summaryKey(sessionID string) string { return "summary:" + sessionID }
func summaryAtKey(sessionID string) string {
	return "summary_at:" + sessionID
}
func lastIntentKey(sessionID string) string { return "last_intent:" + sessionID }

// PendingJob returns the session's pending job creation, or nil.
func (c *SessionCache) PendingJob(sessionID string) *domain.PendingJob {
	raw, ok := c.kv.Get(pendingKey(sessionID))
	if !ok {
		return nil
	}
	var job domain.PendingJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		slog.Warn("dropping unreadable pending job", "session_id", sessionID, "error", err)
		c.kv.Delete(pendingKey(sessionID))
		return nil
	}
	return &job
}

// StorePendingJob records the session's pending job creation, replacing any
// previous pending operation. A session holds at most one.
func (c *SessionCache) StorePendingJob(sessionID string, job *domain.PendingJob) {
	raw, err := json.Marshal(job)
	if err != nil {
		slog.Warn("failed to encode pending job", "session_id", sessionID, "error", err)
		return
	}
	c.kv.Set(pendingKey(sessionID), string(raw), c.ttl)
}

// ClearPendingJob removes the session's pending operation.
func (c *SessionCache) ClearPendingJob(sessionID string) {
	c.kv.Delete(pendingKey(sessionID))
}

// Summary returns the cached conversation summary and the message count at
// which it was computed.
func (c *SessionCache) Summary(sessionID string) (summary string, atCount int, ok bool) {
	summary, ok = c.kv.Get(summaryKey(sessionID))
	if !ok {
		return "", 0, false
	}
	if raw, found := c.kv.Get(summaryAtKey(sessionID)); found {
		_ = json.Unmarshal([]byte(raw), &atCount)
	}
	return summary, atCount, true
}

// StoreSummary caches the conversation summary alongside the message count
// it was computed at, so staleness can be measured.
func (c *SessionCache) StoreSummary(sessionID, summary string, atCount int) {
	c.kv.Set(summaryKey(sessionID), summary, c.ttl)
	raw, _ := json.Marshal(atCount)
	c.kv.Set(summaryAtKey(sessionID), string(raw), c.ttl)
}

// LastIntent returns the intent the router chose on the session's previous
// turn, if recorded.
func (c *SessionCache) LastIntent(sessionID string) Intent {
	raw, ok := c.kv.Get(lastIntentKey(sessionID))
	if !ok {
		return ""
	}
	return Intent(raw)
}

// SetLastIntent records the routed intent at the end of a turn.
func (c *SessionCache) SetLastIntent(sessionID string, intent Intent) {
	c.kv.Set(lastIntentKey(sessionID), string(intent), c.ttl)
}

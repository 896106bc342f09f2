package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hirelane/hirelane/internal/config"
	"github.com/hirelane/hirelane/internal/domain"
	"github.com/hirelane/hirelane/internal/store"
)

// fakeRepo is an in-memory Repository for handler tests.
type fakeRepo struct {
	mu           sync.Mutex
	jobs         []*domain.Job
	applications []*domain.Application
	messages     []*domain.ChatMessage
	searchLogs   []*domain.SearchLog

	insertJobErr error
	listJobsErr  error
}

func newFakeRepo() *fakeRepo { return &fakeRepo{} }

func (f *fakeRepo) GetUser(_ context.Context, _ string) (*domain.User, error) { return nil, nil }
func (f *fakeRepo) UpsertUser(_ context.Context, _ *domain.User) error        { return nil }

func (f *fakeRepo) InsertJob(_ context.Context, job *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertJobErr != nil {
		return f.insertJobErr
	}
	if job.ID == "" {
		job.ID = fmt.Sprintf("job-%d", len(f.jobs)+1)
	}
	job.Status = domain.JobStatusOpen
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeRepo) GetJob(_ context.Context, jobID string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID == jobID {
			return j, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListJobs(_ context.Context) ([]*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listJobsErr != nil {
		return nil, f.listJobsErr
	}
	return append([]*domain.Job(nil), f.jobs...), nil
}

func (f *fakeRepo) ListJobsByRecruiter(_ context.Context, recruiterID string) ([]*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Job
	for _, j := range f.jobs {
		if j.CreatedBy == recruiterID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeRepo) CloseJob(_ context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID == jobID {
			j.Status = domain.JobStatusClosed
			return nil
		}
	}
	return errors.New("job not found")
}

func (f *fakeRepo) InsertApplication(_ context.Context, app *domain.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if app.ID == "" {
		app.ID = fmt.Sprintf("app-%d", len(f.applications)+1)
	}
	f.applications = append(f.applications, app)
	return nil
}

func (f *fakeRepo) ListApplications(_ context.Context, jobID string) ([]*domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Application
	for _, a := range f.applications {
		if jobID == "" || a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) InsertChatMessage(_ context.Context, msg *domain.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.ID == "" {
		msg.ID = fmt.Sprintf("msg-%d", len(f.messages)+1)
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeRepo) RecentChatMessages(_ context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ChatMessage
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeRepo) CountChatMessages(_ context.Context, sessionID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) InsertSearchLog(_ context.Context, log *domain.SearchLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchLogs = append(f.searchLogs, log)
	return nil
}

func (f *fakeRepo) CountJobs(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, j := range f.jobs {
		if j.IsOpen() {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ListRecentJobs(_ context.Context, limit int) ([]*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]*domain.Job(nil), f.jobs...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) CountApplications(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applications), nil
}

func (f *fakeRepo) JobsByLocation(_ context.Context) ([]store.LocationCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, j := range f.jobs {
		if j.IsOpen() {
			counts[j.Location]++
		}
	}
	var out []store.LocationCount
	for loc, n := range counts {
		out = append(out, store.LocationCount{Location: loc, Count: n})
	}
	return out, nil
}

func (f *fakeRepo) CountApplicationsSince(_ context.Context, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.applications {
		if a.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) TopJobTitles(_ context.Context, limit int) ([]store.TitleCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, j := range f.jobs {
		counts[j.Title]++
	}
	var out []store.TitleCount
	for title, n := range counts {
		out = append(out, store.TitleCount{Title: title, Count: n})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) Ping(_ context.Context) error { return nil }
func (f *fakeRepo) Close() error                 { return nil }

// fakeCompleter returns canned completions keyed by substring match, or a
// fixed reply.
type fakeCompleter struct {
	reply   string
	err     error
	replies map[string]string // prompt substring -> reply
	calls   int
	mu      sync.Mutex
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	for sub, reply := range f.replies {
		if sub != "" && strings.Contains(prompt, sub) {
			return reply, nil
		}
	}
	return f.reply, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:   "0",
		DBPath: ":memory:",
		RateLimit: config.RateLimitConfig{
			MaxRequests: 50,
			Window:      time.Hour,
		},
		Agent: config.AgentConfig{
			HistoryLimit:        12,
			SummaryThreshold:    6,
			SummaryRefreshEvery: 10,
			SessionTTL:          time.Hour,
		},
	}
}

func newTestSessions(t interface{ Cleanup(func()) }) *SessionCache {
	kv := NewMemoryKV()
	t.Cleanup(kv.Close)
	return NewSessionCache(kv, time.Hour)
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hirelane/hirelane/internal/domain"
	"github.com/hirelane/hirelane/internal/identity"
	"github.com/hirelane/hirelane/internal/store"
)

type fakeRepo struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	jobs       []*domain.Job
	apps       []*domain.Application
	messages   []*domain.ChatMessage
	searchLogs []*domain.SearchLog

	pingErr      error
	insertJobErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*domain.User)}
}

func (f *fakeRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.users[userID]
	if user == nil {
		return nil, nil
	}
	copy := *user
	return &copy, nil
}

func (f *fakeRepo) UpsertUser(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *user
	f.users[user.UserID] = &copy
	return nil
}

func (f *fakeRepo) InsertJob(_ context.Context, job *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertJobErr != nil {
		return f.insertJobErr
	}
	job.ID = fmt.Sprintf("job-%d", len(f.jobs)+1)
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	copy := *job
	f.jobs = append(f.jobs, &copy)
	return nil
}

func (f *fakeRepo) GetJob(_ context.Context, jobID string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID == jobID {
			copy := *j
			return &copy, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListJobs(_ context.Context) ([]*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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
		}
	}
	return nil
}

func (f *fakeRepo) InsertApplication(_ context.Context, app *domain.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app.ID = fmt.Sprintf("app-%d", len(f.apps)+1)
	app.CreatedAt = time.Now()
	copy := *app
	f.apps = append(f.apps, &copy)
	return nil
}

func (f *fakeRepo) ListApplications(_ context.Context, jobID string) ([]*domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Application
	for _, a := range f.apps {
		if jobID == "" || a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) InsertChatMessage(_ context.Context, msg *domain.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.ID = fmt.Sprintf("msg-%d", len(f.messages)+1)
	msg.CreatedAt = time.Now()
	copy := *msg
	f.messages = append(f.messages, &copy)
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
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeRepo) CountChatMessages(_ context.Context, sessionID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) InsertSearchLog(_ context.Context, log *domain.SearchLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *log
	f.searchLogs = append(f.searchLogs, &copy)
	return nil
}

func (f *fakeRepo) CountJobs(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs), nil
}

func (f *fakeRepo) ListRecentJobs(_ context.Context, limit int) ([]*domain.Job, error) {
	jobs, _ := f.ListJobs(context.Background())
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (f *fakeRepo) CountApplications(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.apps), nil
}

func (f *fakeRepo) JobsByLocation(_ context.Context) ([]store.LocationCount, error) {
	return nil, nil
}

func (f *fakeRepo) CountApplicationsSince(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (f *fakeRepo) TopJobTitles(_ context.Context, _ int) ([]store.TitleCount, error) {
	return nil, nil
}

func (f *fakeRepo) Ping(_ context.Context) error { return f.pingErr }
func (f *fakeRepo) Close() error                 { return nil }

func (f *fakeRepo) seedJob(job *domain.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *job
	f.jobs = append(f.jobs, &copy)
}

// newTestRouter builds a chi router with the anonymous identity middleware
// applied, the same shape the server wires up.
func newTestRouter(repo store.Repository, register func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(identity.Middleware(repo, true))
	register(r)
	return r
}

// doJSON performs a request against the router, carrying over any cookies
// from a prior response so consecutive calls act as the same anonymous user.
func doJSON(router http.Handler, method, target, body string, prior *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if prior != nil {
		for _, c := range prior.Result().Cookies() {
			req.AddCookie(c)
		}
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

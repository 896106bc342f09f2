package ats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hirelane/hirelane/internal/domain"
	"github.com/hirelane/hirelane/internal/store"
)

type fakeRepo struct {
	job  *domain.Job
	apps []*domain.Application
}

func (f *fakeRepo) GetJob(_ context.Context, jobID string) (*domain.Job, error) {
	if f.job != nil && f.job.ID == jobID {
		return f.job, nil
	}
	return nil, nil
}

func (f *fakeRepo) ListApplications(_ context.Context, _ string) ([]*domain.Application, error) {
	return f.apps, nil
}

func (f *fakeRepo) GetUser(context.Context, string) (*domain.User, error)     { return nil, nil }
func (f *fakeRepo) UpsertUser(context.Context, *domain.User) error            { return nil }
func (f *fakeRepo) InsertJob(context.Context, *domain.Job) error              { return nil }
func (f *fakeRepo) ListJobs(context.Context) ([]*domain.Job, error)           { return nil, nil }
func (f *fakeRepo) ListJobsByRecruiter(context.Context, string) ([]*domain.Job, error) {
	return nil, nil
}
func (f *fakeRepo) CloseJob(context.Context, string) error                       { return nil }
func (f *fakeRepo) InsertApplication(context.Context, *domain.Application) error { return nil }
func (f *fakeRepo) InsertChatMessage(context.Context, *domain.ChatMessage) error { return nil }
func (f *fakeRepo) RecentChatMessages(context.Context, string, int) ([]*domain.ChatMessage, error) {
	return nil, nil
}
func (f *fakeRepo) CountChatMessages(context.Context, string) (int, error)     { return 0, nil }
func (f *fakeRepo) InsertSearchLog(context.Context, *domain.SearchLog) error   { return nil }
func (f *fakeRepo) CountJobs(context.Context) (int, error)                     { return 0, nil }
func (f *fakeRepo) ListRecentJobs(context.Context, int) ([]*domain.Job, error) { return nil, nil }
func (f *fakeRepo) CountApplications(context.Context) (int, error)             { return 0, nil }
func (f *fakeRepo) JobsByLocation(context.Context) ([]store.LocationCount, error) {
	return nil, nil
}
func (f *fakeRepo) CountApplicationsSince(context.Context, time.Time) (int, error) {
	return 0, nil
}
func (f *fakeRepo) TopJobTitles(context.Context, int) ([]store.TitleCount, error) {
	return nil, nil
}
func (f *fakeRepo) Ping(context.Context) error { return nil }
func (f *fakeRepo) Close() error               { return nil }

type scriptedCompleter struct {
	replies []string
	errs    []error
	call    int
}

func (s *scriptedCompleter) Complete(_ context.Context, _ string) (string, error) {
	i := s.call
	s.call++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func TestParseScoreReplyLenient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		reply     string
		wantScore float64
		wantOK    bool
		skills    int
	}{
		{
			name:      "plain object",
			reply:     `{"score": 87, "summary": "Good fit.", "skills": ["Go", "SQL"]}`,
			wantScore: 87, wantOK: true, skills: 2,
		},
		{
			name:      "wrapped in prose and fences",
			reply:     "Here is my assessment:\n```json\n{\"score\": 62, \"summary\": \"Partial fit.\"}\n```",
			wantScore: 62, wantOK: true,
		},
		{
			name:      "score as string",
			reply:     `{"score": "91%", "summary": "Excellent."}`,
			wantScore: 91, wantOK: true,
		},
		{
			name:      "skills as comma string",
			reply:     `{"score": 70, "summary": "OK.", "skills": "Go, SQL, Docker"}`,
			wantScore: 70, wantOK: true, skills: 3,
		},
		{
			name:      "score clamped to range",
			reply:     `{"score": 140, "summary": "Overflow."}`,
			wantScore: 100, wantOK: true,
		},
		{
			name:   "no json at all",
			reply:  "I cannot score this candidate.",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			score, _, skills, ok := parseScoreReply(tt.reply)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if score != tt.wantScore {
				t.Fatalf("score = %v, want %v", score, tt.wantScore)
			}
			if len(skills) != tt.skills {
				t.Fatalf("skills = %v, want %d entries", skills, tt.skills)
			}
		})
	}
}

func TestRankOrdersByScoreAndIsolatesFailures(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{
		job: &domain.Job{ID: "abc", Title: "Backend Engineer", Requirements: "Go"},
		apps: []*domain.Application{
			{ID: "a1", ApplicantName: "Low Scorer"},
			{ID: "a2", ApplicantName: "High Scorer"},
			{ID: "a3", ApplicantName: "Unscorable"},
			{ID: "a4", ApplicantName: "Garbled"},
		},
	}
	completer := &scriptedCompleter{
		replies: []string{
			`{"score": 40, "summary": "Weak fit."}`,
			`{"score": 95, "summary": "Strong fit."}`,
			"", // replaced by error below
			`total nonsense`,
		},
		errs: []error{nil, nil, errors.New("model timeout"), nil},
	}
	ranker := NewRanker(repo, completer)

	result, err := ranker.Rank(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if result.JobTitle != "Backend Engineer" {
		t.Fatalf("job title = %q", result.JobTitle)
	}
	if len(result.Applicants) != 4 {
		t.Fatalf("expected all candidates ranked, got %d", len(result.Applicants))
	}

	// Descending by score: 95, 50 (unparseable fallback), 40, 0 (error).
	if result.Applicants[0].Name != "High Scorer" || result.Applicants[0].Score != 95 {
		t.Fatalf("first = %+v", result.Applicants[0])
	}
	if result.Applicants[1].Name != "Garbled" || result.Applicants[1].Score != 50 {
		t.Fatalf("second = %+v", result.Applicants[1])
	}
	if result.Applicants[2].Name != "Low Scorer" || result.Applicants[2].Score != 40 {
		t.Fatalf("third = %+v", result.Applicants[2])
	}
	if result.Applicants[3].Name != "Unscorable" || result.Applicants[3].Score != 0 {
		t.Fatalf("fourth = %+v", result.Applicants[3])
	}
}

func TestRankUnknownJob(t *testing.T) {
	t.Parallel()

	ranker := NewRanker(&fakeRepo{}, nil)
	if _, err := ranker.Rank(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestRankNoApplicants(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{job: &domain.Job{ID: "abc", Title: "Backend Engineer"}}
	ranker := NewRanker(repo, nil)

	result, err := ranker.Rank(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if len(result.Applicants) != 0 {
		t.Fatalf("expected no applicants, got %d", len(result.Applicants))
	}
}

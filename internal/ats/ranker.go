// Package ats scores and ranks job applicants against a job posting.
package ats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hirelane/hirelane/internal/domain"
	"github.com/hirelane/hirelane/internal/store"
)

// maxCVChars caps how much CV text is fed to the scoring prompt per
// candidate.
const maxCVChars = 8000

const cvFetchTimeout = 20 * time.Second

const scoringPrompt = `You are an applicant tracking system. Score the candidate below against the
job posting on a 0-100 scale, where 100 is a perfect match.

Job posting:
Title: %s
Description: %s
Requirements: %s

Candidate: %s
Cover letter: %s
CV text: %s

Reply with only a JSON object: {"score": <0-100>, "summary": "<two sentences on fit>", "skills": ["skill", ...]}`

// Completer is the text-completion dependency for scoring.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Ranker scores every applicant for a job and orders them best first.
type Ranker struct {
	repo      store.Repository
	completer Completer
	client    *http.Client
}

// NewRanker creates a Ranker. completer may be nil, in which case every
// candidate receives the neutral fallback score.
func NewRanker(repo store.Repository, completer Completer) *Ranker {
	return &Ranker{
		repo:      repo,
		completer: completer,
		client:    &http.Client{Timeout: cvFetchTimeout},
	}
}

// Rank loads the job and its applications, scores each candidate, and
// returns them ordered by descending score. One candidate failing to score
// never aborts the batch.
func (r *Ranker) Rank(ctx context.Context, jobID string) (*domain.RankingResult, error) {
	job, err := r.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return nil, fmt.Errorf("job %s not found", jobID)
	}

	apps, err := r.repo.ListApplications(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applications: %w", err)
	}

	result := &domain.RankingResult{JobID: job.ID, JobTitle: job.Title}
	if len(apps) == 0 {
		return result, nil
	}

	cvTexts := r.fetchCVTexts(ctx, apps)

	result.Applicants = make([]domain.RankedApplicant, 0, len(apps))
	for i, app := range apps {
		ranked := domain.RankedApplicant{
			ApplicationID: app.ID,
			ApplicantID:   app.ApplicantID,
			Name:          app.CandidateName(),
			CVURL:         app.CVURL,
		}
		if app.Applicant != nil {
			ranked.Email = app.Applicant.Email
		}

		score, summary, skills := r.scoreCandidate(ctx, job, app, cvTexts[i])
		ranked.Score = score
		ranked.Summary = summary
		ranked.Skills = skills
		result.Applicants = append(result.Applicants, ranked)
	}

	sort.SliceStable(result.Applicants, func(i, j int) bool {
		return result.Applicants[i].Score > result.Applicants[j].Score
	})
	return result, nil
}

// fetchCVTexts downloads CV text for each application concurrently. A
// failed or missing download yields "" for that slot; the candidate is
// still scored on cover letter and profile alone.
func (r *Ranker) fetchCVTexts(ctx context.Context, apps []*domain.Application) []string {
	texts := make([]string, len(apps))
	var wg sync.WaitGroup
	for i, app := range apps {
		if app.CVURL == "" {
			continue
		}
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			text, err := r.fetchCV(ctx, url)
			if err != nil {
				slog.Warn("cv fetch failed", "url", url, "error", err)
				return
			}
			texts[i] = text
		}(i, app.CVURL)
	}
	wg.Wait()
	return texts
}

func (r *Ranker) fetchCV(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCVChars*4))
	if err != nil {
		return "", err
	}
	text := string(body)
	if len(text) > maxCVChars {
		text = text[:maxCVChars]
	}
	return text, nil
}

// scoreCandidate asks the model for a fit score. Scoring errors produce a
// zero score with the error noted; an unparseable reply produces the
// neutral score of 50 so one bad completion does not sink a candidate.
func (r *Ranker) scoreCandidate(ctx context.Context, job *domain.Job, app *domain.Application, cvText string) (float64, string, []string) {
	if r.completer == nil {
		return 50, "Automated scoring unavailable; review manually.", nil
	}

	prompt := fmt.Sprintf(scoringPrompt,
		job.Title, job.Description, job.Requirements,
		app.CandidateName(), app.CoverLetter, cvText)

	reply, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		slog.Warn("candidate scoring failed", "application_id", app.ID, "error", err)
		return 0, fmt.Sprintf("Scoring failed: %v", err), nil
	}

	score, summary, skills, ok := parseScoreReply(reply)
	if !ok {
		slog.Warn("unparseable scoring reply", "application_id", app.ID)
		return 50, "Could not parse automated score; review manually.", nil
	}
	return score, summary, skills
}

// parseScoreReply decodes the model's JSON verdict leniently: the object
// may be wrapped in prose or code fences, score may arrive as a number or
// string, and skills may arrive as a list or a comma-separated string.
func parseScoreReply(reply string) (float64, string, []string, bool) {
	blob := strings.TrimSpace(reply)
	if start := strings.Index(blob, "{"); start >= 0 {
		if end := strings.LastIndex(blob, "}"); end > start {
			blob = blob[start : end+1]
		}
	}

	var raw struct {
		Score   json.RawMessage `json:"score"`
		Summary string          `json:"summary"`
		Skills  json.RawMessage `json:"skills"`
	}
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return 0, "", nil, false
	}

	score, ok := parseScore(raw.Score)
	if !ok {
		return 0, "", nil, false
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, strings.TrimSpace(raw.Summary), parseSkills(raw.Skills), true
}

func parseScore(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func parseSkills(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return trimSkills(list)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return trimSkills(strings.Split(s, ","))
	}
	return nil
}

func trimSkills(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

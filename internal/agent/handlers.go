package agent

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/hirelane/hirelane/internal/domain"
	"github.com/hirelane/hirelane/internal/store"
)

// jobIDPattern is the fixed textual pattern for referencing a job in chat,
// e.g. "rank applicants for job id: abc-123".
var jobIDPattern = regexp.MustCompile(`(?i)job[_\s]?id[:\s]+([a-f0-9-]+)`)

func extractJobID(message string) string {
	if m := jobIDPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return ""
}

// Ranker scores every applicant for a job. Implemented by the ats package.
type Ranker interface {
	Rank(ctx context.Context, jobID string) (*domain.RankingResult, error)
}

// Handlers holds the stateless action handlers. Each one extracts filters,
// calls the record store, and formats a reply; none of them keeps state
// across turns.
type Handlers struct {
	repo      store.Repository
	extractor *Extractor
	completer Completer
	ranker    Ranker
}

// NewHandlers creates the stateless handler set. completer and ranker may
// be nil when AI features are disabled; affected paths degrade gracefully.
func NewHandlers(repo store.Repository, extractor *Extractor, completer Completer, ranker Ranker) *Handlers {
	return &Handlers{repo: repo, extractor: extractor, completer: completer, ranker: ranker}
}

const tryAgainResponse = "I ran into an issue pulling the job listings. Could you rephrase the request or try again shortly?"

// SearchJobs extracts filters from the message and lists matching jobs.
func (h *Handlers) SearchJobs(ctx context.Context, in turnInput) TurnResult {
	filters := h.extractor.ExtractFilters(ctx, in.Routed)

	if filters.IsEmpty() {
		lower := strings.ToLower(in.Routed)
		if strings.Contains(lower, "job") || strings.Contains(lower, "role") {
			filters.Keywords = strings.TrimSpace(in.Routed)
		} else {
			return TurnResult{
				Intent: IntentSearchJobs,
				Response: "I didn't detect job search criteria in your message. To search for " +
					"jobs, try:\n- 'Jobs in London'\n- 'Python developer roles'\n- 'Jobs over 100k'\n" +
					"- 'Remote jobs'\n\nOr I can help you create a job posting, view applicants, " +
					"or rank candidates.",
			}
		}
	}

	jobs, err := h.repo.ListJobs(ctx)
	if err != nil {
		slog.Warn("job search failed", "user_id", in.UserID, "error", err)
		return TurnResult{Intent: IntentSearchJobs, Response: tryAgainResponse}
	}

	matches := filterJobs(jobs, filters)
	if len(matches) == 0 {
		return TurnResult{
			Intent:   IntentSearchJobs,
			Response: "I didn't find any roles matching those filters. Try tweaking the title, location, or salary range.",
		}
	}

	return TurnResult{Intent: IntentSearchJobs, Response: formatJobList(matches)}
}

// filterJobs applies location, salary and keyword criteria in memory.
func filterJobs(jobs []*domain.Job, f domain.JobFilter) []*domain.Job {
	out := jobs

	if loc := strings.ToLower(strings.TrimSpace(f.Location)); loc != "" {
		var kept []*domain.Job
		for _, job := range out {
			if strings.Contains(strings.ToLower(job.Location), loc) {
				kept = append(kept, job)
			}
		}
		out = kept
	}

	if sal := strings.TrimSpace(f.Salary); sal != "" {
		var kept []*domain.Job
		for _, job := range out {
			if job.Salary != "" && salaryMatches(job.Salary, sal) {
				kept = append(kept, job)
			}
		}
		out = kept
	}

	if kw := strings.TrimSpace(f.Keywords); kw != "" {
		var terms []string
		for _, t := range strings.Split(kw, ",") {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				terms = append(terms, t)
			}
		}
		if len(terms) > 0 {
			var kept []*domain.Job
			for _, job := range out {
				text := strings.ToLower(job.Title + " " + job.Description + " " + job.Requirements)
				for _, term := range terms {
					if strings.Contains(text, term) {
						kept = append(kept, job)
						break
					}
				}
			}
			out = kept
		}
	}

	return out
}

func formatJobList(jobs []*domain.Job) string {
	plural := "s"
	if len(jobs) == 1 {
		plural = ""
	}
	lines := []string{fmt.Sprintf("Found %d job%s", len(jobs), plural), ""}
	for _, job := range jobs[:minInt(len(jobs), 5)] {
		location := job.Location
		if location == "" {
			location = "Location flexible"
		}
		salary := job.Salary
		if salary == "" {
			salary = "Salary TBD"
		}
		summary := strings.TrimSpace(job.Description)
		if len(summary) > 160 {
			summary = summary[:160] + "…"
		}
		lines = append(lines, fmt.Sprintf("- %s — %s\n  %s\n  %s", job.Title, location, salary, summary))
	}
	if extra := len(jobs) - 5; extra > 0 {
		plural = "s"
		if extra == 1 {
			plural = ""
		}
		lines = append(lines, fmt.Sprintf("\n…and %d more matching job%s.", extra, plural))
	}
	return strings.Join(lines, "\n\n")
}

// GetApplicants lists applicants, optionally scoped to a job referenced in
// the message.
func (h *Handlers) GetApplicants(ctx context.Context, in turnInput) TurnResult {
	jobID := extractJobID(in.Routed)

	apps, err := h.repo.ListApplications(ctx, jobID)
	if err != nil {
		slog.Warn("applicant listing failed", "user_id", in.UserID, "error", err)
		return TurnResult{
			Intent:   IntentGetApplicants,
			Response: "I couldn't retrieve the applicants at this time. Please try again.",
		}
	}

	if len(apps) == 0 {
		if jobID != "" {
			return TurnResult{
				Intent:   IntentGetApplicants,
				Response: "No applicants found for this job yet. Once candidates start applying, you'll see them here!",
			}
		}
		return TurnResult{
			Intent: IntentGetApplicants,
			Response: "No applications have been received yet. Candidates will appear here " +
				"once they start applying to your job postings.",
		}
	}

	plural := "s"
	if len(apps) == 1 {
		plural = ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d applicant%s\n\n", len(apps), plural)
	for i, app := range apps[:minInt(len(apps), 5)] {
		fmt.Fprintf(&b, "%d. %s\n", i+1, app.CandidateName())
	}
	if extra := len(apps) - 5; extra > 0 {
		fmt.Fprintf(&b, "\n...and %d more applicants.", extra)
	}
	return TurnResult{Intent: IntentGetApplicants, Response: b.String()}
}

// RankApplicants runs the ATS scorer for the job referenced in the message.
// A missing job ID is a terminal user-facing error, never a slot-filling
// opportunity.
func (h *Handlers) RankApplicants(ctx context.Context, in turnInput) TurnResult {
	jobID := extractJobID(in.Routed)
	if jobID == "" {
		return TurnResult{
			Intent: IntentRankApplicants,
			Response: "To rank applicants, please provide a job ID. You can find job IDs in " +
				"your job listings.\n\nExample: 'Rank applicants for job id: abc-123'",
		}
	}

	if h.ranker == nil {
		return TurnResult{
			Intent:   IntentRankApplicants,
			Response: "Candidate ranking is unavailable right now. Please try again later.",
		}
	}

	result, err := h.ranker.Rank(ctx, jobID)
	if err != nil {
		slog.Warn("ranking failed", "user_id", in.UserID, "job_id", jobID, "error", err)
		return TurnResult{
			Intent: IntentRankApplicants,
			Response: "I couldn't rank the applicants at this time. Please make sure you've " +
				"provided a valid job ID.",
		}
	}

	if len(result.Applicants) == 0 {
		return TurnResult{
			Intent:   IntentRankApplicants,
			Response: fmt.Sprintf("No applicants found for the job '%s' yet.", result.JobTitle),
		}
	}

	plural := "s"
	if len(result.Applicants) == 1 {
		plural = ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ATS Ranking for '%s'\n\n", result.JobTitle)
	fmt.Fprintf(&b, "I've ranked %d candidate%s based on their skills and experience:\n\n",
		len(result.Applicants), plural)
	for i, a := range result.Applicants[:minInt(len(result.Applicants), 10)] {
		fmt.Fprintf(&b, "#%d - %s (Score: %.0f%%)\n", i+1, a.Name, a.Score)
		if len(a.Skills) > 0 {
			fmt.Fprintf(&b, "   Skills: %s\n", strings.Join(a.Skills[:minInt(len(a.Skills), 5)], ", "))
		}
		if a.Summary != "" {
			summary := a.Summary
			if len(summary) > 100 {
				summary = summary[:100] + "..."
			}
			fmt.Fprintf(&b, "   %s\n", summary)
		}
		b.WriteString("\n")
	}
	if extra := len(result.Applicants) - 10; extra > 0 {
		fmt.Fprintf(&b, "...and %d more candidates.\n", extra)
	}
	return TurnResult{Intent: IntentRankApplicants, Response: b.String()}
}

// General produces a plain conversational reply, with a safety refusal for
// mutation requests that mention data.
func (h *Handlers) General(ctx context.Context, in turnInput) TurnResult {
	if IsDangerous(in.Routed) && mentionsDataNoun(in.Routed) {
		return TurnResult{Intent: IntentGeneral, Response: safetyRefusal(in.Routed)}
	}

	if h.completer != nil {
		prompt := in.Contextual
		if prompt == "" {
			prompt = in.Routed
		}
		if reply, err := h.completer.Complete(ctx, fmt.Sprintf(generalResponsePrompt, prompt)); err == nil {
			return TurnResult{Intent: IntentGeneral, Response: reply}
		}
	}
	return TurnResult{
		Intent: IntentGeneral,
		Response: "I can help you create job postings, search jobs, view applicants, rank " +
			"candidates, and report hiring statistics. What would you like to do?",
	}
}

// SafetyBlock returns the fixed refusal. It never executes the requested
// action and mutates no state.
func (h *Handlers) SafetyBlock(_ context.Context, in turnInput) TurnResult {
	return TurnResult{Intent: IntentSafetyBlock, Response: safetyRefusal(in.Routed)}
}

func safetyRefusal(message string) string {
	lower := strings.ToLower(message)
	operation := "perform that operation"
	switch {
	case strings.Contains(lower, "delete") || strings.Contains(lower, "remove"):
		operation = "delete or remove data"
	case strings.Contains(lower, "update") || strings.Contains(lower, "modify") ||
		strings.Contains(lower, "change") || strings.Contains(lower, "edit"):
		operation = "update or modify data"
	}

	return fmt.Sprintf(
		"I understand you'd like to %s, but I cannot perform delete, update, modify, or any "+
			"data modification operations through the chatbot for security reasons.\n\n"+
			"For data modification operations, please use the admin dashboard or contact your "+
			"system administrator.\n\n"+
			"I can help you with:\n"+
			"- Creating new job postings\n"+
			"- Searching and viewing jobs\n"+
			"- Viewing applicants\n"+
			"- Ranking candidates with ATS\n\n"+
			"Is there something else I can help you with?", operation)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// safeQueries is the closed set of statistics the agent will answer. Each
// entry carries the SQL the store executes for it, recorded verbatim in the
// audit log. Free-form SQL is never generated or run.
var safeQueries = map[string]string{
	"count_jobs":          "SELECT COUNT(*) FROM jobs WHERE status = 'open'",
	"list_recent_jobs":    "SELECT title, location, created_at FROM jobs WHERE status = 'open' ORDER BY created_at DESC LIMIT 10",
	"count_applications":  "SELECT COUNT(*) FROM applications",
	"jobs_by_location":    "SELECT location, COUNT(*) FROM jobs WHERE status = 'open' GROUP BY location",
	"recent_applications": "SELECT COUNT(*) FROM applications WHERE created_at >= ?",
	"top_job_types":       "SELECT title, COUNT(*) FROM jobs GROUP BY title ORDER BY COUNT(*) DESC LIMIT 5",
}

// statsKeywordHints maps fast-path phrases to a canned query, avoiding a
// model round trip for the common questions.
var statsKeywordHints = []struct {
	phrases []string
	query   string
}{
	{[]string{"how many jobs", "number of jobs", "total jobs", "count of jobs"}, "count_jobs"},
	{[]string{"recent jobs", "latest jobs", "newest jobs"}, "list_recent_jobs"},
	{[]string{"how many applications", "total applications", "number of applications", "count of applications"}, "count_applications"},
	{[]string{"jobs by location", "jobs per location", "where are the jobs"}, "jobs_by_location"},
	{[]string{"recent applications", "applications this week", "new applications"}, "recent_applications"},
	{[]string{"top job", "most common job", "popular job"}, "top_job_types"},
}

// Stats answers platform statistics questions from the canned query set.
func (h *Handlers) Stats(ctx context.Context, in turnInput) TurnResult {
	name := classifyStatsQuery(in.Routed)
	if name == "" && h.completer != nil {
		name = h.selectStatsQuery(ctx, in.Routed)
	}

	sql, ok := safeQueries[name]
	if !ok {
		return TurnResult{
			Intent: IntentSQLStats,
			Response: "I can answer these statistics questions:\n" +
				"- How many jobs are open?\n" +
				"- What are the most recent jobs?\n" +
				"- How many applications have been received?\n" +
				"- How are jobs distributed by location?\n" +
				"- How many applications came in this week?\n" +
				"- What are the most common job titles?",
		}
	}

	// The store methods below embed the same read-only queries; this check
	// guards against the table ever gaining a mutating entry.
	if ok, reason := ValidateReadOnlyQuery(sql); !ok {
		slog.Error("canned stats query rejected", "query", name, "reason", reason)
		return TurnResult{Intent: IntentSQLStats, Response: "I couldn't run that statistics query."}
	}

	response, err := h.runStatsQuery(ctx, name)
	if err != nil {
		slog.Warn("stats query failed", "query", name, "user_id", in.UserID, "error", err)
		return TurnResult{
			Intent:       IntentSQLStats,
			SQLGenerated: sql,
			Response:     "I couldn't retrieve those statistics right now. Please try again.",
		}
	}
	return TurnResult{Intent: IntentSQLStats, SQLGenerated: sql, Response: response}
}

func classifyStatsQuery(message string) string {
	lower := strings.ToLower(message)
	for _, hint := range statsKeywordHints {
		for _, p := range hint.phrases {
			if strings.Contains(lower, p) {
				return hint.query
			}
		}
	}
	return ""
}

// selectStatsQuery asks the model to pick a canned query name. Anything
// outside the known set is discarded.
func (h *Handlers) selectStatsQuery(ctx context.Context, message string) string {
	reply, err := h.completer.Complete(ctx, fmt.Sprintf(statsSelectionPrompt, message))
	if err != nil {
		return ""
	}
	name := strings.ToLower(strings.Trim(strings.TrimSpace(reply), "\"'`"))
	if _, ok := safeQueries[name]; ok {
		return name
	}
	return ""
}

func (h *Handlers) runStatsQuery(ctx context.Context, name string) (string, error) {
	switch name {
	case "count_jobs":
		n, err := h.repo.CountJobs(ctx)
		if err != nil {
			return "", err
		}
		plural := "s"
		if n == 1 {
			plural = ""
		}
		return fmt.Sprintf("There are currently %d open job%s on the platform.", n, plural), nil

	case "list_recent_jobs":
		jobs, err := h.repo.ListRecentJobs(ctx, 10)
		if err != nil {
			return "", err
		}
		if len(jobs) == 0 {
			return "No jobs have been posted yet.", nil
		}
		var b strings.Builder
		b.WriteString("Most recent job postings:\n\n")
		for i, job := range jobs {
			location := job.Location
			if location == "" {
				location = "Location flexible"
			}
			fmt.Fprintf(&b, "%d. %s — %s (posted %s)\n", i+1, job.Title, location,
				job.CreatedAt.Format("2 Jan 2006"))
		}
		return b.String(), nil

	case "count_applications":
		n, err := h.repo.CountApplications(ctx)
		if err != nil {
			return "", err
		}
		plural := "s"
		if n == 1 {
			plural = ""
		}
		return fmt.Sprintf("A total of %d application%s have been received.", n, plural), nil

	case "jobs_by_location":
		counts, err := h.repo.JobsByLocation(ctx)
		if err != nil {
			return "", err
		}
		if len(counts) == 0 {
			return "No open jobs to break down by location yet.", nil
		}
		var b strings.Builder
		b.WriteString("Open jobs by location:\n\n")
		for _, c := range counts {
			location := c.Location
			if location == "" {
				location = "Unspecified"
			}
			fmt.Fprintf(&b, "- %s: %d\n", location, c.Count)
		}
		return b.String(), nil

	case "recent_applications":
		since := time.Now().AddDate(0, 0, -7)
		n, err := h.repo.CountApplicationsSince(ctx, since)
		if err != nil {
			return "", err
		}
		plural := "s"
		if n == 1 {
			plural = ""
		}
		return fmt.Sprintf("%d application%s came in over the last 7 days.", n, plural), nil

	case "top_job_types":
		titles, err := h.repo.TopJobTitles(ctx, 5)
		if err != nil {
			return "", err
		}
		if len(titles) == 0 {
			return "No jobs have been posted yet.", nil
		}
		var b strings.Builder
		b.WriteString("Most common job titles:\n\n")
		for i, t := range titles {
			fmt.Fprintf(&b, "%d. %s (%d posting", i+1, t.Title, t.Count)
			if t.Count != 1 {
				b.WriteString("s")
			}
			b.WriteString(")\n")
		}
		return b.String(), nil
	}

	return "", fmt.Errorf("unknown stats query %q", name)
}

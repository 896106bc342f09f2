package agent

import (
	"testing"
)

func TestRoutePriorityOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		sctx    SessionContext
		want    Intent
	}{
		{
			name:    "safety beats creation",
			message: "delete the job posting and create a new job",
			want:    IntentSafetyBlock,
		},
		{
			name:    "dangerous verb without data noun is not blocked",
			message: "how do i remove a stain from my shirt",
			want:    IntentGeneral,
		},
		{
			name:    "stats beats creation",
			message: "how many jobs did we create this month",
			want:    IntentSQLStats,
		},
		{
			name:    "creation beats search",
			message: "create a job for a designer in Berlin",
			want:    IntentCreateJob,
		},
		{
			name:    "rank beats applicants",
			message: "rank the applicants for job id: abc",
			want:    IntentRankApplicants,
		},
		{
			name:    "applicants listing",
			message: "who applied to my postings",
			want:    IntentGetApplicants,
		},
		{
			name:    "search jobs",
			message: "find jobs in london",
			want:    IntentSearchJobs,
		},
		{
			name:    "content generation is general",
			message: "help me draft a rejection message",
			want:    IntentGeneral,
		},
		{
			name:    "plain chat is general",
			message: "hello there",
			want:    IntentGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Route(tt.message, tt.sctx); got != tt.want {
				t.Fatalf("Route(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestRouteFollowUpResumesLastIntent(t *testing.T) {
	t.Parallel()

	sctx := SessionContext{LastIntent: IntentSearchJobs}
	if got := Route("yes please", sctx); got != IntentSearchJobs {
		t.Fatalf("expected follow-up to resume search, got %q", got)
	}
}

func TestRouteFollowUpPrefersPendingJob(t *testing.T) {
	t.Parallel()

	// A pending creation outranks the recorded intent: the confirmation is
	// slot-filling input, not a repeat of the last action.
	sctx := SessionContext{HasPendingJob: true, LastIntent: IntentSearchJobs}
	if got := Route("yes", sctx); got != IntentCreateJob {
		t.Fatalf("expected pending job to win, got %q", got)
	}
}

func TestRouteFollowUpWithoutContextFallsThrough(t *testing.T) {
	t.Parallel()

	if got := Route("ok", SessionContext{}); got != IntentGeneral {
		t.Fatalf("bare confirmation with no context should be general, got %q", got)
	}
}

func TestRouteFollowUpFingerprintFallback(t *testing.T) {
	t.Parallel()

	sctx := SessionContext{
		AssistantMessages: []string{"Found 3 jobs matching your filters"},
	}
	if got := Route("sure", sctx); got != IntentSearchJobs {
		t.Fatalf("expected fingerprint fallback to search, got %q", got)
	}
}

func TestIsFollowUp(t *testing.T) {
	t.Parallel()

	for _, msg := range []string{"yes", "Yes please", "go ahead", "sounds good", "yep"} {
		if !IsFollowUp(msg) {
			t.Errorf("expected %q to be a follow-up", msg)
		}
	}
	for _, msg := range []string{"yesterday was fine", "confirmation bias", "create a job"} {
		if IsFollowUp(msg) {
			t.Errorf("did not expect %q to be a follow-up", msg)
		}
	}
}

func TestRouteSearchNotClaimedByStatsOrCreate(t *testing.T) {
	t.Parallel()

	// "how many jobs" carries search vocabulary too; stats must claim it.
	if got := Route("how many jobs are in the database", SessionContext{}); got != IntentSQLStats {
		t.Fatalf("expected stats, got %q", got)
	}
}

func TestRouteNormalizedSynonyms(t *testing.T) {
	t.Parallel()

	// "position" normalizes to "role", which the creation phrases cover.
	msg := Normalize("Please post a Position for a nurse in Leeds")
	if got := Route(msg, SessionContext{}); got != IntentCreateJob {
		t.Fatalf("expected create_job after normalization, got %q", got)
	}
}

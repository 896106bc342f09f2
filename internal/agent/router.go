package agent

import (
	"strings"
)

// SessionContext is what the router may consult beyond the message itself.
type SessionContext struct {
	// HasPendingJob is true when the session holds an incomplete create-job
	// operation.
	HasPendingJob bool
	// LastIntent is the intent recorded at the end of the previous turn.
	LastIntent Intent
	// AssistantMessages holds recent assistant message contents, newest
	// first. Used only as a fingerprint fallback for sessions that predate
	// the recorded intent.
	AssistantMessages []string
}

// Confirmation vocabulary for follow-up continuation.
var followUpPhrases = []string{
	"yes", "yes please", "sure", "ok", "okay", "please", "go ahead",
	"do it", "continue", "proceed", "confirm", "that's correct",
	"that works", "sounds good", "yep", "yeah",
}

var contentGenerationPhrases = []string{
	"draft", "suggest", "write", "compose", "generate message",
	"create message", "help me write", "help me draft",
}

var statsPhrases = []string{
	"how many", "count", "total", "statistics", "stats",
	"list all", "show all", "get all", "query", "search database",
	"in db", "in database",
}

// createJobPhrases must be checked before search phrases: creation and
// search wording overlap heavily in recruiter language.
var createJobPhrases = []string{
	"create a job", "create job", "post a job", "post job",
	"post a new job", "post new job",
	"new job posting", "job posting", "add a job", "add job posting",
	"create a role", "create role", "post a role", "post role",
	"add a role", "new role", "role posting",
	"i want to create", "i need to post", "i'd like to add",
	"we're hiring", "we need to post", "we want to create",
}

var rankPhrases = []string{"rank", "shortlist", "ats", "score"}

var applicantPhrases = []string{"applicants", "applications", "candidates", "applicant", "who applied"}

var searchJobPhrases = []string{
	"view jobs", "view job", "show jobs", "show job",
	"jobs in", "roles in", "role in", "find job", "find jobs", "find roles",
	"search jobs", "search for jobs", "look for jobs",
	"job summary", "job details", "available roles", "available role",
	"openings", "vacancies", "open roles", "open role", "closed roles",
	"active jobs", "what jobs", "which jobs", "jobs available", "jobs with",
}

func containsAny(message string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(message, p) {
			return true
		}
	}
	return false
}

// IsFollowUp reports whether the message is a short continuation phrase.
func IsFollowUp(message string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(message))
	for _, p := range followUpPhrases {
		if trimmed == p {
			return true
		}
	}
	// Prefix forms ("yes, do that") count only when the prefix is a whole
	// word, so "yesterday" never reads as a confirmation.
	for _, p := range []string{"yes", "sure", "go ahead"} {
		if trimmed == p {
			return true
		}
		if strings.HasPrefix(trimmed, p) {
			rest := trimmed[len(p):]
			if rest[0] == ' ' || rest[0] == ',' || rest[0] == '.' || rest[0] == '!' {
				return true
			}
		}
	}
	return false
}

// resolveLastIntent determines what a bare continuation should resume.
// A pending job always wins: pending operations only arise from the
// create-job flow. Otherwise the recorded intent is used, then assistant
// message fingerprints as a legacy fallback. Empty when nothing is found.
func resolveLastIntent(sctx SessionContext) Intent {
	if sctx.HasPendingJob {
		return IntentCreateJob
	}
	if sctx.LastIntent != "" {
		return sctx.LastIntent
	}
	for _, content := range sctx.AssistantMessages {
		lower := strings.ToLower(content)
		switch {
		case strings.Contains(lower, "job created") || strings.Contains(lower, "create"):
			return IntentCreateJob
		case strings.Contains(lower, "found") && strings.Contains(lower, "job"):
			return IntentSearchJobs
		case strings.Contains(lower, "applicant") || strings.Contains(lower, "candidate"):
			if strings.Contains(lower, "rank") || strings.Contains(lower, "score") {
				return IntentRankApplicants
			}
			return IntentGetApplicants
		}
	}
	return ""
}

// Route maps a normalized message plus session context to an intent.
//
// The checks run in strict priority order; later categories are defined as
// "match, but only if not already claimed by an earlier category":
//
//	1. safety gate
//	2. follow-up continuation
//	3. content generation
//	4. statistics
//	5. job creation
//	6. ranking
//	7. applicant listing
//	8. job search
//	9. general response
func Route(message string, sctx SessionContext) Intent {
	lower := strings.ToLower(message)

	// 1. Dangerous verb plus a data noun blocks. A dangerous verb alone
	// (about non-data topics) does not.
	if IsDangerous(lower) && mentionsDataNoun(lower) {
		return IntentSafetyBlock
	}

	// 2. Short confirmations resume the previous action. The follow-up
	// signal alone is not sufficient: with no resolvable last intent the
	// message falls through to keyword routing.
	if IsFollowUp(lower) {
		if last := resolveLastIntent(sctx); last != "" {
			return last
		}
	}

	// 3. Drafting help is conversation, not an action.
	if containsAny(lower, contentGenerationPhrases) && !IsDangerous(lower) {
		return IntentGeneral
	}

	// 4. Statistics phrasing collides with both creation and search, so it
	// is claimed before either.
	if containsAny(lower, statsPhrases) && !IsDangerous(lower) {
		return IntentSQLStats
	}

	// 5. Creation before search: "create job for X in Y" must not be read
	// as a search for jobs in Y.
	if containsAny(lower, createJobPhrases) && !IsDangerous(lower) {
		return IntentCreateJob
	}

	// 6.
	if containsAny(lower, rankPhrases) {
		return IntentRankApplicants
	}

	// 7.
	if containsAny(lower, applicantPhrases) {
		return IntentGetApplicants
	}

	// 8. Search only when neither creation nor stats already claimed the
	// overlapping phrasing.
	if containsAny(lower, searchJobPhrases) &&
		!containsAny(lower, createJobPhrases) &&
		!containsAny(lower, statsPhrases) {
		return IntentSearchJobs
	}

	// 9.
	return IntentGeneral
}

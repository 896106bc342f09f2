// Package agent implements the conversational recruitment assistant.
package agent

import (
	"context"
)

// Intent is the action label the router assigns to a chat message.
type Intent string

// Routable intents, in router priority order.
const (
	IntentSafetyBlock    Intent = "safety_block"
	IntentCreateJob      Intent = "create_job"
	IntentSearchJobs     Intent = "search_jobs"
	IntentGetApplicants  Intent = "get_applicants"
	IntentRankApplicants Intent = "rank_applicants"
	IntentSQLStats       Intent = "sql_stats"
	IntentGeneral        Intent = "general_response"
)

// Completer is the opaque text-completion service. Implementations may fail;
// every call site degrades to heuristics or a generic message instead of
// propagating the error to the user.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// TurnRequest is one incoming chat turn.
type TurnRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"-"`
	SessionID string `json:"-"`
}

// TurnResult is the outcome of one chat turn.
type TurnResult struct {
	Response     string `json:"response"`
	Intent       Intent `json:"-"`
	SQLGenerated string `json:"sql_generated,omitempty"`
	RateLimited  bool   `json:"-"`
}

// turnInput is the handler-facing view of a turn. Routed is the normalized
// message the router matched on; Contextual is the same message with the
// rolling conversation summary prepended, fed to model prompts that benefit
// from history.
type turnInput struct {
	UserID     string
	SessionID  string
	Raw        string
	Routed     string
	Contextual string
}

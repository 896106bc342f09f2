package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hirelane/hirelane/internal/config"
	"github.com/hirelane/hirelane/internal/domain"
	"github.com/hirelane/hirelane/internal/store"
)

const rateLimitedResponse = "You've sent quite a few messages in a short time. Please wait a bit before sending more."

const turnFailureResponse = "Something went wrong while handling that message. Please try again."

// Service orchestrates one chat turn: rate limiting, persistence, context
// assembly, routing, and handler dispatch.
type Service struct {
	repo      store.Repository
	sessions  *SessionCache
	limiter   *RateLimiter
	completer Completer
	createJob *CreateJobHandler
	handlers  *Handlers
	audit     AuditLogger

	historyLimit        int
	summaryThreshold    int
	summaryRefreshEvery int
}

// NewService wires the agent from its parts. completer may be nil when AI
// is disabled; audit may be nil, in which case events are discarded.
func NewService(cfg *config.Config, repo store.Repository, sessions *SessionCache, completer Completer, ranker Ranker, audit AuditLogger) *Service {
	if audit == nil {
		audit = NoopAuditLogger{}
	}
	extractor := NewExtractor(completer)
	return &Service{
		repo:                repo,
		sessions:            sessions,
		limiter:             NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window),
		completer:           completer,
		createJob:           NewCreateJobHandler(repo, sessions, extractor),
		handlers:            NewHandlers(repo, extractor, completer, ranker),
		audit:               audit,
		historyLimit:        cfg.Agent.HistoryLimit,
		summaryThreshold:    cfg.Agent.SummaryThreshold,
		summaryRefreshEvery: cfg.Agent.SummaryRefreshEvery,
	}
}

// Close releases background resources.
func (s *Service) Close() {
	s.limiter.Close()
	if err := s.audit.Close(); err != nil {
		slog.Warn("failed to close audit logger", "error", err)
	}
}

// RunTurn processes one chat message and returns the assistant reply.
//
// A rate-limited turn is rejected before any state changes: nothing is
// persisted and the sliding window does not record the attempt. Otherwise
// the user message is stored first, so the conversation log is complete
// even when handling fails.
func (s *Service) RunTurn(ctx context.Context, req TurnRequest) TurnResult {
	if !s.limiter.Allow(req.UserID) {
		slog.Info("chat turn rate limited", "user_id", req.UserID)
		return TurnResult{Intent: IntentGeneral, Response: rateLimitedResponse, RateLimited: true}
	}

	if err := s.repo.InsertChatMessage(ctx, &domain.ChatMessage{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Role:      domain.ChatRoleUser,
		Content:   req.Message,
	}); err != nil {
		slog.Error("failed to persist user message", "user_id", req.UserID, "error", err)
		return TurnResult{Intent: IntentGeneral, Response: turnFailureResponse}
	}
	s.audit.Log(AuditEvent{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Direction: "user",
		Content:   req.Message,
	})

	normalized := Normalize(req.Message)
	summary := s.conversationSummary(ctx, req.SessionID)

	in := turnInput{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Raw:       req.Message,
		Routed:    normalized,
	}
	if summary != "" {
		in.Contextual = "CONTEXT_SUMMARY:\n" + summary + "\n\nUser: " + normalized
	}

	intent := Route(normalized, s.sessionContext(ctx, req.SessionID))
	result := s.dispatch(ctx, intent, in)

	s.sessions.SetLastIntent(req.SessionID, result.Intent)

	if err := s.repo.InsertChatMessage(ctx, &domain.ChatMessage{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Role:      domain.ChatRoleAssistant,
		Content:   result.Response,
	}); err != nil {
		// The reply still goes out; only the log is incomplete.
		slog.Error("failed to persist assistant message", "user_id", req.UserID, "error", err)
	}

	// Audit records are best effort and never fail the turn.
	if err := s.repo.InsertSearchLog(ctx, &domain.SearchLog{
		UserID:       req.UserID,
		Query:        req.Message,
		SQLGenerated: result.SQLGenerated,
	}); err != nil {
		slog.Warn("failed to write search log", "user_id", req.UserID, "error", err)
	}
	s.audit.Log(AuditEvent{
		UserID:       req.UserID,
		SessionID:    req.SessionID,
		Direction:    "assistant",
		Intent:       string(result.Intent),
		Content:      result.Response,
		SQLGenerated: result.SQLGenerated,
	})

	return result
}

// dispatch executes the handler for an intent. A handler panic is contained
// to the turn: it is logged and converted into a generic failure reply.
func (s *Service) dispatch(ctx context.Context, intent Intent, in turnInput) (result TurnResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("agent handler panicked", "intent", string(intent), "user_id", in.UserID, "panic", fmt.Sprint(r))
			result = TurnResult{Intent: intent, Response: turnFailureResponse}
		}
	}()

	switch intent {
	case IntentSafetyBlock:
		return s.handlers.SafetyBlock(ctx, in)
	case IntentCreateJob:
		return s.createJob.Handle(ctx, in)
	case IntentSearchJobs:
		return s.handlers.SearchJobs(ctx, in)
	case IntentGetApplicants:
		return s.handlers.GetApplicants(ctx, in)
	case IntentRankApplicants:
		return s.handlers.RankApplicants(ctx, in)
	case IntentSQLStats:
		return s.handlers.Stats(ctx, in)
	default:
		return s.handlers.General(ctx, in)
	}
}

// sessionContext assembles what the router may consult beyond the message.
func (s *Service) sessionContext(ctx context.Context, sessionID string) SessionContext {
	sctx := SessionContext{
		HasPendingJob: s.sessions.PendingJob(sessionID) != nil,
		LastIntent:    s.sessions.LastIntent(sessionID),
	}
	if sctx.LastIntent == "" {
		// Legacy sessions without a recorded intent fall back to scanning
		// recent assistant messages.
		history, err := s.repo.RecentChatMessages(ctx, sessionID, s.historyLimit)
		if err != nil {
			slog.Warn("failed to load chat history for routing", "session_id", sessionID, "error", err)
			return sctx
		}
		for i := len(history) - 1; i >= 0; i-- {
			if history[i].Role == domain.ChatRoleAssistant {
				sctx.AssistantMessages = append(sctx.AssistantMessages, history[i].Content)
			}
		}
	}
	return sctx
}

// conversationSummary returns the rolling summary for long sessions,
// refreshing it when enough new messages have accumulated since it was
// computed. Short sessions and summarization failures yield "".
func (s *Service) conversationSummary(ctx context.Context, sessionID string) string {
	if s.completer == nil {
		return ""
	}

	count, err := s.repo.CountChatMessages(ctx, sessionID)
	if err != nil {
		slog.Warn("failed to count chat messages", "session_id", sessionID, "error", err)
		return ""
	}
	if count < s.summaryThreshold {
		return ""
	}

	cached, at, ok := s.sessions.Summary(sessionID)
	if ok && count-at < s.summaryRefreshEvery {
		return cached
	}

	history, err := s.repo.RecentChatMessages(ctx, sessionID, s.historyLimit)
	if err != nil {
		slog.Warn("failed to load chat history for summary", "session_id", sessionID, "error", err)
		return cached
	}

	var transcript strings.Builder
	for _, msg := range history {
		transcript.WriteString(msg.Role)
		transcript.WriteString(": ")
		transcript.WriteString(msg.Content)
		transcript.WriteString("\n")
	}

	summaryCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	summary, err := s.completer.Complete(summaryCtx, fmt.Sprintf(conversationSummaryPrompt, transcript.String()))
	if err != nil {
		slog.Warn("conversation summarization failed", "session_id", sessionID, "error", err)
		return cached
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return cached
	}

	s.sessions.StoreSummary(sessionID, summary, count)
	return summary
}

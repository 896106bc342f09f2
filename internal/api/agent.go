package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/hirelane/hirelane/internal/agent"
	"github.com/hirelane/hirelane/internal/identity"
)

// AgentHandler handles conversational assistant endpoints.
type AgentHandler struct {
	*Handler
	agent *agent.Service
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(base *Handler, svc *agent.Service) *AgentHandler {
	return &AgentHandler{Handler: base, agent: svc}
}

// RegisterRoutes registers agent routes.
func (h *AgentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/agent", func(r chi.Router) {
		r.Post("/chat", h.Chat)
	})
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type chatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Intent         string `json:"intent"`
	SQLGenerated   string `json:"sql_generated,omitempty"`
}

// Chat handles POST /api/agent/chat. A missing conversation_id starts a
// fresh conversation; the generated ID is returned so the client can
// continue it.
func (h *AgentHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	slog.Info("Agent chat request",
		"user_id", userID,
		"conversation_id", conversationID,
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"message_length", len(req.Message),
	)

	result := h.agent.RunTurn(r.Context(), agent.TurnRequest{
		Message:   req.Message,
		UserID:    userID,
		SessionID: conversationID,
	})
	if result.RateLimited {
		w.Header().Set("Retry-After", "60")
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	JSON(w, http.StatusOK, chatResponse{
		Response:       result.Response,
		ConversationID: conversationID,
		Intent:         string(result.Intent),
		SQLGenerated:   result.SQLGenerated,
	})
}

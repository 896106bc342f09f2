package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hirelane/hirelane/internal/ats"
	"github.com/hirelane/hirelane/internal/identity"
)

// ATSHandler handles applicant ranking endpoints.
type ATSHandler struct {
	*Handler
	ranker *ats.Ranker
}

// NewATSHandler creates a new ATS handler.
func NewATSHandler(base *Handler, ranker *ats.Ranker) *ATSHandler {
	return &ATSHandler{Handler: base, ranker: ranker}
}

// RegisterRoutes registers ATS routes.
func (h *ATSHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/ats", func(r chi.Router) {
		r.Post("/rank", h.Rank)
	})
}

type rankRequest struct {
	JobID string `json:"job_id"`
}

// Rank handles POST /api/ats/rank.
func (h *ATSHandler) Rank(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req rankRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.JobID) == "" {
		Error(w, http.StatusBadRequest, "job_id is required")
		return
	}

	result, err := h.ranker.Rank(r.Context(), req.JobID)
	if err != nil {
		slog.Error("Failed to rank applicants", "error", err, "job_id", req.JobID, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to rank applicants")
		return
	}

	slog.Info("Applicants ranked", "job_id", req.JobID, "count", len(result.Applicants), "user_id", userID)
	JSON(w, http.StatusOK, result)
}

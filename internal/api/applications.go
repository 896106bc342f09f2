package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hirelane/hirelane/internal/domain"
	"github.com/hirelane/hirelane/internal/identity"
)

// ApplicationsHandler handles job application endpoints.
type ApplicationsHandler struct {
	*Handler
}

// NewApplicationsHandler creates a new applications handler.
func NewApplicationsHandler(base *Handler) *ApplicationsHandler {
	return &ApplicationsHandler{Handler: base}
}

// RegisterRoutes registers application routes.
func (h *ApplicationsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/applications", func(r chi.Router) {
		r.Post("/", h.Apply)
		r.Get("/job/{jobID}", h.ListForJob)
	})
}

type applyRequest struct {
	JobID         string `json:"job_id"`
	ApplicantName string `json:"applicant_name"`
	CVURL         string `json:"cv_url"`
	CoverLetter   string `json:"cover_letter"`
}

// Apply handles POST /api/applications.
func (h *ApplicationsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req applyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.JobID) == "" {
		Error(w, http.StatusBadRequest, "job_id is required")
		return
	}

	job, err := h.repo.GetJob(r.Context(), req.JobID)
	if err != nil {
		slog.Error("Failed to load job for application", "error", err, "job_id", req.JobID)
		Error(w, http.StatusInternalServerError, "failed to submit application")
		return
	}
	if job == nil {
		Error(w, http.StatusNotFound, "job not found")
		return
	}
	if !job.IsOpen() {
		Error(w, http.StatusConflict, "job is closed to new applications")
		return
	}

	app := &domain.Application{
		JobID:         job.ID,
		ApplicantID:   userID,
		ApplicantName: strings.TrimSpace(req.ApplicantName),
		CVURL:         strings.TrimSpace(req.CVURL),
		CoverLetter:   strings.TrimSpace(req.CoverLetter),
	}
	if err := h.repo.InsertApplication(r.Context(), app); err != nil {
		slog.Error("Failed to insert application", "error", err, "job_id", job.ID, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to submit application")
		return
	}

	slog.Info("Application submitted", "application_id", app.ID, "job_id", job.ID, "user_id", userID)
	JSON(w, http.StatusCreated, app)
}

// ListForJob handles GET /api/applications/job/{jobID}.
func (h *ApplicationsHandler) ListForJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	apps, err := h.repo.ListApplications(r.Context(), jobID)
	if err != nil {
		slog.Error("Failed to list applications", "error", err, "job_id", jobID)
		Error(w, http.StatusInternalServerError, "failed to list applications")
		return
	}
	if apps == nil {
		apps = []*domain.Application{}
	}
	JSON(w, http.StatusOK, apps)
}

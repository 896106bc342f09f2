package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hirelane/hirelane/internal/domain"
	"github.com/hirelane/hirelane/internal/identity"
)

// JobsHandler handles job posting endpoints.
type JobsHandler struct {
	*Handler
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(base *Handler) *JobsHandler {
	return &JobsHandler{Handler: base}
}

// RegisterRoutes registers job routes.
func (h *JobsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/jobs", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/by-recruiter/{recruiterID}", h.ListByRecruiter)
		r.Post("/close/{jobID}", h.Close)
		r.Get("/{jobID}", h.Get)
	})
}

type createJobRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Location     string `json:"location"`
	Salary       string `json:"salary"`
}

// Create handles POST /api/jobs.
func (h *JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createJobRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Location) == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		Error(w, http.StatusBadRequest, "missing required fields: "+strings.Join(missing, ", "))
		return
	}

	job := &domain.Job{
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Requirements: strings.TrimSpace(req.Requirements),
		Location:     strings.TrimSpace(req.Location),
		Salary:       strings.TrimSpace(req.Salary),
		Status:       domain.JobStatusOpen,
		CreatedBy:    userID,
	}
	if err := h.repo.InsertJob(r.Context(), job); err != nil {
		slog.Error("Failed to create job", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	slog.Info("Job created", "job_id", job.ID, "user_id", userID)
	JSON(w, http.StatusCreated, job)
}

// List handles GET /api/jobs.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.repo.ListJobs(r.Context())
	if err != nil {
		slog.Error("Failed to list jobs", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []*domain.Job{}
	}
	JSON(w, http.StatusOK, jobs)
}

// Get handles GET /api/jobs/{jobID}.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.repo.GetJob(r.Context(), jobID)
	if err != nil {
		slog.Error("Failed to get job", "error", err, "job_id", jobID)
		Error(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	if job == nil {
		Error(w, http.StatusNotFound, "job not found")
		return
	}
	JSON(w, http.StatusOK, job)
}

// ListByRecruiter handles GET /api/jobs/by-recruiter/{recruiterID}.
func (h *JobsHandler) ListByRecruiter(w http.ResponseWriter, r *http.Request) {
	recruiterID := chi.URLParam(r, "recruiterID")

	jobs, err := h.repo.ListJobsByRecruiter(r.Context(), recruiterID)
	if err != nil {
		slog.Error("Failed to list recruiter jobs", "error", err, "recruiter_id", recruiterID)
		Error(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []*domain.Job{}
	}
	JSON(w, http.StatusOK, jobs)
}

// Close handles POST /api/jobs/close/{jobID}. Only the recruiter who
// created a job may close it.
func (h *JobsHandler) Close(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	jobID := chi.URLParam(r, "jobID")

	job, err := h.repo.GetJob(r.Context(), jobID)
	if err != nil {
		slog.Error("Failed to get job for close", "error", err, "job_id", jobID)
		Error(w, http.StatusInternalServerError, "failed to close job")
		return
	}
	if job == nil {
		Error(w, http.StatusNotFound, "job not found")
		return
	}
	if job.CreatedBy != "" && job.CreatedBy != userID {
		Error(w, http.StatusForbidden, "only the job owner can close it")
		return
	}

	if err := h.repo.CloseJob(r.Context(), jobID); err != nil {
		slog.Error("Failed to close job", "error", err, "job_id", jobID)
		Error(w, http.StatusInternalServerError, "failed to close job")
		return
	}

	slog.Info("Job closed", "job_id", jobID, "user_id", userID)
	JSON(w, http.StatusOK, map[string]string{"status": "closed", "job_id": jobID})
}

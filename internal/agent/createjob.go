package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hirelane/hirelane/internal/domain"
	"github.com/hirelane/hirelane/internal/store"
)

// Required and optional create-job slots. Creation proceeds once the two
// required fields are known; the optional ones get generated defaults.
var requiredJobFields = []string{"title", "location"}

const defaultRequirements = "3+ years of relevant experience and strong communication skills."

// createIntentKeywords decide whether a message is itself a fresh creation
// request, as opposed to slot-filling input for a pending one.
var createIntentKeywords = []string{
	"create a job", "post a job", "add a job", "create job", "post job",
	"job posting", "role posting", "new job", "another job", "create a new one",
	"create a role", "post a role", "add a role", "create role", "post role",
	"new role",
	"please post", "please create", "post an", "create an", "posting for",
	"role for", "role in", "hiring for", "hiring a", "we need a",
	"looking to hire",
	"coordinator role", "technician role", "developer role", "engineer role",
	"manager role", "analyst role", "specialist role",
}

func looksLikeJobRequest(message string) bool {
	return containsAny(strings.ToLower(message), createIntentKeywords)
}

// CreateJobHandler drives the multi-turn job creation state machine.
type CreateJobHandler struct {
	repo      store.Repository
	sessions  *SessionCache
	extractor *Extractor
}

// NewCreateJobHandler creates the handler.
func NewCreateJobHandler(repo store.Repository, sessions *SessionCache, extractor *Extractor) *CreateJobHandler {
	return &CreateJobHandler{repo: repo, sessions: sessions, extractor: extractor}
}

// Handle runs one turn of the creation flow.
//
// With a pending job and a message that is not itself a fresh creation
// request, the message is pure slot-filling input: newly extracted values
// merge over the stored slots and the missing-required check reruns. A
// fresh creation request always starts from clean slots, replacing any
// pending operation rather than merging into it.
func (h *CreateJobHandler) Handle(ctx context.Context, in turnInput) TurnResult {
	message := strings.TrimSpace(in.Routed)
	if message == "" {
		return TurnResult{
			Intent:   IntentCreateJob,
			Response: "Please share the job details you'd like me to post.",
		}
	}

	unlock := h.sessions.Lock(in.SessionID)
	defer unlock()

	pending := h.sessions.PendingJob(in.SessionID)

	var job domain.PendingJob
	switch {
	case pending != nil && !looksLikeJobRequest(message):
		// Slot-filling turn: extract against the full schema and merge
		// non-empty values over the stored slots.
		extracted := h.extractor.ExtractJobFields(ctx, message)
		job = *pending
		mergeJobFields(&job, &extracted)
		ensureJobDefaults(&job)

		if missing := missingRequiredFields(&job); len(missing) > 0 {
			h.sessions.StorePendingJob(in.SessionID, &job)
			return TurnResult{Intent: IntentCreateJob, Response: missingFieldsResponse(missing)}
		}
		h.sessions.ClearPendingJob(in.SessionID)

	default:
		if !looksLikeJobRequest(message) {
			return TurnResult{
				Intent: IntentCreateJob,
				Response: "I didn't detect a job creation request. Ask me to create a role by " +
					"sharing the title, location, and a brief overview.",
			}
		}

		job = h.extractor.ExtractJobFields(ctx, message)
		if len(job.Slots()) == 0 {
			return TurnResult{
				Intent: IntentCreateJob,
				Response: "I couldn't detect job creation details in that message. " +
					"Share the title, location, and key details so I can post it.",
			}
		}
		ensureJobDefaults(&job)

		if missing := missingRequiredFields(&job); len(missing) > 0 {
			// Replaces any previous pending operation for this session.
			h.sessions.StorePendingJob(in.SessionID, &job)
			return TurnResult{Intent: IntentCreateJob, Response: missingFieldsResponse(missing)}
		}
	}

	record := &domain.Job{
		Title:        job.Title,
		Description:  job.Description,
		Requirements: job.Requirements,
		Location:     job.Location,
		Salary:       job.Salary,
		CreatedBy:    in.UserID,
	}
	if err := h.repo.InsertJob(ctx, record); err != nil {
		// Surface the parsed payload so the extraction work is not lost;
		// the caller completes the operation out-of-band.
		slog.Warn("job insert failed", "user_id", in.UserID, "error", err)
		payload, _ := json.MarshalIndent(job.Slots(), "", "  ")
		return TurnResult{
			Intent: IntentCreateJob,
			Response: fmt.Sprintf(
				"I extracted the job details but couldn't save them automatically. "+
					"Error: %v\n\nYou can POST this JSON to /api/jobs as a recruiter:\n%s",
				err, payload),
		}
	}

	h.sessions.ClearPendingJob(in.SessionID)
	return TurnResult{Intent: IntentCreateJob, Response: jobCreatedResponse(&job)}
}

// mergeJobFields copies non-empty fields from src over dst.
func mergeJobFields(dst, src *domain.PendingJob) {
	if src.Title != "" {
		dst.Title = src.Title
	}
	if src.Description != "" {
		dst.Description = src.Description
	}
	if src.Requirements != "" {
		dst.Requirements = src.Requirements
	}
	if src.Location != "" {
		dst.Location = src.Location
	}
	if src.Salary != "" {
		dst.Salary = src.Salary
	}
}

// ensureJobDefaults fills the optional fields once a title is known, so
// creation can proceed with just the required slots.
func ensureJobDefaults(job *domain.PendingJob) {
	if job.Title == "" {
		return
	}
	if job.Requirements == "" {
		job.Requirements = defaultRequirements
	}
	if job.Description == "" {
		place := job.Location
		if place == "" {
			place = "our team"
		}
		job.Description = fmt.Sprintf("We are seeking a %s based in %s. The role focuses on %s.",
			job.Title, place, job.Requirements)
	}
}

func missingRequiredFields(job *domain.PendingJob) []string {
	slots := job.Slots()
	var missing []string
	for _, field := range requiredJobFields {
		if slots[field] == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// missingFieldsResponse enumerates exactly the missing required fields,
// never re-asking for slots already filled.
func missingFieldsResponse(missing []string) string {
	guidance := map[string]string{
		"title":    "What's the job title (e.g. 'Operations Coordinator')?",
		"location": "Where is the role based (city/country or Remote)?",
	}
	lines := []string{"I still need a few details before I can post the job:"}
	for _, field := range missing {
		g := guidance[field]
		if g == "" {
			g = "Please provide this detail."
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", titleCase(field), g))
	}
	lines = append(lines, "Please reply with the missing info in one message.")
	return strings.Join(lines, "\n")
}

func jobCreatedResponse(job *domain.PendingJob) string {
	var b strings.Builder
	b.WriteString("Job created successfully!\n\n")
	if job.Title != "" {
		fmt.Fprintf(&b, "%s\n", job.Title)
	}
	if job.Location != "" {
		fmt.Fprintf(&b, "Location: %s", job.Location)
		if job.Salary != "" {
			fmt.Fprintf(&b, " — Salary: %s", job.Salary)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nDescription:\n")
	if job.Description != "" {
		b.WriteString(job.Description)
	} else {
		b.WriteString("Description provided upon request.")
	}
	b.WriteString("\n\nRequirements:\n")
	if job.Requirements != "" {
		b.WriteString(job.Requirements)
	} else {
		b.WriteString(defaultRequirements)
	}
	return b.String()
}

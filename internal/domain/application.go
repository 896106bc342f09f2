package domain

import (
	"time"
)

// Application represents a candidate's application to a job.
type Application struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	ApplicantID   string    `json:"applicant_id"`
	ApplicantName string    `json:"applicant_name,omitempty"`
	CVURL         string    `json:"cv_url,omitempty"`
	CoverLetter   string    `json:"cover_letter,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	// Applicant is the joined user record, populated on list queries.
	Applicant *User `json:"applicant,omitempty"`
}

// CandidateName returns the best available name for display and ranking.
func (a *Application) CandidateName() string {
	if a.ApplicantName != "" {
		return a.ApplicantName
	}
	if a.Applicant != nil {
		return a.Applicant.DisplayName()
	}
	return "Candidate"
}

// RankedApplicant is one scored entry in an ATS ranking.
type RankedApplicant struct {
	ApplicationID string   `json:"application_id"`
	ApplicantID   string   `json:"applicant_id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Score         float64  `json:"score"`
	Summary       string   `json:"summary"`
	CVURL         string   `json:"cv_url"`
	Skills        []string `json:"skills"`
}

// RankingResult is the outcome of ranking every applicant for a job.
type RankingResult struct {
	JobID      string            `json:"job_id"`
	JobTitle   string            `json:"job_title"`
	Applicants []RankedApplicant `json:"applicants"`
}

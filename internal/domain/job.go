package domain

import (
	"time"
)

// Job statuses.
const (
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

// Job represents a job posting.
type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Location     string    `json:"location,omitempty"`
	Salary       string    `json:"salary,omitempty"`
	Status       string    `json:"status"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsOpen returns true if the job still accepts applications.
func (j *Job) IsOpen() bool {
	return j.Status != JobStatusClosed
}

// JobFilter holds the optional search criteria extracted from a query.
type JobFilter struct {
	Keywords string
	Location string
	Salary   string
}

// IsEmpty returns true when no criterion is set.
func (f JobFilter) IsEmpty() bool {
	return f.Keywords == "" && f.Location == "" && f.Salary == ""
}

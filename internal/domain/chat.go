package domain

import (
	"time"
)

// Chat message roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn direction in a conversation. Messages are
// append-only: once written they are never mutated or deleted.
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingJob records a started-but-incomplete job creation for a session.
// Slots with empty values are treated as absent.
type PendingJob struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	Requirements string `json:"requirements,omitempty"`
	Location     string `json:"location,omitempty"`
	Salary       string `json:"salary,omitempty"`
}

// Slots returns the pending job as a field map, omitting absent fields.
func (p *PendingJob) Slots() map[string]string {
	m := make(map[string]string, 5)
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("title", p.Title)
	set("description", p.Description)
	set("requirements", p.Requirements)
	set("location", p.Location)
	set("salary", p.Salary)
	return m
}

// SearchLog is one best-effort audit record of an agent query.
type SearchLog struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Query        string    `json:"query"`
	SQLGenerated string    `json:"sql_generated,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

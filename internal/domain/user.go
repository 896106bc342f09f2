// Package domain contains core domain types for the recruitment platform.
package domain

import (
	"strings"
	"time"
)

// User roles.
const (
	RoleApplicant = "applicant"
	RoleRecruiter = "recruiter"
)

// User represents a platform user (applicant or recruiter).
type User struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRecruiter returns true if the user may create and manage jobs.
func (u *User) IsRecruiter() bool {
	return u.Role == RoleRecruiter
}

// DisplayName returns the best available human-readable name.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Email != "" {
		if at := strings.IndexByte(u.Email, '@'); at > 0 {
			return u.Email[:at]
		}
		return u.Email
	}
	return "Candidate"
}

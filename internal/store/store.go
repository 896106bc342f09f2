// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/hirelane/hirelane/internal/domain"
)

// LocationCount is one row of the jobs-by-location statistic.
type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// TitleCount is one row of the top-job-titles statistic.
type TitleCount struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// Repository defines the interface for persisting platform data.
// Errors are returned as values at this boundary, never panics.
type Repository interface {
	// GetUser retrieves a user by ID. Returns (nil, nil) when absent.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// InsertJob persists a new job posting and fills in its ID and timestamps.
	InsertJob(ctx context.Context, job *domain.Job) error

	// GetJob retrieves a job by ID. Returns (nil, nil) when absent.
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)

	// ListJobs retrieves all jobs, newest first.
	ListJobs(ctx context.Context) ([]*domain.Job, error)

	// ListJobsByRecruiter retrieves jobs created by a recruiter, newest first.
	ListJobsByRecruiter(ctx context.Context, recruiterID string) ([]*domain.Job, error)

	// CloseJob marks a job as closed.
	CloseJob(ctx context.Context, jobID string) error

	// InsertApplication persists a new application.
	InsertApplication(ctx context.Context, app *domain.Application) error

	// ListApplications retrieves applications with the applicant user joined.
	// An empty jobID returns applications across all jobs.
	ListApplications(ctx context.Context, jobID string) ([]*domain.Application, error)

	// InsertChatMessage appends one message to the immutable conversation log.
	InsertChatMessage(ctx context.Context, msg *domain.ChatMessage) error

	// RecentChatMessages retrieves the last limit messages for a session in
	// chronological order.
	RecentChatMessages(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error)

	// CountChatMessages returns the number of persisted messages for a session.
	CountChatMessages(ctx context.Context, sessionID string) (int, error)

	// InsertSearchLog records an agent query for auditing. Best-effort at the
	// call site; the store itself still reports failures.
	InsertSearchLog(ctx context.Context, log *domain.SearchLog) error

	// Canned read-only statistics. Each corresponds to one pre-approved query.
	CountJobs(ctx context.Context) (int, error)
	ListRecentJobs(ctx context.Context, limit int) ([]*domain.Job, error)
	CountApplications(ctx context.Context) (int, error)
	JobsByLocation(ctx context.Context) ([]LocationCount, error)
	CountApplicationsSince(ctx context.Context, since time.Time) (int, error)
	TopJobTitles(ctx context.Context, limit int) ([]TitleCount, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

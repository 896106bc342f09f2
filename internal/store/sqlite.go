package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hirelane/hirelane/internal/domain"
	"github.com/hirelane/hirelane/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		email TEXT,
		full_name TEXT,
		role TEXT NOT NULL DEFAULT 'recruiter',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		requirements TEXT NOT NULL,
		location TEXT,
		salary TEXT,
		status TEXT NOT NULL DEFAULT 'open',
		created_by TEXT REFERENCES users(user_id),
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_jobs_recruiter ON jobs(created_by);

	CREATE TABLE IF NOT EXISTS applications (
		id TEXT PRIMARY KEY,
		job_id TEXT NOT NULL REFERENCES jobs(id),
		applicant_id TEXT NOT NULL,
		applicant_name TEXT,
		cv_url TEXT,
		cover_letter TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_applications_job ON applications(job_id);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_session ON chat_messages(session_id, created_at);

	CREATE TABLE IF NOT EXISTS search_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		query TEXT NOT NULL,
		sql_generated TEXT,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// GetUser retrieves a user by their user ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, email, full_name, role, created_at, updated_at
		FROM users WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var user domain.User
	var email, fullName sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(&user.UserID, &email, &fullName, &user.Role, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.Email = email.String
	user.FullName = fullName.String
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)

	return &user, nil
}

// UpsertUser creates or updates a user record.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (user_id, email, full_name, role, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		email = excluded.email,
		full_name = excluded.full_name,
		role = excluded.role,
		updated_at = excluded.updated_at`

	var email, fullName interface{}
	if user.Email != "" {
		email = user.Email
	}
	if user.FullName != "" {
		fullName = user.FullName
	}

	_, err := s.db.ExecContext(ctx, query,
		user.UserID, email, fullName, user.Role,
		user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// InsertJob persists a new job posting.
func (s *SQLiteStore) InsertJob(ctx context.Context, job *domain.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = domain.JobStatusOpen
	}
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now

	query := `
	INSERT INTO jobs (id, title, description, requirements, location, salary, status, created_by, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var location, salary, createdBy interface{}
	if job.Location != "" {
		location = job.Location
	}
	if job.Salary != "" {
		salary = job.Salary
	}
	if job.CreatedBy != "" {
		createdBy = job.CreatedBy
	}

	_, err := s.db.ExecContext(ctx, query,
		job.ID, job.Title, job.Description, job.Requirements,
		location, salary, job.Status, createdBy,
		now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

const jobColumns = `id, title, description, requirements, location, salary, status, created_by, created_at, updated_at`

func scanJob(scanner interface{ Scan(...interface{}) error }) (*domain.Job, error) {
	var job domain.Job
	var location, salary, createdBy sql.NullString
	var createdAt, updatedAt int64

	err := scanner.Scan(
		&job.ID, &job.Title, &job.Description, &job.Requirements,
		&location, &salary, &job.Status, &createdBy,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Location = location.String
	job.Salary = salary.String
	job.CreatedBy = createdBy.String
	job.CreatedAt = time.Unix(createdAt, 0)
	job.UpdatedAt = time.Unix(updatedAt, 0)
	return &job, nil
}

// GetJob retrieves a job by ID.
func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, jobID)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan job row: %w", err)
	}
	return job, nil
}

func (s *SQLiteStore) queryJobs(ctx context.Context, query string, args ...interface{}) ([]*domain.Job, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close job rows", "error", closeErr)
		}
	}()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// ListJobs retrieves all jobs, newest first.
func (s *SQLiteStore) ListJobs(ctx context.Context) ([]*domain.Job, error) {
	return s.queryJobs(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC`)
}

// ListJobsByRecruiter retrieves jobs created by a recruiter, newest first.
func (s *SQLiteStore) ListJobsByRecruiter(ctx context.Context, recruiterID string) ([]*domain.Job, error) {
	return s.queryJobs(ctx, `SELECT `+jobColumns+` FROM jobs WHERE created_by = ? ORDER BY created_at DESC`, recruiterID)
}

// CloseJob marks a job as closed.
func (s *SQLiteStore) CloseJob(ctx context.Context, jobID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`,
		domain.JobStatusClosed, time.Now().Unix(), jobID,
	)
	if err != nil {
		return fmt.Errorf("close job: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("job not found")
	}
	return nil
}

// InsertApplication persists a new application.
func (s *SQLiteStore) InsertApplication(ctx context.Context, app *domain.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	app.CreatedAt = time.Now()

	var name, cvURL, coverLetter interface{}
	if app.ApplicantName != "" {
		name = app.ApplicantName
	}
	if app.CVURL != "" {
		cvURL = app.CVURL
	}
	if app.CoverLetter != "" {
		coverLetter = app.CoverLetter
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (id, job_id, applicant_id, applicant_name, cv_url, cover_letter, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.JobID, app.ApplicantID, name, cvURL, coverLetter, app.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// ListApplications retrieves applications with the applicant user joined.
func (s *SQLiteStore) ListApplications(ctx context.Context, jobID string) ([]*domain.Application, error) {
	query := `
		SELECT a.id, a.job_id, a.applicant_id, a.applicant_name, a.cv_url, a.cover_letter, a.created_at,
		       u.email, u.full_name, u.role
		FROM applications a
		LEFT JOIN users u ON u.user_id = a.applicant_id`
	args := []interface{}{}
	if jobID != "" {
		query += ` WHERE a.job_id = ?`
		args = append(args, jobID)
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close application rows", "error", closeErr)
		}
	}()

	var apps []*domain.Application
	for rows.Next() {
		var app domain.Application
		var name, cvURL, coverLetter, email, fullName, role sql.NullString
		var createdAt int64

		if err := rows.Scan(
			&app.ID, &app.JobID, &app.ApplicantID, &name, &cvURL, &coverLetter, &createdAt,
			&email, &fullName, &role,
		); err != nil {
			return nil, fmt.Errorf("scan application row: %w", err)
		}

		app.ApplicantName = name.String
		app.CVURL = cvURL.String
		app.CoverLetter = coverLetter.String
		app.CreatedAt = time.Unix(createdAt, 0)
		if email.Valid || fullName.Valid || role.Valid {
			app.Applicant = &domain.User{
				UserID:   app.ApplicantID,
				Email:    email.String,
				FullName: fullName.String,
				Role:     role.String,
			}
		}
		apps = append(apps, &app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

// InsertChatMessage appends one message to the conversation log.
// Timestamps are stored as ISO-8601 UTC for audit and replay.
// Retries once on SQLite lock contention.
func (s *SQLiteStore) InsertChatMessage(ctx context.Context, msg *domain.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	exec := func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO chat_messages (id, session_id, user_id, role, content, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			msg.ID, msg.SessionID, msg.UserID, msg.Role, msg.Content,
			msg.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		return err
	}

	err := exec()
	if shared.IsSQLiteConflictError(err) {
		time.Sleep(100 * time.Millisecond)
		err = exec()
	}
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// RecentChatMessages retrieves the last limit messages for a session in
// chronological order.
func (s *SQLiteStore) RecentChatMessages(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, user_id, role, content, created_at
		FROM chat_messages WHERE session_id = ?
		ORDER BY created_at DESC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close chat message rows", "error", closeErr)
		}
	}()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var createdAt string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.UserID, &msg.Role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chat message row: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			msg.CreatedAt = ts
		}
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// CountChatMessages returns the number of persisted messages for a session.
func (s *SQLiteStore) CountChatMessages(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE session_id = ?`, sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count chat messages: %w", err)
	}
	return n, nil
}

// InsertSearchLog records an agent query for auditing.
func (s *SQLiteStore) InsertSearchLog(ctx context.Context, log *domain.SearchLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	var sqlGenerated interface{}
	if log.SQLGenerated != "" {
		sqlGenerated = log.SQLGenerated
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_logs (id, user_id, query, sql_generated, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		log.ID, log.UserID, log.Query, sqlGenerated, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert search log: %w", err)
	}
	return nil
}

// CountJobs returns the total number of job postings.
func (s *SQLiteStore) CountJobs(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}

// ListRecentJobs returns the most recently created jobs.
func (s *SQLiteStore) ListRecentJobs(ctx context.Context, limit int) ([]*domain.Job, error) {
	return s.queryJobs(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC LIMIT ?`, limit)
}

// CountApplications returns the total number of applications.
func (s *SQLiteStore) CountApplications(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}

// JobsByLocation returns job counts grouped by location, most jobs first.
func (s *SQLiteStore) JobsByLocation(ctx context.Context) ([]LocationCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(location, 'Unspecified'), COUNT(*) AS job_count
		FROM jobs GROUP BY location ORDER BY job_count DESC`)
	if err != nil {
		return nil, fmt.Errorf("query jobs by location: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close location rows", "error", closeErr)
		}
	}()

	var counts []LocationCount
	for rows.Next() {
		var lc LocationCount
		if err := rows.Scan(&lc.Location, &lc.Count); err != nil {
			return nil, fmt.Errorf("scan location row: %w", err)
		}
		counts = append(counts, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return counts, nil
}

// CountApplicationsSince returns the number of applications created at or
// after the given time.
func (s *SQLiteStore) CountApplicationsSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE created_at >= ?`, since.Unix(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count recent applications: %w", err)
	}
	return n, nil
}

// TopJobTitles returns the most common job titles.
func (s *SQLiteStore) TopJobTitles(ctx context.Context, limit int) ([]TitleCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, COUNT(*) AS count FROM jobs
		GROUP BY title ORDER BY count DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top job titles: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close title rows", "error", closeErr)
		}
	}()

	var counts []TitleCount
	for rows.Next() {
		var tc TitleCount
		if err := rows.Scan(&tc.Title, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan title row: %w", err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate titles: %w", err)
	}
	return counts, nil
}

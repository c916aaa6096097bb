package repository

import (
	"context"
	"time"

	"portfolio-api/internal/domain"
)

// ContactRepository defines the interface for contact submission storage
type ContactRepository interface {
	// StoreSubmission persists a submission, its audit-log row and the
	// daily analytics increment in one transaction, returning the new id
	StoreSubmission(ctx context.Context, name, email, subject, message string, ip, userAgent *string) (string, error)

	// GetSubmissions returns a page of submissions, newest first, plus the
	// total count
	GetSubmissions(ctx context.Context, limit, offset int) ([]domain.ContactSubmission, int64, error)

	// GetSubmission returns a single submission, or nil when absent
	GetSubmission(ctx context.Context, id string) (*domain.ContactSubmission, error)

	// UpdateStatus moves a submission between states and appends a
	// status_changed audit entry
	UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus) (bool, error)

	// AddNotes attaches free-text moderation notes to a submission
	AddNotes(ctx context.Context, id, notes string) (bool, error)

	// DeleteOldSubmissions removes archived submissions older than the
	// cutoff and returns the number deleted
	DeleteOldSubmissions(ctx context.Context, daysOld int) (int64, error)
}

// AnalyticsRepository defines the interface for daily contact analytics
type AnalyticsRepository interface {
	// RecordSecurityEvent increments today's honeypot or rate-limit counter
	RecordSecurityEvent(ctx context.Context, event domain.SecurityEventType) error

	// GetRange returns analytics rows between two dates inclusive,
	// descending by date
	GetRange(ctx context.Context, start, end time.Time) ([]domain.AnalyticsDay, error)

	// GetToday returns today's analytics row, or nil when none exists yet
	GetToday(ctx context.Context) (*domain.AnalyticsDay, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Contact   ContactRepository
	Analytics AnalyticsRepository
}

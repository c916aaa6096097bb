package domain

import (
	"encoding/json"
	"time"
)

// SubmissionStatus is the moderation state of a contact submission.
type SubmissionStatus string

const (
	StatusNew      SubmissionStatus = "new"
	StatusRead     SubmissionStatus = "read"
	StatusArchived SubmissionStatus = "archived"
)

// ValidStatus reports whether s is one of the known submission states.
func ValidStatus(s SubmissionStatus) bool {
	switch s {
	case StatusNew, StatusRead, StatusArchived:
		return true
	}
	return false
}

// ContactSubmission is a stored contact-form message.
type ContactSubmission struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Subject   *string          `json:"subject"`
	Message   string           `json:"message"`
	IPAddress *string          `json:"ip_address"`
	UserAgent *string          `json:"user_agent"`
	Status    SubmissionStatus `json:"status"`
	Notes     *string          `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// AuditEventType identifies an audit-log event.
type AuditEventType string

const (
	EventSubmitted     AuditEventType = "submitted"
	EventStatusChanged AuditEventType = "status_changed"
)

// AuditLogEntry is an append-only record of something that happened to a
// submission.
type AuditLogEntry struct {
	ID           string          `json:"id"`
	SubmissionID string          `json:"submission_id"`
	EventType    AuditEventType  `json:"event_type"`
	EventData    json.RawMessage `json:"event_data"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SecurityEventType identifies a spam-defense counter.
type SecurityEventType string

const (
	SecurityEventHoneypot  SecurityEventType = "honeypot"
	SecurityEventRateLimit SecurityEventType = "rate_limit"
)

// AnalyticsDay is the daily contact-form counter row, one per calendar date.
type AnalyticsDay struct {
	Date              string `json:"date"`
	TotalSubmissions  int    `json:"total_submissions"`
	UniqueVisitors    int    `json:"unique_visitors"`
	HoneypotCatches   int    `json:"honeypot_catches"`
	RateLimitHits     int    `json:"rate_limit_hits"`
	AvgResponseTimeMs *int   `json:"avg_response_time_ms,omitempty"`
}

// WeekSummary is the rolling 7-day aggregate returned by the summary view.
type WeekSummary struct {
	TotalSubmissions int `json:"total_submissions"`
	UniqueVisitors   int `json:"unique_visitors"`
	HoneypotCatches  int `json:"honeypot_catches"`
}

// AnalyticsSummary is the default analytics endpoint response.
type AnalyticsSummary struct {
	Today             AnalyticsDay        `json:"today"`
	WeekSummary       WeekSummary         `json:"weekSummary"`
	TotalSubmissions  int64               `json:"totalSubmissions"`
	RecentSubmissions []ContactSubmission `json:"recentSubmissions"`
}

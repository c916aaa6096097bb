package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"portfolio-api/internal/domain"
	"portfolio-api/pkg/database"
)

// analyticsRepository handles daily contact analytics with PostgreSQL
type analyticsRepository struct {
	db *database.PostgresDB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *database.PostgresDB) AnalyticsRepository {
	return &analyticsRepository{
		db: db,
	}
}

// RecordSecurityEvent increments today's honeypot or rate-limit counter.
// The upsert keeps concurrent increments for the same date atomic.
func (r *analyticsRepository) RecordSecurityEvent(ctx context.Context, event domain.SecurityEventType) error {
	var query string
	switch event {
	case domain.SecurityEventHoneypot:
		query = `
			INSERT INTO contact_analytics (date, honeypot_catches)
			VALUES (CURRENT_DATE, 1)
			ON CONFLICT (date) DO UPDATE SET
				honeypot_catches = contact_analytics.honeypot_catches + 1,
				updated_at = CURRENT_TIMESTAMP
		`
	case domain.SecurityEventRateLimit:
		query = `
			INSERT INTO contact_analytics (date, rate_limit_hits)
			VALUES (CURRENT_DATE, 1)
			ON CONFLICT (date) DO UPDATE SET
				rate_limit_hits = contact_analytics.rate_limit_hits + 1,
				updated_at = CURRENT_TIMESTAMP
		`
	default:
		return fmt.Errorf("unknown security event type: %s", event)
	}

	if _, err := r.db.Pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to record security event: %w", err)
	}

	return nil
}

// GetRange returns analytics rows between two dates inclusive, newest first.
func (r *analyticsRepository) GetRange(ctx context.Context, start, end time.Time) ([]domain.AnalyticsDay, error) {
	query := `
		SELECT date, total_submissions, unique_visitors, honeypot_catches, rate_limit_hits, avg_response_time_ms
		FROM contact_analytics
		WHERE date BETWEEN $1 AND $2
		ORDER BY date DESC
	`

	rows, err := r.db.Pool.Query(ctx, query,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact analytics: %w", err)
	}
	defer rows.Close()

	var days []domain.AnalyticsDay
	for rows.Next() {
		var d domain.AnalyticsDay
		var date time.Time
		err := rows.Scan(
			&date,
			&d.TotalSubmissions,
			&d.UniqueVisitors,
			&d.HoneypotCatches,
			&d.RateLimitHits,
			&d.AvgResponseTimeMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analytics row: %w", err)
		}
		d.Date = date.Format("2006-01-02")
		days = append(days, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading analytics rows: %w", err)
	}

	return days, nil
}

// GetToday returns today's analytics row, or nil when no submissions or
// security events have been recorded yet.
func (r *analyticsRepository) GetToday(ctx context.Context) (*domain.AnalyticsDay, error) {
	query := `
		SELECT date, total_submissions, unique_visitors, honeypot_catches, rate_limit_hits, avg_response_time_ms
		FROM contact_analytics
		WHERE date = CURRENT_DATE
	`

	var d domain.AnalyticsDay
	var date time.Time
	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&date,
		&d.TotalSubmissions,
		&d.UniqueVisitors,
		&d.HoneypotCatches,
		&d.RateLimitHits,
		&d.AvgResponseTimeMs,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get today's analytics: %w", err)
	}

	d.Date = date.Format("2006-01-02")
	return &d, nil
}

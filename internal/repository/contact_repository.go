package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"portfolio-api/internal/domain"
	"portfolio-api/pkg/database"
)

// contactRepository handles contact submission storage with PostgreSQL
type contactRepository struct {
	db *database.PostgresDB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *database.PostgresDB) ContactRepository {
	return &contactRepository{
		db: db,
	}
}

// StoreSubmission inserts the submission row, the submitted audit-log entry
// and today's analytics increment in a single transaction. The
// unique-visitor counter is bumped only when the submitting IP has not been
// seen today, tracked via a conflict-free insert into contact_daily_ips.
func (r *contactRepository) StoreSubmission(ctx context.Context, name, email, subject, message string, ip, userAgent *string) (string, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	id := uuid.NewString()

	var subjectVal *string
	if subject != "" {
		subjectVal = &subject
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO contact_submissions (id, name, email, subject, message, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, name, email, subjectVal, message, ip, userAgent)
	if err != nil {
		return "", fmt.Errorf("failed to insert contact submission: %w", err)
	}

	eventData, err := json.Marshal(map[string]string{"method": "contact_form"})
	if err != nil {
		return "", fmt.Errorf("failed to encode audit event data: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO contact_audit_log (submission_id, event_type, event_data)
		VALUES ($1, $2, $3)
	`, id, domain.EventSubmitted, eventData)
	if err != nil {
		return "", fmt.Errorf("failed to insert audit log entry: %w", err)
	}

	// A conflict-free insert decides whether this IP is new for today.
	newVisitor := false
	if ip != nil {
		tag, err := tx.Exec(ctx, `
			INSERT INTO contact_daily_ips (date, ip_address)
			VALUES (CURRENT_DATE, $1)
			ON CONFLICT (date, ip_address) DO NOTHING
		`, *ip)
		if err != nil {
			return "", fmt.Errorf("failed to record daily visitor ip: %w", err)
		}
		newVisitor = tag.RowsAffected() > 0
	}

	uniqueIncrement := 0
	if newVisitor {
		uniqueIncrement = 1
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO contact_analytics (date, total_submissions, unique_visitors)
		VALUES (CURRENT_DATE, 1, $1)
		ON CONFLICT (date) DO UPDATE SET
			total_submissions = contact_analytics.total_submissions + 1,
			unique_visitors = contact_analytics.unique_visitors + $1,
			updated_at = CURRENT_TIMESTAMP
	`, uniqueIncrement)
	if err != nil {
		return "", fmt.Errorf("failed to upsert contact analytics: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit contact submission: %w", err)
	}

	return id, nil
}

// GetSubmissions returns a page of submissions, newest first, with the total
// count.
func (r *contactRepository) GetSubmissions(ctx context.Context, limit, offset int) ([]domain.ContactSubmission, int64, error) {
	query := `
		SELECT id, name, email, subject, message, ip_address, user_agent, status, notes, created_at, updated_at
		FROM contact_submissions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query contact submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]domain.ContactSubmission, 0, limit)
	for rows.Next() {
		var s domain.ContactSubmission
		err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Email,
			&s.Subject,
			&s.Message,
			&s.IPAddress,
			&s.UserAgent,
			&s.Status,
			&s.Notes,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan contact submission row: %w", err)
		}
		submissions = append(submissions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error reading contact submission rows: %w", err)
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_submissions`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contact submissions: %w", err)
	}

	return submissions, total, nil
}

// GetSubmission returns a single submission by id, or nil when absent.
func (r *contactRepository) GetSubmission(ctx context.Context, id string) (*domain.ContactSubmission, error) {
	query := `
		SELECT id, name, email, subject, message, ip_address, user_agent, status, notes, created_at, updated_at
		FROM contact_submissions
		WHERE id = $1
	`

	var s domain.ContactSubmission
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Name,
		&s.Email,
		&s.Subject,
		&s.Message,
		&s.IPAddress,
		&s.UserAgent,
		&s.Status,
		&s.Notes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact submission: %w", err)
	}

	return &s, nil
}

// UpdateStatus moves a submission between states and appends the
// status_changed audit entry in the same transaction.
func (r *contactRepository) UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus) (bool, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE contact_submissions
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, status, id)
	if err != nil {
		return false, fmt.Errorf("failed to update submission status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	eventData, err := json.Marshal(map[string]string{"new_status": string(status)})
	if err != nil {
		return false, fmt.Errorf("failed to encode audit event data: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO contact_audit_log (submission_id, event_type, event_data)
		VALUES ($1, $2, $3)
	`, id, domain.EventStatusChanged, eventData)
	if err != nil {
		return false, fmt.Errorf("failed to insert audit log entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit status update: %w", err)
	}

	return true, nil
}

// AddNotes attaches moderation notes to a submission.
func (r *contactRepository) AddNotes(ctx context.Context, id, notes string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE contact_submissions
		SET notes = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, notes, id)
	if err != nil {
		return false, fmt.Errorf("failed to add submission notes: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteOldSubmissions removes archived submissions older than the cutoff.
// Submissions merely old but not archived are never auto-deleted.
func (r *contactRepository) DeleteOldSubmissions(ctx context.Context, daysOld int) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		DELETE FROM contact_submissions
		WHERE created_at < CURRENT_TIMESTAMP - INTERVAL '1 day' * $1
		AND status = 'archived'
	`, daysOld)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old submissions: %w", err)
	}

	return tag.RowsAffected(), nil
}

package service

import (
	"context"
	"time"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/repository"
	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
)

// AnalyticsService serves the admin-facing views over stored submissions and
// daily counters, plus the moderation operations on submissions.
type AnalyticsService struct {
	contactRepo   repository.ContactRepository
	analyticsRepo repository.AnalyticsRepository
	log           *logger.Logger
}

// NewAnalyticsService creates the analytics/admin service.
func NewAnalyticsService(contactRepo repository.ContactRepository, analyticsRepo repository.AnalyticsRepository, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		contactRepo:   contactRepo,
		analyticsRepo: analyticsRepo,
		log:           log,
	}
}

// ListSubmissions returns a page of stored submissions, newest first, with
// the total count for pagination.
func (s *AnalyticsService) ListSubmissions(ctx context.Context, limit, offset int) ([]domain.ContactSubmission, int64, error) {
	submissions, total, err := s.contactRepo.GetSubmissions(ctx, limit, offset)
	if err != nil {
		s.log.WithError(err).Error("Failed to list submissions")
		return nil, 0, errors.NewInternalError("Internal server error", err)
	}
	return submissions, total, nil
}

// GetAnalytics returns the per-day counters for the trailing window,
// descending by date.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, days int) ([]domain.AnalyticsDay, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	rows, err := s.analyticsRepo.GetRange(ctx, start, end)
	if err != nil {
		s.log.WithError(err).Error("Failed to load analytics range")
		return nil, errors.NewInternalError("Internal server error", err)
	}
	return rows, nil
}

// GetSummary returns today's counters, the rolling 7-day aggregate, the
// all-time submission count and the five most recent submissions.
func (s *AnalyticsService) GetSummary(ctx context.Context) (*domain.AnalyticsSummary, error) {
	today, err := s.analyticsRepo.GetToday(ctx)
	if err != nil {
		s.log.WithError(err).Error("Failed to load today's analytics")
		return nil, errors.NewInternalError("Internal server error", err)
	}

	end := time.Now()
	week, err := s.analyticsRepo.GetRange(ctx, end.AddDate(0, 0, -6), end)
	if err != nil {
		s.log.WithError(err).Error("Failed to load weekly analytics")
		return nil, errors.NewInternalError("Internal server error", err)
	}

	recent, total, err := s.contactRepo.GetSubmissions(ctx, 5, 0)
	if err != nil {
		s.log.WithError(err).Error("Failed to load recent submissions")
		return nil, errors.NewInternalError("Internal server error", err)
	}

	summary := &domain.AnalyticsSummary{
		TotalSubmissions:  total,
		RecentSubmissions: recent,
	}
	if today != nil {
		summary.Today = *today
	} else {
		summary.Today = domain.AnalyticsDay{Date: end.Format("2006-01-02")}
	}
	for _, day := range week {
		summary.WeekSummary.TotalSubmissions += day.TotalSubmissions
		summary.WeekSummary.UniqueVisitors += day.UniqueVisitors
		summary.WeekSummary.HoneypotCatches += day.HoneypotCatches
	}

	return summary, nil
}

// UpdateStatus moves a submission between moderation states.
func (s *AnalyticsService) UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus) error {
	if !domain.ValidStatus(status) {
		return errors.NewValidationError("Invalid status value")
	}

	found, err := s.contactRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		s.log.WithError(err).WithField("submission_id", id).Error("Failed to update submission status")
		return errors.NewInternalError("Internal server error", err)
	}
	if !found {
		return errors.NewNotFoundError("Submission not found")
	}
	return nil
}

// AddNotes attaches moderation notes to a submission.
func (s *AnalyticsService) AddNotes(ctx context.Context, id, notes string) error {
	found, err := s.contactRepo.AddNotes(ctx, id, notes)
	if err != nil {
		s.log.WithError(err).WithField("submission_id", id).Error("Failed to save submission notes")
		return errors.NewInternalError("Internal server error", err)
	}
	if !found {
		return errors.NewNotFoundError("Submission not found")
	}
	return nil
}

// Cleanup deletes archived submissions older than the retention window and
// returns the number removed.
func (s *AnalyticsService) Cleanup(ctx context.Context, daysOld int) (int64, error) {
	if daysOld <= 0 {
		return 0, errors.NewValidationError("Retention days must be positive")
	}

	deleted, err := s.contactRepo.DeleteOldSubmissions(ctx, daysOld)
	if err != nil {
		s.log.WithError(err).Error("Failed to delete old submissions")
		return 0, errors.NewInternalError("Internal server error", err)
	}

	s.log.WithFields(map[string]interface{}{
		"deleted":  deleted,
		"days_old": daysOld,
	}).Info("Old submissions cleaned up")

	return deleted, nil
}

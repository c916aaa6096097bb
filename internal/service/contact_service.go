package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strconv"
	"time"

	"portfolio-api/internal/contact"
	"portfolio-api/internal/domain"
	"portfolio-api/internal/repository"
	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
	"portfolio-api/pkg/redis"
)

// Rate limiting constants for the contact endpoint
const (
	RateLimitWindow   = time.Minute
	RateLimitRequests = 5
)

// SubmitResult is the outcome of a contact submission.
type SubmitResult struct {
	// SubmissionID is set when the submission was persisted locally.
	SubmissionID string

	// Suppressed is true when the honeypot fired: the caller must present
	// a success response without anything having been delivered or stored.
	Suppressed bool
}

// ContactService runs the contact pipeline: rate limiting, validation,
// spam defense, delivery and persistence.
type ContactService struct {
	sender        contact.Sender
	contactRepo   repository.ContactRepository
	analyticsRepo repository.AnalyticsRepository
	redisClient   *redis.Client // optional; cooldown and rate limit degrade without it
	persistLocal  bool
	log           *logger.Logger
}

// NewContactService creates the contact pipeline service. persistLocal is
// true on the direct delivery path, where this process owns persistence; on
// the relayed path the relay endpoint stores the submission instead.
func NewContactService(
	sender contact.Sender,
	contactRepo repository.ContactRepository,
	analyticsRepo repository.AnalyticsRepository,
	redisClient *redis.Client,
	persistLocal bool,
	log *logger.Logger,
) *ContactService {
	return &ContactService{
		sender:        sender,
		contactRepo:   contactRepo,
		analyticsRepo: analyticsRepo,
		redisClient:   redisClient,
		persistLocal:  persistLocal,
		log:           log,
	}
}

// Submit processes one contact-form submission end to end.
func (s *ContactService) Submit(ctx context.Context, in contact.Input, ip, userAgent string) (*SubmitResult, error) {
	if limited := s.isRateLimited(ctx, ip); limited {
		s.recordSecurityEvent(ctx, domain.SecurityEventRateLimit)
		return nil, errors.NewRateLimitError("Too many requests. Please try again later.")
	}

	outcome, vErr := contact.Validate(in, s.lastSubmission(ctx, ip), time.Now())
	if vErr != nil {
		return nil, vErr
	}

	if outcome == contact.OutcomeHoneypot {
		// Bots get the same success response as humans so the trap stays
		// invisible; only the daily counter records the catch.
		s.recordSecurityEvent(ctx, domain.SecurityEventHoneypot)
		s.log.WithField("ip", ip).Info("Honeypot triggered, suppressing submission")
		return &SubmitResult{Suppressed: true}, nil
	}

	clean := contact.Sanitize(in)

	if s.sender == nil {
		return nil, errors.NewInternalError("Message delivery is not configured", nil)
	}
	if err := s.sender.Send(ctx, clean); err != nil {
		// Nothing has been persisted yet, so a delivery failure leaves no
		// partial state behind.
		return nil, err
	}

	result := &SubmitResult{}
	if s.persistLocal {
		var ipPtr, uaPtr *string
		if ip != "" {
			ipPtr = &ip
		}
		if userAgent != "" {
			uaPtr = &userAgent
		}

		id, err := s.contactRepo.StoreSubmission(ctx, clean.Name, clean.Email, clean.Subject, clean.Message, ipPtr, uaPtr)
		if err != nil {
			// Database internals never reach the client.
			s.log.WithError(err).Error("Failed to persist contact submission")
			return nil, errors.NewInternalError("Internal server error", err)
		}
		result.SubmissionID = id
	}

	s.markSubmitted(ctx, ip)

	s.log.WithFields(map[string]interface{}{
		"email":         clean.Email,
		"submission_id": result.SubmissionID,
	}).Info("Contact submission processed")

	return result, nil
}

// isRateLimited counts requests per IP inside a fixed window. Without Redis
// the limiter degrades to allowing everything.
func (s *ContactService) isRateLimited(ctx context.Context, ip string) bool {
	if s.redisClient == nil || ip == "" {
		return false
	}

	key := s.redisClient.KeyBuilder.KeyContactRateLimit(hashIP(ip))
	count, err := s.redisClient.Incr(ctx, key)
	if err != nil {
		s.log.WithError(err).Warn("Rate limit counter unavailable, allowing request")
		return false
	}
	if count == 1 {
		if err := s.redisClient.Expire(ctx, key, redis.TTLContactRateLimit); err != nil {
			s.log.WithError(err).Warn("Failed to set rate limit window expiry")
		}
	}

	return count > RateLimitRequests
}

// lastSubmission returns when this IP last submitted successfully, or the
// zero time when unknown.
func (s *ContactService) lastSubmission(ctx context.Context, ip string) time.Time {
	if s.redisClient == nil || ip == "" {
		return time.Time{}
	}

	key := s.redisClient.KeyBuilder.KeyContactCooldown(hashIP(ip))
	raw, err := s.redisClient.Get(ctx, key)
	if err != nil || raw == "" {
		return time.Time{}
	}

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}

// markSubmitted records the successful submission time for the cooldown.
func (s *ContactService) markSubmitted(ctx context.Context, ip string) {
	if s.redisClient == nil || ip == "" {
		return
	}

	key := s.redisClient.KeyBuilder.KeyContactCooldown(hashIP(ip))
	if err := s.redisClient.Set(ctx, key, time.Now().UnixMilli(), redis.TTLContactCooldown); err != nil {
		s.log.WithError(err).Warn("Failed to record submission cooldown")
	}
}

// recordSecurityEvent bumps the daily honeypot/rate-limit counter. Failures
// are logged and swallowed: the counters are best-effort and must not change
// the response the caller sends.
func (s *ContactService) recordSecurityEvent(ctx context.Context, event domain.SecurityEventType) {
	if s.analyticsRepo == nil {
		return
	}
	if err := s.analyticsRepo.RecordSecurityEvent(ctx, event); err != nil {
		s.log.WithError(err).WithField("event", string(event)).Error("Failed to record security event")
	}
}

// hashIP hashes an IP address before it is used in a Redis key
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return fmt.Sprintf("%x", sum[:8])
}

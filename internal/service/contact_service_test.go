package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"portfolio-api/internal/contact"
	"portfolio-api/internal/domain"
	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
	"portfolio-api/pkg/redis"
)

func testLogger(t *testing.T) *logger.Logger {
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return mr, client
}

// fakeSender records delivered submissions and can be told to fail.
type fakeSender struct {
	sent    []contact.Sanitized
	failErr error
}

func (f *fakeSender) Send(_ context.Context, s contact.Sanitized) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.sent = append(f.sent, s)
	return nil
}

// fakeContactRepo implements repository.ContactRepository in memory.
type fakeContactRepo struct {
	stored   []domain.ContactSubmission
	storeErr error
}

func (f *fakeContactRepo) StoreSubmission(_ context.Context, name, email, subject, message string, ip, userAgent *string) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	id := fmt.Sprintf("sub-%d", len(f.stored)+1)
	sub := domain.ContactSubmission{ID: id, Name: name, Email: email, Message: message, Status: domain.StatusNew}
	if subject != "" {
		sub.Subject = &subject
	}
	sub.IPAddress = ip
	sub.UserAgent = userAgent
	f.stored = append(f.stored, sub)
	return id, nil
}

func (f *fakeContactRepo) GetSubmissions(_ context.Context, limit, offset int) ([]domain.ContactSubmission, int64, error) {
	end := offset + limit
	if end > len(f.stored) {
		end = len(f.stored)
	}
	if offset > len(f.stored) {
		offset = len(f.stored)
	}
	return f.stored[offset:end], int64(len(f.stored)), nil
}

func (f *fakeContactRepo) GetSubmission(_ context.Context, id string) (*domain.ContactSubmission, error) {
	for i := range f.stored {
		if f.stored[i].ID == id {
			return &f.stored[i], nil
		}
	}
	return nil, nil
}

func (f *fakeContactRepo) UpdateStatus(_ context.Context, id string, status domain.SubmissionStatus) (bool, error) {
	for i := range f.stored {
		if f.stored[i].ID == id {
			f.stored[i].Status = status
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeContactRepo) AddNotes(_ context.Context, id, notes string) (bool, error) {
	for i := range f.stored {
		if f.stored[i].ID == id {
			f.stored[i].Notes = &notes
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeContactRepo) DeleteOldSubmissions(_ context.Context, daysOld int) (int64, error) {
	var kept []domain.ContactSubmission
	var deleted int64
	for _, s := range f.stored {
		if s.Status == domain.StatusArchived {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	f.stored = kept
	return deleted, nil
}

// fakeAnalyticsRepo records security events.
type fakeAnalyticsRepo struct {
	events []domain.SecurityEventType
}

func (f *fakeAnalyticsRepo) RecordSecurityEvent(_ context.Context, event domain.SecurityEventType) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeAnalyticsRepo) GetRange(_ context.Context, start, end time.Time) ([]domain.AnalyticsDay, error) {
	return nil, nil
}

func (f *fakeAnalyticsRepo) GetToday(_ context.Context) (*domain.AnalyticsDay, error) {
	return nil, nil
}

func validSubmission() contact.Input {
	return contact.Input{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Subject: "Engines",
		Message: "I would like to discuss a project.",
	}
}

func newTestContactService(t *testing.T, redisClient *redis.Client) (*ContactService, *fakeSender, *fakeContactRepo, *fakeAnalyticsRepo) {
	sender := &fakeSender{}
	contactRepo := &fakeContactRepo{}
	analyticsRepo := &fakeAnalyticsRepo{}
	svc := NewContactService(sender, contactRepo, analyticsRepo, redisClient, true, testLogger(t))
	return svc, sender, contactRepo, analyticsRepo
}

func TestContactServiceSubmit(t *testing.T) {
	_, client := setupTestRedis(t)
	svc, sender, contactRepo, _ := newTestContactService(t, client)

	result, err := svc.Submit(context.Background(), validSubmission(), "203.0.113.7", "test-agent")
	require.NoError(t, err)

	assert.False(t, result.Suppressed)
	assert.Equal(t, "sub-1", result.SubmissionID)
	require.Len(t, sender.sent, 1)
	require.Len(t, contactRepo.stored, 1)
	require.NotNil(t, contactRepo.stored[0].IPAddress)
	assert.Equal(t, "203.0.113.7", *contactRepo.stored[0].IPAddress)
}

func TestContactServiceValidationError(t *testing.T) {
	_, client := setupTestRedis(t)
	svc, sender, contactRepo, _ := newTestContactService(t, client)

	in := validSubmission()
	in.Email = "not-an-email"

	_, err := svc.Submit(context.Background(), in, "203.0.113.7", "")
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.Empty(t, sender.sent)
	assert.Empty(t, contactRepo.stored)
}

func TestContactServiceHoneypot(t *testing.T) {
	_, client := setupTestRedis(t)
	svc, sender, contactRepo, analyticsRepo := newTestContactService(t, client)

	in := validSubmission()
	in.Honeypot = "gotcha"

	result, err := svc.Submit(context.Background(), in, "203.0.113.7", "")
	require.NoError(t, err)

	// Fake success: nothing delivered, nothing stored, catch counted.
	assert.True(t, result.Suppressed)
	assert.Empty(t, result.SubmissionID)
	assert.Empty(t, sender.sent)
	assert.Empty(t, contactRepo.stored)
	assert.Equal(t, []domain.SecurityEventType{domain.SecurityEventHoneypot}, analyticsRepo.events)
}

func TestContactServiceCooldown(t *testing.T) {
	_, client := setupTestRedis(t)
	svc, _, _, _ := newTestContactService(t, client)

	ctx := context.Background()
	_, err := svc.Submit(ctx, validSubmission(), "203.0.113.7", "")
	require.NoError(t, err)

	// Immediate retry from the same IP hits the cooldown
	_, err = svc.Submit(ctx, validSubmission(), "203.0.113.7", "")
	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, "Please wait a moment before sending again", appErr.Message)

	// A different IP is unaffected
	_, err = svc.Submit(ctx, validSubmission(), "198.51.100.9", "")
	require.NoError(t, err)
}

func TestContactServiceRateLimit(t *testing.T) {
	_, client := setupTestRedis(t)
	svc, _, _, analyticsRepo := newTestContactService(t, client)

	ctx := context.Background()

	// The first five requests pass the limiter; they fail on the cooldown
	// instead, which proves the limiter itself let them through.
	for i := 0; i < RateLimitRequests; i++ {
		_, err := svc.Submit(ctx, validSubmission(), "203.0.113.7", "")
		if i == 0 {
			require.NoError(t, err)
			continue
		}
		appErr := err.(*errors.AppError)
		assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	}

	// The sixth request inside the window is rejected by the limiter
	_, err := svc.Submit(ctx, validSubmission(), "203.0.113.7", "")
	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, errors.ErrorTypeRateLimit, appErr.Type)
	assert.Contains(t, analyticsRepo.events, domain.SecurityEventRateLimit)
}

func TestContactServiceDeliveryFailureSkipsPersistence(t *testing.T) {
	_, client := setupTestRedis(t)
	svc, sender, contactRepo, _ := newTestContactService(t, client)
	sender.failErr = errors.NewDeliveryFailedError("chat not found", nil)

	_, err := svc.Submit(context.Background(), validSubmission(), "203.0.113.7", "")
	require.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, errors.ErrorTypeDeliveryFailed, appErr.Type)
	assert.Empty(t, contactRepo.stored)

	// A failed delivery must not start the cooldown
	sender.failErr = nil
	_, err = svc.Submit(context.Background(), validSubmission(), "203.0.113.7", "")
	require.NoError(t, err)
}

func TestContactServiceWithoutRedis(t *testing.T) {
	svc, sender, contactRepo, _ := newTestContactService(t, nil)
	// Rebuild without Redis
	svc = NewContactService(sender, contactRepo, &fakeAnalyticsRepo{}, nil, true, testLogger(t))

	// No limiter and no cooldown: consecutive submissions all pass
	for i := 0; i < 3; i++ {
		_, err := svc.Submit(context.Background(), validSubmission(), "203.0.113.7", "")
		require.NoError(t, err)
	}
	assert.Len(t, contactRepo.stored, 3)
}

func TestContactServiceRelayedPathSkipsPersistence(t *testing.T) {
	_, client := setupTestRedis(t)
	sender := &fakeSender{}
	contactRepo := &fakeContactRepo{}
	svc := NewContactService(sender, contactRepo, &fakeAnalyticsRepo{}, client, false, testLogger(t))

	result, err := svc.Submit(context.Background(), validSubmission(), "203.0.113.7", "")
	require.NoError(t, err)

	// The relay owns persistence on this path
	assert.Empty(t, result.SubmissionID)
	assert.Len(t, sender.sent, 1)
	assert.Empty(t, contactRepo.stored)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/contact"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

// stubPipeline is a canned-response contact pipeline.
type stubPipeline struct {
	gotInput contact.Input
	gotIP    string
	result   *service.SubmitResult
	err      error
}

func (s *stubPipeline) Submit(_ context.Context, in contact.Input, ip, _ string) (*service.SubmitResult, error) {
	s.gotInput = in
	s.gotIP = ip
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func contactRouter(pipeline service.ContactPipeline, log *logger.Logger) http.Handler {
	r := chi.NewRouter()
	NewContactHandler(pipeline, log).RegisterRoutes(r)
	return r
}

func TestSendMessageSuccess(t *testing.T) {
	pipeline := &stubPipeline{result: &service.SubmitResult{SubmissionID: "sub-1"}}
	router := contactRouter(pipeline, testLogger(t))

	rec := postJSON(t, router, "/send-telegram", map[string]string{
		"name":    "Ada",
		"email":   "ada@example.com",
		"message": "A long enough message.",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp SendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Message sent successfully", resp.Message)
	assert.Equal(t, "Ada", pipeline.gotInput.Name)

	// The stored id is internal only
	assert.NotContains(t, rec.Body.String(), "sub-1")
	assert.NotContains(t, rec.Body.String(), "submission_id")
}

func TestSendMessageHoneypotLooksLikeSuccess(t *testing.T) {
	realPipeline := &stubPipeline{result: &service.SubmitResult{SubmissionID: "sub-1"}}
	realRec := postJSON(t, contactRouter(realPipeline, testLogger(t)), "/send-telegram", map[string]string{
		"name":    "Ada",
		"email":   "ada@example.com",
		"message": "A long enough message.",
	})
	require.Equal(t, http.StatusOK, realRec.Code)

	pipeline := &stubPipeline{result: &service.SubmitResult{Suppressed: true}}
	rec := postJSON(t, contactRouter(pipeline, testLogger(t)), "/send-telegram", map[string]string{
		"name":    "Bot",
		"email":   "bot@example.com",
		"message": "Spam message with links.",
		"hp":      "filled",
	})

	// The suppressed response is byte-identical to a real success, so the
	// caller cannot distinguish a filtered submission from a stored one.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, realRec.Body.String(), rec.Body.String())
	assert.Equal(t, "filled", pipeline.gotInput.Honeypot)
}

func TestSendMessageErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", errors.NewValidationError("Please fill in all required fields"), http.StatusBadRequest, "validation"},
		{"rate limit", errors.NewRateLimitError("Too many requests. Please try again later."), http.StatusTooManyRequests, "rate_limit"},
		{"delivery failed", errors.NewDeliveryFailedError("chat not found", nil), http.StatusBadGateway, "delivery_failed"},
		{"delivery timeout", errors.NewDeliveryTimeoutError(nil), http.StatusGatewayTimeout, "delivery_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := contactRouter(&stubPipeline{err: tt.err}, testLogger(t))

			rec := postJSON(t, router, "/send-telegram", map[string]string{
				"name": "Ada", "email": "ada@example.com", "message": "A valid length message.",
			})

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp struct {
				Success bool          `json:"success"`
				Error   ErrorResponse `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantType, resp.Error.Type)
		})
	}
}

func TestSendMessageMalformedBody(t *testing.T) {
	router := contactRouter(&stubPipeline{}, testLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/send-telegram", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessageUsesForwardedIP(t *testing.T) {
	pipeline := &stubPipeline{result: &service.SubmitResult{}}
	router := contactRouter(pipeline, testLogger(t))

	raw, _ := json.Marshal(map[string]string{
		"name": "Ada", "email": "ada@example.com", "message": "A valid length message.",
	})
	req := httptest.NewRequest(http.MethodPost, "/send-telegram", bytes.NewReader(raw))
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "203.0.113.7", pipeline.gotIP)
}

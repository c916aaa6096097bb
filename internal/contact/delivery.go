package contact

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"portfolio-api/pkg/errors"
	"portfolio-api/pkg/logger"
)

// DeliveryTimeout bounds every provider/relay call. An aborted call surfaces
// as a delivery_timeout error, distinct from other failures.
const DeliveryTimeout = 12 * time.Second

const telegramAPIBase = "https://api.telegram.org"

// Sender delivers a validated contact submission to its destination.
type Sender interface {
	// Send delivers the submission. Implementations decide whether the
	// formatted message or the raw fields go over the wire.
	Send(ctx context.Context, s Sanitized) error
}

// NewSender selects the delivery strategy once at configuration time: the
// direct Telegram path when a bot token is available, otherwise the relay
// path. Returns nil when neither is configured.
func NewSender(botToken, chatID, relayURL string, log *logger.Logger) Sender {
	if botToken != "" && chatID != "" {
		return NewTelegramSender(botToken, chatID, log)
	}
	if relayURL != "" {
		return NewRelaySender(relayURL, chatID, log)
	}
	return nil
}

// TelegramSender posts the formatted HTML message straight to the Telegram
// Bot API.
type TelegramSender struct {
	token      string
	chatID     string
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewTelegramSender creates a direct-path sender.
func NewTelegramSender(token, chatID string, log *logger.Logger) *TelegramSender {
	return &TelegramSender{
		token:      token,
		chatID:     chatID,
		baseURL:    telegramAPIBase,
		httpClient: &http.Client{Timeout: DeliveryTimeout},
		log:        log,
	}
}

// telegramRequest is the sendMessage payload.
type telegramRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Send formats the submission and posts it to the bot's sendMessage
// endpoint.
func (t *TelegramSender) Send(ctx context.Context, s Sanitized) error {
	body, err := json.Marshal(telegramRequest{
		ChatID:                t.chatID,
		Text:                  BuildMessage(s),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return errors.NewInternalError("Failed to encode message", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.NewInternalError("Failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := readErrorDetail(resp.Body)
		t.log.WithFields(map[string]interface{}{
			"status": resp.StatusCode,
			"detail": detail,
		}).Error("Telegram API error")
		return errors.NewDeliveryFailedError(detail, fmt.Errorf("telegram returned status %d", resp.StatusCode))
	}

	t.log.Debug("Message delivered via Telegram API")
	return nil
}

// RelaySender posts the raw, unformatted fields plus the chat ID to a
// first-party relay endpoint. The relay is responsible for escaping,
// formatting, calling the provider and persisting the submission.
type RelaySender struct {
	endpointURL string
	chatID      string
	httpClient  *http.Client
	log         *logger.Logger
}

// NewRelaySender creates a relay-path sender.
func NewRelaySender(endpointURL, chatID string, log *logger.Logger) *RelaySender {
	return &RelaySender{
		endpointURL: endpointURL,
		chatID:      chatID,
		httpClient:  &http.Client{Timeout: DeliveryTimeout},
		log:         log,
	}
}

// relayRequest carries the raw fields; no HTML escaping happens on this
// path, the relay escapes before formatting.
type relayRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	ChatID  string `json:"chatId"`
}

// Send posts the submission to the relay endpoint.
func (r *RelaySender) Send(ctx context.Context, s Sanitized) error {
	body, err := json.Marshal(relayRequest{
		Name:    s.Name,
		Email:   s.Email,
		Subject: s.Subject,
		Message: s.Message,
		ChatID:  r.chatID,
	})
	if err != nil {
		return errors.NewInternalError("Failed to encode relay payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpointURL, bytes.NewReader(body))
	if err != nil {
		return errors.NewInternalError("Failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := readErrorDetail(resp.Body)
		r.log.WithFields(map[string]interface{}{
			"status": resp.StatusCode,
			"detail": detail,
		}).Error("Relay endpoint error")
		return errors.NewDeliveryFailedError(detail, fmt.Errorf("relay returned status %d", resp.StatusCode))
	}

	r.log.Debug("Message delivered via relay endpoint")
	return nil
}

// classifyTransportError separates aborted calls from other transport
// failures.
func classifyTransportError(err error) *errors.AppError {
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewDeliveryTimeoutError(err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewDeliveryTimeoutError(err)
	}
	return errors.NewDeliveryFailedError("Failed to send message. Please try again.", err)
}

// readErrorDetail extracts the response body as the error detail, falling
// back to a generic message.
func readErrorDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return "Failed to send message"
	}
	return string(bytes.TrimSpace(data))
}

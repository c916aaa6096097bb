package contact

import (
	"regexp"
	"strings"
	"time"

	"portfolio-api/pkg/errors"
)

// Field length caps applied during sanitization. Email cap follows the
// RFC 5321 address limit.
const (
	MaxNameLength    = 100
	MaxEmailLength   = 254
	MaxSubjectLength = 200
	MaxMessageLength = 5000

	MinMessageLength = 10

	// CooldownWindow is the minimum gap between two submissions from the
	// same sender.
	CooldownWindow = 10 * time.Second
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Outcome is the result class of validating a submission.
type Outcome int

const (
	// OutcomeValid means all checks passed and the caller proceeds to
	// delivery.
	OutcomeValid Outcome = iota
	// OutcomeHoneypot means the hidden anti-bot field was filled in. The
	// caller must pretend success without delivering or persisting.
	OutcomeHoneypot
)

// Input is a raw contact-form submission before validation.
type Input struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Honeypot string `json:"hp"`
}

// Sanitized holds trimmed, length-capped fields ready for formatting and
// persistence.
type Sanitized struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Sanitize trims whitespace and enforces the per-field length caps.
func Sanitize(in Input) Sanitized {
	return Sanitized{
		Name:    truncate(strings.TrimSpace(in.Name), MaxNameLength),
		Email:   truncate(strings.TrimSpace(in.Email), MaxEmailLength),
		Subject: truncate(strings.TrimSpace(in.Subject), MaxSubjectLength),
		Message: truncate(strings.TrimSpace(in.Message), MaxMessageLength),
	}
}

// Validate checks a submission and returns its outcome. lastSubmit is the
// caller-held timestamp of the previous successful submission (zero when
// there is none); now is the current time.
//
// Check order is deliberate: content checks run before the honeypot so that
// bot traffic carrying plausible content still receives the deceptive
// success response rather than a validation error, and the cooldown is
// checked last.
func Validate(in Input, lastSubmit, now time.Time) (Outcome, *errors.AppError) {
	clean := Sanitize(in)

	if clean.Name == "" || clean.Email == "" || clean.Message == "" {
		return OutcomeValid, errors.NewValidationError("Please fill in all required fields")
	}

	if !emailPattern.MatchString(clean.Email) {
		return OutcomeValid, errors.NewValidationError("Please enter a valid email address")
	}

	if len([]rune(clean.Message)) < MinMessageLength {
		return OutcomeValid, errors.NewValidationError("Message is too short. Please provide more details.")
	}

	// Any honeypot content counts, whitespace included. Browsers never fill
	// the hidden field, so even a blank-looking value marks a bot.
	if in.Honeypot != "" {
		return OutcomeHoneypot, nil
	}

	if !lastSubmit.IsZero() && now.Sub(lastSubmit) < CooldownWindow {
		return OutcomeValid, errors.NewValidationError("Please wait a moment before sending again")
	}

	return OutcomeValid, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Cut on a rune boundary
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

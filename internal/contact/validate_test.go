package contact

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Subject: "Collaboration",
		Message: "I would like to discuss a project with you.",
	}
}

func TestValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*Input)
		last    time.Time
		outcome Outcome
		errMsg  string
	}{
		{
			name:    "valid submission",
			mutate:  func(in *Input) {},
			outcome: OutcomeValid,
		},
		{
			name:   "missing name",
			mutate: func(in *Input) { in.Name = "   " },
			errMsg: "Please fill in all required fields",
		},
		{
			name:   "missing email",
			mutate: func(in *Input) { in.Email = "" },
			errMsg: "Please fill in all required fields",
		},
		{
			name:   "missing message",
			mutate: func(in *Input) { in.Message = "" },
			errMsg: "Please fill in all required fields",
		},
		{
			name:   "email without at sign",
			mutate: func(in *Input) { in.Email = "ada.example.com" },
			errMsg: "Please enter a valid email address",
		},
		{
			name:   "email without domain dot",
			mutate: func(in *Input) { in.Email = "ada@example" },
			errMsg: "Please enter a valid email address",
		},
		{
			name:   "email with whitespace",
			mutate: func(in *Input) { in.Email = "ada lovelace@example.com" },
			errMsg: "Please enter a valid email address",
		},
		{
			name:   "message too short",
			mutate: func(in *Input) { in.Message = "hi there" },
			errMsg: "Message is too short. Please provide more details.",
		},
		{
			name:    "honeypot filled",
			mutate:  func(in *Input) { in.Honeypot = "http://spam.example" },
			outcome: OutcomeHoneypot,
		},
		{
			name:    "honeypot whitespace only",
			mutate:  func(in *Input) { in.Honeypot = "   " },
			outcome: OutcomeHoneypot,
		},
		{
			name:   "cooldown active",
			mutate: func(in *Input) {},
			last:   now.Add(-3 * time.Second),
			errMsg: "Please wait a moment before sending again",
		},
		{
			name:    "cooldown elapsed",
			mutate:  func(in *Input) {},
			last:    now.Add(-11 * time.Second),
			outcome: OutcomeValid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			outcome, err := Validate(in, tt.last, now)

			if tt.errMsg != "" {
				require.NotNil(t, err)
				assert.Equal(t, tt.errMsg, err.Message)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.outcome, outcome)
		})
	}
}

func TestValidateHoneypotBeatsCooldown(t *testing.T) {
	// A bot that fills the honeypot while inside the cooldown window must
	// still see the deceptive success path, not a cooldown error.
	now := time.Now()
	in := validInput()
	in.Honeypot = "filled"

	outcome, err := Validate(in, now.Add(-time.Second), now)
	require.Nil(t, err)
	assert.Equal(t, OutcomeHoneypot, outcome)
}

func TestValidateContentBeatsHoneypot(t *testing.T) {
	// Invalid content is reported normally even when the honeypot is filled.
	in := validInput()
	in.Honeypot = "filled"
	in.Email = "not-an-email"

	_, err := Validate(in, time.Time{}, time.Now())
	require.NotNil(t, err)
	assert.Equal(t, "Please enter a valid email address", err.Message)
}

func TestSanitize(t *testing.T) {
	in := Input{
		Name:    "  " + strings.Repeat("n", 150) + "  ",
		Email:   " ada@example.com ",
		Subject: strings.Repeat("s", 250),
		Message: strings.Repeat("m", 6000),
	}

	clean := Sanitize(in)

	assert.Len(t, []rune(clean.Name), MaxNameLength)
	assert.Equal(t, "ada@example.com", clean.Email)
	assert.Len(t, []rune(clean.Subject), MaxSubjectLength)
	assert.Len(t, []rune(clean.Message), MaxMessageLength)
}

func TestSanitizeKeepsRuneBoundaries(t *testing.T) {
	in := Input{Name: strings.Repeat("ü", 150)}

	clean := Sanitize(in)

	assert.Len(t, []rune(clean.Name), MaxNameLength)
	// No broken UTF-8 at the cut point
	assert.True(t, strings.HasSuffix(clean.Name, "ü"))
}

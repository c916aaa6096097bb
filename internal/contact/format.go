package contact

import "strings"

// htmlEscaper replaces the five characters Telegram's HTML parse mode
// requires escaping. Ampersand is listed first so already-escaped entities
// are never produced by the other replacements.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes user-supplied text for interpolation into an HTML
// parse-mode message. It must be applied exactly once per field, never to
// the assembled message.
func EscapeHTML(value string) string {
	return htmlEscaper.Replace(value)
}

// BuildMessage produces the Telegram notification text for a validated
// submission. Each field is escaped independently before interpolation; the
// subject line is omitted entirely when blank.
func BuildMessage(s Sanitized) string {
	lines := []string{
		"<b>New Contact Form Submission</b>",
		"<b>Name:</b> " + EscapeHTML(s.Name),
		"<b>Email:</b> " + EscapeHTML(s.Email),
	}
	if s.Subject != "" {
		lines = append(lines, "<b>Subject:</b> "+EscapeHTML(s.Subject))
	}
	lines = append(lines, "<b>Message:</b> "+EscapeHTML(s.Message))

	return strings.Join(lines, "\n")
}

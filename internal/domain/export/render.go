package export

import (
	"net/url"
	"strings"
	"time"
)

// SanitizeRecipients splits a free-form recipient string on commas and
// semicolons, trimming each address and dropping empties.
func SanitizeRecipients(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if clean := strings.TrimSpace(p); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// MailtoURL builds a mailto: deep link with percent-encoded subject/body.
func MailtoURL(to []string, subject, body string) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(escape(strings.Join(to, ",")))
	b.WriteString("?subject=")
	b.WriteString(escape(subject))
	b.WriteString("&body=")
	b.WriteString(escape(body))
	return b.String()
}

// GmailURL builds a Gmail web compose link.
func GmailURL(to []string, subject, body string) string {
	var b strings.Builder
	b.WriteString("https://mail.google.com/mail/?view=cm&fs=1&to=")
	b.WriteString(escape(strings.Join(to, ",")))
	b.WriteString("&su=")
	b.WriteString(escape(subject))
	b.WriteString("&body=")
	b.WriteString(escape(body))
	return b.String()
}

// OutlookURL builds an Outlook web compose link.
func OutlookURL(to []string, subject, body string) string {
	var b strings.Builder
	b.WriteString("https://outlook.live.com/mail/0/deeplink/compose?to=")
	b.WriteString(escape(strings.Join(to, ",")))
	b.WriteString("&subject=")
	b.WriteString(escape(subject))
	b.WriteString("&body=")
	b.WriteString(escape(body))
	return b.String()
}

// EML renders an RFC 822 style message with CRLF line endings throughout.
func EML(to, cc []string, subject, body string, date time.Time) []byte {
	var b strings.Builder
	b.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	if len(cc) > 0 {
		b.WriteString("Cc: " + strings.Join(cc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(normalized, "\n", "\r\n"))
	return []byte(b.String())
}

// Filename derives a download name from the subject.
func Filename(subject string) string {
	slug := strings.ToLower(strings.TrimSpace(subject))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "email"
	}
	return slug + ".eml"
}

// escape percent-encodes for URL query components; mailto links require
// %20 rather than the '+' produced by QueryEscape.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

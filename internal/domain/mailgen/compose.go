package mailgen

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yanqian/meetmail/internal/domain/extract"
)

// subjectMaxLen is a hard cutoff, not word-boundary aware.
const subjectMaxLen = 70

const attendeesPlaceholder = "—"

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"Jan 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"January 2, 2006",
}

// Compose renders an extraction and presentation options into a final
// subject and body. It is pure: no I/O, no clock, byte-identical output
// for identical input.
func Compose(ex extract.Extraction, opts Options) Draft {
	lines := make([]string, 0, 16+len(ex.Decisions)+len(ex.Actions)+len(ex.Questions))

	lines = append(lines,
		greetingFor(opts.Audience),
		introFor(opts.Tone, opts.Title, datePhrase(opts.Date)),
		"Attendees: "+attendees(opts.Participants),
		"",
	)

	if opts.Type != TypeActionOnly {
		if summary := strings.TrimSpace(ex.Summary); summary != "" {
			lines = append(lines, "Summary", summary, "")
		}
		if len(ex.Decisions) > 0 {
			lines = append(lines, "Decisions")
			for _, d := range ex.Decisions {
				lines = append(lines, "- "+d)
			}
			lines = append(lines, "")
		}
	}

	if len(ex.Actions) > 0 {
		lines = append(lines, "Action Items")
		for _, a := range ex.Actions {
			lines = append(lines, actionLine(a))
		}
		lines = append(lines, "")
	}

	if opts.Type != TypeActionOnly && len(ex.Questions) > 0 {
		lines = append(lines, "Open Questions")
		for _, q := range ex.Questions {
			lines = append(lines, "- "+q)
		}
		lines = append(lines, "")
	}

	lines = append(lines, signOffFor(opts.Tone), senderLine(opts.Sender))

	return Draft{
		Subject: subjectFrom(opts.Title, opts.Type),
		Body:    strings.Join(lines, "\n"),
	}
}

func greetingFor(audience Audience) string {
	switch audience {
	case AudienceClient:
		return "Hi team,"
	case AudienceStakeholder:
		return "Hello,"
	default:
		return "Hi all,"
	}
}

// introFor produces the tone-specific opening sentence. The title default
// varies per template but is never empty.
func introFor(tone Tone, title, date string) string {
	t := strings.TrimSpace(title)
	switch tone {
	case ToneFormal:
		if t == "" {
			t = "the meeting"
		}
		return fmt.Sprintf("Please find below a summary of %s held %s.", t, date)
	case ToneFriendly:
		if t == "" {
			t = "our meeting"
		}
		return fmt.Sprintf("Sharing a quick recap of %s %s.", t, date)
	case TonePersuasive:
		if t == "" {
			t = "our meeting"
		}
		return fmt.Sprintf("Following up on %s %s so we can keep things moving.", t, date)
	case ToneCasual:
		if t == "" {
			t = "the meeting"
		}
		return fmt.Sprintf("Here's the rundown from %s %s.", t, date)
	default:
		if t == "" {
			t = "the meeting"
		}
		return fmt.Sprintf("Quick recap of %s %s.", t, date)
	}
}

// datePhrase renders the user supplied date for the intro line. Parseable
// dates become "on 1 Aug 2025"; unparseable input is passed through
// verbatim; an absent date reads as "today".
func datePhrase(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "today"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return "on " + t.Format("2 Jan 2006")
		}
	}
	return "on " + trimmed
}

func attendees(participants string) string {
	if clean := strings.TrimSpace(participants); clean != "" {
		return clean
	}
	return attendeesPlaceholder
}

// actionLine renders "- Owner — Task", appending " — Due" only when a due
// date is present.
func actionLine(a extract.ActionItem) string {
	owner := strings.TrimSpace(a.Owner)
	if owner == "" {
		owner = extract.TBDOwner
	}
	line := "- " + owner + " — " + a.Task
	if due := strings.TrimSpace(a.Due); due != "" {
		line += " — " + due
	}
	return line
}

func signOffFor(tone Tone) string {
	switch tone {
	case ToneFormal:
		return "Best regards,"
	case ToneFriendly:
		return "Thanks so much,"
	case TonePersuasive:
		return "Thanks in advance,"
	case ToneCasual:
		return "Cheers,"
	default:
		return "Thanks!"
	}
}

func senderLine(sender string) string {
	if clean := strings.TrimSpace(sender); clean != "" {
		return clean
	}
	return "[Your name]"
}

// subjectFrom builds "<title> — <suffix>" capped at 70 characters.
func subjectFrom(title string, kind EmailType) string {
	t := strings.TrimSpace(title)
	if t == "" {
		t = "Meeting"
	}
	var suffix string
	switch kind {
	case TypeSummary:
		suffix = "summary"
	case TypeActionOnly:
		suffix = "action items"
	default:
		suffix = "follow-up"
	}
	subject := t + " — " + suffix
	if utf8.RuneCountInString(subject) > subjectMaxLen {
		subject = string([]rune(subject)[:subjectMaxLen])
	}
	return subject
}

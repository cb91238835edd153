package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/yanqian/meetmail/pkg/metrics"
)

const (
	defaultMaxItems     = 50
	defaultSummaryLines = 8

	// TBDOwner is used when no owner name can be read off an action line.
	TBDOwner = "TBD"
)

// Trigger tables are data, not branching: extend a category by adding a
// token here. Matching is word-boundary aware so "to" never fires inside
// "today".
var (
	actionTriggers   = []string{"to", "by", "due", "assign", "owner", "review", "follow up", "follow-up", "followup"}
	decisionTriggers = []string{"decided", "agree", "approve", "approved", "keep", "choose", "conclude", "push", "move"}
	questionTriggers = []string{"open", "blocker", "unknown", "pending"}

	actionPattern   = triggerPattern(actionTriggers)
	decisionPattern = triggerPattern(decisionTriggers)
	questionPattern = triggerPattern(questionTriggers)

	// A contiguous run of letters starting uppercase at the head of a line.
	ownerPattern = regexp.MustCompile(`^\p{Lu}\p{L}*`)
)

func triggerPattern(tokens []string) *regexp.Regexp {
	quoted := make([]string, 0, len(tokens))
	for _, t := range tokens {
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// Heuristic is the local, rule-based extractor. It is a total function:
// it never fails, and empty input yields a zero-valued Extraction.
type Heuristic struct {
	cfg Config
}

// NewHeuristic constructs the extractor with sane bounds.
func NewHeuristic(cfg Config) *Heuristic {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = defaultMaxItems
	}
	if cfg.SummaryLines <= 0 {
		cfg.SummaryLines = defaultSummaryLines
	}
	return &Heuristic{cfg: cfg}
}

// Extract classifies each notes line into actions, decisions and questions.
// Categories are independent: one line may land in all three. The guidance
// argument is accepted for interface parity with the remote extractor and
// ignored here; tone phrasing is the composer's job.
func (h *Heuristic) Extract(_ context.Context, notes, _ string) (Extraction, *metrics.TokenUsage, error) {
	lines := SplitLines(notes)

	var ex Extraction
	for _, line := range lines {
		if len(ex.Actions) < h.cfg.MaxItems && actionPattern.MatchString(line) {
			ex.Actions = append(ex.Actions, ActionItem{Owner: ownerOf(line), Task: line})
		}
		if len(ex.Decisions) < h.cfg.MaxItems && decisionPattern.MatchString(line) {
			ex.Decisions = append(ex.Decisions, line)
		}
		if len(ex.Questions) < h.cfg.MaxItems && isQuestion(line) {
			ex.Questions = append(ex.Questions, line)
		}
	}

	n := h.cfg.SummaryLines
	if n > len(lines) {
		n = len(lines)
	}
	ex.Summary = strings.Join(lines[:n], " ")

	return ex, nil, nil
}

// SplitLines normalizes raw notes into trimmed, non-empty lines with
// leading list markers removed, preserving source order.
func SplitLines(notes string) []string {
	raw := strings.Split(strings.ReplaceAll(notes, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		clean := strings.TrimSpace(line)
		clean = strings.TrimLeft(clean, "-*• \t")
		clean = strings.TrimSpace(clean)
		if clean == "" {
			continue
		}
		lines = append(lines, clean)
	}
	return lines
}

// ownerOf reads a leading capitalized word off the line. This deliberately
// misfires on sentence-initial words ("The team to review" yields "The");
// that is a known limitation of the heuristic, not something to paper over.
func ownerOf(line string) string {
	if owner := ownerPattern.FindString(line); owner != "" {
		return owner
	}
	return TBDOwner
}

func isQuestion(line string) bool {
	return strings.HasSuffix(line, "?") || questionPattern.MatchString(line)
}

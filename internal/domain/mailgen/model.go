package mailgen

import (
	"context"
	"time"

	"github.com/yanqian/meetmail/internal/domain/extract"
	"github.com/yanqian/meetmail/pkg/metrics"
)

// Audience selects the greeting register.
type Audience string

// Tone selects intro and sign-off phrasing.
type Tone string

// EmailType selects which sections the body carries.
type EmailType string

const (
	AudienceInternal    Audience = "internal"
	AudienceClient      Audience = "client"
	AudienceStakeholder Audience = "stakeholder"

	ToneConcise    Tone = "concise"
	ToneFormal     Tone = "formal"
	ToneFriendly   Tone = "friendly"
	TonePersuasive Tone = "persuasive"
	ToneCasual     Tone = "casual"

	TypeSummary    EmailType = "summary"
	TypeFollowUp   EmailType = "follow-up"
	TypeActionOnly EmailType = "action-only"
)

// NormalizeAudience maps arbitrary input onto the closed enumeration.
// Unrecognized values fall back to internal so a bypassed validation
// layer still yields deterministic output.
func NormalizeAudience(v string) Audience {
	switch Audience(v) {
	case AudienceClient, AudienceStakeholder, AudienceInternal:
		return Audience(v)
	default:
		return AudienceInternal
	}
}

// NormalizeTone maps arbitrary input onto the closed enumeration.
func NormalizeTone(v string) Tone {
	switch Tone(v) {
	case ToneConcise, ToneFormal, ToneFriendly, TonePersuasive, ToneCasual:
		return Tone(v)
	default:
		return ToneConcise
	}
}

// NormalizeType maps arbitrary input onto the closed enumeration.
func NormalizeType(v string) EmailType {
	switch EmailType(v) {
	case TypeSummary, TypeFollowUp, TypeActionOnly:
		return EmailType(v)
	default:
		return TypeFollowUp
	}
}

// Request is the payload accepted by the generate endpoint.
type Request struct {
	Title        string `json:"title"`
	Date         string `json:"date"`
	Participants string `json:"participants"`
	Audience     string `json:"audience"`
	Tone         string `json:"tone"`
	Type         string `json:"type"`
	Notes        string `json:"notes"`
}

// Response is returned to API consumers.
type Response struct {
	Subject    string               `json:"subject"`
	Body       string               `json:"body"`
	Actions    []extract.ActionItem `json:"actions"`
	DurationMs int64                `json:"durationMs,omitempty"`
	TokenUsage *metrics.TokenUsage  `json:"tokenUsage,omitempty"`
}

// Options carries the validated presentation settings handed to Compose.
type Options struct {
	Title        string
	Date         string
	Participants string
	Sender       string
	Audience     Audience
	Tone         Tone
	Type         EmailType
}

// Draft is the deterministic composer output.
type Draft struct {
	Subject string
	Body    string
}

// Config tunes the generate pipeline.
type Config struct {
	MinNotesLen int
	SenderName  string
	CacheTTL    time.Duration
}

// DraftRecord is a history entry describing one generated email.
type DraftRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Tone      string    `json:"tone"`
	Audience  string    `json:"audience"`
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToneCount reports how often a tone has been requested.
type ToneCount struct {
	Tone  string `json:"tone"`
	Count int64  `json:"count"`
}

// Extractor turns raw notes plus advisory tone guidance into an Extraction.
// Implementations must treat a malformed upstream response as an empty
// Extraction and reserve errors for failed calls.
type Extractor interface {
	Extract(ctx context.Context, notes, guidance string) (extract.Extraction, *metrics.TokenUsage, error)
}

// DraftRepository persists draft history. Failures are logged, never
// surfaced to callers.
type DraftRepository interface {
	Save(ctx context.Context, rec DraftRecord) error
	Recent(ctx context.Context, limit int) ([]DraftRecord, error)
}

// DraftStore caches generated drafts and keeps per-tone counters.
type DraftStore interface {
	Get(ctx context.Context, key uint64) (Response, bool, error)
	Save(ctx context.Context, key uint64, resp Response, ttl time.Duration) error
	IncrementTone(ctx context.Context, tone string) error
	TopTones(ctx context.Context, limit int) ([]ToneCount, error)
}

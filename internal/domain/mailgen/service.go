package mailgen

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yanqian/meetmail/internal/domain/extract"
	apperrors "github.com/yanqian/meetmail/pkg/errors"
	"github.com/yanqian/meetmail/pkg/util"
)

// Service exposes the notes-to-email generation pipeline.
type Service interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Recent(ctx context.Context, limit int) ([]DraftRecord, error)
	ToneStats(ctx context.Context, limit int) ([]ToneCount, error)
}

type service struct {
	cfg       Config
	extractor Extractor
	repo      DraftRepository
	store     DraftStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewService is a wire provider for the mail generation domain.
func NewService(cfg Config, extractor Extractor, repo DraftRepository, store DraftStore, logger *slog.Logger) Service {
	if cfg.MinNotesLen <= 0 {
		cfg.MinNotesLen = 10
	}
	return &service{
		cfg:       cfg,
		extractor: extractor,
		repo:      repo,
		store:     store,
		logger:    logger.With("component", "mailgen.service"),
		now:       util.NowUTC,
	}
}

func (s *service) Generate(ctx context.Context, req Request) (Response, error) {
	notes := strings.TrimSpace(req.Notes)
	if utf8.RuneCountInString(notes) < s.cfg.MinNotesLen {
		return Response{}, apperrors.Wrap("invalid_input",
			fmt.Sprintf("notes must be at least %d characters", s.cfg.MinNotesLen), nil)
	}

	opts := s.options(req)
	key := requestKey(notes, opts)

	if cached, ok, err := s.store.Get(ctx, key); err != nil {
		s.logger.Warn("draft cache lookup failed", "error", err)
	} else if ok {
		s.logger.Debug("draft cache hit", "key", key)
		return cached, nil
	}

	start := s.now()
	ex, usage, err := s.extractor.Extract(ctx, notes, toneGuidance(opts.Tone))
	if err != nil {
		return Response{}, apperrors.Wrap("generation_failed", "email generation failed", err)
	}

	draft := Compose(ex, opts)
	actions := ex.Actions
	if actions == nil {
		actions = []extract.ActionItem{}
	}
	resp := Response{
		Subject:    draft.Subject,
		Body:       draft.Body,
		Actions:    actions,
		DurationMs: s.now().Sub(start).Milliseconds(),
		TokenUsage: usage,
	}

	s.record(ctx, key, req, opts, resp)
	return resp, nil
}

// record performs the best-effort bookkeeping around a successful
// generation: cache fill, tone counter, history row.
func (s *service) record(ctx context.Context, key uint64, req Request, opts Options, resp Response) {
	if err := s.store.Save(ctx, key, resp, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("draft cache save failed", "error", err)
	}
	if err := s.store.IncrementTone(ctx, string(opts.Tone)); err != nil {
		s.logger.Warn("tone counter update failed", "error", err)
	}
	rec := DraftRecord{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(req.Title),
		Tone:      string(opts.Tone),
		Audience:  string(opts.Audience),
		Type:      string(opts.Type),
		Subject:   resp.Subject,
		CreatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		s.logger.Warn("draft history save failed", "error", err)
	}
}

func (s *service) Recent(ctx context.Context, limit int) ([]DraftRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.Recent(ctx, limit)
}

func (s *service) ToneStats(ctx context.Context, limit int) ([]ToneCount, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.TopTones(ctx, limit)
}

func (s *service) options(req Request) Options {
	return Options{
		Title:        req.Title,
		Date:         req.Date,
		Participants: req.Participants,
		Sender:       s.cfg.SenderName,
		Audience:     NormalizeAudience(req.Audience),
		Tone:         NormalizeTone(req.Tone),
		Type:         NormalizeType(req.Type),
	}
}

// requestKey hashes the canonical request for cache lookups.
func requestKey(notes string, opts Options) uint64 {
	h := fnv.New64a()
	for _, part := range []string{
		notes, opts.Title, opts.Date, opts.Participants,
		string(opts.Audience), string(opts.Tone), string(opts.Type),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// toneGuidance is advisory text appended to the remote extractor prompt.
// It never changes the output shape.
func toneGuidance(tone Tone) string {
	switch tone {
	case ToneFormal:
		return "Phrase the summary in precise, businesslike language."
	case ToneFriendly:
		return "Phrase the summary in a warm, approachable way."
	case TonePersuasive:
		return "Phrase the summary to emphasize momentum and next steps."
	case ToneCasual:
		return "Phrase the summary in a relaxed, conversational way."
	default:
		return "Keep the summary short and factual."
	}
}

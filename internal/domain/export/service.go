package export

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/meetmail/pkg/errors"
	"github.com/yanqian/meetmail/pkg/util"
)

// Service renders compose links and .eml downloads for a finished email.
type Service interface {
	Export(ctx context.Context, req Request) (Result, error)
}

type service struct {
	archive Archive
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires up the export domain. archive may be nil.
func NewService(archive Archive, logger *slog.Logger) Service {
	return &service{
		archive: archive,
		logger:  logger.With("component", "export.service"),
		now:     util.NowUTC,
	}
}

func (s *service) Export(ctx context.Context, req Request) (Result, error) {
	subject := strings.TrimSpace(req.Subject)
	body := req.Body
	if subject == "" && strings.TrimSpace(body) == "" {
		return Result{}, apperrors.Wrap("invalid_input", "subject and body cannot both be empty", nil)
	}

	to := SanitizeRecipients(req.To)
	cc := SanitizeRecipients(req.Cc)
	date := s.resolveDate(req.Date)

	eml := EML(to, cc, subject, body, date)

	res := Result{
		Mailto:   MailtoURL(to, subject, body),
		Gmail:    GmailURL(to, subject, body),
		Outlook:  OutlookURL(to, subject, body),
		Filename: Filename(subject),
		EML:      string(eml),
	}

	if s.archive != nil {
		key := "eml/" + uuid.NewString() + ".eml"
		if err := s.archive.Put(ctx, key, eml, "message/rfc822"); err != nil {
			s.logger.Warn("eml archive failed", "error", err)
		} else {
			res.ArchiveKey = key
		}
	}

	return res, nil
}

func (s *service) resolveDate(raw string) time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return s.now()
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t
		}
	}
	return s.now()
}

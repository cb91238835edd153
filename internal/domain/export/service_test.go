package export

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/meetmail/pkg/errors"
)

type stubArchive struct {
	keys        []string
	contentType string
	data        []byte
	err         error
}

func (a *stubArchive) Put(_ context.Context, key string, data []byte, contentType string) error {
	if a.err != nil {
		return a.err
	}
	a.keys = append(a.keys, key)
	a.data = data
	a.contentType = contentType
	return nil
}

func TestExportProducesLinksAndEML(t *testing.T) {
	archive := &stubArchive{}
	svc := NewService(archive, slog.Default())

	res, err := svc.Export(context.Background(), Request{
		To:      "a@x.io, b@x.io",
		Cc:      "c@x.io",
		Subject: "Q3 Sync — summary",
		Body:    "Hi all,\nrecap below.",
		Date:    "2025-08-01",
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(res.Mailto, "mailto:a%40x.io%2Cb%40x.io"))
	require.Contains(t, res.Mailto, "subject=Q3%20Sync")
	require.Contains(t, res.Gmail, "mail.google.com")
	require.Contains(t, res.Outlook, "outlook.live.com")
	require.Equal(t, "q3-sync--summary.eml", res.Filename)
	require.Contains(t, res.EML, "To: a@x.io, b@x.io\r\n")
	require.Contains(t, res.EML, "Cc: c@x.io\r\n")
	require.Contains(t, res.EML, "Date: Fri, 01 Aug 2025")

	require.Len(t, archive.keys, 1)
	require.True(t, strings.HasPrefix(res.ArchiveKey, "eml/"))
	require.True(t, strings.HasSuffix(res.ArchiveKey, ".eml"))
	require.Equal(t, "message/rfc822", archive.contentType)
	require.Equal(t, res.EML, string(archive.data))
}

func TestExportRejectsEmptyMessage(t *testing.T) {
	svc := NewService(nil, slog.Default())

	_, err := svc.Export(context.Background(), Request{To: "a@x.io"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestExportWorksWithoutArchive(t *testing.T) {
	svc := NewService(nil, slog.Default())

	res, err := svc.Export(context.Background(), Request{Subject: "Subject only"})
	require.NoError(t, err)
	require.Empty(t, res.ArchiveKey)
	require.NotEmpty(t, res.EML)
}

func TestExportTreatsArchiveFailureAsBestEffort(t *testing.T) {
	archive := &stubArchive{err: errors.New("bucket offline")}
	svc := NewService(archive, slog.Default())

	res, err := svc.Export(context.Background(), Request{Subject: "Subject only"})
	require.NoError(t, err)
	require.Empty(t, res.ArchiveKey)
}

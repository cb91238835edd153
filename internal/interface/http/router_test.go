package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/meetmail/internal/domain/export"
	"github.com/yanqian/meetmail/internal/domain/mailgen"
	"github.com/yanqian/meetmail/internal/infra/config"
	apperrors "github.com/yanqian/meetmail/pkg/errors"
)

type stubMailService struct {
	resp     mailgen.Response
	err      error
	failures int
	calls    int
	recent   []mailgen.DraftRecord
	tones    []mailgen.ToneCount
	lastReq  mailgen.Request
}

func (s *stubMailService) Generate(_ context.Context, req mailgen.Request) (mailgen.Response, error) {
	s.lastReq = req
	s.calls++
	if s.failures > 0 {
		s.failures--
		return mailgen.Response{}, errors.New("transient failure")
	}
	return s.resp, s.err
}

func (s *stubMailService) Recent(_ context.Context, _ int) ([]mailgen.DraftRecord, error) {
	return s.recent, nil
}

func (s *stubMailService) ToneStats(_ context.Context, _ int) ([]mailgen.ToneCount, error) {
	return s.tones, nil
}

type stubExportService struct {
	res export.Result
	err error
}

func (s *stubExportService) Export(_ context.Context, _ export.Request) (export.Result, error) {
	return s.res, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{Address: ":0"},
	}
}

func newTestServer(cfg *config.Config, mailSvc mailgen.Service, exportSvc export.Service) http.Handler {
	logger := slog.Default()
	handler := NewHandler(mailSvc, exportSvc, logger)
	return NewRouter(cfg, handler, logger).Handler
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload.Error.Code
}

func TestGenerateEmailEndpoint(t *testing.T) {
	mailSvc := &stubMailService{resp: mailgen.Response{Subject: "Weekly — follow-up", Body: "Hi all,"}}
	h := newTestServer(testConfig(), mailSvc, &stubExportService{})

	w := doJSON(t, h, http.MethodPost, "/api/v1/emails",
		`{"title":"Weekly","tone":"formal","notes":"Anna to draft comms by Fri"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Weekly", mailSvc.lastReq.Title)

	var resp mailgen.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Weekly — follow-up", resp.Subject)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGenerateEmailRejectsMalformedJSON(t *testing.T) {
	h := newTestServer(testConfig(), &stubMailService{}, &stubExportService{})

	w := doJSON(t, h, http.MethodPost, "/api/v1/emails", `{"notes": `)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid_request", errorCode(t, w))
}

func TestGenerateEmailMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", apperrors.Wrap("invalid_input", "notes too short", nil), http.StatusBadRequest, "invalid_request"},
		{"generation failed", apperrors.Wrap("generation_failed", "email generation failed", nil), http.StatusBadGateway, "generation_failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(testConfig(), &stubMailService{err: tc.err}, &stubExportService{})

			w := doJSON(t, h, http.MethodPost, "/api/v1/emails", `{"notes":"whatever notes"}`)
			require.Equal(t, tc.status, w.Code)
			require.Equal(t, tc.code, errorCode(t, w))
		})
	}
}

func TestExportEmailEndpoint(t *testing.T) {
	exportSvc := &stubExportService{res: export.Result{Mailto: "mailto:?subject=x", Filename: "x.eml"}}
	h := newTestServer(testConfig(), &stubMailService{}, exportSvc)

	w := doJSON(t, h, http.MethodPost, "/api/v1/emails/export", `{"subject":"x","body":"y"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res export.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, "x.eml", res.Filename)
}

func TestExportEmailRejectsEmptyMessage(t *testing.T) {
	exportSvc := &stubExportService{err: apperrors.Wrap("invalid_input", "subject and body cannot both be empty", nil)}
	h := newTestServer(testConfig(), &stubMailService{}, exportSvc)

	w := doJSON(t, h, http.MethodPost, "/api/v1/emails/export", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid_request", errorCode(t, w))
}

func TestRecentDraftsEndpoint(t *testing.T) {
	mailSvc := &stubMailService{recent: []mailgen.DraftRecord{{ID: "1", Subject: "s"}}}
	h := newTestServer(testConfig(), mailSvc, &stubExportService{})

	w := doJSON(t, h, http.MethodGet, "/api/v1/drafts?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Drafts []mailgen.DraftRecord `json:"drafts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Drafts, 1)
}

func TestRecentDraftsReturnsEmptyArray(t *testing.T) {
	h := newTestServer(testConfig(), &stubMailService{}, &stubExportService{})

	w := doJSON(t, h, http.MethodGet, "/api/v1/drafts", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"drafts":[]}`, w.Body.String())
}

func TestDraftStatsEndpoint(t *testing.T) {
	mailSvc := &stubMailService{tones: []mailgen.ToneCount{{Tone: "concise", Count: 2}}}
	h := newTestServer(testConfig(), mailSvc, &stubExportService{})

	w := doJSON(t, h, http.MethodGet, "/api/v1/drafts/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"tones":[{"tone":"concise","count":2}]}`, w.Body.String())
}

func TestAuthMiddlewareGuardsRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, JWTSecret: "test-secret"}
	h := newTestServer(cfg, &stubMailService{}, &stubExportService{})

	w := doJSON(t, h, http.MethodGet, "/api/v1/drafts", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "unauthorized", errorCode(t, w))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "tester",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drafts", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, JWTSecret: "test-secret"}
	h := newTestServer(cfg, &stubMailService{}, &stubExportService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drafts", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRetryMiddlewareReplaysTransientFailures(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 2, BaseBackoff: time.Millisecond}
	mailSvc := &stubMailService{failures: 1, resp: mailgen.Response{Subject: "ok"}}
	h := newTestServer(cfg, mailSvc, &stubExportService{})

	w := doJSON(t, h, http.MethodPost, "/api/v1/emails", `{"notes":"whatever notes"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, mailSvc.calls)
}

func TestRetryMiddlewareHonorsExclusions(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{
		Enabled:     true,
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		Exclude:     []string{"/api/v1/emails"},
	}
	mailSvc := &stubMailService{failures: 1}
	h := newTestServer(cfg, mailSvc, &stubExportService{})

	w := doJSON(t, h, http.MethodPost, "/api/v1/emails", `{"notes":"whatever notes"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, mailSvc.calls)
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2}
	h := newTestServer(cfg, &stubMailService{}, &stubExportService{})

	for i := 0; i < 2; i++ {
		w := doJSON(t, h, http.MethodGet, "/api/v1/drafts", "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doJSON(t, h, http.MethodGet, "/api/v1/drafts", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "rate_limit_exceeded", errorCode(t, w))
}

package mailgen

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/meetmail/internal/domain/extract"
	apperrors "github.com/yanqian/meetmail/pkg/errors"
	"github.com/yanqian/meetmail/pkg/metrics"
)

type stubExtractor struct {
	ex       extract.Extraction
	usage    *metrics.TokenUsage
	err      error
	calls    int
	guidance string
}

func (s *stubExtractor) Extract(_ context.Context, _, guidance string) (extract.Extraction, *metrics.TokenUsage, error) {
	s.calls++
	s.guidance = guidance
	return s.ex, s.usage, s.err
}

type stubRepo struct {
	saved  []DraftRecord
	recent []DraftRecord
	err    error
}

func (r *stubRepo) Save(_ context.Context, rec DraftRecord) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, rec)
	return nil
}

func (r *stubRepo) Recent(_ context.Context, limit int) ([]DraftRecord, error) {
	if limit < len(r.recent) {
		return r.recent[:limit], nil
	}
	return r.recent, nil
}

type stubStore struct {
	cached   map[uint64]Response
	getErr   error
	saveErr  error
	tones    map[string]int64
	top      []ToneCount
	saves    int
	topCalls int
}

func newStubStore() *stubStore {
	return &stubStore{cached: map[uint64]Response{}, tones: map[string]int64{}}
}

func (s *stubStore) Get(_ context.Context, key uint64) (Response, bool, error) {
	if s.getErr != nil {
		return Response{}, false, s.getErr
	}
	resp, ok := s.cached[key]
	return resp, ok, nil
}

func (s *stubStore) Save(_ context.Context, key uint64, resp Response, _ time.Duration) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.cached[key] = resp
	return nil
}

func (s *stubStore) IncrementTone(_ context.Context, tone string) error {
	s.tones[tone]++
	return nil
}

func (s *stubStore) TopTones(_ context.Context, _ int) ([]ToneCount, error) {
	s.topCalls++
	return s.top, nil
}

func newTestService(ext Extractor, repo DraftRepository, store DraftStore) Service {
	return NewService(Config{MinNotesLen: 10, SenderName: "[Your name]"}, ext, repo, store, slog.Default())
}

func TestGenerateHappyPath(t *testing.T) {
	ext := &stubExtractor{
		ex: extract.Extraction{
			Summary: "Planning recap.",
			Actions: []extract.ActionItem{{Owner: "Anna", Task: "Anna to draft comms", Due: "Fri"}},
		},
		usage: &metrics.TokenUsage{PromptTokens: 12, CompletionTokens: 30, TotalTokens: 42},
	}
	repo := &stubRepo{}
	store := newStubStore()
	svc := newTestService(ext, repo, store)

	resp, err := svc.Generate(context.Background(), Request{
		Title: "Weekly Planning",
		Tone:  "formal",
		Notes: "Anna to draft comms by Fri",
	})
	require.NoError(t, err)
	require.Equal(t, "Weekly Planning — follow-up", resp.Subject)
	require.Contains(t, resp.Body, "- Anna — Anna to draft comms — Fri")
	require.Len(t, resp.Actions, 1)
	require.Equal(t, 42, resp.TokenUsage.TotalTokens)

	require.Equal(t, 1, store.saves)
	require.Equal(t, int64(1), store.tones["formal"])
	require.Len(t, repo.saved, 1)
	require.Equal(t, "Weekly Planning", repo.saved[0].Title)
	require.NotEmpty(t, repo.saved[0].ID)
}

func TestGenerateRejectsShortNotes(t *testing.T) {
	ext := &stubExtractor{}
	svc := newTestService(ext, &stubRepo{}, newStubStore())

	_, err := svc.Generate(context.Background(), Request{Notes: "  hi  "})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
	require.Zero(t, ext.calls)
}

func TestGenerateWrapsExtractorFailure(t *testing.T) {
	ext := &stubExtractor{err: errors.New("upstream unreachable")}
	repo := &stubRepo{}
	store := newStubStore()
	svc := newTestService(ext, repo, store)

	_, err := svc.Generate(context.Background(), Request{Notes: "Anna to draft comms by Fri"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "generation_failed"))
	require.Empty(t, repo.saved)
	require.Zero(t, store.saves)
}

func TestGenerateEmptyExtractionStillSucceeds(t *testing.T) {
	svc := newTestService(&stubExtractor{}, &stubRepo{}, newStubStore())

	resp, err := svc.Generate(context.Background(), Request{Notes: "nothing of note happened"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Body)
	require.NotNil(t, resp.Actions)
	require.Empty(t, resp.Actions)
}

func TestGenerateServesCachedDraft(t *testing.T) {
	ext := &stubExtractor{}
	store := newStubStore()
	svc := newTestService(ext, &stubRepo{}, store)

	req := Request{Title: "Standup", Notes: "Sam to follow up on the deploy"}
	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, ext.calls)

	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, ext.calls)
	require.Equal(t, first.Subject, second.Subject)
	require.Equal(t, first.Body, second.Body)
}

func TestGenerateSurvivesCacheErrors(t *testing.T) {
	ext := &stubExtractor{}
	store := newStubStore()
	store.getErr = errors.New("store down")
	store.saveErr = errors.New("store down")
	svc := newTestService(ext, &stubRepo{}, store)

	resp, err := svc.Generate(context.Background(), Request{Notes: "Sam to follow up on the deploy"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Body)
}

func TestGenerateNormalizesEnums(t *testing.T) {
	svc := newTestService(&stubExtractor{}, &stubRepo{}, newStubStore())

	resp, err := svc.Generate(context.Background(), Request{
		Audience: "shareholders",
		Tone:     "shouty",
		Type:     "novel",
		Notes:    "nothing of note happened",
	})
	require.NoError(t, err)
	require.Contains(t, resp.Body, "Hi all,")
	require.Contains(t, resp.Body, "Thanks!")
	require.Equal(t, "Meeting — follow-up", resp.Subject)
}

func TestGeneratePassesToneGuidance(t *testing.T) {
	ext := &stubExtractor{}
	svc := newTestService(ext, &stubRepo{}, newStubStore())

	_, err := svc.Generate(context.Background(), Request{Tone: "persuasive", Notes: "Sam to follow up on the deploy"})
	require.NoError(t, err)
	require.Contains(t, ext.guidance, "momentum")
}

func TestRecentDefaultsLimit(t *testing.T) {
	repo := &stubRepo{recent: []DraftRecord{{ID: "a"}, {ID: "b"}}}
	svc := newTestService(&stubExtractor{}, repo, newStubStore())

	recs, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
}

func TestToneStatsDelegatesToStore(t *testing.T) {
	store := newStubStore()
	store.top = []ToneCount{{Tone: "concise", Count: 3}}
	svc := newTestService(&stubExtractor{}, &stubRepo{}, store)

	stats, err := svc.ToneStats(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, store.topCalls)
	require.Equal(t, []ToneCount{{Tone: "concise", Count: 3}}, stats)
}

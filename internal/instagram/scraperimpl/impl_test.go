package scraperimpl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/internal/instagram"
	"github.com/orgball2608/insta-compliance-bot/internal/transcription"
	mock_transcription "github.com/orgball2608/insta-compliance-bot/internal/transcription/mocks"
	"github.com/orgball2608/insta-compliance-bot/pkg/config"
	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"github.com/orgball2608/insta-compliance-bot/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const reelURL = "https://www.instagram.com/reel/Cabc123/"

func newTestScraper(t *testing.T, handler http.HandlerFunc) (*ScraperImpl, *mock_transcription.MockClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Scraper.Endpoint = srv.URL + "/run-sync-get-dataset-items"
	cfg.Scraper.Token = "scraper-token"
	cfg.Scraper.Timeout = 2 * time.Second
	cfg.Transcription.Enabled = true

	transcriber := mock_transcription.NewMockClient(gomock.NewController(t))
	s := New(Opts{Config: cfg, Logger: logger.Nop(), Transcriber: transcriber})
	s.retryCfg = retry.Config{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1}
	return s, transcriber
}

func serveItems(t *testing.T, items ...scrapeItem) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "scraper-token", r.URL.Query().Get("token"))

		var req scrapeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{reelURL}, req.DirectURLs)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	}
}

func TestFetchPostVideoWithTranscript(t *testing.T) {
	s, transcriber := newTestScraper(t, serveItems(t, scrapeItem{
		Type:     "Video",
		Caption:  "#ad New drop",
		Hashtags: []string{"ad", "#drop"},
		VideoURL: "https://cdn.example.com/v.mp4",
		Alt:      "A sneaker",
	}))

	timestamped := &domain.TimestampedTranscript{Text: "this is an ad", Segments: []domain.Segment{{Text: "this is an ad", Start: 0, End: 2}}}
	transcriber.EXPECT().Transcribe(gomock.Any(), "https://cdn.example.com/v.mp4").
		Return(&transcription.Result{Text: "this is an ad", Timestamped: timestamped}, nil)

	var percents []int
	post, err := s.FetchPost(context.Background(), reelURL, func(_ string, p int) { percents = append(percents, p) })
	require.NoError(t, err)

	assert.Equal(t, []int{10, 30, 50}, percents)
	assert.Equal(t, domain.MediaTypeVideo, post.MediaType)
	assert.Equal(t, []string{"ad", "drop"}, post.Hashtags)
	assert.Equal(t, "this is an ad", post.Transcript)
	assert.True(t, post.HasTimestamps())
	assert.Equal(t, reelURL, post.URL)
}

func TestFetchPostImageSkipsTranscription(t *testing.T) {
	s, _ := newTestScraper(t, serveItems(t, scrapeItem{Type: "Image", Caption: "pic", DisplayURL: "https://cdn.example.com/p.jpg"}))

	post, err := s.FetchPost(context.Background(), reelURL, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.MediaTypeImage, post.MediaType)
	assert.Empty(t, post.Transcript)
	assert.NotNil(t, post.Hashtags)
}

func TestFetchPostTranscriptionFailureKeepsPost(t *testing.T) {
	s, transcriber := newTestScraper(t, serveItems(t, scrapeItem{Type: "Video", Caption: "clip", VideoURL: "https://cdn.example.com/v.mp4"}))
	transcriber.EXPECT().Transcribe(gomock.Any(), gomock.Any()).
		Return(nil, errors.WrapWithCode(errors.New("boom"), errors.CodeTranscriptionFailed, "transcription failed"))

	post, err := s.FetchPost(context.Background(), reelURL, nil)
	require.NoError(t, err)
	assert.Equal(t, "clip", post.Caption)
	assert.Empty(t, post.Transcript)
	assert.Nil(t, post.TimestampedTranscript)
}

func TestFetchPostInvalidURLNeverCallsProvider(t *testing.T) {
	var calls int32
	s, _ := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) { atomic.AddInt32(&calls, 1) })

	_, err := s.FetchPost(context.Background(), "https://example.com/p/abc", nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidURL))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFetchPostFallsBackToSample(t *testing.T) {
	tests := []struct {
		name   string
		status int
		calls  int32
	}{
		{name: "server error retried", status: http.StatusBadGateway, calls: 3},
		{name: "quota", status: http.StatusPaymentRequired, calls: 1},
		{name: "auth", status: http.StatusUnauthorized, calls: 1},
		{name: "not found", status: http.StatusNotFound, calls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			s, _ := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
			})

			post, err := s.FetchPost(context.Background(), reelURL, nil)
			require.NoError(t, err)
			assert.Equal(t, instagram.SamplePost(reelURL), post)
			assert.Equal(t, tt.calls, atomic.LoadInt32(&calls))
		})
	}
}

func TestScrapeErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name:    "bad request",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadRequest) },
			check: func(t *testing.T, err error) {
				assert.True(t, errors.HasCode(err, errors.CodeInvalidURL))
			},
		},
		{
			name:    "too many requests",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errors.ErrQuotaExceeded)
			},
		},
		{
			name:    "forbidden",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) },
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsUnauthorized(err))
			},
		},
		{
			name:    "empty dataset",
			handler: serveItems(t),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, instagram.ErrPostNotFound)
			},
		},
		{
			name:    "private",
			handler: serveItems(t, scrapeItem{Error: "restricted_page", ErrorMessage: "This account is private"}),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, instagram.ErrPrivateAccount)
				assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.HasCode(err, errors.CodeTimeout))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestScraper(t, tt.handler)
			s.timeout = 50 * time.Millisecond

			_, err := s.scrape(context.Background(), reelURL)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestScrapeWithoutToken(t *testing.T) {
	s, _ := newTestScraper(t, serveItems(t))
	s.token = ""

	_, err := s.scrape(context.Background(), reelURL)
	assert.True(t, errors.HasCode(err, errors.CodeUnauthorized))
}

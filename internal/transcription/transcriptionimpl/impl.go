package transcriptionimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dustin/go-humanize"
	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/internal/transcription"
	"github.com/orgball2608/insta-compliance-bot/pkg/config"
	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"github.com/orgball2608/insta-compliance-bot/pkg/retry"
	"go.uber.org/fx"
)

const (
	defaultMaxFileSize = 25 * 1024 * 1024
	defaultMaxAttempts = 5
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type Settings struct {
	APIKey      string
	BaseURL     string
	Model       string
	ProxyURL    string
	MaxFileSize int64
	MaxAttempts int
	Timeout     time.Duration
}

// TranscriptionImpl downloads media to a temp file and sends it to a Whisper-compatible
// transcription endpoint.
type TranscriptionImpl struct {
	direct *http.Client
	proxy  *http.Client
	api    *http.Client

	apiKey      string
	baseURL     string
	model       string
	maxFileSize int64
	maxAttempts int
	tempDir     string

	newBackOff func() backoff.BackOff
	logger     logger.Logger
}

var _ transcription.Client = (*TranscriptionImpl)(nil)

func New(opts Opts) (*TranscriptionImpl, error) {
	return NewClient(Settings{
		APIKey:      opts.Config.OpenAI.APIKey,
		BaseURL:     opts.Config.OpenAI.BaseURL,
		Model:       opts.Config.OpenAI.TranscriptionModel,
		ProxyURL:    opts.Config.Transcription.ProxyURL,
		MaxFileSize: opts.Config.Transcription.MaxFileSize,
		MaxAttempts: opts.Config.Transcription.MaxAttempts,
		Timeout:     opts.Config.OpenAI.RequestTimeout,
	}, opts.Logger)
}

func NewClient(s Settings, log logger.Logger) (*TranscriptionImpl, error) {
	if s.MaxFileSize <= 0 {
		s.MaxFileSize = defaultMaxFileSize
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = defaultMaxAttempts
	}
	if s.Timeout <= 0 {
		s.Timeout = 120 * time.Second
	}

	t := &TranscriptionImpl{
		direct:      &http.Client{Timeout: s.Timeout},
		api:         &http.Client{Timeout: s.Timeout},
		apiKey:      s.APIKey,
		baseURL:     strings.TrimRight(s.BaseURL, "/"),
		model:       s.Model,
		maxFileSize: s.MaxFileSize,
		maxAttempts: s.MaxAttempts,
		tempDir:     os.TempDir(),
		newBackOff: func() backoff.BackOff {
			return &retry.JitteredBackOff{Base: 2 * time.Second, Step: time.Second, Jitter: time.Second}
		},
		logger: log.WithComponent("Transcription"),
	}

	if s.ProxyURL != "" {
		proxyURL, err := url.Parse(s.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid transcription proxy url: %w", err)
		}
		t.proxy = &http.Client{
			Timeout:   s.Timeout,
			Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		}
	}

	return t, nil
}

func (t *TranscriptionImpl) Transcribe(ctx context.Context, mediaURL string) (*transcription.Result, error) {
	if strings.TrimSpace(mediaURL) == "" {
		return nil, errors.WrapWithCode(errors.ErrInvalidInput, errors.CodeInvalidInput, "media URL is required")
	}

	path, err := t.download(ctx, mediaURL)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeTranscriptionFailed, "transcription failed: media download failed")
	}
	defer t.removeTemp(path)

	var result *transcription.Result
	err = retry.DoAttempts(ctx, t.logger, "whisper upload", func() error {
		r, err := t.upload(ctx, path)
		if err != nil {
			return err
		}
		result = r
		return nil
	}, t.newBackOff(), t.maxAttempts)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeTranscriptionFailed, "transcription failed")
	}

	t.logger.Info("Transcribed media", "chars", len(result.Text), "timestamped", result.Timestamped != nil)
	return result, nil
}

type route struct {
	name   string
	client *http.Client
}

// download tries the direct route first and the proxy route second, each with its
// own attempt budget. Oversized media fails immediately.
func (t *TranscriptionImpl) download(ctx context.Context, mediaURL string) (string, error) {
	routes := []route{{name: "direct", client: t.direct}}
	if t.proxy != nil {
		routes = append(routes, route{name: "proxy", client: t.proxy})
	}

	var lastErr error
	for _, r := range routes {
		var path string
		err := retry.DoAttempts(ctx, t.logger, "media download ("+r.name+")", func() error {
			p, err := t.fetchMedia(ctx, r.client, mediaURL)
			if err != nil {
				return err
			}
			path = p
			return nil
		}, t.newBackOff(), t.maxAttempts)
		if err == nil {
			return path, nil
		}
		if errors.Is(err, transcription.ErrFileTooLarge) || ctx.Err() != nil {
			return "", err
		}

		t.logger.Warn("Media download route exhausted", "route", r.name, "attempts", t.maxAttempts, "error", err)
		lastErr = fmt.Errorf("%s download failed after %d attempts: %w", r.name, t.maxAttempts, err)
	}

	return "", lastErr
}

func (t *TranscriptionImpl) fetchMedia(ctx context.Context, client *http.Client, mediaURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", retry.Permanent(err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media server returned status %d", resp.StatusCode)
	}
	if resp.ContentLength > t.maxFileSize {
		return "", retry.Permanent(t.tooLarge(resp.ContentLength))
	}

	f, err := os.CreateTemp(t.tempDir, "media-*.mp4")
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("failed to create temp file: %w", err))
	}

	n, err := io.Copy(f, io.LimitReader(resp.Body, t.maxFileSize+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		t.removeTemp(f.Name())
		return "", fmt.Errorf("failed to read media body: %w", err)
	case closeErr != nil:
		t.removeTemp(f.Name())
		return "", retry.Permanent(fmt.Errorf("failed to write temp file: %w", closeErr))
	case n > t.maxFileSize:
		t.removeTemp(f.Name())
		return "", retry.Permanent(t.tooLarge(n))
	}

	t.logger.Debug("Downloaded media", "size", humanize.Bytes(uint64(n)))
	return f.Name(), nil
}

func (t *TranscriptionImpl) tooLarge(size int64) error {
	return errors.Wrap(transcription.ErrFileTooLarge, fmt.Sprintf("media is %s, limit is %s",
		humanize.Bytes(uint64(size)), humanize.Bytes(uint64(t.maxFileSize))))
}

func (t *TranscriptionImpl) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		t.logger.Warn("Failed to remove temp media file", "path", path, "error", err)
	}
}

type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Words    []whisperWord    `json:"words"`
}

func (t *TranscriptionImpl) upload(ctx context.Context, path string) (*transcription.Result, error) {
	body, contentType, err := t.multipartBody(path)
	if err != nil {
		return nil, retry.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.api.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcription response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("transcription endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	var parsed whisperResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode transcription response: %w", err))
	}

	return toResult(parsed), nil
}

func (t *TranscriptionImpl) multipartBody(path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open media file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("failed to buffer media file: %w", err)
	}

	fields := [][2]string{
		{"model", t.model},
		{"response_format", "verbose_json"},
		{"timestamp_granularities[]", "segment"},
		{"timestamp_granularities[]", "word"},
	}
	for _, field := range fields {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

// toResult attaches each word to the segment whose time span contains its start.
func toResult(r whisperResponse) *transcription.Result {
	result := &transcription.Result{Text: strings.TrimSpace(r.Text)}
	if len(r.Segments) == 0 {
		return result
	}

	words := append([]whisperWord(nil), r.Words...)
	sort.SliceStable(words, func(i, j int) bool { return words[i].Start < words[j].Start })

	segments := make([]domain.Segment, len(r.Segments))
	w := 0
	for i, s := range r.Segments {
		seg := domain.Segment{Text: strings.TrimSpace(s.Text), Start: s.Start, End: s.End}
		last := i == len(r.Segments)-1
		for w < len(words) && (last || words[w].Start < s.End) {
			seg.Words = append(seg.Words, domain.Word{Word: strings.TrimSpace(words[w].Word), Start: words[w].Start, End: words[w].End})
			w++
		}
		segments[i] = seg
	}

	result.Timestamped = &domain.TimestampedTranscript{Text: result.Text, Segments: segments}
	return result
}

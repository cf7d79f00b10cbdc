package scraperimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/internal/instagram"
	"github.com/orgball2608/insta-compliance-bot/internal/transcription"
	"github.com/orgball2608/insta-compliance-bot/pkg/config"
	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"github.com/orgball2608/insta-compliance-bot/pkg/retry"
	"github.com/samber/lo"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config      *config.Config
	Logger      logger.Logger
	Transcriber transcription.Client
}

// ScraperImpl fetches posts from a hosted Instagram scraper dataset API.
type ScraperImpl struct {
	endpoint    string
	token       string
	timeout     time.Duration
	client      *http.Client
	transcriber transcription.Client
	transcribe  bool
	retryCfg    retry.Config
	logger      logger.Logger
}

var _ instagram.Client = (*ScraperImpl)(nil)

func New(opts Opts) *ScraperImpl {
	timeout := opts.Config.Scraper.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &ScraperImpl{
		endpoint:    opts.Config.Scraper.Endpoint,
		token:       opts.Config.Scraper.Token,
		timeout:     timeout,
		client:      &http.Client{},
		transcriber: opts.Transcriber,
		transcribe:  opts.Config.Transcription.Enabled,
		retryCfg:    retry.DefaultConfig(),
		logger:      opts.Logger.WithComponent("Scraper"),
	}
}

func (s *ScraperImpl) FetchPost(ctx context.Context, postURL string, progress domain.ProgressFunc) (*domain.Post, error) {
	progress.Report("Validating URL", 10)
	if _, err := instagram.ParsePostURL(postURL); err != nil {
		return nil, err
	}

	progress.Report("Fetching post", 30)
	post, err := s.scrape(ctx, postURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("Scraper unavailable, serving sample post",
			"url", postURL, "code", errors.GetCode(err), "error", err)
		return instagram.SamplePost(postURL), nil
	}

	if post.IsVideo() && s.transcribe && s.transcriber != nil && post.MediaURL != "" {
		progress.Report("Transcribing audio", 50)
		s.attachTranscript(ctx, post)
	}

	return post, nil
}

func (s *ScraperImpl) attachTranscript(ctx context.Context, post *domain.Post) {
	result, err := s.transcriber.Transcribe(ctx, post.MediaURL)
	if err != nil {
		s.logger.Warn("Transcription failed, continuing without transcript", "url", post.URL, "error", err)
		return
	}
	post.Transcript = result.Text
	post.TimestampedTranscript = result.Timestamped
}

type scrapeRequest struct {
	DirectURLs   []string `json:"directUrls"`
	ResultsType  string   `json:"resultsType"`
	ResultsLimit int      `json:"resultsLimit"`
}

type scrapeItem struct {
	URL          string   `json:"url"`
	Type         string   `json:"type"`
	Caption      string   `json:"caption"`
	Hashtags     []string `json:"hashtags"`
	VideoURL     string   `json:"videoUrl"`
	DisplayURL   string   `json:"displayUrl"`
	Alt          string   `json:"alt"`
	Error        string   `json:"error"`
	ErrorMessage string   `json:"errorDescription"`
}

// scrape returns a coded error describing why the provider could not deliver the post.
func (s *ScraperImpl) scrape(ctx context.Context, postURL string) (*domain.Post, error) {
	if s.token == "" {
		return nil, errors.WrapWithCode(errors.ErrUnauthorized, errors.CodeUnauthorized, "scraper token is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var items []scrapeItem
	err := retry.Do(ctx, s.logger, "scrape post", func() error {
		var err error
		items, err = s.request(ctx, postURL)
		return err
	}, s.retryCfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.WrapWithCode(errors.ErrTimeout, errors.CodeTimeout, "scraper timed out")
		}
		return nil, err
	}

	item, ok := lo.Find(items, func(i scrapeItem) bool { return i.Error == "" })
	if !ok {
		if len(items) > 0 && strings.Contains(strings.ToLower(items[0].Error+items[0].ErrorMessage), "private") {
			return nil, errors.WrapWithCode(instagram.ErrPrivateAccount, errors.CodeNotFound, "post belongs to a private account")
		}
		return nil, errors.WrapWithCode(instagram.ErrPostNotFound, errors.CodeNotFound, "scraper returned no post")
	}

	return toPost(postURL, item), nil
}

func (s *ScraperImpl) request(ctx context.Context, postURL string) ([]scrapeItem, error) {
	payload, err := json.Marshal(scrapeRequest{DirectURLs: []string{postURL}, ResultsType: "posts", ResultsLimit: 1})
	if err != nil {
		return nil, retry.Permanent(err)
	}

	endpoint, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("invalid scraper endpoint: %w", err))
	}
	q := endpoint.Query()
	q.Set("token", s.token)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read scraper response: %w", err)
	}

	if err := statusError(resp.StatusCode, body); err != nil {
		if resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, retry.Permanent(err)
	}

	var items []scrapeItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode scraper response: %w", err))
	}
	return items, nil
}

func statusError(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusBadRequest:
		return errors.WrapWithCode(errors.ErrInvalidInput, errors.CodeInvalidURL, "scraper rejected the URL: "+detail)
	case status == http.StatusNotFound:
		return errors.WrapWithCode(instagram.ErrPostNotFound, errors.CodeNotFound, "post not found")
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.WrapWithCode(errors.ErrUnauthorized, errors.CodeUnauthorized, "scraper rejected credentials")
	case status == http.StatusPaymentRequired || status == http.StatusTooManyRequests:
		return errors.WrapWithCode(errors.ErrQuotaExceeded, errors.CodeQuotaExceeded, "scraper quota exceeded")
	case status >= 500:
		return errors.Wrap(errors.ErrServiceUnavailable, fmt.Sprintf("scraper returned status %d", status))
	default:
		return fmt.Errorf("scraper returned status %d: %s", status, detail)
	}
}

func toPost(postURL string, item scrapeItem) *domain.Post {
	post := &domain.Post{
		URL:      postURL,
		Caption:  item.Caption,
		Hashtags: lo.Map(item.Hashtags, func(h string, _ int) string { return strings.TrimPrefix(h, "#") }),
		AltText:  item.Alt,
	}
	if post.Hashtags == nil {
		post.Hashtags = []string{}
	}

	if strings.EqualFold(item.Type, "video") || item.VideoURL != "" {
		post.MediaType = domain.MediaTypeVideo
		post.MediaURL = item.VideoURL
	} else {
		post.MediaType = domain.MediaTypeImage
		post.MediaURL = item.DisplayURL
	}
	return post
}

package instagram

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
)

var (
	ErrPrivateAccount = errors.New("account is private and cannot be accessed")
	ErrPostNotFound   = errors.New("post not found or not publicly available")
)

var postPathPattern = regexp.MustCompile(`^/(p|reel|reels|tv)/([A-Za-z0-9_-]+)/?$`)

//go:generate go run go.uber.org/mock/mockgen -source=instagram.go -destination=mocks/mock.go
type Client interface {
	// FetchPost loads the post behind url. Only a malformed url or an abandoned ctx is
	// reported as an error; provider failures yield the sample post instead.
	FetchPost(ctx context.Context, url string, progress domain.ProgressFunc) (*domain.Post, error)
}

// ParsePostURL validates an Instagram post, reel or IGTV link and returns its
// shortcode.
func ParsePostURL(raw string) (string, error) {
	_, shortcode, err := parsePostPath(raw)
	return shortcode, err
}

// CanonicalPostURL returns the https://www.instagram.com/<kind>/<shortcode>/ form of a
// post link, dropping share query strings and host or slash variations.
func CanonicalPostURL(raw string) (string, error) {
	kind, shortcode, err := parsePostPath(raw)
	if err != nil {
		return "", err
	}
	if kind == "reels" {
		kind = "reel"
	}
	return "https://www.instagram.com/" + kind + "/" + shortcode + "/", nil
}

func parsePostPath(raw string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", "", invalidURL(raw)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "instagram.com" {
		return "", "", invalidURL(raw)
	}

	m := postPathPattern.FindStringSubmatch(u.EscapedPath())
	if m == nil {
		return "", "", invalidURL(raw)
	}
	return m[1], m[2], nil
}

func invalidURL(raw string) error {
	return errors.WrapWithCode(errors.ErrInvalidInput, errors.CodeInvalidURL,
		"invalid Instagram URL "+raw+": expected instagram.com/p/, /reel/ or /tv/ link")
}

// SamplePost is the fixed post served when the scraper cannot be reached.
func SamplePost(postURL string) *domain.Post {
	return &domain.Post{
		URL:        postURL,
		Caption:    "#ad Loving my morning routine with @brand protein shake! Link in bio for 20% off. #sponsored #fitness #health",
		MediaType:  domain.MediaTypeVideo,
		MediaURL:   "",
		Transcript: "Hey everyone! This video is sponsored by Brand. I have been using their protein shake every morning for a month. Use my code for twenty percent off.",
		TimestampedTranscript: &domain.TimestampedTranscript{
			Text: "Hey everyone! This video is sponsored by Brand. I have been using their protein shake every morning for a month. Use my code for twenty percent off.",
			Segments: []domain.Segment{
				{Text: "Hey everyone! This video is sponsored by Brand.", Start: 0, End: 3.2},
				{Text: "I have been using their protein shake every morning for a month.", Start: 3.2, End: 7.8},
				{Text: "Use my code for twenty percent off.", Start: 7.8, End: 10.5},
			},
		},
		Hashtags: []string{"ad", "sponsored", "fitness", "health"},
		AltText:  "Person holding a protein shake in a kitchen",
	}
}

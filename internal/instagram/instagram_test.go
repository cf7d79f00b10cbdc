package instagram

import (
	"testing"

	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePostURL(t *testing.T) {
	valid := map[string]string{
		"https://www.instagram.com/p/CxYz123/":          "CxYz123",
		"https://instagram.com/reel/Ab_c-9":             "Ab_c-9",
		"https://www.instagram.com/reels/Q1w2e3/?igsh=x": "Q1w2e3",
		"http://instagram.com/tv/T0V/":                  "T0V",
	}
	for raw, want := range valid {
		t.Run(raw, func(t *testing.T) {
			got, err := ParsePostURL(raw)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestCanonicalPostURL(t *testing.T) {
	cases := map[string]string{
		"https://www.instagram.com/p/CxYz123/":                  "https://www.instagram.com/p/CxYz123/",
		"https://instagram.com/p/CxYz123":                       "https://www.instagram.com/p/CxYz123/",
		"http://www.instagram.com/p/CxYz123/?igsh=MWZ2dnl4bnQ=": "https://www.instagram.com/p/CxYz123/",
		"https://www.instagram.com/reels/Q1w2e3/?utm_source=ig": "https://www.instagram.com/reel/Q1w2e3/",
		"  https://instagram.com/tv/T0V/  ":                     "https://www.instagram.com/tv/T0V/",
	}
	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			got, err := CanonicalPostURL(raw)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := CanonicalPostURL("https://example.com/p/CxYz123/")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidURL))
}

func TestParsePostURLRejects(t *testing.T) {
	invalid := []string{
		"",
		"not a url",
		"ftp://instagram.com/p/abc/",
		"https://instagram.com.evil.io/p/abc/",
		"https://www.instagram.com/someuser/",
		"https://www.instagram.com/p/",
		"https://www.instagram.com/stories/user/123/",
	}
	for _, raw := range invalid {
		t.Run(raw, func(t *testing.T) {
			_, err := ParsePostURL(raw)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeInvalidURL))
			assert.True(t, errors.IsInvalidInput(err))
		})
	}
}

func TestSamplePostIsStable(t *testing.T) {
	a := SamplePost("u")
	b := SamplePost("u")
	assert.Equal(t, a, b)
	assert.True(t, a.HasTimestamps())
	a.Hashtags[0] = "changed"
	assert.Equal(t, "ad", b.Hashtags[0])
}

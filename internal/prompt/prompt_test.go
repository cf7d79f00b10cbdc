package prompt

import (
	"regexp"
	"strings"
	"testing"

	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/stretchr/testify/assert"
)

var timestampMarker = regexp.MustCompile(`\[\d{2,}:\d{2}-\d{2,}:\d{2}\]: `)

func TestSystemPromptTimestampRules(t *testing.T) {
	sys := BuildSystemPrompt()
	assert.Contains(t, sys, "[00:00-00:10]")
	assert.Contains(t, sys, "[MM:SS-MM:SS]")
	assert.Contains(t, sys, "15-20 seconds")
	assert.Contains(t, sys, "150 characters")
}

func TestUserPromptImagePost(t *testing.T) {
	post := &domain.Post{
		Caption:    "New drop #ad",
		MediaType:  domain.MediaTypeImage,
		Transcript: "should never appear",
		Hashtags:   []string{"ad", "#fashion"},
		AltText:    "A model wearing a jacket",
	}

	out := BuildUserPrompt(post, []string{"Must include #ad", "Alt text describes the product"})

	assert.Contains(t, out, "TRANSCRIPT: Not applicable for image content")
	assert.NotContains(t, out, "TRANSCRIPT (with timestamps)")
	assert.NotContains(t, out, "should never appear")
	assert.Contains(t, out, "HASHTAGS: #ad #fashion")
	assert.Contains(t, out, "ALT TEXT: A model wearing a jacket")
	assert.Contains(t, out, "MEDIA TYPE: image")
	assert.Contains(t, out, "1. Must include #ad\n2. Alt text describes the product\n")
}

func TestUserPromptTimestampedVideo(t *testing.T) {
	post := &domain.Post{
		Caption:    "Workout time",
		MediaType:  domain.MediaTypeVideo,
		Transcript: "Hey everyone. This video is sponsored by Acme. Let's go.",
		TimestampedTranscript: &domain.TimestampedTranscript{
			Text: "Hey everyone. This video is sponsored by Acme. Let's go.",
			Segments: []domain.Segment{
				{Text: " Hey everyone.", Start: 0, End: 2.4},
				{Text: "This video is sponsored by Acme.", Start: 2.4, End: 75.2},
				{Text: "Let's go.", Start: 3600, End: 3661},
			},
		},
	}

	out := BuildUserPrompt(post, []string{"Sponsorship disclosed in first 10 seconds"})

	assert.Contains(t, out, "TRANSCRIPT (with timestamps):")
	assert.Len(t, timestampMarker.FindAllString(out, -1), 3)
	assert.Contains(t, out, "[00:00-00:02]: Hey everyone.\n")
	assert.Contains(t, out, "[00:02-01:15]: This video is sponsored by Acme.\n")
	assert.Contains(t, out, "[60:00-61:01]: Let's go.\n")
	assert.Contains(t, out, "FULL TRANSCRIPT: Hey everyone. This video is sponsored by Acme. Let's go.")
}

func TestUserPromptVideoWithoutTimestamps(t *testing.T) {
	post := &domain.Post{
		Caption:    "Workout time",
		MediaType:  domain.MediaTypeVideo,
		Transcript: "This video is sponsored by Acme.",
	}

	out := BuildUserPrompt(post, []string{"Mentions Acme"})

	assert.Contains(t, out, "TRANSCRIPT: This video is sponsored by Acme.")
	assert.NotContains(t, out, "(with timestamps)")
	assert.NotContains(t, out, "[00:")
	assert.False(t, timestampMarker.MatchString(out))
}

func TestUserPromptPlaceholders(t *testing.T) {
	post := &domain.Post{MediaType: domain.MediaTypeVideo}
	out := BuildUserPrompt(post, []string{"Anything"})

	assert.Contains(t, out, "CAPTION: No caption provided")
	assert.Contains(t, out, "HASHTAGS: No hashtags")
	assert.Contains(t, out, "ALT TEXT: No alt text provided")
	assert.Contains(t, out, "TRANSCRIPT: No transcript available")
}

func TestUserPromptSectionOrder(t *testing.T) {
	post := &domain.Post{Caption: "c", MediaType: domain.MediaTypeImage, Hashtags: []string{"h"}, AltText: "a"}
	out := BuildUserPrompt(post, []string{"r"})

	order := []string{"CAPTION:", "HASHTAGS:", "ALT TEXT:", "TRANSCRIPT:", "MEDIA TYPE:", "REQUIREMENTS:"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(out, marker)
		assert.Greater(t, idx, last, marker)
		last = idx
	}
}

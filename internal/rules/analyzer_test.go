package rules

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fitnessPost() *domain.Post {
	return &domain.Post{
		Caption:    "#ad This is a sponsored post about fitness.",
		MediaType:  domain.MediaTypeVideo,
		MediaURL:   "https://cdn.example.com/video.mp4",
		Transcript: "In this video, I mention my partnership with the brand.",
		Hashtags:   []string{"ad", "sponsored", "fitness"},
	}
}

func TestAnalyzeScenario(t *testing.T) {
	report := New().Analyze(fitnessPost(), []string{
		"Must include #ad hashtag",
		"Must mention partnership in audio",
		"Must include nonexistent term",
	})

	require.Len(t, report.Results, 3)
	assert.True(t, report.Results[0].Passed, report.Results[0].Explanation)
	assert.True(t, report.Results[1].Passed, report.Results[1].Explanation)
	assert.False(t, report.Results[2].Passed, report.Results[2].Explanation)
	assert.Equal(t, 67, report.OverallScore)
	assert.False(t, report.AIPowered)
}

func TestAnalyzeFiltersBlankRequirements(t *testing.T) {
	report := New().Analyze(fitnessPost(), []string{"Valid", "", "   ", "Another"})
	require.Len(t, report.Results, 2)
	assert.Equal(t, "Valid", report.Results[0].Requirement)
	assert.Equal(t, "Another", report.Results[1].Requirement)
}

func TestAnalyzeEmptyRequirements(t *testing.T) {
	report := New().Analyze(fitnessPost(), []string{"  "})
	assert.Empty(t, report.Results)
	assert.Equal(t, 0, report.OverallScore)
}

func TestHashtagAboveTheFold(t *testing.T) {
	req := []string{"#ad must be above the fold"}

	post := &domain.Post{Caption: "#ad " + strings.Repeat("x", 200), MediaType: domain.MediaTypeImage}
	report := New().Analyze(post, req)
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Passed)
	assert.Contains(t, report.Results[0].Explanation, "first 150 characters")

	post.Caption = strings.Repeat("x", 160) + " #ad"
	report = New().Analyze(post, req)
	assert.False(t, report.Results[0].Passed)
	assert.Contains(t, report.Results[0].Explanation, "first 150 characters")
}

func TestClassifyPriority(t *testing.T) {
	cases := map[string]category{
		"Use #sponsored":                        categoryHashtag,
		"Sponsored hashtag in the first 10 sec": categoryHashtag,
		"Brand name at the beginning":           categoryFold,
		"Creator says discount code":            categoryAudio,
		"Brand within first 10 seconds":         categoryOpening,
		"Brand in the description":              categoryCaption,
		"Discount code":                         categoryGeneric,
	}
	for req, want := range cases {
		assert.Equal(t, want, classify(strings.ToLower(req)), req)
	}
}

func TestHashtagKeywordFallback(t *testing.T) {
	post := &domain.Post{Caption: "Loving this #sponsored drop", MediaType: domain.MediaTypeImage}
	report := New().Analyze(post, []string{"Sponsored hashtag required", "Giveaway hashtag required"})

	assert.True(t, report.Results[0].Passed, report.Results[0].Explanation)
	assert.False(t, report.Results[1].Passed, report.Results[1].Explanation)
}

func TestOpeningWordsWindow(t *testing.T) {
	early := "partnership " + strings.Repeat("filler ", 80)
	late := strings.Repeat("filler ", 80) + "partnership"
	req := []string{"Partnership disclosed in first 10 seconds"}

	post := &domain.Post{MediaType: domain.MediaTypeVideo, Transcript: early}
	assert.True(t, New().Analyze(post, req).Results[0].Passed)

	post.Transcript = late
	result := New().Analyze(post, req).Results[0]
	assert.False(t, result.Passed)
	assert.Contains(t, result.Explanation, "first 50 words")
}

func TestAudioWithoutTranscript(t *testing.T) {
	post := &domain.Post{Caption: "partnership", MediaType: domain.MediaTypeImage}
	result := New().Analyze(post, []string{"Must mention partnership in audio"}).Results[0]
	assert.False(t, result.Passed)
	assert.Contains(t, result.Explanation, "No audio transcript")
}

func TestGenericExplanationNamesSource(t *testing.T) {
	post := &domain.Post{
		Caption:    "Use discount code FIT10",
		MediaType:  domain.MediaTypeVideo,
		Transcript: "grab the discount today",
	}
	results := New().Analyze(post, []string{"Discount", "Code", "Today"}).Results

	assert.Contains(t, results[0].Explanation, "caption and audio")
	assert.Contains(t, results[1].Explanation, "found in caption")
	assert.Contains(t, results[2].Explanation, "found in audio")
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	reqs := []string{"Must include #ad hashtag", "Must mention partnership in audio", "Brand at the beginning"}
	a, err := json.Marshal(New().Analyze(fitnessPost(), reqs))
	require.NoError(t, err)
	b, err := json.Marshal(New().Analyze(fitnessPost(), reqs))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

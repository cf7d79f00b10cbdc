package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverallScore(t *testing.T) {
	assert.Equal(t, 0, OverallScore(nil))
	assert.Equal(t, 67, OverallScore([]AnalysisResult{{Passed: true}, {Passed: true}, {Passed: false}}))
	assert.Equal(t, 33, OverallScore([]AnalysisResult{{Passed: true}, {}, {}}))
	assert.Equal(t, 13, OverallScore([]AnalysisResult{{Passed: true}, {}, {}, {}, {}, {}, {}, {}}))
	assert.Equal(t, 100, OverallScore([]AnalysisResult{{Passed: true}}))
}

func TestCloneDoesNotAlias(t *testing.T) {
	orig := &AnalysisReport{
		Results: []AnalysisResult{{Requirement: "a", Evidence: []string{"quote"}}},
		Model:   "gpt",
	}
	c := orig.Clone()
	c.Results[0].Evidence[0] = "changed"
	c.Results[0].Requirement = "b"
	c.Model = "other"

	assert.Equal(t, "quote", orig.Results[0].Evidence[0])
	assert.Equal(t, "a", orig.Results[0].Requirement)
	assert.Equal(t, "gpt", orig.Model)
}

func TestHasTimestamps(t *testing.T) {
	p := Post{MediaType: MediaTypeVideo}
	assert.False(t, p.HasTimestamps())

	p.TimestampedTranscript = &TimestampedTranscript{Segments: []Segment{{Text: "hi", Start: 0, End: 1}}}
	assert.True(t, p.HasTimestamps())

	p.MediaType = MediaTypeImage
	assert.False(t, p.HasTimestamps())
}

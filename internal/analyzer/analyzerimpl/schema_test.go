package analyzerimpl

import (
	"testing"

	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReply = `{"results":[{"requirement":"Mention #ad","passed":true,"explanation":"found","confidence":0.95,"evidence":["#ad"],"reasoning":"caption starts with #ad"}],"overallAssessment":"ok"}`

func TestParseModelResponse(t *testing.T) {
	results, assessment, err := parseModelResponse(validReply, []string{"Must mention #ad"})
	require.NoError(t, err)

	assert.Equal(t, "ok", assessment)
	require.Len(t, results, 1)
	assert.Equal(t, "Must mention #ad", results[0].Requirement)
	assert.True(t, results[0].Passed)
	assert.Equal(t, 0.95, results[0].Confidence)
	assert.Equal(t, []string{"#ad"}, results[0].Evidence)
}

func TestParseModelResponseFenced(t *testing.T) {
	_, _, err := parseModelResponse("```json\n"+validReply+"\n```", []string{"Must mention #ad"})
	assert.NoError(t, err)
}

func TestParseModelResponseRejects(t *testing.T) {
	tests := map[string]string{
		"empty":             "",
		"malformed":         `{"results":`,
		"missing results":   `{"overallAssessment":"ok"}`,
		"missing overall":   `{"results":[]}`,
		"count mismatch":    `{"results":[],"overallAssessment":"ok"}`,
		"missing field":     `{"results":[{"requirement":"a","passed":true,"explanation":"e","confidence":0.5,"evidence":[]}],"overallAssessment":"ok"}`,
		"confidence high":   `{"results":[{"requirement":"a","passed":true,"explanation":"e","confidence":1.5,"evidence":[],"reasoning":"r"}],"overallAssessment":"ok"}`,
		"confidence below":  `{"results":[{"requirement":"a","passed":true,"explanation":"e","confidence":-0.1,"evidence":[],"reasoning":"r"}],"overallAssessment":"ok"}`,
		"wrong passed type": `{"results":[{"requirement":"a","passed":"yes","explanation":"e","confidence":0.5,"evidence":[],"reasoning":"r"}],"overallAssessment":"ok"}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := parseModelResponse(content, []string{"a"})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidResponse)
			assert.True(t, errors.HasCode(err, errors.CodeInvalidResponse))
		})
	}
}

package analyzerimpl

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
)

const schemaName = "compliance_analysis"

var responseSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"results", "overallAssessment"},
	"properties": map[string]any{
		"results": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"requirement", "passed", "explanation", "confidence", "evidence", "reasoning"},
				"properties": map[string]any{
					"requirement": map[string]any{"type": "string"},
					"passed":      map[string]any{"type": "boolean"},
					"explanation": map[string]any{"type": "string"},
					"confidence":  map[string]any{"type": "number", "minimum": 0, "maximum": 1},
					"evidence":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"reasoning":   map[string]any{"type": "string"},
				},
			},
		},
		"overallAssessment": map[string]any{"type": "string"},
	},
}

// ErrInvalidResponse marks a model reply that does not match the response schema.
var ErrInvalidResponse = errors.NewWithCode(errors.CodeInvalidResponse, "model response does not match schema")

// Pointer fields let validation tell a missing field from a zero value.
type modelResult struct {
	Requirement *string   `json:"requirement"`
	Passed      *bool     `json:"passed"`
	Explanation *string   `json:"explanation"`
	Confidence  *float64  `json:"confidence"`
	Evidence    *[]string `json:"evidence"`
	Reasoning   *string   `json:"reasoning"`
}

type modelResponse struct {
	Results           *[]modelResult `json:"results"`
	OverallAssessment *string        `json:"overallAssessment"`
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*\\})\\s*```")

// parseModelResponse validates the reply against the schema and returns one result per
// requirement, in requirement order.
func parseModelResponse(content string, requirements []string) ([]domain.AnalysisResult, string, error) {
	content = strings.TrimSpace(content)
	if m := fencedJSON.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}
	if content == "" {
		return nil, "", invalid("empty response")
	}

	var resp modelResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, "", invalid(fmt.Sprintf("malformed JSON: %v", err))
	}
	if resp.Results == nil {
		return nil, "", invalid("missing results")
	}
	if resp.OverallAssessment == nil {
		return nil, "", invalid("missing overallAssessment")
	}
	if len(*resp.Results) != len(requirements) {
		return nil, "", invalid(fmt.Sprintf("expected %d results, got %d", len(requirements), len(*resp.Results)))
	}

	results := make([]domain.AnalysisResult, len(requirements))
	for i, r := range *resp.Results {
		switch {
		case r.Requirement == nil, r.Passed == nil, r.Explanation == nil,
			r.Confidence == nil, r.Evidence == nil, r.Reasoning == nil:
			return nil, "", invalid(fmt.Sprintf("result %d is missing fields", i+1))
		case *r.Confidence < 0 || *r.Confidence > 1:
			return nil, "", invalid(fmt.Sprintf("result %d confidence %v outside [0,1]", i+1, *r.Confidence))
		}

		results[i] = domain.AnalysisResult{
			Requirement: requirements[i],
			Passed:      *r.Passed,
			Explanation: *r.Explanation,
			Confidence:  *r.Confidence,
			Evidence:    append([]string{}, (*r.Evidence)...),
			Reasoning:   *r.Reasoning,
		}
	}

	return results, *resp.OverallAssessment, nil
}

func invalid(detail string) error {
	return errors.Wrap(ErrInvalidResponse, detail)
}

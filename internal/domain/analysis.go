package domain

import (
	"math"
	"time"
)

// AnalysisResult is the verdict for a single requirement.
type AnalysisResult struct {
	Requirement string   `json:"requirement"`
	Passed      bool     `json:"passed"`
	Explanation string   `json:"explanation"`
	Confidence  float64  `json:"confidence"`
	Evidence    []string `json:"evidence"`
	Reasoning   string   `json:"reasoning"`
}

type AnalysisReport struct {
	ID                string           `json:"id,omitempty"`
	Results           []AnalysisResult `json:"results"`
	OverallScore      int              `json:"overallScore"`
	OverallAssessment string           `json:"overallAssessment,omitempty"`
	AIPowered         bool             `json:"aiPowered"`
	ProcessingTimeMs  int64            `json:"processingTime"`
	Model             string           `json:"model"`
}

const (
	ModelRuleBased         = "rule-based"
	ModelRuleBasedFallback = "rule-based-fallback"
)

// OverallScore is round(100 * passed / total), or 0 for no results.
func OverallScore(results []AnalysisResult) int {
	if len(results) == 0 {
		return 0
	}
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	return int(math.Round(100 * float64(passed) / float64(len(results))))
}

func (r *AnalysisReport) PassedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed {
			n++
		}
	}
	return n
}

// SetProcessingTime records the elapsed time since start in milliseconds.
func (r *AnalysisReport) SetProcessingTime(start time.Time) {
	r.ProcessingTimeMs = time.Since(start).Milliseconds()
}

// Clone returns a deep copy so cached reports are never aliased by callers.
func (r *AnalysisReport) Clone() *AnalysisReport {
	if r == nil {
		return nil
	}
	out := *r
	out.Results = make([]AnalysisResult, len(r.Results))
	for i, res := range r.Results {
		out.Results[i] = res
		if res.Evidence != nil {
			out.Results[i].Evidence = append([]string(nil), res.Evidence...)
		}
	}
	return &out
}

package analyzerimpl

import (
	"context"

	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/internal/llm"
	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
)

const (
	fallbackConfidence  = 0.7
	fallbackReasoning   = "AI analysis was unavailable; this result comes from the rule-based fallback analyzer"
	ruleBasedConfidence = 0.8
	ruleBasedReasoning  = "Evaluated with the rule-based approach using keyword and placement matching"
)

// FallbackReason names why the AI path gave up.
type FallbackReason string

const (
	ReasonRateLimited     FallbackReason = "rate_limited"
	ReasonQuotaExceeded   FallbackReason = "quota_exceeded"
	ReasonUnauthorized    FallbackReason = "unauthorized"
	ReasonTimeout         FallbackReason = "timeout"
	ReasonInvalidResponse FallbackReason = "invalid_response"
	ReasonProviderError   FallbackReason = "provider_error"
)

// aiOutcome is the result of one trip through the AI path. Exactly one of report and
// err is set.
type aiOutcome struct {
	report *domain.AnalysisReport
	err    error
}

func (o aiOutcome) ok() bool {
	return o.err == nil
}

func classifyFailure(err error) FallbackReason {
	switch {
	case llm.IsRateLimited(err):
		return ReasonRateLimited
	case errors.Is(err, llm.ErrQuotaExceeded):
		return ReasonQuotaExceeded
	case errors.Is(err, llm.ErrUnauthorized):
		return ReasonUnauthorized
	case errors.Is(err, errors.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, ErrInvalidResponse), errors.Is(err, llm.ErrEmptyResponse):
		return ReasonInvalidResponse
	default:
		return ReasonProviderError
	}
}

// wrapRuleReport gives a rule-based report the AI report shape.
func wrapRuleReport(report *domain.AnalysisReport, confidence float64, reasoning, model string) *domain.AnalysisReport {
	for i := range report.Results {
		report.Results[i].Confidence = confidence
		report.Results[i].Reasoning = reasoning
		if report.Results[i].Evidence == nil {
			report.Results[i].Evidence = []string{}
		}
	}
	report.AIPowered = false
	report.Model = model
	return report
}

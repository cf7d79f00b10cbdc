package analyzer

import (
	"context"
	"strings"

	"github.com/orgball2608/insta-compliance-bot/internal/cache"
	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
	"github.com/samber/lo"
)

type ProgressFunc = domain.ProgressFunc

type Options struct {
	// RulesOnly skips the AI analyzer and uses the rule-based engine directly.
	RulesOnly bool
	Progress  ProgressFunc
}

//go:generate go run go.uber.org/mock/mockgen -source=analyzer.go -destination=mocks/mock.go
type Client interface {
	// Analyze evaluates every requirement against the post and returns a report in the
	// AI-shaped form regardless of which engine produced it.
	Analyze(ctx context.Context, post *domain.Post, requirements []string, opts Options) (*domain.AnalysisReport, error)

	// CacheStats describes the analysis cache.
	CacheStats() cache.Stats
}

// ParseRequirements splits newline-delimited requirement text into trimmed, non-blank
// requirements.
func ParseRequirements(text string) ([]string, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	requirements := lo.FilterMap(lines, func(line string, _ int) (string, bool) {
		line = strings.TrimSpace(line)
		return line, line != ""
	})
	if len(requirements) == 0 {
		return nil, errors.WrapWithCode(errors.ErrInvalidInput, errors.CodeInvalidInput, "at least one requirement is needed")
	}
	return requirements, nil
}

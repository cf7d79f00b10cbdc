package analyzerimpl

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/insta-compliance-bot/internal/analyzer"
	"github.com/orgball2608/insta-compliance-bot/internal/cache"
	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/internal/llm"
	"github.com/orgball2608/insta-compliance-bot/internal/ratelimit"
	"github.com/orgball2608/insta-compliance-bot/internal/rules"
	"github.com/orgball2608/insta-compliance-bot/pkg/config"
	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"go.uber.org/fx"
)

var _ analyzer.Client = (*AnalyzerImpl)(nil)

type Opts struct {
	fx.In

	LLM     llm.Client
	Cache   *cache.Store[*domain.AnalysisReport]
	Limiter *ratelimit.FixedWindow
	Config  *config.Config
	Logger  logger.Logger
}

type AnalyzerImpl struct {
	ai     *AIAnalyzer
	rules  *rules.Analyzer
	cache  *cache.Store[*domain.AnalysisReport]
	logger logger.Logger
}

func New(opts Opts) *AnalyzerImpl {
	cfg := DefaultAIConfig()
	cfg.FallbackEnabled = opts.Config.Analysis.FallbackEnabled
	if opts.Config.Analysis.MaxAttempts > 0 {
		cfg.MaxAttempts = opts.Config.Analysis.MaxAttempts
	}
	if opts.Config.Analysis.CallTimeout > 0 {
		cfg.CallTimeout = opts.Config.Analysis.CallTimeout
	}

	return NewWithAI(NewAIAnalyzer(opts.LLM, opts.Cache, opts.Limiter, cfg, opts.Logger), opts.Cache, opts.Logger)
}

func NewWithAI(ai *AIAnalyzer, store *cache.Store[*domain.AnalysisReport], log logger.Logger) *AnalyzerImpl {
	return &AnalyzerImpl{
		ai:     ai,
		rules:  rules.New(),
		cache:  store,
		logger: log.WithComponent("AnalyzerImpl"),
	}
}

func (a *AnalyzerImpl) Analyze(ctx context.Context, post *domain.Post, requirements []string, opts analyzer.Options) (*domain.AnalysisReport, error) {
	if !opts.RulesOnly {
		return a.ai.Analyze(ctx, post, requirements, opts.Progress)
	}

	start := time.Now()
	if post == nil {
		return nil, errors.WrapWithCode(errors.ErrInvalidInput, errors.CodeInvalidInput, "post is required")
	}

	report := a.rules.Analyze(post, requirements)
	if len(report.Results) == 0 {
		return nil, errors.WrapWithCode(errors.ErrInvalidInput, errors.CodeInvalidInput, "at least one requirement is needed")
	}

	report = wrapRuleReport(report, ruleBasedConfidence, ruleBasedReasoning, domain.ModelRuleBased)
	report.ID = uuid.NewString()
	report.SetProcessingTime(start)
	opts.Progress.Report("Analysis complete", 100)

	a.logger.Debug("Rule-based analysis finished", "requirements", len(report.Results), "score", report.OverallScore)
	return report, nil
}

func (a *AnalyzerImpl) CacheStats() cache.Stats {
	return a.cache.Stats()
}

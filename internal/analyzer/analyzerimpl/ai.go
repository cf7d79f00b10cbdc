package analyzerimpl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/insta-compliance-bot/internal/analyzer"
	"github.com/orgball2608/insta-compliance-bot/internal/cache"
	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/internal/llm"
	"github.com/orgball2608/insta-compliance-bot/internal/prompt"
	"github.com/orgball2608/insta-compliance-bot/internal/rules"
	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"github.com/orgball2608/insta-compliance-bot/pkg/retry"
	"golang.org/x/sync/singleflight"
)

// Waiter gates outbound model calls.
type Waiter interface {
	Wait(ctx context.Context) error
}

type AIConfig struct {
	FallbackEnabled bool
	MaxAttempts     int
	CallTimeout     time.Duration
	RetryBase       time.Duration
	RetryMax        time.Duration
}

func DefaultAIConfig() AIConfig {
	return AIConfig{
		FallbackEnabled: true,
		MaxAttempts:     3,
		CallTimeout:     30 * time.Second,
		RetryBase:       time.Second,
		RetryMax:        10 * time.Second,
	}
}

// AIAnalyzer evaluates requirements with a language model and falls back to the
// rule engine when the model cannot produce a valid answer.
type AIAnalyzer struct {
	llm     llm.Client
	rules   *rules.Analyzer
	cache   *cache.Store[*domain.AnalysisReport]
	limiter Waiter
	logger  logger.Logger
	cfg     AIConfig

	group singleflight.Group
}

func NewAIAnalyzer(client llm.Client, store *cache.Store[*domain.AnalysisReport], limiter Waiter, cfg AIConfig, log logger.Logger) *AIAnalyzer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &AIAnalyzer{
		llm:     client,
		rules:   rules.New(),
		cache:   store,
		limiter: limiter,
		logger:  log.WithComponent("AIAnalyzer"),
		cfg:     cfg,
	}
}

func (a *AIAnalyzer) Analyze(ctx context.Context, post *domain.Post, requirements []string, progress analyzer.ProgressFunc) (*domain.AnalysisReport, error) {
	start := time.Now()
	progress.Report("Validating analysis request", 60)

	reqs, err := validate(post, requirements)
	if err != nil {
		return nil, err
	}

	key := cache.GenerateKey(post, reqs)
	if cached, ok := a.cache.Get(key); ok {
		a.logger.Debug("Cache hit", "key", key)
		cached.SetProcessingTime(start)
		progress.Report("Analysis complete", 100)
		return cached, nil
	}

	progress.Report("Analyzing content with AI", 70)

	// The shared computation outlives any single caller so a canceled request does not
	// fail the others waiting on the same fingerprint.
	detached := context.WithoutCancel(ctx)
	ch := a.group.DoChan(key, func() (any, error) {
		return a.compute(detached, key, post, reqs), nil
	})

	var outcome aiOutcome
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		outcome = res.Val.(aiOutcome)
	}

	if !outcome.ok() {
		return a.fallback(post, reqs, outcome.err, start, progress)
	}

	report := outcome.report.Clone()
	report.SetProcessingTime(start)
	progress.Report("Analysis complete", 100)
	return report, nil
}

func (a *AIAnalyzer) compute(ctx context.Context, key string, post *domain.Post, reqs []string) aiOutcome {
	if err := a.limiter.Wait(ctx); err != nil {
		return aiOutcome{err: err}
	}

	req := llm.ChatRequest{
		SystemPrompt: prompt.BuildSystemPrompt(),
		UserPrompt:   prompt.BuildUserPrompt(post, reqs),
		SchemaName:   schemaName,
		Schema:       responseSchema,
	}

	var (
		results    []domain.AnalysisResult
		assessment string
		model      string
	)
	bo := &retry.ClassifiedBackOff{
		Base:        a.cfg.RetryBase,
		Max:         a.cfg.RetryMax,
		IsThrottled: llm.IsRateLimited,
	}
	err := retry.DoAttempts(ctx, a.logger, "model analysis", func() error {
		resp, err := a.callModel(ctx, req)
		if err != nil {
			if llm.IsPermanent(err) || ctx.Err() != nil {
				return retry.Permanent(err)
			}
			return err
		}

		results, assessment, err = parseModelResponse(resp.Content, reqs)
		if err != nil {
			return err
		}
		model = resp.Model
		return nil
	}, bo, a.cfg.MaxAttempts)
	if err != nil {
		return aiOutcome{err: err}
	}

	if model == "" {
		model = a.llm.Model()
	}
	report := &domain.AnalysisReport{
		ID:                uuid.NewString(),
		Results:           results,
		OverallScore:      domain.OverallScore(results),
		OverallAssessment: assessment,
		AIPowered:         true,
		Model:             model,
	}
	a.cache.Set(key, report)

	return aiOutcome{report: report}
}

// callModel races one provider call against the per-call timeout. A reply arriving
// after the deadline is dropped.
func (a *AIAnalyzer) callModel(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()

	type reply struct {
		resp *llm.ChatResponse
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		resp, err := a.llm.ChatComplete(callCtx, req)
		done <- reply{resp: resp, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, a.timeoutError()
		}
		return r.resp, r.err
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, a.timeoutError()
	}
}

func (a *AIAnalyzer) timeoutError() error {
	return errors.WrapWithCode(errors.ErrTimeout, errors.CodeTimeout,
		fmt.Sprintf("model call exceeded %s", a.cfg.CallTimeout))
}

func (a *AIAnalyzer) fallback(post *domain.Post, reqs []string, cause error, start time.Time, progress analyzer.ProgressFunc) (*domain.AnalysisReport, error) {
	reason := classifyFailure(cause)
	if !a.cfg.FallbackEnabled {
		a.logger.Error("AI analysis failed", "reason", reason, "error", cause)
		progress.Report("Analysis failed", 100)
		return nil, errors.WrapWithCode(cause, errors.CodeAnalysisFailed, fmt.Sprintf("AI analysis failed (%s)", reason))
	}

	a.logger.Warn("AI analysis failed, using rule-based fallback", "reason", reason, "error", cause)

	report := wrapRuleReport(a.rules.Analyze(post, reqs), fallbackConfidence, fallbackReasoning, domain.ModelRuleBasedFallback)
	report.ID = uuid.NewString()
	report.SetProcessingTime(start)
	progress.Report("AI unavailable, used rule-based fallback", 100)
	return report, nil
}

// validate rejects caller mistakes before any work is done and returns the trimmed
// requirements.
func validate(post *domain.Post, requirements []string) ([]string, error) {
	if post == nil {
		return nil, errors.WrapWithCode(errors.ErrInvalidInput, errors.CodeInvalidInput, "post is required")
	}
	if len(requirements) == 0 {
		return nil, errors.WrapWithCode(errors.ErrInvalidInput, errors.CodeInvalidInput, "at least one requirement is needed")
	}

	reqs := make([]string, len(requirements))
	for i, r := range requirements {
		reqs[i] = strings.TrimSpace(r)
		if reqs[i] == "" {
			return nil, errors.WrapWithCode(errors.ErrInvalidInput, errors.CodeInvalidInput,
				fmt.Sprintf("requirement %d is blank", i+1))
		}
	}
	return reqs, nil
}

package analyzerimpl

import (
	"context"
	"testing"
	"time"

	"github.com/orgball2608/insta-compliance-bot/internal/analyzer"
	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	mock_llm "github.com/orgball2608/insta-compliance-bot/internal/llm/mocks"
	"github.com/orgball2608/insta-compliance-bot/internal/ratelimit"
	"github.com/orgball2608/insta-compliance-bot/pkg/config"
	"github.com/orgball2608/insta-compliance-bot/pkg/errors"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestFacade(t *testing.T) (*AnalyzerImpl, *mock_llm.MockClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mock_llm.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Analysis.FallbackEnabled = true
	cfg.Analysis.MaxAttempts = 2
	cfg.Analysis.CallTimeout = time.Second

	return New(Opts{
		LLM:     client,
		Cache:   NewReportStore(10, time.Minute, logger.Nop()),
		Limiter: ratelimit.NewPerMinute(100),
		Config:  cfg,
		Logger:  logger.Nop(),
	}), client
}

func TestFacadeRulesOnly(t *testing.T) {
	facade, _ := newTestFacade(t)

	var last int
	report, err := facade.Analyze(context.Background(), samplePost(),
		[]string{"Must include #ad hashtag", "", "   ", "Must include nonexistent term"},
		analyzer.Options{RulesOnly: true, Progress: func(_ string, p int) { last = p }})
	require.NoError(t, err)

	assert.False(t, report.AIPowered)
	assert.Equal(t, domain.ModelRuleBased, report.Model)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 100, last)
	require.Len(t, report.Results, 2)
	for _, r := range report.Results {
		assert.Equal(t, ruleBasedConfidence, r.Confidence)
		assert.Equal(t, ruleBasedReasoning, r.Reasoning)
		assert.NotNil(t, r.Evidence)
	}
	assert.Equal(t, 50, report.OverallScore)
	assert.Zero(t, facade.CacheStats().TotalEntries)
}

func TestFacadeRulesOnlyRejectsEmptyInput(t *testing.T) {
	facade, _ := newTestFacade(t)

	_, err := facade.Analyze(context.Background(), samplePost(), []string{" ", ""}, analyzer.Options{RulesOnly: true})
	assert.True(t, errors.IsInvalidInput(err))

	_, err = facade.Analyze(context.Background(), nil, []string{"x"}, analyzer.Options{RulesOnly: true})
	assert.True(t, errors.IsInvalidInput(err))
}

func TestFacadeDefaultsToAI(t *testing.T) {
	facade, client := newTestFacade(t)
	reqs := []string{"Must include #ad hashtag"}

	client.EXPECT().ChatComplete(gomock.Any(), gomock.Any()).Return(modelReply(t, reqs, true), nil)

	report, err := facade.Analyze(context.Background(), samplePost(), reqs, analyzer.Options{})
	require.NoError(t, err)
	assert.True(t, report.AIPowered)
	assert.Equal(t, 1, facade.CacheStats().TotalEntries)
}

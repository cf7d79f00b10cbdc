package commandimpl

import (
	"time"

	"github.com/orgball2608/insta-compliance-bot/internal/analyzer"
	"github.com/orgball2608/insta-compliance-bot/internal/command"
	"github.com/orgball2608/insta-compliance-bot/internal/instagram"
	"github.com/orgball2608/insta-compliance-bot/internal/ratelimit"
	"github.com/orgball2608/insta-compliance-bot/internal/repositories/analysis"
	"github.com/orgball2608/insta-compliance-bot/internal/telegram"
	"github.com/orgball2608/insta-compliance-bot/pkg/config"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"go.uber.org/fx"
)

const (
	analysisTimeout = 5 * time.Minute
	historyLimit    = 5
)

type Opts struct {
	fx.In

	Instagram    instagram.Client
	Analyzer     analyzer.Client
	Telegram     telegram.Client
	AnalysisRepo analysis.Repository
	Logger       logger.Logger
	Config       *config.Config
}

type CommandImpl struct {
	Instagram    instagram.Client
	Analyzer     analyzer.Client
	Telegram     telegram.Client
	AnalysisRepo analysis.Repository
	Logger       logger.Logger
	Config       *config.Config

	limiter ratelimit.Limiter
}

func New(opts Opts) *CommandImpl {
	return &CommandImpl{
		Instagram:    opts.Instagram,
		Analyzer:     opts.Analyzer,
		Telegram:     opts.Telegram,
		AnalysisRepo: opts.AnalysisRepo,
		Logger:       opts.Logger.WithComponent("Command"),
		Config:       opts.Config,
		// 1 analysis every 20 seconds per user, burst of 3
		limiter: ratelimit.NewInMemoryLimiter(1, 20*time.Second, 3),
	}
}

var _ command.Client = (*CommandImpl)(nil)

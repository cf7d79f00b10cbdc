package logger

import (
	"github.com/orgball2608/insta-compliance-bot/pkg/config"
	"go.uber.org/fx"
)

var FxOption = fx.Annotate(
	func(cfg *config.Config) *Impl {
		return New(
			Opts{
				Env:    cfg.App.Env,
				Sentry: cfg.App.SentryUrl != "",
			},
		)
	},
	fx.As(new(Logger)),
)

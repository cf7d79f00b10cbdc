package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/orgball2608/insta-compliance-bot/internal/analyzer"
	"github.com/orgball2608/insta-compliance-bot/internal/analyzer/analyzerimpl"
	"github.com/orgball2608/insta-compliance-bot/internal/command"
	"github.com/orgball2608/insta-compliance-bot/internal/command/commandimpl"
	"github.com/orgball2608/insta-compliance-bot/internal/db"
	"github.com/orgball2608/insta-compliance-bot/internal/instagram"
	"github.com/orgball2608/insta-compliance-bot/internal/instagram/scraperimpl"
	"github.com/orgball2608/insta-compliance-bot/internal/llm"
	"github.com/orgball2608/insta-compliance-bot/internal/llm/llmimpl"
	"github.com/orgball2608/insta-compliance-bot/internal/ratelimit"
	repositories "github.com/orgball2608/insta-compliance-bot/internal/repositories/fx"
	"github.com/orgball2608/insta-compliance-bot/internal/scheduler"
	"github.com/orgball2608/insta-compliance-bot/internal/scheduler/schedulerimpl"
	"github.com/orgball2608/insta-compliance-bot/internal/telegram"
	"github.com/orgball2608/insta-compliance-bot/internal/telegram/telegramimpl"
	"github.com/orgball2608/insta-compliance-bot/internal/transcription"
	"github.com/orgball2608/insta-compliance-bot/internal/transcription/transcriptionimpl"
	"github.com/orgball2608/insta-compliance-bot/pkg/config"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"github.com/orgball2608/insta-compliance-bot/pkg/pgx"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		analyzerimpl.NewReportCache,
		func(cfg *config.Config) *ratelimit.FixedWindow {
			return ratelimit.NewPerMinute(cfg.Analysis.RateLimitPerMinute)
		},
	),
	fx.Provide(
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		), fx.Annotate(
			llmimpl.New,
			fx.As(new(llm.Client)),
		), fx.Annotate(
			transcriptionimpl.New,
			fx.As(new(transcription.Client)),
		), fx.Annotate(
			scraperimpl.New,
			fx.As(new(instagram.Client)),
		), fx.Annotate(
			analyzerimpl.New,
			fx.As(new(analyzer.Client)),
		), fx.Annotate(
			schedulerimpl.New,
			fx.As(new(scheduler.Client)),
		),
		fx.Annotate(
			commandimpl.New,
			fx.As(new(command.Client)),
		),
	),
	repositories.Module,
	fx.Invoke(initSentry),
	fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, log logger.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return db.Migrate(ctx, cfg, log)
			},
		})
	}),
	fx.Invoke(run),
)

func initSentry(lc fx.Lifecycle, cfg *config.Config, log logger.Logger) error {
	if cfg.App.SentryUrl == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.App.SentryUrl,
		Environment: cfg.App.Env,
	}); err != nil {
		return fmt.Errorf("failed to init sentry: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		},
	})
	log.Info("Sentry initialized")
	return nil
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, tgClient telegram.Client,
	schedClient scheduler.Client, cmdClient command.Client) {
	ctx, cancel := context.WithCancel(context.Background())
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.App.Port), Handler: healthMux(log)}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go startHttpServer(log, server)

			if err := schedClient.ScheduleHistoryCleanup(ctx); err != nil {
				log.Error("Schedule history cleanup error", "Error", err)
				tgClient.SendMessageToUser("Schedule history cleanup error: " + err.Error())
			}

			go func() {
				for ctx.Err() == nil {
					if err := cmdClient.HandleCommand(ctx); err != nil && ctx.Err() == nil {
						log.Error("Command error", "Error", err)
						time.Sleep(5 * time.Second)
					}
				}
			}()

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			return server.Shutdown(stopCtx)
		},
	})
}

func healthMux(log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, log)
	})
	return mux
}

func startHttpServer(log logger.Logger, server *http.Server) {
	log.Info(fmt.Sprintf("Starting server on %s", server.Addr))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Server failed to start", "Error", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, logger logger.Logger) {
	logger.Debug("Health check request received", "Method", r.Method, "URL", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Error("Failed to write response", "Error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

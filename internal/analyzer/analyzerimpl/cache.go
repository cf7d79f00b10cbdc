package analyzerimpl

import (
	"context"
	"time"

	"github.com/orgball2608/insta-compliance-bot/internal/cache"
	"github.com/orgball2608/insta-compliance-bot/internal/domain"
	"github.com/orgball2608/insta-compliance-bot/pkg/config"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"go.uber.org/fx"
)

// NewReportStore builds a report cache that hands out copies.
func NewReportStore(maxSize int, ttl time.Duration, log logger.Logger) *cache.Store[*domain.AnalysisReport] {
	return cache.NewStore[*domain.AnalysisReport](maxSize, ttl,
		cache.WithCloner((*domain.AnalysisReport).Clone),
		cache.WithLogger[*domain.AnalysisReport](log),
	)
}

// NewReportCache ties the report cache sweeper to the application lifecycle.
func NewReportCache(lc fx.Lifecycle, cfg *config.Config, log logger.Logger) *cache.Store[*domain.AnalysisReport] {
	store := NewReportStore(cfg.Analysis.CacheMaxSize, cfg.CacheTTL(), log)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.StartSweeper()
		},
		OnStop: func(ctx context.Context) error {
			return store.Stop()
		},
	})

	return store
}

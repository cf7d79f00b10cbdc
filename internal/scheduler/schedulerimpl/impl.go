package schedulerimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/insta-compliance-bot/internal/repositories/analysis"
	"github.com/orgball2608/insta-compliance-bot/internal/scheduler"
	"github.com/orgball2608/insta-compliance-bot/pkg/config"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"go.uber.org/fx"
)

const defaultRetention = 30 * 24 * time.Hour

type Opts struct {
	fx.In

	AnalysisRepo analysis.Repository
	Config       *config.Config
	Logger       logger.Logger
}

type SchedulerImpl struct {
	analysisRepo analysis.Repository
	retention    time.Duration
	logger       logger.Logger
}

func New(opts Opts) *SchedulerImpl {
	retention := time.Duration(opts.Config.Analysis.RetentionDays) * 24 * time.Hour
	if retention <= 0 {
		retention = defaultRetention
	}

	return &SchedulerImpl{
		analysisRepo: opts.AnalysisRepo,
		retention:    retention,
		logger:       opts.Logger.WithComponent("Scheduler"),
	}
}

var _ scheduler.Client = (*SchedulerImpl)(nil)

func (s *SchedulerImpl) ScheduleHistoryCleanup(ctx context.Context) error {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		loc = time.Local
		s.logger.Warn("Failed to load Asia/Ho_Chi_Minh timezone, using local timezone", "error", err)
	}

	sched, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return fmt.Errorf("failed to create cleanup scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0))),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				s.logger.Info("Context cancelled, skipping history cleanup")
				return
			}

			cleanupCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()

			if _, err := s.CleanupHistory(cleanupCtx); err != nil {
				s.logger.Error("Failed to clean up analysis history", "error", err)
			}
		}),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to schedule history cleanup: %w", err)
	}

	sched.Start()

	go func() {
		<-ctx.Done()
		s.logger.Info("Stopping history cleanup scheduler")
		if err := sched.Shutdown(); err != nil {
			s.logger.Error("Failed to shut down cleanup scheduler", "error", err)
		}
	}()

	return nil
}

func (s *SchedulerImpl) CleanupHistory(ctx context.Context) (int64, error) {
	s.logger.Info("Starting analysis history cleanup", "retention", s.retention.String())

	rows, err := s.analysisRepo.CleanupOldRecords(ctx, s.retention)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up analysis history: %w", err)
	}

	s.logger.Info("Analysis history cleanup completed", "rows_deleted", rows)
	return rows, nil
}

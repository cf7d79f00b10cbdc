package scheduler

import "context"

type Client interface {
	// ScheduleHistoryCleanup runs CleanupHistory every day until ctx is done.
	ScheduleHistoryCleanup(ctx context.Context) error

	// CleanupHistory deletes analysis reports older than the retention window.
	CleanupHistory(ctx context.Context) (int64, error)
}

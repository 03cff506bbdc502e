package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/timeutil"
)

type AttendanceJobs struct {
	sweeper       attendance.Sweeper
	cutoff        timeutil.LocalTime
	loc           *time.Location
	staleInterval time.Duration
	now           func() time.Time
}

func NewAttendanceJobs(sweeper attendance.Sweeper, cutoff timeutil.LocalTime, loc *time.Location, staleInterval time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		sweeper:       sweeper,
		cutoff:        cutoff,
		loc:           loc,
		staleInterval: staleInterval,
		now:           time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddDailyJob("auto_checkout", j.cutoff, j.loc, j.AutoCheckout)
	if j.staleInterval > 0 {
		scheduler.AddJob("auto_close_stale_sessions", j.staleInterval, j.AutoCloseStaleSessions)
	}
}

// AutoCheckout closes every session still open from today's check-ins.
func (j *AttendanceJobs) AutoCheckout(ctx context.Context) error {
	slog.Info("Cron: Starting auto-checkout job", "cutoff", j.cutoff.String())

	result, err := j.sweeper.Sweep(ctx, j.now())
	if err != nil {
		return fmt.Errorf("auto-checkout sweep: %w", err)
	}

	slog.Info("Cron: Auto-checkout completed",
		"count", result.ClosedCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount)
	return nil
}

// AutoCloseStaleSessions closes sessions left open from previous days.
func (j *AttendanceJobs) AutoCloseStaleSessions(ctx context.Context) error {
	result, err := j.sweeper.SweepStale(ctx, j.now())
	if err != nil {
		return fmt.Errorf("stale session sweep: %w", err)
	}

	if result.ClosedCount > 0 || result.FailedCount > 0 {
		slog.Info("Cron: Auto-closed stale sessions",
			"count", result.ClosedCount,
			"failed", result.FailedCount)
	}
	return nil
}

package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/timeutil"
	"github.com/google/uuid"
)

type SweeperImpl struct {
	sessions attendance.SessionRepository
	notifier attendance.Notifier
	loc      *time.Location
	cutoff   timeutil.LocalTime
}

// Sweep implements attendance.Sweeper. Sessions that checked in at or after asOf are left open.
func (s *SweeperImpl) Sweep(ctx context.Context, asOf time.Time) (attendance.SweepResult, error) {
	asOf = asOf.UTC()
	window := timeutil.DayRange(asOf, s.loc)
	log := slog.With("run_id", newRunID(), "sweep", "day", "as_of", asOf, "date", window.Date(s.loc))

	sessions, err := s.sessions.ListOpenInWindow(ctx, window.Start, window.End)
	if err != nil {
		return attendance.SweepResult{}, fmt.Errorf("failed to list open sessions: %w", err)
	}

	log.Info("Auto-checkout sweep starting", "open_sessions", len(sessions))

	var result attendance.SweepResult
	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !session.CheckInTime.Before(asOf) {
			result.SkippedCount++
			continue
		}
		s.closeSession(ctx, log, session, asOf, &result)
	}

	log.Info("Auto-checkout sweep completed",
		"count", result.ClosedCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount)
	return result, nil
}

// SweepStale implements attendance.Sweeper. A stale session is closed at the cutoff of its own
// day, or at the end of that day when it checked in after the cutoff.
func (s *SweeperImpl) SweepStale(ctx context.Context, asOf time.Time) (attendance.SweepResult, error) {
	today := timeutil.DayRange(asOf, s.loc)
	log := slog.With("run_id", newRunID(), "sweep", "stale", "before", today.Start)

	sessions, err := s.sessions.ListOpenBefore(ctx, today.Start)
	if err != nil {
		return attendance.SweepResult{}, fmt.Errorf("failed to list stale sessions: %w", err)
	}
	if len(sessions) == 0 {
		log.Debug("No stale sessions found")
		return attendance.SweepResult{}, nil
	}

	var result attendance.SweepResult
	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		s.closeSession(ctx, log, session, s.staleCheckOut(session.CheckInTime), &result)
	}

	log.Info("Stale session sweep completed",
		"count", result.ClosedCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount)
	return result, nil
}

func (s *SweeperImpl) staleCheckOut(checkIn time.Time) time.Time {
	cutoff := s.cutoff.On(checkIn, s.loc).UTC()
	if cutoff.After(checkIn) {
		return cutoff
	}
	return timeutil.DayRange(checkIn, s.loc).End
}

func (s *SweeperImpl) closeSession(ctx context.Context, log *slog.Logger, session attendance.Session, at time.Time, result *attendance.SweepResult) {
	closed, err := s.sessions.Close(ctx, session.ID, attendance.Closure{
		CheckOutTime: at,
		Mode:         attendance.CheckOutAuto,
		TotalHours:   TotalHours(session.CheckInTime, at),
	})
	switch {
	case errors.Is(err, attendance.ErrNoActiveSession):
		result.SkippedCount++
		log.Debug("Session already closed", "session_id", session.ID, "employee_id", session.EmployeeID)
	case err != nil:
		result.FailedCount++
		log.Error("Failed to auto-close session",
			"session_id", session.ID,
			"employee_id", session.EmployeeID,
			"error", err)
	default:
		result.ClosedCount++
		s.notifier.SessionChanged(ctx, closed)
	}
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewSweeper builds the auto-checkout sweeper. cutoff is the daily auto-checkout time in loc.
func NewSweeper(sessions attendance.SessionRepository, notifier attendance.Notifier, loc *time.Location, cutoff timeutil.LocalTime) *SweeperImpl {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SweeperImpl{
		sessions: sessions,
		notifier: notifier,
		loc:      loc,
		cutoff:   cutoff,
	}
}

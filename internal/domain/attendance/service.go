package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/timeutil"
)

// AttendanceService owns the per-employee, per-day session state machine.
type AttendanceService interface {
	// CheckIn opens a session for today after geofence and punctuality evaluation
	CheckIn(ctx context.Context, req CheckInRequest) (Session, error)

	// CheckOut closes today's open session manually
	CheckOut(ctx context.Context, req CheckOutRequest) (Session, error)

	// GetTodaySession returns today's window and the latest session inside it, or nil
	GetTodaySession(ctx context.Context, employeeID string) (*Session, timeutil.DayWindow, error)

	// GetRecentSessions returns history across all days, newest first
	GetRecentSessions(ctx context.Context, employeeID string, limit int) ([]Session, error)

	// ListTodaySessions returns every employee's sessions in today's window (HR review)
	ListTodaySessions(ctx context.Context, filter AdminSessionsFilter) ([]Session, timeutil.DayWindow, error)

	// ListRecentSessions returns the latest sessions across all employees (HR review)
	ListRecentSessions(ctx context.Context, filter AdminSessionsFilter) ([]Session, error)

	// GetSession returns one session by ID (HR review)
	GetSession(ctx context.Context, id string) (Session, error)

	// Location is the organizational time zone used for day boundaries
	Location() *time.Location
}

// Sweeper force-closes sessions left open at the end of a business day.
type Sweeper interface {
	// Sweep closes every open session that checked in during asOf's day, at asOf
	Sweep(ctx context.Context, asOf time.Time) (SweepResult, error)

	// SweepStale closes open sessions from days before asOf's day at the end of their own day
	SweepStale(ctx context.Context, asOf time.Time) (SweepResult, error)
}

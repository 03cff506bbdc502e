package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

// Policy is the organization-wide attendance configuration.
type Policy struct {
	Location         *time.Location
	Office           geo.Coordinates
	RadiusMeters     float64
	GracePeriod      time.Duration
	DefaultWorkStart timeutil.LocalTime

	// OneSessionPerDay blocks a second check-in on a day that already has a closed session.
	OneSessionPerDay bool
}

// WorkHoursProvider supplies the configured work start, typically setting.SettingService.
type WorkHoursProvider interface {
	WorkHoursStart(ctx context.Context) (timeutil.LocalTime, error)
}

type AttendanceServiceImpl struct {
	attendance.SessionRepository
	employee.EmployeeRepository
	workHours  WorkHoursProvider
	transactor attendance.Transactor
	notifier   attendance.Notifier
	policy     Policy
	now        attendance.Clock
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.Session, error) {
	if err := req.Validate(); err != nil {
		return attendance.Session{}, err
	}

	if err := a.resolveEmployee(ctx, req.EmployeeID); err != nil {
		return attendance.Session{}, err
	}

	workStart, err := a.workHoursStart(ctx)
	if err != nil {
		return attendance.Session{}, err
	}

	now := a.now().UTC()
	window := timeutil.DayRange(now, a.policy.Location)

	var created attendance.Session
	err = a.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var status *attendance.Status
		if !a.policy.OneSessionPerDay {
			open := attendance.StatusCheckedIn
			status = &open
		}

		existing, err := a.SessionRepository.FindLatestInWindow(ctx, req.EmployeeID, window.Start, window.End, status)
		if err != nil {
			return fmt.Errorf("failed to check today's session: %w", err)
		}
		if existing != nil {
			return attendance.ErrAlreadyCheckedIn
		}

		var location *geo.Coordinates
		if req.Mode == attendance.ModeInOffice {
			if req.Coordinates == nil {
				return attendance.ErrGeolocationUnavailable
			}
			if err := a.checkGeofence(*req.Coordinates); err != nil {
				return err
			}
			point := *req.Coordinates
			location = &point
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate session id: %w", err)
		}

		created, err = a.SessionRepository.Create(ctx, attendance.Session{
			ID:              id.String(),
			EmployeeID:      req.EmployeeID,
			CheckInTime:     now,
			Status:          attendance.StatusCheckedIn,
			CheckInMode:     req.Mode,
			CheckInLocation: location,
			Punctuality:     EvaluatePunctuality(now, workStart, a.policy.GracePeriod, a.policy.Location),
		})
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
				return err
			}
			return fmt.Errorf("failed to create attendance session: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.Session{}, err
	}

	slog.Info("Employee checked in",
		"employee_id", created.EmployeeID,
		"session_id", created.ID,
		"mode", created.CheckInMode,
		"punctuality", created.Punctuality)

	a.notifier.SessionChanged(ctx, created)
	return created, nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.Session, error) {
	if err := req.Validate(); err != nil {
		return attendance.Session{}, err
	}

	if err := a.resolveEmployee(ctx, req.EmployeeID); err != nil {
		return attendance.Session{}, err
	}

	now := a.now().UTC()
	window := timeutil.DayRange(now, a.policy.Location)

	open := attendance.StatusCheckedIn
	session, err := a.SessionRepository.FindLatestInWindow(ctx, req.EmployeeID, window.Start, window.End, &open)
	if err != nil {
		return attendance.Session{}, fmt.Errorf("failed to get open session: %w", err)
	}
	if session == nil {
		return attendance.Session{}, attendance.ErrNoActiveSession
	}

	closed, err := a.SessionRepository.Close(ctx, session.ID, attendance.Closure{
		CheckOutTime: now,
		Mode:         attendance.CheckOutManual,
		TotalHours:   TotalHours(session.CheckInTime, now),
		Notes:        req.NormalizedNotes(),
	})
	if err != nil {
		if errors.Is(err, attendance.ErrNoActiveSession) {
			return attendance.Session{}, err
		}
		return attendance.Session{}, fmt.Errorf("failed to close attendance session: %w", err)
	}

	slog.Info("Employee checked out",
		"employee_id", closed.EmployeeID,
		"session_id", closed.ID,
		"total_hours", closed.TotalHours)

	a.notifier.SessionChanged(ctx, closed)
	return closed, nil
}

// GetTodaySession implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetTodaySession(ctx context.Context, employeeID string) (*attendance.Session, timeutil.DayWindow, error) {
	window := timeutil.DayRange(a.now(), a.policy.Location)

	if err := a.resolveEmployee(ctx, employeeID); err != nil {
		return nil, window, err
	}

	session, err := a.SessionRepository.FindLatestInWindow(ctx, employeeID, window.Start, window.End, nil)
	if err != nil {
		return nil, window, fmt.Errorf("failed to get today's session: %w", err)
	}
	return session, window, nil
}

// GetRecentSessions implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetRecentSessions(ctx context.Context, employeeID string, limit int) ([]attendance.Session, error) {
	filter := attendance.RecentSessionsFilter{Limit: limit}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	if err := a.resolveEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	sessions, err := a.SessionRepository.ListRecent(ctx, employeeID, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sessions: %w", err)
	}
	return sessions, nil
}

// ListTodaySessions implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListTodaySessions(ctx context.Context, filter attendance.AdminSessionsFilter) ([]attendance.Session, timeutil.DayWindow, error) {
	window := timeutil.DayRange(a.now(), a.policy.Location)

	if err := filter.Validate(attendance.DefaultAdminTodayLimit); err != nil {
		return nil, window, err
	}

	sessions, err := a.SessionRepository.ListInWindow(ctx, window.Start, window.End, filter.Limit)
	if err != nil {
		return nil, window, fmt.Errorf("failed to list today's sessions: %w", err)
	}
	return sessions, window, nil
}

// ListRecentSessions implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListRecentSessions(ctx context.Context, filter attendance.AdminSessionsFilter) ([]attendance.Session, error) {
	if err := filter.Validate(attendance.DefaultAdminRecentLimit); err != nil {
		return nil, err
	}

	sessions, err := a.SessionRepository.ListRecentAll(ctx, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sessions: %w", err)
	}
	return sessions, nil
}

// GetSession implements attendance.AttendanceService. Malformed IDs are not found.
func (a *AttendanceServiceImpl) GetSession(ctx context.Context, id string) (attendance.Session, error) {
	if !validator.IsValidUUID(id) {
		return attendance.Session{}, attendance.ErrSessionNotFound
	}

	session, err := a.SessionRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrSessionNotFound) {
			return attendance.Session{}, err
		}
		return attendance.Session{}, fmt.Errorf("failed to get attendance session: %w", err)
	}
	return session, nil
}

// Location implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Location() *time.Location {
	return a.policy.Location
}

func (a *AttendanceServiceImpl) resolveEmployee(ctx context.Context, employeeID string) error {
	if _, err := a.EmployeeRepository.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return err
		}
		return fmt.Errorf("failed to get employee: %w", err)
	}
	return nil
}

func (a *AttendanceServiceImpl) checkGeofence(point geo.Coordinates) error {
	inside, err := geo.IsWithinGeofence(point, a.policy.Office, a.policy.RadiusMeters)
	if err != nil {
		return err
	}
	if !inside {
		return &attendance.OutsideGeofenceError{
			DistanceMeters: geo.Distance(point, a.policy.Office),
			RadiusMeters:   a.policy.RadiusMeters,
		}
	}
	return nil
}

// workHoursStart reads the configured work start, falling back to the policy default when
// the setting is missing or malformed.
func (a *AttendanceServiceImpl) workHoursStart(ctx context.Context) (timeutil.LocalTime, error) {
	if a.workHours == nil {
		return a.policy.DefaultWorkStart, nil
	}

	workStart, err := a.workHours.WorkHoursStart(ctx)
	if err == nil {
		return workStart, nil
	}

	var cfgErr *timeutil.ConfigError
	switch {
	case errors.Is(err, setting.ErrSettingNotFound):
		return a.policy.DefaultWorkStart, nil
	case errors.As(err, &cfgErr):
		slog.Warn("Invalid work_hours_start setting, using default",
			"value", cfgErr.Value,
			"default", a.policy.DefaultWorkStart.String())
		return a.policy.DefaultWorkStart, nil
	default:
		return timeutil.LocalTime{}, fmt.Errorf("failed to get work hours start: %w", err)
	}
}

type noopNotifier struct{}

func (noopNotifier) SessionChanged(context.Context, attendance.Session) {}

func NewAttendanceService(
	sessionRepo attendance.SessionRepository,
	employeeRepo employee.EmployeeRepository,
	workHours WorkHoursProvider,
	transactor attendance.Transactor,
	notifier attendance.Notifier,
	policy Policy,
	clock attendance.Clock,
) *AttendanceServiceImpl {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if clock == nil {
		clock = time.Now
	}
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &AttendanceServiceImpl{
		SessionRepository:  sessionRepo,
		EmployeeRepository: employeeRepo,
		workHours:          workHours,
		transactor:         transactor,
		notifier:           notifier,
		policy:             policy,
		now:                clock,
	}
}

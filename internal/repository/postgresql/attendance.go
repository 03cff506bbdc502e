package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"

	openSessionIndex = "attendance_sessions_one_open_per_employee"
)

const sessionColumns = `
	id, employee_id, check_in_time, check_out_time, status, check_in_mode,
	check_in_lat, check_in_lng, check_out_mode, punctuality, total_hours, notes,
	created_at, updated_at`

type sessionRepository struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) attendance.SessionRepository {
	return &sessionRepository{db: db}
}

// Create implements attendance.SessionRepository.
func (r *sessionRepository) Create(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_sessions (
			id, employee_id, check_in_time, status, check_in_mode,
			check_in_lat, check_in_lng, punctuality
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	var lat, lng *float64
	if s.CheckInLocation != nil {
		lat, lng = &s.CheckInLocation.Lat, &s.CheckInLocation.Lng
	}

	err := q.QueryRow(ctx, query,
		s.ID,
		s.EmployeeID,
		s.CheckInTime,
		string(s.Status),
		string(s.CheckInMode),
		lat,
		lng,
		string(s.Punctuality),
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				if pgErr.ConstraintName == openSessionIndex {
					return attendance.Session{}, attendance.ErrAlreadyCheckedIn
				}
			case foreignKeyViolation:
				return attendance.Session{}, employee.ErrEmployeeNotFound
			}
		}
		return attendance.Session{}, fmt.Errorf("failed to create attendance session: %w", err)
	}

	return s, nil
}

// GetByID implements attendance.SessionRepository.
func (r *sessionRepository) GetByID(ctx context.Context, id string) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionColumns + ` FROM attendance_sessions WHERE id = $1`

	s, err := scanSession(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Session{}, attendance.ErrSessionNotFound
		}
		return attendance.Session{}, fmt.Errorf("failed to get attendance session: %w", err)
	}
	return s, nil
}

// FindLatestInWindow implements attendance.SessionRepository.
func (r *sessionRepository) FindLatestInWindow(ctx context.Context, employeeID string, start, end time.Time, status *attendance.Status) (*attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE employee_id = $1
		  AND check_in_time >= $2
		  AND check_in_time < $3
		  AND ($4::text IS NULL OR status = $4::text)
		ORDER BY check_in_time DESC
		LIMIT 1
	`

	var statusFilter *string
	if status != nil {
		v := string(*status)
		statusFilter = &v
	}

	s, err := scanSession(q.QueryRow(ctx, query, employeeID, start, end, statusFilter))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session in window: %w", err)
	}
	return &s, nil
}

// ListRecent implements attendance.SessionRepository.
func (r *sessionRepository) ListRecent(ctx context.Context, employeeID string, limit int) ([]attendance.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE employee_id = $1
		ORDER BY check_in_time DESC
		LIMIT $2
	`
	return r.list(ctx, query, employeeID, limit)
}

// ListInWindow implements attendance.SessionRepository.
func (r *sessionRepository) ListInWindow(ctx context.Context, start, end time.Time, limit int) ([]attendance.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE check_in_time >= $1
		  AND check_in_time < $2
		ORDER BY check_in_time DESC
		LIMIT $3
	`
	return r.list(ctx, query, start, end, limit)
}

// ListRecentAll implements attendance.SessionRepository.
func (r *sessionRepository) ListRecentAll(ctx context.Context, limit int) ([]attendance.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		ORDER BY check_in_time DESC
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

// ListOpenInWindow implements attendance.SessionRepository.
func (r *sessionRepository) ListOpenInWindow(ctx context.Context, start, end time.Time) ([]attendance.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE status = 'CHECKED_IN'
		  AND check_in_time >= $1
		  AND check_in_time < $2
		ORDER BY check_in_time
	`
	return r.list(ctx, query, start, end)
}

// ListOpenBefore implements attendance.SessionRepository.
func (r *sessionRepository) ListOpenBefore(ctx context.Context, before time.Time) ([]attendance.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE status = 'CHECKED_IN'
		  AND check_in_time < $1
		ORDER BY check_in_time
	`
	return r.list(ctx, query, before)
}

// Close implements attendance.SessionRepository.
func (r *sessionRepository) Close(ctx context.Context, id string, c attendance.Closure) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_sessions
		SET status = 'CHECKED_OUT',
			check_out_time = $2,
			check_out_mode = $3,
			total_hours = $4,
			notes = $5,
			updated_at = NOW()
		WHERE id = $1 AND status = 'CHECKED_IN'
		RETURNING ` + sessionColumns

	s, err := scanSession(q.QueryRow(ctx, query, id, c.CheckOutTime, string(c.Mode), c.TotalHours, c.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Session{}, attendance.ErrNoActiveSession
		}
		return attendance.Session{}, fmt.Errorf("failed to close attendance session: %w", err)
	}
	return s, nil
}

func (r *sessionRepository) list(ctx context.Context, query string, args ...interface{}) ([]attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]attendance.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance sessions: %w", err)
	}

	return sessions, nil
}

func scanSession(row pgx.Row) (attendance.Session, error) {
	var (
		s            attendance.Session
		status, mode string
		punctuality  string
		lat, lng     *float64
		checkOutMode *string
	)

	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.CheckInTime, &s.CheckOutTime, &status, &mode,
		&lat, &lng, &checkOutMode, &punctuality, &s.TotalHours, &s.Notes,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return attendance.Session{}, err
	}

	s.Status = attendance.Status(status)
	s.CheckInMode = attendance.CheckInMode(mode)
	s.Punctuality = attendance.Punctuality(punctuality)
	if lat != nil && lng != nil {
		s.CheckInLocation = &geo.Coordinates{Lat: *lat, Lng: *lng}
	}
	if checkOutMode != nil {
		m := attendance.CheckOutMode(*checkOutMode)
		s.CheckOutMode = &m
	}
	s.CheckInTime = s.CheckInTime.UTC()
	if s.CheckOutTime != nil {
		t := s.CheckOutTime.UTC()
		s.CheckOutTime = &t
	}

	return s, nil
}

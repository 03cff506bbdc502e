package attendance

import (
	"context"
	"time"
)

// SessionRepository defines data access methods for attendance sessions.
type SessionRepository interface {
	// Create inserts a new session. A second open session for the same employee
	// is rejected by the store and reported as ErrAlreadyCheckedIn.
	Create(ctx context.Context, session Session) (Session, error)

	// GetByID retrieves a session by ID. Returns ErrSessionNotFound when absent.
	GetByID(ctx context.Context, id string) (Session, error)

	// FindLatestInWindow returns the most recent session (by check-in) of the employee
	// whose check-in lies in [start, end). When status is non-nil only sessions in that
	// status are considered. Returns nil when nothing matches.
	FindLatestInWindow(ctx context.Context, employeeID string, start, end time.Time, status *Status) (*Session, error)

	// ListRecent returns up to limit sessions of the employee, newest check-in first.
	ListRecent(ctx context.Context, employeeID string, limit int) ([]Session, error)

	// ListInWindow returns up to limit sessions of every employee whose check-in lies in
	// [start, end), newest check-in first.
	ListInWindow(ctx context.Context, start, end time.Time, limit int) ([]Session, error)

	// ListRecentAll returns up to limit sessions across all employees, newest check-in first.
	ListRecentAll(ctx context.Context, limit int) ([]Session, error)

	// ListOpenInWindow returns every CHECKED_IN session whose check-in lies in [start, end).
	ListOpenInWindow(ctx context.Context, start, end time.Time) ([]Session, error)

	// ListOpenBefore returns every CHECKED_IN session that checked in before the given instant.
	ListOpenBefore(ctx context.Context, before time.Time) ([]Session, error)

	// Close applies the closure only if the session is still CHECKED_IN.
	// Returns ErrNoActiveSession when another writer closed it first.
	Close(ctx context.Context, id string, closure Closure) (Session, error)
}

// Transactor runs fn inside a single database transaction carried by ctx.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier receives session changes for downstream dashboard invalidation.
type Notifier interface {
	SessionChanged(ctx context.Context, session Session)
}

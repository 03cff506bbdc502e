package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/timeutil"
)

// fakeSessionRepo mimics the store, including the one-open-session index and the
// conditional close.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]attendance.Session
	closeErr map[string]error
	listErr  error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: map[string]attendance.Session{},
		closeErr: map[string]error{},
	}
}

func (f *fakeSessionRepo) Create(_ context.Context, s attendance.Session) (attendance.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.sessions {
		if existing.EmployeeID == s.EmployeeID && existing.IsOpen() && s.IsOpen() {
			return attendance.Session{}, attendance.ErrAlreadyCheckedIn
		}
	}
	s.CreatedAt = s.CheckInTime
	s.UpdatedAt = s.CheckInTime
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id string) (attendance.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[id]
	if !ok {
		return attendance.Session{}, attendance.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) FindLatestInWindow(_ context.Context, employeeID string, start, end time.Time, status *attendance.Status) (*attendance.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var latest *attendance.Session
	for _, s := range f.sessions {
		if s.EmployeeID != employeeID || s.CheckInTime.Before(start) || !s.CheckInTime.Before(end) {
			continue
		}
		if status != nil && s.Status != *status {
			continue
		}
		if latest == nil || s.CheckInTime.After(latest.CheckInTime) {
			s := s
			latest = &s
		}
	}
	return latest, nil
}

func (f *fakeSessionRepo) ListRecent(_ context.Context, employeeID string, limit int) ([]attendance.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []attendance.Session
	for _, s := range f.sessions {
		if s.EmployeeID == employeeID {
			out = append(out, s)
		}
	}
	sortNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSessionRepo) ListInWindow(_ context.Context, start, end time.Time, limit int) ([]attendance.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []attendance.Session
	for _, s := range f.sessions {
		if !s.CheckInTime.Before(start) && s.CheckInTime.Before(end) {
			out = append(out, s)
		}
	}
	sortNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSessionRepo) ListRecentAll(_ context.Context, limit int) ([]attendance.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]attendance.Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, s)
	}
	sortNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSessionRepo) ListOpenInWindow(_ context.Context, start, end time.Time) ([]attendance.Session, error) {
	return f.listOpen(func(s attendance.Session) bool {
		return !s.CheckInTime.Before(start) && s.CheckInTime.Before(end)
	})
}

func (f *fakeSessionRepo) ListOpenBefore(_ context.Context, before time.Time) ([]attendance.Session, error) {
	return f.listOpen(func(s attendance.Session) bool {
		return s.CheckInTime.Before(before)
	})
}

func (f *fakeSessionRepo) listOpen(match func(attendance.Session) bool) ([]attendance.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []attendance.Session
	for _, s := range f.sessions {
		if s.IsOpen() && match(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.Before(out[j].CheckInTime) })
	return out, nil
}

func (f *fakeSessionRepo) Close(_ context.Context, id string, c attendance.Closure) (attendance.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.closeErr[id]; err != nil {
		return attendance.Session{}, err
	}
	s, ok := f.sessions[id]
	if !ok || !s.IsOpen() {
		return attendance.Session{}, attendance.ErrNoActiveSession
	}

	checkOut := c.CheckOutTime
	mode := c.Mode
	hours := c.TotalHours
	s.CheckOutTime = &checkOut
	s.CheckOutMode = &mode
	s.TotalHours = &hours
	s.Notes = c.Notes
	s.Status = attendance.StatusCheckedOut
	s.UpdatedAt = checkOut
	f.sessions[id] = s
	return s, nil
}

// put seeds a session directly, bypassing the open-session check.
func (f *fakeSessionRepo) put(s attendance.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
}

func sortNewestFirst(sessions []attendance.Session) {
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CheckInTime.After(sessions[j].CheckInTime) })
}

type fakeEmployeeRepo struct {
	ids map[string]bool
	err error
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	if f.err != nil {
		return employee.Employee{}, f.err
	}
	if !f.ids[id] {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return employee.Employee{ID: id, FullName: "Ada Obi", EmploymentStatus: "active"}, nil
}

type fakeTransactor struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return fn(ctx)
}

type recordingNotifier struct {
	mu      sync.Mutex
	changed []attendance.Session
}

func (r *recordingNotifier) SessionChanged(_ context.Context, s attendance.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, s)
}

type fakeSettingService struct {
	workStart timeutil.LocalTime
	err       error
}

func (f *fakeSettingService) WorkHoursStart(context.Context) (timeutil.LocalTime, error) {
	return f.workStart, f.err
}

// manualClock is a settable attendance.Clock.
type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Set(t time.Time) { c.now = t }

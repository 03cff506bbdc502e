package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEmployeeID = "0193c8a0-7b2e-7c10-8a55-3f1e2d4c5b6a"

var testOffice = geo.Coordinates{Lat: 6.5244, Lng: 3.3792}

type harness struct {
	svc      *AttendanceServiceImpl
	sweeper  *SweeperImpl
	repo     *fakeSessionRepo
	notifier *recordingNotifier
	tx       *fakeTransactor
	clock    *manualClock
	loc      *time.Location
}

func newHarness(t *testing.T, workHours WorkHoursProvider, mutate ...func(*Policy)) *harness {
	t.Helper()

	loc, err := timeutil.LoadZone("Africa/Lagos")
	require.NoError(t, err)

	policy := Policy{
		Location:         loc,
		Office:           testOffice,
		RadiusMeters:     200,
		GracePeriod:      DefaultGracePeriod,
		DefaultWorkStart: timeutil.MustParseLocalTime("09:00"),
	}
	for _, fn := range mutate {
		fn(&policy)
	}

	h := &harness{
		repo:     newFakeSessionRepo(),
		notifier: &recordingNotifier{},
		tx:       &fakeTransactor{},
		clock:    &manualClock{now: time.Date(2025, 3, 10, 8, 0, 0, 0, loc)},
		loc:      loc,
	}
	employees := &fakeEmployeeRepo{ids: map[string]bool{testEmployeeID: true}}
	h.svc = NewAttendanceService(h.repo, employees, workHours, h.tx, h.notifier, policy, h.clock.Now)
	h.sweeper = NewSweeper(h.repo, h.notifier, loc, timeutil.MustParseLocalTime("18:00"))
	return h
}

func (h *harness) at(day, hour, minute, sec int) time.Time {
	return time.Date(2025, 3, day, hour, minute, sec, 0, h.loc)
}

func remoteCheckIn() attendance.CheckInRequest {
	return attendance.CheckInRequest{EmployeeID: testEmployeeID, Mode: attendance.ModeRemote}
}

func TestGetTodaySession_NoneThenCheckedIn(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	today, window, err := h.svc.GetTodaySession(ctx, testEmployeeID)
	require.NoError(t, err)
	assert.Nil(t, today)
	assert.Equal(t, "2025-03-10", window.Date(h.loc))
	assert.Equal(t, time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC), window.Start)

	created, err := h.svc.CheckIn(ctx, remoteCheckIn())
	require.NoError(t, err)

	today, _, err = h.svc.GetTodaySession(ctx, testEmployeeID)
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, created.ID, today.ID)
	assert.Equal(t, attendance.StatusCheckedIn, today.Status)
	assert.True(t, validator.IsValidUUID(created.ID))
	assert.Equal(t, 1, h.tx.calls)
}

func TestCheckIn_TwiceSameDay(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.CheckIn(ctx, remoteCheckIn())
	require.NoError(t, err)

	h.clock.Set(h.at(10, 9, 15, 0))
	_, err = h.svc.CheckIn(ctx, remoteCheckIn())
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	assert.Len(t, h.repo.sessions, 1)
}

func TestCheckIn_AfterCheckOutSameDay(t *testing.T) {
	t.Run("allowed by default", func(t *testing.T) {
		h := newHarness(t, nil)
		ctx := context.Background()

		first, err := h.svc.CheckIn(ctx, remoteCheckIn())
		require.NoError(t, err)
		h.clock.Set(h.at(10, 12, 0, 0))
		_, err = h.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
		require.NoError(t, err)

		h.clock.Set(h.at(10, 13, 0, 0))
		second, err := h.svc.CheckIn(ctx, remoteCheckIn())
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		today, _, err := h.svc.GetTodaySession(ctx, testEmployeeID)
		require.NoError(t, err)
		require.NotNil(t, today)
		assert.Equal(t, second.ID, today.ID, "latest session of the day wins")
	})

	t.Run("blocked with one session per day", func(t *testing.T) {
		h := newHarness(t, nil, func(p *Policy) { p.OneSessionPerDay = true })
		ctx := context.Background()

		_, err := h.svc.CheckIn(ctx, remoteCheckIn())
		require.NoError(t, err)
		h.clock.Set(h.at(10, 12, 0, 0))
		_, err = h.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
		require.NoError(t, err)

		h.clock.Set(h.at(10, 13, 0, 0))
		_, err = h.svc.CheckIn(ctx, remoteCheckIn())
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

		// The next day starts fresh.
		h.clock.Set(h.at(11, 8, 0, 0))
		_, err = h.svc.CheckIn(ctx, remoteCheckIn())
		assert.NoError(t, err)
	})
}

func TestCheckIn_Punctuality(t *testing.T) {
	tests := []struct {
		name string
		at   [3]int
		want attendance.Punctuality
	}{
		{"before threshold", [3]int{10, 29, 59}, attendance.OnTime},
		{"at threshold", [3]int{10, 30, 0}, attendance.Late},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.clock.Set(h.at(10, tt.at[0], tt.at[1], tt.at[2]))

			s, err := h.svc.CheckIn(context.Background(), remoteCheckIn())
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Punctuality)
			assert.Equal(t, h.clock.now.UTC(), s.CheckInTime)
		})
	}
}

func TestCheckIn_WorkHoursSetting(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeSettingService
		wantErr  bool
		want     attendance.Punctuality
	}{
		{
			name:     "configured start applies",
			provider: &fakeSettingService{workStart: timeutil.MustParseLocalTime("07:00")},
			want:     attendance.Late,
		},
		{
			name:     "missing setting falls back to default",
			provider: &fakeSettingService{err: setting.ErrSettingNotFound},
			want:     attendance.OnTime,
		},
		{
			name:     "malformed setting falls back to default",
			provider: &fakeSettingService{err: &timeutil.ConfigError{Value: "9am", Err: timeutil.ErrInvalidLocalTime}},
			want:     attendance.OnTime,
		},
		{
			name:     "store failure aborts check-in",
			provider: &fakeSettingService{err: errors.New("connection reset")},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.provider)
			h.clock.Set(h.at(10, 10, 0, 0))

			s, err := h.svc.CheckIn(context.Background(), remoteCheckIn())
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, h.repo.sessions)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Punctuality)
		})
	}
}

func TestCheckIn_InOffice(t *testing.T) {
	ctx := context.Background()

	t.Run("inside geofence stores location", func(t *testing.T) {
		h := newHarness(t, nil)
		point := geo.Coordinates{Lat: testOffice.Lat + 0.0005, Lng: testOffice.Lng}

		s, err := h.svc.CheckIn(ctx, attendance.CheckInRequest{
			EmployeeID:  testEmployeeID,
			Mode:        attendance.ModeInOffice,
			Coordinates: &point,
		})
		require.NoError(t, err)
		assert.Equal(t, attendance.ModeInOffice, s.CheckInMode)
		require.NotNil(t, s.CheckInLocation)
		assert.Equal(t, point, *s.CheckInLocation)
	})

	t.Run("outside geofence", func(t *testing.T) {
		h := newHarness(t, nil)
		point := geo.Coordinates{Lat: testOffice.Lat + 0.01, Lng: testOffice.Lng}

		_, err := h.svc.CheckIn(ctx, attendance.CheckInRequest{
			EmployeeID:  testEmployeeID,
			Mode:        attendance.ModeInOffice,
			Coordinates: &point,
		})
		assert.ErrorIs(t, err, attendance.ErrOutsideGeofence)

		var geofenceErr *attendance.OutsideGeofenceError
		require.ErrorAs(t, err, &geofenceErr)
		assert.InDelta(t, 1112, geofenceErr.DistanceMeters, 5)
		assert.Equal(t, 200.0, geofenceErr.RadiusMeters)
		assert.Empty(t, h.repo.sessions)
		assert.Empty(t, h.notifier.changed)
	})

	t.Run("missing coordinates", func(t *testing.T) {
		h := newHarness(t, nil)
		_, err := h.svc.CheckIn(ctx, attendance.CheckInRequest{
			EmployeeID: testEmployeeID,
			Mode:       attendance.ModeInOffice,
		})
		assert.ErrorIs(t, err, attendance.ErrGeolocationUnavailable)
	})

	t.Run("remote ignores distance", func(t *testing.T) {
		h := newHarness(t, nil)
		far := geo.Coordinates{Lat: 9.0765, Lng: 7.3986}
		s, err := h.svc.CheckIn(ctx, attendance.CheckInRequest{
			EmployeeID:  testEmployeeID,
			Mode:        attendance.ModeRemote,
			Coordinates: &far,
		})
		require.NoError(t, err)
		assert.Nil(t, s.CheckInLocation)
	})
}

func TestCheckIn_InvalidRequest(t *testing.T) {
	h := newHarness(t, nil)
	bad := geo.Coordinates{Lat: 95, Lng: 3}

	_, err := h.svc.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID:  testEmployeeID,
		Mode:        "ON_SITE",
		Coordinates: &bad,
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "coordinates.lat")

	_, err = h.svc.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: testEmployeeID,
		Mode:       "ON_SITE",
	})
	assert.ErrorIs(t, err, attendance.ErrInvalidCheckInMode)
	assert.Empty(t, h.repo.sessions)
}

func TestCheckIn_EmployeeLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown employee", func(t *testing.T) {
		h := newHarness(t, nil)
		_, err := h.svc.CheckIn(ctx, attendance.CheckInRequest{
			EmployeeID: "0193c8a0-7b2e-7c10-8a55-000000000000",
			Mode:       attendance.ModeRemote,
		})
		assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		h := newHarness(t, nil)
		h.svc.EmployeeRepository = &fakeEmployeeRepo{err: errors.New("timeout")}

		_, err := h.svc.CheckIn(ctx, remoteCheckIn())
		require.Error(t, err)
		assert.NotErrorIs(t, err, employee.ErrEmployeeNotFound)
	})
}

func TestCheckIn_StaleOpenSessionBlocks(t *testing.T) {
	h := newHarness(t, nil)
	h.repo.put(attendance.Session{
		ID:          "stale",
		EmployeeID:  testEmployeeID,
		CheckInTime: h.at(9, 23, 50, 0).UTC(),
		Status:      attendance.StatusCheckedIn,
		CheckInMode: attendance.ModeRemote,
	})
	h.clock.Set(h.at(10, 0, 10, 0))

	today, _, err := h.svc.GetTodaySession(context.Background(), testEmployeeID)
	require.NoError(t, err)
	assert.Nil(t, today, "23:50 belongs to the previous day")

	// The open-session index still rejects the insert until the stale sweep closes it.
	_, err = h.svc.CheckIn(context.Background(), remoteCheckIn())
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	_, err = h.sweeper.SweepStale(context.Background(), h.clock.now)
	require.NoError(t, err)
	_, err = h.svc.CheckIn(context.Background(), remoteCheckIn())
	assert.NoError(t, err)
}

func TestCheckOut(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.clock.Set(h.at(10, 9, 0, 0))
	opened, err := h.svc.CheckIn(ctx, remoteCheckIn())
	require.NoError(t, err)

	h.clock.Set(h.at(10, 17, 30, 0))
	notes := "  client visit in the afternoon  "
	closed, err := h.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID, Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, opened.ID, closed.ID)
	assert.Equal(t, attendance.StatusCheckedOut, closed.Status)
	require.NotNil(t, closed.TotalHours)
	assert.Equal(t, 8.5, *closed.TotalHours)
	require.NotNil(t, closed.CheckOutMode)
	assert.Equal(t, attendance.CheckOutManual, *closed.CheckOutMode)
	require.NotNil(t, closed.Notes)
	assert.Equal(t, "client visit in the afternoon", *closed.Notes)
	require.NotNil(t, closed.CheckOutTime)
	assert.True(t, closed.CheckOutTime.After(closed.CheckInTime))
	assert.Equal(t, opened.Punctuality, closed.Punctuality)

	require.Len(t, h.notifier.changed, 2)
	assert.Equal(t, attendance.StatusCheckedOut, h.notifier.changed[1].Status)
}

func TestCheckOut_BlankNotesStoredAsNil(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.CheckIn(ctx, remoteCheckIn())
	require.NoError(t, err)

	blank := "   "
	closed, err := h.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID, Notes: &blank})
	require.NoError(t, err)
	assert.Nil(t, closed.Notes)
	assert.Equal(t, 0.0, *closed.TotalHours)
}

func TestCheckOut_NoActiveSession(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing open", func(t *testing.T) {
		h := newHarness(t, nil)
		_, err := h.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
		assert.ErrorIs(t, err, attendance.ErrNoActiveSession)
	})

	t.Run("already checked out", func(t *testing.T) {
		h := newHarness(t, nil)
		_, err := h.svc.CheckIn(ctx, remoteCheckIn())
		require.NoError(t, err)
		_, err = h.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
		require.NoError(t, err)

		_, err = h.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
		assert.ErrorIs(t, err, attendance.ErrNoActiveSession)
	})

	t.Run("open session belongs to yesterday", func(t *testing.T) {
		h := newHarness(t, nil)
		h.repo.put(attendance.Session{
			ID:          "yesterday",
			EmployeeID:  testEmployeeID,
			CheckInTime: h.at(9, 9, 0, 0).UTC(),
			Status:      attendance.StatusCheckedIn,
		})

		_, err := h.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
		assert.ErrorIs(t, err, attendance.ErrNoActiveSession)
	})

	t.Run("lost the race to the sweeper", func(t *testing.T) {
		h := newHarness(t, nil)
		s, err := h.svc.CheckIn(ctx, remoteCheckIn())
		require.NoError(t, err)
		h.repo.closeErr[s.ID] = attendance.ErrNoActiveSession

		_, err = h.svc.CheckOut(ctx, attendance.CheckOutRequest{EmployeeID: testEmployeeID})
		assert.ErrorIs(t, err, attendance.ErrNoActiveSession)
	})
}

func TestCheckOut_NotesTooLong(t *testing.T) {
	h := newHarness(t, nil)
	long := make([]byte, attendance.MaxNotesLength+1)
	for i := range long {
		long[i] = 'a'
	}
	notes := string(long)

	_, err := h.svc.CheckOut(context.Background(), attendance.CheckOutRequest{EmployeeID: testEmployeeID, Notes: &notes})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "notes", verrs[0].Field)
}

func TestGetRecentSessions(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	for day := 1; day <= 12; day++ {
		h.repo.put(attendance.Session{
			ID:          time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC).Format(time.DateOnly),
			EmployeeID:  testEmployeeID,
			CheckInTime: h.at(day, 9, 0, 0).UTC(),
			Status:      attendance.StatusCheckedOut,
		})
	}

	sessions, err := h.svc.GetRecentSessions(ctx, testEmployeeID, 0)
	require.NoError(t, err)
	require.Len(t, sessions, attendance.DefaultRecentLimit)
	assert.Equal(t, "2025-03-12", sessions[0].ID)
	for i := 1; i < len(sessions); i++ {
		assert.True(t, sessions[i-1].CheckInTime.After(sessions[i].CheckInTime))
	}

	sessions, err = h.svc.GetRecentSessions(ctx, testEmployeeID, 3)
	require.NoError(t, err)
	assert.Len(t, sessions, 3)

	_, err = h.svc.GetRecentSessions(ctx, testEmployeeID, attendance.MaxRecentLimit+1)
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

package attendance

import (
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
	MaxNotesLength     = 1000

	DefaultAdminTodayLimit  = 20
	DefaultAdminRecentLimit = 100
	MaxAdminLimit           = 500
)

type CheckInRequest struct {
	EmployeeID  string           `json:"-"`
	Mode        CheckInMode      `json:"mode"`
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
}

// Validate checks the request shape. An unknown mode is ErrInvalidCheckInMode and an
// in-office check-in without coordinates is ErrGeolocationUnavailable.
func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Coordinates != nil {
		if r.Coordinates.Lat < -90 || r.Coordinates.Lat > 90 || math.IsNaN(r.Coordinates.Lat) {
			errs = append(errs, validator.ValidationError{
				Field:   "coordinates.lat",
				Message: "lat must be between -90 and 90",
			})
		}
		if r.Coordinates.Lng < -180 || r.Coordinates.Lng > 180 || math.IsNaN(r.Coordinates.Lng) {
			errs = append(errs, validator.ValidationError{
				Field:   "coordinates.lng",
				Message: "lng must be between -180 and 180",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	if !r.Mode.Valid() {
		return ErrInvalidCheckInMode
	}

	if r.Mode == ModeInOffice && r.Coordinates == nil {
		return ErrGeolocationUnavailable
	}

	return nil
}

type CheckOutRequest struct {
	EmployeeID string  `json:"-"`
	Notes      *string `json:"notes,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Notes != nil && len(*r.Notes) > MaxNotesLength {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// NormalizedNotes trims the notes and maps blank input to nil.
func (r *CheckOutRequest) NormalizedNotes() *string {
	if r.Notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.Notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type RecentSessionsFilter struct {
	Limit int `json:"limit"`
}

func (f *RecentSessionsFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = DefaultRecentLimit
	}
	if f.Limit > MaxRecentLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// AdminSessionsFilter bounds the cross-employee listings. Zero Limit takes the caller's default.
type AdminSessionsFilter struct {
	Limit int `json:"limit"`
}

func (f *AdminSessionsFilter) Validate(defaultLimit int) error {
	var errs validator.ValidationErrors

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > MaxAdminLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 500",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionResponse struct {
	ID              string           `json:"id"`
	EmployeeID      string           `json:"employee_id"`
	Date            string           `json:"date"`
	CheckInTime     string           `json:"check_in_time"`
	CheckOutTime    *string          `json:"check_out_time,omitempty"`
	Status          Status           `json:"status"`
	CheckInMode     CheckInMode      `json:"check_in_mode"`
	CheckInLocation *geo.Coordinates `json:"check_in_location,omitempty"`
	CheckOutMode    *CheckOutMode    `json:"check_out_mode,omitempty"`
	Punctuality     Punctuality      `json:"punctuality"`
	IsLate          bool             `json:"is_late"`
	TotalHours      *float64         `json:"total_hours,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

// NewSessionResponse renders a session with times in the organizational zone.
func NewSessionResponse(s Session, loc *time.Location) SessionResponse {
	var checkOut *string
	if s.CheckOutTime != nil {
		v := s.CheckOutTime.In(loc).Format(time.RFC3339)
		checkOut = &v
	}

	return SessionResponse{
		ID:              s.ID,
		EmployeeID:      s.EmployeeID,
		Date:            s.CheckInTime.In(loc).Format(time.DateOnly),
		CheckInTime:     s.CheckInTime.In(loc).Format(time.RFC3339),
		CheckOutTime:    checkOut,
		Status:          s.Status,
		CheckInMode:     s.CheckInMode,
		CheckInLocation: s.CheckInLocation,
		CheckOutMode:    s.CheckOutMode,
		Punctuality:     s.Punctuality,
		IsLate:          s.Punctuality == Late,
		TotalHours:      s.TotalHours,
		Notes:           s.Notes,
	}
}

type TodaySessionResponse struct {
	Date    string           `json:"date"`
	Session *SessionResponse `json:"session"`
}

// AdminTodayResponse lists every session in today's window with the number still open.
type AdminTodayResponse struct {
	Date           string            `json:"date"`
	CheckedInCount int               `json:"checked_in_count"`
	Sessions       []SessionResponse `json:"sessions"`
}

func NewAdminTodayResponse(window timeutil.DayWindow, sessions []Session, loc *time.Location) AdminTodayResponse {
	resp := AdminTodayResponse{
		Date:     window.Date(loc),
		Sessions: make([]SessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		if s.IsOpen() {
			resp.CheckedInCount++
		}
		resp.Sessions = append(resp.Sessions, NewSessionResponse(s, loc))
	}
	return resp
}

type SweepResult struct {
	ClosedCount  int `json:"count"`
	FailedCount  int `json:"failed"`
	SkippedCount int `json:"skipped"`
}

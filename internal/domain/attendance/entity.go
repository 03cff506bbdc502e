package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
)

type Status string

const (
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
)

type CheckInMode string

const (
	ModeInOffice CheckInMode = "IN_OFFICE"
	ModeRemote   CheckInMode = "REMOTE"
)

func (m CheckInMode) Valid() bool {
	return m == ModeInOffice || m == ModeRemote
}

type CheckOutMode string

const (
	CheckOutManual CheckOutMode = "MANUAL"
	CheckOutAuto   CheckOutMode = "AUTO"
)

type Punctuality string

const (
	OnTime Punctuality = "ON_TIME"
	Late   Punctuality = "LATE"
)

// Session is one attendance record. It is created by a check-in and mutated
// exactly once, by a manual or automatic checkout.
type Session struct {
	ID              string
	EmployeeID      string
	CheckInTime     time.Time
	CheckOutTime    *time.Time
	Status          Status
	CheckInMode     CheckInMode
	CheckInLocation *geo.Coordinates
	CheckOutMode    *CheckOutMode
	Punctuality     Punctuality
	TotalHours      *float64
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (s Session) IsOpen() bool {
	return s.Status == StatusCheckedIn
}

// Closure is the single mutation applied to an open session.
type Closure struct {
	CheckOutTime time.Time
	Mode         CheckOutMode
	TotalHours   float64
	Notes        *string
}

// Clock returns the current instant.
type Clock func() time.Time

package sse

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

// EventSessionChanged tells dashboards to refetch the employee's attendance.
const EventSessionChanged = "attendance.session_changed"

// SessionChangedData is the payload of EventSessionChanged.
type SessionChangedData struct {
	SessionID string            `json:"session_id"`
	Status    attendance.Status `json:"status"`
	Date      string            `json:"date"`
}

// AttendanceNotifier publishes session changes to the hub. It implements attendance.Notifier.
type AttendanceNotifier struct {
	hub *Hub
	loc *time.Location
}

func NewAttendanceNotifier(hub *Hub, loc *time.Location) *AttendanceNotifier {
	return &AttendanceNotifier{hub: hub, loc: loc}
}

func (n *AttendanceNotifier) SessionChanged(_ context.Context, s attendance.Session) {
	n.hub.Publish(Event{
		EmployeeID: s.EmployeeID,
		Event:      EventSessionChanged,
		Data: SessionChangedData{
			SessionID: s.ID,
			Status:    s.Status,
			Date:      s.CheckInTime.In(n.loc).Format(time.DateOnly),
		},
	})
}

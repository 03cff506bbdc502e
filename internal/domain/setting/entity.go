package setting

import "time"

// Known setting keys.
const (
	KeyWorkHoursStart = "work_hours_start"
)

// Setting is one administrator-managed key/value pair.
type Setting struct {
	Key         string
	Value       string
	Description *string
	UpdatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

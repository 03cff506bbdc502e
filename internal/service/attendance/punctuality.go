package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/timeutil"
)

// DefaultGracePeriod is how long after work start a check-in still counts as on time.
const DefaultGracePeriod = 90 * time.Minute

// EvaluatePunctuality classifies a check-in against the organizational work start.
// A check-in exactly at workStart+grace is late.
func EvaluatePunctuality(checkIn time.Time, workStart timeutil.LocalTime, grace time.Duration, loc *time.Location) attendance.Punctuality {
	threshold := workStart.SinceMidnight() + grace
	if timeutil.WallClock(checkIn, loc) >= threshold {
		return attendance.Late
	}
	return attendance.OnTime
}

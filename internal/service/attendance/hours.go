package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

var millisPerHour = decimal.NewFromInt(int64(time.Hour / time.Millisecond))

// TotalHours is the worked duration between check-in and checkout in hours, rounded half-up
// to two decimals. A checkout at or before the check-in yields 0.
func TotalHours(checkIn, checkOut time.Time) float64 {
	ms := checkOut.Sub(checkIn).Milliseconds()
	if ms <= 0 {
		return 0
	}

	hours, _ := decimal.NewFromInt(ms).Div(millisPerHour).Round(2).Float64()
	return hours
}

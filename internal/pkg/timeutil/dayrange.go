package timeutil

import "time"

// DayWindow is the half-open instant range [Start, End) of one local calendar day.
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// DayRange returns the UTC boundaries of the calendar day that contains ref in loc.
//
// End is built from the next calendar date rather than Start.Add(24h), so days that
// gain or lose an hour to daylight saving keep their real length.
func DayRange(ref time.Time, loc *time.Location) DayWindow {
	local := ref.In(loc)
	y, m, d := local.Date()

	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)

	return DayWindow{Start: start.UTC(), End: end.UTC()}
}

// Contains reports whether t falls inside the window.
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Length returns the elapsed duration of the window.
func (w DayWindow) Length() time.Duration {
	return w.End.Sub(w.Start)
}

// Date returns the calendar date label of the window in loc, formatted YYYY-MM-DD.
func (w DayWindow) Date(loc *time.Location) string {
	return w.Start.In(loc).Format(time.DateOnly)
}

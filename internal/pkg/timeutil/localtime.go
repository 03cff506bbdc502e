package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidLocalTime is matched by every ConfigError returned from ParseLocalTime.
var ErrInvalidLocalTime = errors.New("invalid local time, expected HH:mm")

// ConfigError reports a malformed time-of-day configuration value.
type ConfigError struct {
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config value %q: %v", e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LocalTime is a wall-clock time of day without a date or zone.
type LocalTime struct {
	Hour   int
	Minute int
}

// ParseLocalTime parses a 24-hour "HH:mm" value such as "09:00".
func ParseLocalTime(value string) (LocalTime, error) {
	s := strings.TrimSpace(value)
	parts := strings.Split(s, ":")
	if len(parts) != 2 || !isTwoDigits(parts[0]) || !isTwoDigits(parts[1]) {
		return LocalTime{}, &ConfigError{Value: value, Err: ErrInvalidLocalTime}
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return LocalTime{}, &ConfigError{Value: value, Err: ErrInvalidLocalTime}
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return LocalTime{}, &ConfigError{Value: value, Err: ErrInvalidLocalTime}
	}

	return LocalTime{Hour: hour, Minute: minute}, nil
}

func isTwoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

// MustParseLocalTime is ParseLocalTime for compile-time constants.
func MustParseLocalTime(value string) LocalTime {
	lt, err := ParseLocalTime(value)
	if err != nil {
		panic(err)
	}
	return lt
}

// SinceMidnight returns the wall-clock offset of the time of day.
func (t LocalTime) SinceMidnight() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute
}

// On returns the instant at which this time of day occurs on the calendar date of ref in loc.
func (t LocalTime) On(ref time.Time, loc *time.Location) time.Time {
	local := ref.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), t.Hour, t.Minute, 0, 0, loc)
}

func (t LocalTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// WallClock returns the time-of-day of instant in loc as an offset from local midnight,
// read from the wall clock so DST transitions do not shift it.
func WallClock(instant time.Time, loc *time.Location) time.Duration {
	local := instant.In(loc)
	return time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second +
		time.Duration(local.Nanosecond())
}

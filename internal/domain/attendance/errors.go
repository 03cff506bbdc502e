package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn       = errors.New("you are already checked in for today")
	ErrOutsideGeofence        = errors.New("you are outside the office geofence")
	ErrGeolocationUnavailable = errors.New("location is required for in-office check-in")
	ErrInvalidCheckInMode     = errors.New("check-in mode must be IN_OFFICE or REMOTE")

	// Check-out errors
	ErrNoActiveSession = errors.New("no active check-in found for today")

	// General errors
	ErrSessionNotFound = errors.New("attendance session not found")
)

// OutsideGeofenceError carries the distance context of a rejected in-office check-in.
type OutsideGeofenceError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *OutsideGeofenceError) Error() string {
	return fmt.Sprintf("%s (%.0fm from office, allowed %.0fm)", ErrOutsideGeofence.Error(), e.DistanceMeters, e.RadiusMeters)
}

func (e *OutsideGeofenceError) Is(target error) bool {
	return target == ErrOutsideGeofence
}

package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var geofenceErr *attendance.OutsideGeofenceError
	if errors.As(err, &geofenceErr) {
		UnprocessableEntity(w, "OUTSIDE_GEOFENCE", "You are outside the office geofence", map[string]string{
			"distance_meters": fmt.Sprintf("%.0f", geofenceErr.DistanceMeters),
			"radius_meters":   fmt.Sprintf("%.0f", geofenceErr.RadiusMeters),
		})
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrEmployeeClaimMissing):
		Unauthorized(w, "Token has no employee identity")
	case errors.Is(err, auth.ErrInvalidCronSecret):
		Unauthorized(w, "Unauthorized")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee record not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrInvalidCheckInMode):
		ValidationError(w, map[string]string{"mode": "mode must be one of: IN_OFFICE, REMOTE"})
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "You are already checked in for today")
	case errors.Is(err, attendance.ErrOutsideGeofence):
		UnprocessableEntity(w, "OUTSIDE_GEOFENCE", "You are outside the office geofence", nil)
	case errors.Is(err, attendance.ErrGeolocationUnavailable):
		BadRequest(w, "Location is required for in-office check-in", nil)
	case errors.Is(err, attendance.ErrNoActiveSession):
		NotFound(w, "No active check-in found for today")
	case errors.Is(err, attendance.ErrSessionNotFound):
		NotFound(w, "Attendance session not found")
	case errors.Is(err, geo.ErrInvalidCoordinates):
		BadRequest(w, "Invalid coordinates", nil)

	// Setting domain errors
	case errors.Is(err, setting.ErrSettingNotFound):
		NotFound(w, "Setting not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "Something went wrong, please try again")
	}
}

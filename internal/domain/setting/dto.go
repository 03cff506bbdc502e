package setting

import (
	"regexp"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

var keyRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)

type UpdateSettingRequest struct {
	Key         string  `json:"-"`
	Value       string  `json:"value"`
	Description *string `json:"description,omitempty"`
	UpdatedBy   *string `json:"-"`
}

func (r *UpdateSettingRequest) Validate() error {
	var errs validator.ValidationErrors

	if !keyRegex.MatchString(r.Key) {
		errs = append(errs, validator.ValidationError{
			Field:   "key",
			Message: "key must be lowercase snake_case, 2-64 characters",
		})
	}

	if validator.IsEmpty(r.Value) {
		errs = append(errs, validator.ValidationError{
			Field:   "value",
			Message: "value is required",
		})
	} else if r.Key == KeyWorkHoursStart {
		if _, err := timeutil.ParseLocalTime(r.Value); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "value",
				Message: "work_hours_start must be in HH:mm format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SettingResponse struct {
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	Description *string `json:"description,omitempty"`
	UpdatedBy   *string `json:"updated_by,omitempty"`
	UpdatedAt   string  `json:"updated_at"`
}

func NewSettingResponse(s Setting) SettingResponse {
	return SettingResponse{
		Key:         s.Key,
		Value:       s.Value,
		Description: s.Description,
		UpdatedBy:   s.UpdatedBy,
		UpdatedAt:   s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

package setting

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/timeutil"
)

// SettingService manages the key/value configuration store.
type SettingService interface {
	// ListSettings returns every stored setting (admin)
	ListSettings(ctx context.Context) ([]SettingResponse, error)

	// GetSetting returns one setting by key (admin)
	GetSetting(ctx context.Context, key string) (SettingResponse, error)

	// UpdateSetting validates and stores a value (admin)
	UpdateSetting(ctx context.Context, req UpdateSettingRequest) (SettingResponse, error)

	// WorkHoursStart parses work_hours_start. A malformed value is a *timeutil.ConfigError
	// and a missing one is ErrSettingNotFound; callers fall back to their default.
	WorkHoursStart(ctx context.Context) (timeutil.LocalTime, error)
}

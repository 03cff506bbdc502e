package setting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/timeutil"
)

type SettingServiceImpl struct {
	setting.SettingRepository
}

// ListSettings implements setting.SettingService.
func (s *SettingServiceImpl) ListSettings(ctx context.Context) ([]setting.SettingResponse, error) {
	settings, err := s.SettingRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	responses := make([]setting.SettingResponse, 0, len(settings))
	for _, st := range settings {
		responses = append(responses, setting.NewSettingResponse(st))
	}
	return responses, nil
}

// GetSetting implements setting.SettingService.
func (s *SettingServiceImpl) GetSetting(ctx context.Context, key string) (setting.SettingResponse, error) {
	st, err := s.SettingRepository.Get(ctx, key)
	if err != nil {
		if errors.Is(err, setting.ErrSettingNotFound) {
			return setting.SettingResponse{}, err
		}
		return setting.SettingResponse{}, fmt.Errorf("failed to get setting: %w", err)
	}
	return setting.NewSettingResponse(st), nil
}

// UpdateSetting implements setting.SettingService.
func (s *SettingServiceImpl) UpdateSetting(ctx context.Context, req setting.UpdateSettingRequest) (setting.SettingResponse, error) {
	if err := req.Validate(); err != nil {
		return setting.SettingResponse{}, err
	}

	st, err := s.SettingRepository.Upsert(ctx, setting.Setting{
		Key:         req.Key,
		Value:       req.Value,
		Description: req.Description,
		UpdatedBy:   req.UpdatedBy,
	})
	if err != nil {
		return setting.SettingResponse{}, fmt.Errorf("failed to update setting: %w", err)
	}

	slog.Info("Setting updated", "key", st.Key, "value", st.Value)
	return setting.NewSettingResponse(st), nil
}

// WorkHoursStart implements setting.SettingService.
func (s *SettingServiceImpl) WorkHoursStart(ctx context.Context) (timeutil.LocalTime, error) {
	st, err := s.SettingRepository.Get(ctx, setting.KeyWorkHoursStart)
	if err != nil {
		if errors.Is(err, setting.ErrSettingNotFound) {
			return timeutil.LocalTime{}, err
		}
		return timeutil.LocalTime{}, fmt.Errorf("failed to get work_hours_start: %w", err)
	}

	return timeutil.ParseLocalTime(st.Value)
}

func NewSettingService(settingRepo setting.SettingRepository) *SettingServiceImpl {
	return &SettingServiceImpl{
		SettingRepository: settingRepo,
	}
}

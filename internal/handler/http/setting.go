package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type SettingHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type settingHandlerImpl struct {
	settingService setting.SettingService
}

func NewSettingHandler(settingService setting.SettingService) SettingHandler {
	return &settingHandlerImpl{settingService: settingService}
}

func (h *settingHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingService.ListSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, settings, &response.Meta{Count: len(settings)})
}

func (h *settingHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.settingService.GetSetting(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, s)
}

// Update upserts a setting. The acting admin is recorded as updated_by.
func (h *settingHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req setting.UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.Key = chi.URLParam(r, "key")

	if employeeID, err := middleware.EmployeeID(r.Context()); err == nil {
		req.UpdatedBy = &employeeID
	}

	s, err := h.settingService.UpdateSetting(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Setting updated successfully", s)
}

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Recent(w http.ResponseWriter, r *http.Request)

	// HR review
	AdminToday(w http.ResponseWriter, r *http.Request)
	AdminRecent(w http.ResponseWriter, r *http.Request)
	AdminGet(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	session, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Checked in successfully", attendance.NewSessionResponse(session, h.attendanceService.Location()))
}

// CheckOut implements AttendanceHandler. The body is optional.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.CheckOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	session, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checked out successfully", attendance.NewSessionResponse(session, h.attendanceService.Location()))
}

// Today implements AttendanceHandler. A day without a session yields a null session.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	session, window, err := h.attendanceService.GetTodaySession(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	loc := h.attendanceService.Location()
	resp := attendance.TodaySessionResponse{
		Date: window.Date(loc),
	}
	if session != nil {
		s := attendance.NewSessionResponse(*session, loc)
		resp.Session = &s
	}

	response.Success(w, resp)
}

// Recent implements AttendanceHandler.
func (h *attendanceHandlerImpl) Recent(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.EmployeeID(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	limit, err := validator.ParseLimit("limit", r.URL.Query().Get("limit"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	sessions, err := h.attendanceService.GetRecentSessions(r.Context(), employeeID, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if limit == 0 {
		limit = attendance.DefaultRecentLimit
	}

	loc := h.attendanceService.Location()
	items := make([]attendance.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, attendance.NewSessionResponse(s, loc))
	}

	response.SuccessWithMeta(w, items, &response.Meta{Limit: limit, Count: len(items)})
}

// AdminToday lists every employee's sessions in today's window.
func (h *attendanceHandlerImpl) AdminToday(w http.ResponseWriter, r *http.Request) {
	limit, err := validator.ParseLimit("limit", r.URL.Query().Get("limit"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := attendance.AdminSessionsFilter{Limit: limit}
	sessions, window, err := h.attendanceService.ListTodaySessions(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.NewAdminTodayResponse(window, sessions, h.attendanceService.Location()))
}

// AdminRecent lists the latest sessions across all employees.
func (h *attendanceHandlerImpl) AdminRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := validator.ParseLimit("limit", r.URL.Query().Get("limit"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := attendance.AdminSessionsFilter{Limit: limit}
	sessions, err := h.attendanceService.ListRecentSessions(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	loc := h.attendanceService.Location()
	items := make([]attendance.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, attendance.NewSessionResponse(s, loc))
	}

	if limit == 0 {
		limit = attendance.DefaultAdminRecentLimit
	}
	response.SuccessWithMeta(w, items, &response.Meta{Limit: limit, Count: len(items)})
}

func (h *attendanceHandlerImpl) AdminGet(w http.ResponseWriter, r *http.Request) {
	session, err := h.attendanceService.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.NewSessionResponse(session, h.attendanceService.Location()))
}

package attendancehandler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"paydesk/internal/domain/attendance"
	"paydesk/internal/domain/auth"
	"paydesk/internal/domain/salary"
	"paydesk/internal/transport/http/api"
	"paydesk/internal/transport/http/middleware"
	"paydesk/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *attendance.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

type markEntry struct {
	EmployeeID string     `json:"employeeId"`
	Status     string     `json:"status"`
	CheckIn    *time.Time `json:"checkIn"`
	CheckOut   *time.Time `json:"checkOut"`
}

type markRequest struct {
	Date       string      `json:"date"`
	Attendance []markEntry `json:"attendance"`
}

type markResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite, h.Perms)).Get("/", h.HandleListForDate)
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite, h.Perms)).Post("/mark", h.HandleMark)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/employee/{id}", h.HandleEmployeeMonth)
	})
}

func (h *Handler) HandleListForDate(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		api.Fail(w, http.StatusBadRequest, "validation_error", "Date is required", middleware.GetRequestID(r.Context()))
		return
	}
	date, err := shared.ParseDay(raw)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_error", "date must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
		return
	}
	rows, err := h.Service.ListForDate(r.Context(), date)
	if err != nil {
		shared.ServerError(w, r, "attendance_fetch_failed", err)
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMark(w http.ResponseWriter, r *http.Request) {
	var payload markRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	if strings.TrimSpace(payload.Date) == "" || len(payload.Attendance) == 0 {
		api.Fail(w, http.StatusBadRequest, "validation_error", "Date and attendance list are required", middleware.GetRequestID(r.Context()))
		return
	}
	date, err := shared.ParseDay(strings.TrimSpace(payload.Date))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_error", "date must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
		return
	}

	entries := make([]attendance.Entry, 0, len(payload.Attendance))
	for _, e := range payload.Attendance {
		entries = append(entries, attendance.Entry{
			EmployeeID: strings.TrimSpace(e.EmployeeID),
			Status:     strings.TrimSpace(e.Status),
			CheckIn:    e.CheckIn,
			CheckOut:   e.CheckOut,
		})
	}

	result, err := h.Service.Mark(r.Context(), date, entries)
	var entryErr *attendance.EntryError
	switch {
	case err == nil:
		api.Success(w, markResponse{Message: "Attendance marked successfully", Count: result.Count}, middleware.GetRequestID(r.Context()))
	case errors.As(err, &entryErr):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", entryErr.Error(), map[string]any{
			"index":      entryErr.Index,
			"employeeId": entryErr.EmployeeID,
		}, middleware.GetRequestID(r.Context()))
	case errors.Is(err, attendance.ErrEmptyBatch):
		api.Fail(w, http.StatusBadRequest, "validation_error", "Date and attendance list are required", middleware.GetRequestID(r.Context()))
	default:
		shared.ServerError(w, r, "attendance_mark_failed", err)
	}
}

func (h *Handler) HandleEmployeeMonth(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	employeeID := chi.URLParam(r, "id")
	if !user.CanAccessEmployee(employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "employees may only access their own record", middleware.GetRequestID(r.Context()))
		return
	}

	month := salary.MonthOf(time.Now())
	if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		normalized, err := salary.NormalizeMonth(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "validation_error", "month must be YYYY-MM", middleware.GetRequestID(r.Context()))
			return
		}
		month = normalized
	}
	start, err := salary.MonthStart(month)
	if err != nil {
		shared.ServerError(w, r, "attendance_fetch_failed", err)
		return
	}
	records, err := h.Service.ListForMonth(r.Context(), employeeID, start)
	if err != nil {
		shared.ServerError(w, r, "attendance_fetch_failed", err)
		return
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

package dashboardhandler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"paydesk/internal/domain/auth"
	"paydesk/internal/domain/dashboard"
	"paydesk/internal/domain/salary"
	"paydesk/internal/transport/http/api"
	"paydesk/internal/transport/http/middleware"
	"paydesk/internal/transport/http/shared"
)

type Handler struct {
	Service *dashboard.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *dashboard.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermDashboardRead, h.Perms))
		r.Get("/total-employees", h.HandleTotalEmployees)
		r.Get("/present-today", h.HandlePresentToday)
		r.Get("/absent-today", h.HandleAbsentToday)
		r.Get("/monthly-payroll", h.HandleMonthlyPayroll)
		r.Get("/summary", h.HandleSummary)
	})
}

func (h *Handler) HandleTotalEmployees(w http.ResponseWriter, r *http.Request) {
	total, err := h.Service.TotalEmployees(r.Context())
	if err != nil {
		shared.ServerError(w, r, "dashboard_failed", err)
		return
	}
	api.Success(w, map[string]int{"total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandlePresentToday(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.PresentToday(r.Context())
	if err != nil {
		shared.ServerError(w, r, "dashboard_failed", err)
		return
	}
	api.Success(w, map[string]int{"count": count}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleAbsentToday(w http.ResponseWriter, r *http.Request) {
	absence, err := h.Service.AbsentToday(r.Context())
	if err != nil {
		shared.ServerError(w, r, "dashboard_failed", err)
		return
	}
	api.Success(w, absence, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMonthlyPayroll(w http.ResponseWriter, r *http.Request) {
	payroll, err := h.Service.MonthlyPayroll(r.Context(), strings.TrimSpace(r.URL.Query().Get("monthYear")))
	if errors.Is(err, salary.ErrInvalidMonth) {
		api.Fail(w, http.StatusBadRequest, "validation_error", "Invalid monthYear format", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		shared.ServerError(w, r, "dashboard_failed", err)
		return
	}
	api.Success(w, payroll, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		shared.ServerError(w, r, "dashboard_failed", err)
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

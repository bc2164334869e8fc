package leavehandler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"paydesk/internal/domain/audit"
	"paydesk/internal/domain/auth"
	"paydesk/internal/domain/leave"
	"paydesk/internal/transport/http/api"
	"paydesk/internal/transport/http/middleware"
	"paydesk/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Perms   middleware.PermissionStore
	Audit   shared.AuditRecorder
}

func NewHandler(service *leave.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

type yearRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Year       int    `json:"year" validate:"required,gte=2000,lte=2100"`
}

type applyRequest struct {
	EmployeeID string `json:"employeeId"`
	LeaveType  string `json:"leaveType"`
	FromDate   string `json:"fromDate"`
	FromTime   string `json:"fromTime"`
	ToDate     string `json:"toDate"`
	ToTime     string `json:"toTime"`
	Reason     string `json:"reason"`
}

type decideRequest struct {
	TransactionID int64  `json:"transactionId"`
	Action        string `json:"action"`
	LeaveType     string `json:"leaveType"`
}

type applyResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type decideResponse struct {
	Message     string            `json:"message"`
	Transaction leave.Transaction `json:"transaction"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leaves", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveAdmin, h.Perms)).Post("/init", h.HandleInit)
		r.With(middleware.RequirePermission(auth.PermLeaveAdmin, h.Perms)).Post("/reset", h.HandleReset)
		r.With(middleware.RequirePermission(auth.PermLeaveApply, h.Perms)).Post("/apply", h.HandleApply)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/history/{employeeId}", h.HandleHistory)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/{employeeId}", h.HandleBalance)
	})
	r.Route("/manager", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Get("/leave-requests", h.HandlePending)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/leave-approve", h.HandleDecide)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Get("/leave-history/{employeeId}", h.HandleReviewHistory)
	})
}

func (h *Handler) self(w http.ResponseWriter, r *http.Request, employeeID string) (auth.UserContext, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return user, false
	}
	if !user.CanAccessEmployee(employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "employees may only access their own leave", middleware.GetRequestID(r.Context()))
		return user, false
	}
	return user, true
}

func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if _, ok := h.self(w, r, employeeID); !ok {
		return
	}
	balance, err := h.Service.Balance(r.Context(), employeeID)
	if errors.Is(err, leave.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "Employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if errors.Is(err, leave.ErrEmployeeInactive) {
		api.Fail(w, http.StatusBadRequest, "employee_inactive", "Employee is inactive", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		shared.ServerError(w, r, "leave_balance_failed", err)
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

func decodeYear(w http.ResponseWriter, r *http.Request) (yearRequest, bool) {
	var payload yearRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return payload, false
	}
	payload.EmployeeID = strings.TrimSpace(payload.EmployeeID)
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return payload, false
	}
	return payload, true
}

func (h *Handler) HandleInit(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeYear(w, r)
	if !ok {
		return
	}
	balance, err := h.Service.InitBalance(r.Context(), payload.EmployeeID, payload.Year)
	switch {
	case err == nil:
		api.Created(w, balance, middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrAlreadyInitialized):
		api.Fail(w, http.StatusBadRequest, "already_initialized", "Leave already initialized for this year", middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "Employee not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrEmployeeInactive):
		api.Fail(w, http.StatusBadRequest, "employee_inactive", "Employee is inactive", middleware.GetRequestID(r.Context()))
	default:
		shared.ServerError(w, r, "leave_init_failed", err)
	}
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeYear(w, r)
	if !ok {
		return
	}
	balance, err := h.Service.ResetBalance(r.Context(), payload.EmployeeID, payload.Year)
	switch {
	case err == nil:
		shared.RecordAudit(r, h.Audit, audit.Entry{
			Action: audit.ActionLeaveReset, EntityType: "leave_balance", EntityID: payload.EmployeeID, After: balance,
		})
		api.Success(w, balance, middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrBalanceNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "Leave master record not found", middleware.GetRequestID(r.Context()))
	default:
		shared.ServerError(w, r, "leave_reset_failed", err)
	}
}

func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var payload applyRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	payload.EmployeeID = strings.TrimSpace(payload.EmployeeID)

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Required("leaveType", payload.LeaveType, "is required")
	v.Required("fromDate", payload.FromDate, "is required")
	v.Required("fromTime", payload.FromTime, "is required")
	v.Required("toDate", payload.ToDate, "is required")
	v.Required("toTime", payload.ToTime, "is required")
	v.Required("reason", payload.Reason, "is required")
	if v.RejectWithMessage(w, middleware.GetRequestID(r.Context()), "All fields are required") {
		return
	}
	if _, ok := h.self(w, r, payload.EmployeeID); !ok {
		return
	}

	from, _ := v.Day("fromDate", payload.FromDate)
	to, _ := v.Day("toDate", payload.ToDate)
	v.DateOrder("fromDate", from, "toDate", to)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.Apply(r.Context(), leave.ApplyInput{
		EmployeeID: payload.EmployeeID,
		LeaveType:  payload.LeaveType,
		FromDate:   from,
		FromTime:   strings.TrimSpace(payload.FromTime),
		ToDate:     to,
		ToTime:     strings.TrimSpace(payload.ToTime),
		Reason:     strings.TrimSpace(payload.Reason),
	})
	switch {
	case err == nil:
		api.Created(w, applyResponse{Message: "Leave applied successfully and is pending approval", ID: id}, middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrInvalidLeaveType):
		api.Fail(w, http.StatusBadRequest, "invalid_leave_type", "Invalid leave type", middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "validation_error", "toDate cannot be before fromDate", middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "Employee not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrEmployeeInactive):
		api.Fail(w, http.StatusBadRequest, "employee_inactive", "Employee is inactive", middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrPendingExists):
		api.Fail(w, http.StatusBadRequest, "pending_exists", "You already have a pending leave request", middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrApprovedOverlap):
		api.Fail(w, http.StatusBadRequest, "approved_overlap", "You already have an approved leave for the selected date range", middleware.GetRequestID(r.Context()))
	default:
		shared.ServerError(w, r, "leave_apply_failed", err)
	}
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if _, ok := h.self(w, r, employeeID); !ok {
		return
	}
	list, err := h.Service.History(r.Context(), employeeID)
	if err != nil {
		shared.ServerError(w, r, "leave_history_failed", err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandlePending(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListPending(r.Context())
	if err != nil {
		shared.ServerError(w, r, "leave_requests_failed", err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var payload decideRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	if payload.TransactionID <= 0 || strings.TrimSpace(payload.Action) == "" {
		api.Fail(w, http.StatusBadRequest, "validation_error", "Missing transactionId or action", middleware.GetRequestID(r.Context()))
		return
	}

	txn, err := h.Service.Decide(r.Context(), leave.Decision{
		TransactionID: payload.TransactionID,
		Action:        strings.TrimSpace(payload.Action),
		LeaveType:     payload.LeaveType,
		ReviewerID:    user.UserID,
	})
	switch {
	case err == nil:
		shared.RecordAudit(r, h.Audit, audit.Entry{
			Action: audit.ActionLeaveDecide, EntityType: "leave_transaction", EntityID: strconv.FormatInt(txn.ID, 10), After: txn,
		})
		api.Success(w, decideResponse{Message: "Leave " + strings.ToLower(txn.Status) + " successfully", Transaction: txn}, middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrInvalidAction):
		api.Fail(w, http.StatusBadRequest, "invalid_action", "Invalid action", middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrInvalidLeaveType):
		api.Fail(w, http.StatusBadRequest, "invalid_leave_type", "Invalid leave type", middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrTransactionNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "Transaction not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrAlreadyProcessed):
		api.Fail(w, http.StatusBadRequest, "already_processed", "Leave request already processed", middleware.GetRequestID(r.Context()))
	default:
		shared.ServerError(w, r, "leave_decision_failed", err)
	}
}

func (h *Handler) HandleReviewHistory(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ReviewHistory(r.Context(), chi.URLParam(r, "employeeId"))
	if errors.Is(err, leave.ErrNoHistory) {
		api.Fail(w, http.StatusNotFound, "not_found", "No leave history found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		shared.ServerError(w, r, "leave_history_failed", err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

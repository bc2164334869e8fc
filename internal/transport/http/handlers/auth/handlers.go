package authhandler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"paydesk/internal/domain/audit"
	"paydesk/internal/domain/auth"
	"paydesk/internal/transport/http/api"
	"paydesk/internal/transport/http/middleware"
	"paydesk/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
	OTP     *auth.OTPService
	EchoOTP bool
	Perms   middleware.PermissionStore
	Audit   shared.AuditRecorder
}

func NewHandler(service *auth.Service, otpService *auth.OTPService, echoOTP bool) *Handler {
	return &Handler{Service: service, OTP: otpService, EchoOTP: echoOTP, Perms: service}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type accountStatusRequest struct {
	Status string `json:"status"`
}

type sendOTPRequest struct {
	EmployeeID string `json:"employeeId"`
	Phone      string `json:"phone"`
}

type verifyOTPRequest struct {
	EmployeeID string `json:"employeeId"`
	OTP        string `json:"otp"`
}

type setPasswordRequest struct {
	EmployeeID string `json:"employeeId"`
	Password   string `json:"password"`
}

// RegisterPublicRoutes mounts the endpoints reachable without a token.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/users/login", h.HandleLogin)
	r.Route("/signup", func(r chi.Router) {
		r.Post("/send-otp", h.sendOTP(auth.PurposeSignup))
		r.Post("/verify-otp", h.verifyOTP(auth.PurposeSignup))
		r.Post("/set-password", h.setPassword(auth.PurposeSignup, "Password updated"))
	})
	r.Route("/forgot-password", func(r chi.Router) {
		r.Post("/send-otp", h.sendOTP(auth.PurposeReset))
		r.Post("/verify-otp", h.verifyOTP(auth.PurposeReset))
		r.Post("/reset-password", h.setPassword(auth.PurposeReset, "Password reset successful"))
	})
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/users/change-password", h.HandleChangePassword)
	r.With(middleware.RequirePermission(auth.PermCredentialsManage, h.Perms)).Get("/users", h.HandleListAccounts)
	r.With(middleware.RequirePermission(auth.PermCredentialsManage, h.Perms)).Put("/users/{id}/status", h.HandleSetAccountStatus)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("username", payload.Username, "is required")
	v.Required("password", payload.Password, "is required")
	if v.RejectWithMessage(w, middleware.GetRequestID(r.Context()), "All fields are required") {
		return
	}

	result, err := h.Service.Login(r.Context(), strings.TrimSpace(payload.Username), payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		shared.ServerError(w, r, "login_failed", err)
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var payload changePasswordRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}

	err := h.Service.ChangePassword(r.Context(), user.UserID, payload.CurrentPassword, payload.NewPassword)
	switch {
	case err == nil:
		api.Success(w, api.Message("Password updated"), middleware.GetRequestID(r.Context()))
	case errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "current password is incorrect", middleware.GetRequestID(r.Context()))
	case errors.Is(err, auth.ErrWeakPassword):
		api.Fail(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters with upper, lower and a digit", middleware.GetRequestID(r.Context()))
	case errors.Is(err, auth.ErrCredentialNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "credential not found", middleware.GetRequestID(r.Context()))
	default:
		shared.ServerError(w, r, "change_password_failed", err)
	}
}

func (h *Handler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListAccounts(r.Context())
	if err != nil {
		shared.ServerError(w, r, "accounts_list_failed", err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleSetAccountStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "account not found", middleware.GetRequestID(r.Context()))
		return
	}
	var payload accountStatusRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	status := strings.ToLower(strings.TrimSpace(payload.Status))

	err := h.Service.SetAccountStatus(r.Context(), user.UserID, id, status)
	switch {
	case err == nil:
		shared.RecordAudit(r, h.Audit, audit.Entry{
			Action: audit.ActionCredentialStatus, EntityType: "user", EntityID: id, After: map[string]string{"status": status},
		})
		api.Success(w, api.Message("Account "+status), middleware.GetRequestID(r.Context()))
	case errors.Is(err, auth.ErrInvalidStatus):
		api.Fail(w, http.StatusBadRequest, "invalid_status", err.Error(), middleware.GetRequestID(r.Context()))
	case errors.Is(err, auth.ErrSelfDisable):
		api.Fail(w, http.StatusBadRequest, "self_disable", err.Error(), middleware.GetRequestID(r.Context()))
	case errors.Is(err, auth.ErrCredentialNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "account not found", middleware.GetRequestID(r.Context()))
	default:
		shared.ServerError(w, r, "account_status_failed", err)
	}
}

func (h *Handler) sendOTP(purpose string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload sendOTPRequest
		if !shared.DecodeJSON(w, r, &payload) {
			return
		}
		v := shared.NewValidator()
		v.Required("employeeId", payload.EmployeeID, "is required")
		v.Required("phone", payload.Phone, "is required")
		if v.RejectWithMessage(w, middleware.GetRequestID(r.Context()), "Phone and User ID required") {
			return
		}

		code, err := h.OTP.Send(r.Context(), purpose, strings.TrimSpace(payload.EmployeeID), strings.TrimSpace(payload.Phone))
		if errors.Is(err, auth.ErrEmployeeMismatch) {
			api.Fail(w, http.StatusNotFound, "not_found", "Phone/User ID mismatch or not found", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			shared.ServerError(w, r, "otp_send_failed", err)
			return
		}
		resp := map[string]string{"message": "OTP sent"}
		if h.EchoOTP {
			resp["otp"] = code
		}
		api.Success(w, resp, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) verifyOTP(purpose string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload verifyOTPRequest
		if !shared.DecodeJSON(w, r, &payload) {
			return
		}
		v := shared.NewValidator()
		v.Required("employeeId", payload.EmployeeID, "is required")
		v.Required("otp", payload.OTP, "is required")
		if v.RejectWithMessage(w, middleware.GetRequestID(r.Context()), "All fields are required") {
			return
		}

		err := h.OTP.Verify(r.Context(), purpose, strings.TrimSpace(payload.EmployeeID), strings.TrimSpace(payload.OTP))
		if errors.Is(err, auth.ErrInvalidOTP) {
			api.Fail(w, http.StatusBadRequest, "invalid_otp", "Invalid or expired OTP", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			shared.ServerError(w, r, "otp_verify_failed", err)
			return
		}
		api.Success(w, api.Message("OTP verified"), middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) setPassword(purpose, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setPasswordRequest
		if !shared.DecodeJSON(w, r, &payload) {
			return
		}
		v := shared.NewValidator()
		v.Required("employeeId", payload.EmployeeID, "is required")
		v.Required("password", payload.Password, "is required")
		if v.RejectWithMessage(w, middleware.GetRequestID(r.Context()), "Missing required fields") {
			return
		}

		err := h.OTP.SetPassword(r.Context(), purpose, strings.TrimSpace(payload.EmployeeID), payload.Password)
		switch {
		case err == nil:
			api.Success(w, api.Message(message), middleware.GetRequestID(r.Context()))
		case errors.Is(err, auth.ErrWeakPassword):
			api.Fail(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters with upper, lower and a digit", middleware.GetRequestID(r.Context()))
		case errors.Is(err, auth.ErrOTPNotVerified):
			api.Fail(w, http.StatusBadRequest, "otp_not_verified", "OTP not verified", middleware.GetRequestID(r.Context()))
		case errors.Is(err, auth.ErrCredentialNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "No matching user found", middleware.GetRequestID(r.Context()))
		default:
			shared.ServerError(w, r, "set_password_failed", err)
		}
	}
}

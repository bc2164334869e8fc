package employeeshandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"paydesk/internal/domain/audit"
	"paydesk/internal/domain/auth"
	"paydesk/internal/domain/employees"
	"paydesk/internal/platform/querier"
	"paydesk/internal/transport/http/api"
	"paydesk/internal/transport/http/middleware"
	"paydesk/internal/transport/http/shared"
)

// CredentialProvisioner issues a one-time password for an employee login.
// Enroll writes the credential inside the caller's transaction and Deliver
// mails it once that transaction has committed.
type CredentialProvisioner interface {
	Provision(ctx context.Context, employeeID string) (auth.ProvisionedCredential, error)
	Enroll(ctx context.Context, tx querier.Querier, employeeID string) (auth.ProvisionedCredential, error)
	Deliver(ctx context.Context, employeeID string, cred auth.ProvisionedCredential)
}

type Handler struct {
	Service     *employees.Service
	Provisioner CredentialProvisioner
	Perms       middleware.PermissionStore
	Audit       shared.AuditRecorder
}

func NewHandler(service *employees.Service, provisioner CredentialProvisioner, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Provisioner: provisioner, Perms: perms}
}

type employeeRequest struct {
	ID            string `json:"id"`
	FullName      string `json:"fullName" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required"`
	DateOfBirth   string `json:"dateOfBirth" validate:"required"`
	Gender        string `json:"gender" validate:"required"`
	DepartmentID  int64  `json:"departmentId" validate:"required,gt=0"`
	DesignationID int64  `json:"designationId" validate:"required,gt=0"`
	DateOfJoining string `json:"dateOfJoining" validate:"required"`
	WorkLocation  string `json:"workLocation" validate:"required"`
}

type createResponse struct {
	Employee   employees.Employee          `json:"employee"`
	Credential *auth.ProvisionedCredential `json:"credential,omitempty"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.HandleListActive)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Get("/all", h.HandleListAll)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/active", h.HandleListSummaries)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/history/{id}", h.HandleHistory)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/reactivate/{id}", h.HandleReactivate)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/{id}", h.HandleGet)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.HandleCreate)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/{id}", h.HandleUpdate)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Delete("/{id}", h.HandleDeactivate)
		r.With(middleware.RequirePermission(auth.PermCredentialsManage, h.Perms)).Post("/{id}/credentials", h.HandleProvision)
	})
}

func (h *Handler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListActive(r.Context())
	if err != nil {
		shared.ServerError(w, r, "employees_list_failed", err)
		return
	}
	api.Success(w, selfScoped(r.Context(), list), middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListAll(r.Context())
	if err != nil {
		shared.ServerError(w, r, "employees_list_failed", err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleListSummaries(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListActiveSummaries(r.Context())
	if err != nil {
		shared.ServerError(w, r, "employees_list_failed", err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

// selfScoped trims a listing to the caller's own row for self-scoped roles.
func selfScoped(ctx context.Context, list []employees.Employee) []employees.Employee {
	user, ok := middleware.GetUser(ctx)
	if !ok || !auth.IsSelfScoped(user.RoleName) {
		return list
	}
	out := []employees.Employee{}
	for _, emp := range list {
		if emp.ID == user.EmployeeID {
			out = append(out, emp)
		}
	}
	return out
}

func (h *Handler) allowed(w http.ResponseWriter, r *http.Request, employeeID string) bool {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return false
	}
	if !user.CanAccessEmployee(employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "employees may only access their own record", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.allowed(w, r, id) {
		return
	}
	emp, err := h.Service.Get(r.Context(), id)
	if errors.Is(err, employees.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "Employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		shared.ServerError(w, r, "employee_fetch_failed", err)
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.allowed(w, r, id) {
		return
	}
	history, err := h.Service.History(r.Context(), id)
	if errors.Is(err, employees.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "Employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		shared.ServerError(w, r, "employee_history_failed", err)
		return
	}
	api.Success(w, history, middleware.GetRequestID(r.Context()))
}

// decodeInput validates the profile payload. requireID is set on create.
func decodeInput(w http.ResponseWriter, r *http.Request, requireID bool) (employees.Input, bool) {
	var payload employeeRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return employees.Input{}, false
	}
	payload.ID = strings.TrimSpace(payload.ID)

	v := shared.NewValidator()
	if requireID {
		v.Required("id", payload.ID, "is required")
	}
	v.Struct(payload)
	if v.RejectWithMessage(w, middleware.GetRequestID(r.Context()), "All fields are required") {
		return employees.Input{}, false
	}
	if requireID && !employees.ValidID(payload.ID) {
		v.Add("id", "must be 2-32 letters, digits, '-' or '_'")
	}
	dob, _ := v.Date("dateOfBirth", payload.DateOfBirth)
	joined, _ := v.Date("dateOfJoining", payload.DateOfJoining)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return employees.Input{}, false
	}

	return employees.Input{
		ID:            payload.ID,
		FullName:      strings.TrimSpace(payload.FullName),
		Email:         strings.TrimSpace(payload.Email),
		Phone:         strings.TrimSpace(payload.Phone),
		DateOfBirth:   dob,
		Gender:        payload.Gender,
		DepartmentID:  payload.DepartmentID,
		DesignationID: payload.DesignationID,
		DateOfJoining: joined,
		WorkLocation:  strings.TrimSpace(payload.WorkLocation),
	}, true
}

func (h *Handler) failWrite(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, employees.ErrDuplicate):
		api.Fail(w, http.StatusBadRequest, "duplicate", "Employee ID or email already exists", middleware.GetRequestID(r.Context()))
	case errors.Is(err, auth.ErrUsernameTaken):
		api.Fail(w, http.StatusBadRequest, "username_taken", "Employee ID is already in use as a login name", middleware.GetRequestID(r.Context()))
	case errors.Is(err, employees.ErrInvalidReference):
		api.Fail(w, http.StatusBadRequest, "invalid_reference", "department or designation does not exist", middleware.GetRequestID(r.Context()))
	case errors.Is(err, employees.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "Employee not found", middleware.GetRequestID(r.Context()))
	default:
		shared.ServerError(w, r, "employee_write_failed", err)
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r, true)
	if !ok {
		return
	}
	var (
		cred   auth.ProvisionedCredential
		enroll employees.Enroll
	)
	if h.Provisioner != nil {
		enroll = func(ctx context.Context, tx querier.Querier) error {
			var err error
			cred, err = h.Provisioner.Enroll(ctx, tx, in.ID)
			return err
		}
	}
	emp, err := h.Service.Create(r.Context(), in, enroll)
	if err != nil {
		h.failWrite(w, r, err)
		return
	}

	shared.RecordAudit(r, h.Audit, audit.Entry{
		Action: audit.ActionEmployeeCreate, EntityType: "employee", EntityID: emp.ID, After: emp,
	})

	resp := createResponse{Employee: emp}
	if h.Provisioner != nil {
		h.Provisioner.Deliver(r.Context(), emp.ID, cred)
		resp.Credential = &cred
	}
	api.Created(w, resp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r, false)
	if !ok {
		return
	}
	emp, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.failWrite(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{
		Action: audit.ActionEmployeeUpdate, EntityType: "employee", EntityID: emp.ID, After: emp,
	})
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Deactivate(r.Context(), id); err != nil {
		h.failWrite(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{Action: audit.ActionEmployeeDeactivate, EntityType: "employee", EntityID: id})
	api.Success(w, api.Message("Employee deactivated"), middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Reactivate(r.Context(), id); err != nil {
		h.failWrite(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{Action: audit.ActionEmployeeReactivate, EntityType: "employee", EntityID: id})
	api.Success(w, api.Message("Employee reactivated"), middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleProvision(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cred, err := h.Provisioner.Provision(r.Context(), id)
	if errors.Is(err, auth.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "Employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if errors.Is(err, auth.ErrUsernameTaken) {
		api.Fail(w, http.StatusBadRequest, "username_taken", "Employee ID is already in use as a login name", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		shared.ServerError(w, r, "credential_provision_failed", err)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{Action: audit.ActionCredentialIssue, EntityType: "employee", EntityID: id})
	api.Success(w, cred, middleware.GetRequestID(r.Context()))
}

package salaryhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"paydesk/internal/domain/audit"
	"paydesk/internal/domain/auth"
	"paydesk/internal/domain/salary"
	"paydesk/internal/platform/jobs"
	"paydesk/internal/transport/http/api"
	"paydesk/internal/transport/http/middleware"
	"paydesk/internal/transport/http/shared"
)

const generateEndpoint = "salary.generate"

// JobRunner records a synchronous run in the job history.
type JobRunner interface {
	RunNow(ctx context.Context, jobType string, run jobs.RunFunc) (any, error)
}

type RunLister interface {
	CountRuns(ctx context.Context, filter jobs.RunFilter) (int, error)
	ListRuns(ctx context.Context, filter jobs.RunFilter, limit, offset int) ([]jobs.Run, error)
}

type Handler struct {
	Service     *salary.Service
	Jobs        JobRunner
	Idempotency *middleware.IdempotencyStore
	Perms       middleware.PermissionStore
	Runs        RunLister
	Audit       shared.AuditRecorder
}

func NewHandler(service *salary.Service, runner JobRunner, idem *middleware.IdempotencyStore, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Jobs: runner, Idempotency: idem, Perms: perms}
}

type structureRequest struct {
	EmployeeID string           `json:"employeeId"`
	Basic      *decimal.Decimal `json:"basic"`
	HRA        *decimal.Decimal `json:"hra"`
	OtherAllow *decimal.Decimal `json:"otherAllow"`
}

type structureResponse struct {
	Message   string           `json:"message"`
	Structure salary.Structure `json:"structure"`
}

type generateRequest struct {
	MonthYear string `json:"monthYear"`
}

type generateResponse struct {
	Message   string   `json:"message"`
	MonthYear string   `json:"monthYear"`
	Generated []string `json:"generated"`
	Skipped   []string `json:"skipped"`
}

type monthTotalResponse struct {
	MonthYear string          `json:"monthYear"`
	Total     decimal.Decimal `json:"total"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/salary", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermSalaryWrite, h.Perms)).Post("/structure", h.HandleDefineStructure)
		r.With(middleware.RequirePermission(auth.PermSalaryRead, h.Perms)).Get("/structure/{employeeId}", h.HandleGetStructure)
		r.With(middleware.RequirePermission(auth.PermSalaryRun, h.Perms)).Post("/generate", h.HandleGenerate)
		r.With(middleware.RequirePermission(auth.PermSalaryRun, h.Perms)).Get("/runs", h.HandleListRuns)
		r.With(middleware.RequirePermission(auth.PermSalaryRead, h.Perms)).Get("/history/{employeeId}", h.HandleHistory)
		r.With(middleware.RequirePermission(auth.PermSalaryWrite, h.Perms)).Get("/history-employees", h.HandleHistoryEmployees)
		r.With(middleware.RequirePermission(auth.PermSalaryWrite, h.Perms)).Get("/structure-employees", h.HandleStructureEmployees)
		r.With(middleware.RequirePermission(auth.PermSalaryRead, h.Perms)).Get("/payslip/{employeeId}/{monthYear}", h.HandlePayslip)
		r.With(middleware.RequirePermission(auth.PermSalaryWrite, h.Perms)).Get("/export", h.HandleExport)
		r.With(middleware.RequirePermission(auth.PermDashboardRead, h.Perms)).Get("/dashboard/monthly-payroll", h.HandleMonthlyPayroll)
	})
}

func (h *Handler) self(w http.ResponseWriter, r *http.Request, employeeID string) bool {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return false
	}
	if !user.CanAccessEmployee(employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "employees may only access their own salary", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func (h *Handler) HandleDefineStructure(w http.ResponseWriter, r *http.Request) {
	var payload structureRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	payload.EmployeeID = strings.TrimSpace(payload.EmployeeID)
	if payload.EmployeeID == "" || payload.Basic == nil || payload.HRA == nil || payload.OtherAllow == nil {
		api.Fail(w, http.StatusBadRequest, "validation_error", "All fields are required", middleware.GetRequestID(r.Context()))
		return
	}

	structure, created, err := h.Service.DefineStructure(r.Context(), salary.StructureInput{
		EmployeeID: payload.EmployeeID,
		Basic:      *payload.Basic,
		HRA:        *payload.HRA,
		OtherAllow: *payload.OtherAllow,
	})
	if err == nil {
		shared.RecordAudit(r, h.Audit, audit.Entry{
			Action: audit.ActionSalaryStructure, EntityType: "salary_structure", EntityID: structure.EmployeeID, After: structure,
		})
	}
	switch {
	case err == nil && created:
		api.Created(w, structureResponse{Message: "Salary structure created.", Structure: structure}, middleware.GetRequestID(r.Context()))
	case err == nil:
		api.Success(w, structureResponse{Message: "Salary structure updated.", Structure: structure}, middleware.GetRequestID(r.Context()))
	case errors.Is(err, salary.ErrNegativeAmount):
		api.Fail(w, http.StatusBadRequest, "validation_error", "Salary amounts must be non-negative", middleware.GetRequestID(r.Context()))
	case errors.Is(err, salary.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "Employee not found", middleware.GetRequestID(r.Context()))
	default:
		shared.ServerError(w, r, "salary_structure_failed", err)
	}
}

func (h *Handler) HandleGetStructure(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if !h.self(w, r, employeeID) {
		return
	}
	structure, err := h.Service.GetStructure(r.Context(), employeeID)
	if errors.Is(err, salary.ErrStructureNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "Salary structure not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		shared.ServerError(w, r, "salary_structure_failed", err)
		return
	}
	api.Success(w, structure, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	var payload generateRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	monthYear, err := salary.NormalizeMonth(strings.TrimSpace(payload.MonthYear))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_error", "Invalid monthYear format", middleware.GetRequestID(r.Context()))
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(body)
	if idempotencyKey != "" {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, generateEndpoint, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "Idempotency-Key was used with a different request", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "err", err)
		}
		if found {
			api.Success(w, stored, middleware.GetRequestID(r.Context()))
			return
		}
	}

	result, err := h.generate(r.Context(), monthYear)
	if errors.Is(err, salary.ErrNoEligibleEmployees) {
		api.Fail(w, http.StatusNotFound, "not_found", "No active employees with salary structure found.", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		shared.ServerError(w, r, "salary_generation_failed", err)
		return
	}

	shared.RecordAudit(r, h.Audit, audit.Entry{
		Action: audit.ActionSalaryGenerate, EntityType: "salary_month", EntityID: result.MonthYear,
		After: map[string]int{"generated": len(result.Generated), "skipped": len(result.Skipped)},
	})

	response := generateResponse{
		Message:   "Salary generated successfully.",
		MonthYear: result.MonthYear,
		Generated: result.Generated,
		Skipped:   result.Skipped,
	}
	if idempotencyKey != "" {
		encoded, err := json.Marshal(response)
		if err == nil {
			err = h.Idempotency.Save(r.Context(), user.UserID, generateEndpoint, idempotencyKey, requestHash, encoded)
		}
		if err != nil {
			slog.Warn("idempotency save failed", "err", err)
		}
	}
	api.Success(w, response, middleware.GetRequestID(r.Context()))
}

func (h *Handler) generate(ctx context.Context, monthYear string) (salary.GenerateResult, error) {
	if h.Jobs == nil {
		return h.Service.Generate(ctx, monthYear)
	}
	out, err := h.Jobs.RunNow(ctx, jobs.JobSalaryGeneration, func(ctx context.Context) (any, error) {
		return h.Service.Generate(ctx, monthYear)
	})
	if err != nil {
		return salary.GenerateResult{}, err
	}
	result, ok := out.(salary.GenerateResult)
	if !ok {
		return salary.GenerateResult{}, fmt.Errorf("unexpected generation result %T", out)
	}
	return result, nil
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if !h.self(w, r, employeeID) {
		return
	}
	list, err := h.Service.History(r.Context(), employeeID)
	if errors.Is(err, salary.ErrNoHistory) {
		api.Fail(w, http.StatusNotFound, "not_found", "No salary history found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		shared.ServerError(w, r, "salary_history_failed", err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleHistoryEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.HistoryEmployees(r.Context())
	if err != nil {
		shared.ServerError(w, r, "salary_history_failed", err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleStructureEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.StructureEmployees(r.Context())
	if err != nil {
		shared.ServerError(w, r, "salary_structure_failed", err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandlePayslip(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if !h.self(w, r, employeeID) {
		return
	}
	monthYear := chi.URLParam(r, "monthYear")
	pdf, err := h.Service.Payslip(r.Context(), employeeID, monthYear)
	switch {
	case err == nil:
	case errors.Is(err, salary.ErrInvalidMonth):
		api.Fail(w, http.StatusBadRequest, "validation_error", "Invalid monthYear format", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, salary.ErrTransactionNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "Salary not generated for this month", middleware.GetRequestID(r.Context()))
		return
	default:
		shared.ServerError(w, r, "payslip_failed", err)
		return
	}

	api.File(w, api.ContentTypePDF, fmt.Sprintf("payslip_%s_%s.pdf", employeeID, monthYear), true, pdf)
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	monthYear, data, err := h.Service.ExportRegister(r.Context(), strings.TrimSpace(r.URL.Query().Get("monthYear")))
	if errors.Is(err, salary.ErrInvalidMonth) {
		api.Fail(w, http.StatusBadRequest, "validation_error", "Invalid monthYear format", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		shared.ServerError(w, r, "salary_export_failed", err)
		return
	}
	api.File(w, api.ContentTypeXLSX, "payroll_register_"+monthYear+".xlsx", false, data)
}

func (h *Handler) HandleMonthlyPayroll(w http.ResponseWriter, r *http.Request) {
	monthYear, total, err := h.Service.MonthTotal(r.Context(), "")
	if err != nil {
		shared.ServerError(w, r, "monthly_payroll_failed", err)
		return
	}
	api.Success(w, monthTotalResponse{MonthYear: monthYear, Total: total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		api.Success(w, []jobs.Run{}, middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	filter := jobs.RunFilter{JobType: jobs.JobSalaryGeneration, Status: r.URL.Query().Get("status")}

	total, err := h.Runs.CountRuns(r.Context(), filter)
	if err != nil {
		slog.Warn("job run count failed", "err", err)
	}
	runs, err := h.Runs.ListRuns(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		shared.ServerError(w, r, "salary_runs_failed", err)
		return
	}
	shared.SetTotalCount(w, total)
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

package lookupshandler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"paydesk/internal/domain/auth"
	"paydesk/internal/domain/lookups"
	"paydesk/internal/transport/http/api"
	"paydesk/internal/transport/http/middleware"
	"paydesk/internal/transport/http/shared"
)

type Handler struct {
	Service *lookups.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *lookups.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

// table wires one lookup entity to its routes. A nil func leaves the verb unmounted.
type table[T any] struct {
	list   func(ctx context.Context) ([]T, error)
	get    func(ctx context.Context, id int64) (T, error)
	create func(ctx context.Context, item T) (T, error)
	update func(ctx context.Context, id int64, item T) (T, error)
	remove func(ctx context.Context, id int64) error
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	s := h.Service
	r.Route("/departments", func(r chi.Router) {
		mount(r, h.Perms, table[lookups.Department]{
			list: s.ListDepartments, create: s.CreateDepartment, update: s.UpdateDepartment, remove: s.DeleteDepartment,
		})
		r.With(middleware.RequirePermission(auth.PermLookupsWrite, h.Perms)).Post("/add", createHandler(s.CreateDepartment))
	})
	r.Route("/designations", func(r chi.Router) {
		mount(r, h.Perms, table[lookups.Designation]{
			list: s.ListDesignations, create: s.CreateDesignation, update: s.UpdateDesignation, remove: s.DeleteDesignation,
		})
		r.With(middleware.RequirePermission(auth.PermLookupsRead, h.Perms)).Get("/by-department/{departmentId}", h.HandleDesignationsByDepartment)
	})
	r.Route("/paycomponents", func(r chi.Router) {
		mount(r, h.Perms, table[lookups.PayComponent]{
			list: s.ListPayComponents, get: s.GetPayComponent, create: s.CreatePayComponent, update: s.UpdatePayComponent, remove: s.DeletePayComponent,
		})
	})
	r.Route("/taxslabs", func(r chi.Router) {
		mount(r, h.Perms, table[lookups.TaxSlab]{
			list: s.ListTaxSlabs, get: s.GetTaxSlab, create: s.CreateTaxSlab, update: s.UpdateTaxSlab, remove: s.DeleteTaxSlab,
		})
	})
	r.Route("/leavetypes", func(r chi.Router) {
		mount(r, h.Perms, table[lookups.LeaveType]{
			list: s.ListLeaveTypes, get: s.GetLeaveType, create: s.CreateLeaveType, update: s.UpdateLeaveType, remove: s.DeleteLeaveType,
		})
	})
	r.Route("/bankdetails", func(r chi.Router) {
		mount(r, h.Perms, table[lookups.BankDetail]{
			list: s.ListBankDetails, get: s.GetBankDetail, create: s.CreateBankDetail, update: s.UpdateBankDetail, remove: s.DeleteBankDetail,
		})
	})
	r.Route("/worklocations", func(r chi.Router) {
		mount(r, h.Perms, table[lookups.WorkLocation]{
			list: s.ListWorkLocations, get: s.GetWorkLocation, create: s.CreateWorkLocation, update: s.UpdateWorkLocation, remove: s.DeleteWorkLocation,
		})
	})
	r.Route("/payrollsettings", func(r chi.Router) {
		mount(r, h.Perms, table[lookups.PayrollSetting]{
			list: s.ListPayrollSettings, get: s.GetPayrollSetting, create: s.CreatePayrollSetting, update: s.UpdatePayrollSetting, remove: s.DeletePayrollSetting,
		})
	})
}

func mount[T any](r chi.Router, perms middleware.PermissionStore, t table[T]) {
	read := middleware.RequirePermission(auth.PermLookupsRead, perms)
	write := middleware.RequirePermission(auth.PermLookupsWrite, perms)
	if t.list != nil {
		r.With(read).Get("/", listHandler(t.list))
	}
	if t.get != nil {
		r.With(read).Get("/{id}", getHandler(t.get))
	}
	if t.create != nil {
		r.With(write).Post("/", createHandler(t.create))
	}
	if t.update != nil {
		r.With(write).Put("/{id}", updateHandler(t.update))
	}
	if t.remove != nil {
		r.With(write).Delete("/{id}", deleteHandler(t.remove))
	}
}

func failLookup(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, lookups.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "Record not found", requestID)
	case errors.Is(err, lookups.ErrDuplicate):
		api.Fail(w, http.StatusConflict, "duplicate", "Record already exists", requestID)
	case errors.Is(err, lookups.ErrInUse):
		api.Fail(w, http.StatusConflict, "in_use", "Record is referenced by other data", requestID)
	case errors.Is(err, lookups.ErrInvalidReference):
		api.Fail(w, http.StatusBadRequest, "invalid_reference", "Referenced record does not exist", requestID)
	case errors.Is(err, lookups.ErrNegativeAmount),
		errors.Is(err, lookups.ErrInvalidSlabRange),
		errors.Is(err, lookups.ErrInvalidRate):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	default:
		shared.ServerError(w, r, "lookup_failed", err)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		api.Fail(w, http.StatusBadRequest, "validation_error", param+" must be a positive integer", middleware.GetRequestID(r.Context()))
		return 0, false
	}
	return id, true
}

func decodeItem[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var item T
	if !shared.DecodeJSON(w, r, &item) {
		return item, false
	}
	v := shared.NewValidator()
	v.Struct(item)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return item, false
	}
	return item, true
}

func listHandler[T any](list func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			failLookup(w, r, err)
			return
		}
		api.Success(w, items, middleware.GetRequestID(r.Context()))
	}
}

func getHandler[T any](get func(context.Context, int64) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		item, err := get(r.Context(), id)
		if err != nil {
			failLookup(w, r, err)
			return
		}
		api.Success(w, item, middleware.GetRequestID(r.Context()))
	}
}

func createHandler[T any](create func(context.Context, T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := decodeItem[T](w, r)
		if !ok {
			return
		}
		created, err := create(r.Context(), item)
		if err != nil {
			failLookup(w, r, err)
			return
		}
		api.Created(w, created, middleware.GetRequestID(r.Context()))
	}
}

func updateHandler[T any](update func(context.Context, int64, T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		item, ok := decodeItem[T](w, r)
		if !ok {
			return
		}
		updated, err := update(r.Context(), id, item)
		if err != nil {
			failLookup(w, r, err)
			return
		}
		api.Success(w, updated, middleware.GetRequestID(r.Context()))
	}
}

func deleteHandler(remove func(context.Context, int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := remove(r.Context(), id); err != nil {
			failLookup(w, r, err)
			return
		}
		api.Success(w, api.Message("Deleted successfully"), middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) HandleDesignationsByDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := pathID(w, r, "departmentId")
	if !ok {
		return
	}
	items, err := h.Service.ListDesignationsByDepartment(r.Context(), departmentID)
	if err != nil {
		failLookup(w, r, err)
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

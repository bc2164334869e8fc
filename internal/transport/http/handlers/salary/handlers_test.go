package salaryhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"paydesk/internal/domain/audit"
	"paydesk/internal/domain/auth"
	"paydesk/internal/domain/salary"
	"paydesk/internal/platform/jobs"
	"paydesk/internal/transport/http/middleware"
)

type stubStore struct {
	salary.StoreAPI
	structures map[string]salary.Structure
	generated  map[string]bool
	eligible   []string
}

func (s *stubStore) UpsertStructure(_ context.Context, in salary.StructureInput) (salary.Structure, bool, error) {
	_, existed := s.structures[in.EmployeeID]
	st := salary.Structure{EmployeeID: in.EmployeeID, Basic: in.Basic, HRA: in.HRA, OtherAllow: in.OtherAllow}
	s.structures[in.EmployeeID] = st
	return st, !existed, nil
}

func (s *stubStore) Generate(_ context.Context, monthYear string) (salary.GenerateResult, error) {
	if len(s.eligible) == 0 {
		return salary.GenerateResult{}, salary.ErrNoEligibleEmployees
	}
	out := salary.GenerateResult{MonthYear: monthYear, Generated: []string{}, Skipped: []string{}}
	for _, id := range s.eligible {
		key := id + "/" + monthYear
		if s.generated[key] {
			out.Skipped = append(out.Skipped, id)
			continue
		}
		s.generated[key] = true
		out.Generated = append(out.Generated, id)
	}
	return out, nil
}

func (s *stubStore) History(context.Context, string) ([]salary.Transaction, error) {
	return nil, nil
}

type recordingRunner struct{ types []string }

func (r *recordingRunner) RunNow(ctx context.Context, jobType string, run jobs.RunFunc) (any, error) {
	r.types = append(r.types, jobType)
	return run(ctx)
}

type allowAll struct{}

func (allowAll) HasPermission(context.Context, string, string) (bool, error) { return true, nil }

func newRouter(store *stubStore, runner JobRunner, user auth.UserContext) http.Handler {
	h := NewHandler(salary.NewService(store, nil, "", nil), runner, nil, allowAll{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), user)))
		})
	})
	h.RegisterRoutes(r)
	return r
}

func newStore(eligible ...string) *stubStore {
	return &stubStore{structures: map[string]salary.Structure{}, generated: map[string]bool{}, eligible: eligible}
}

var officer = auth.UserContext{UserID: "u1", RoleName: auth.RolePayrollOfficer}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body)))
	return rec
}

func TestDefineStructure(t *testing.T) {
	h := newRouter(newStore(), nil, officer)

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{name: "create", body: `{"employeeId":"E001","basic":20000,"hra":8000,"otherAllow":2000}`, status: http.StatusCreated, message: "Salary structure created."},
		{name: "update", body: `{"employeeId":"E001","basic":"21000","hra":8000,"otherAllow":2000}`, status: http.StatusOK, message: "Salary structure updated."},
		{name: "missing hra", body: `{"employeeId":"E001","basic":20000,"otherAllow":2000}`, status: http.StatusBadRequest},
		{name: "negative", body: `{"employeeId":"E001","basic":-1,"hra":0,"otherAllow":0}`, status: http.StatusBadRequest},
		{name: "not numeric", body: `{"employeeId":"E001","basic":"abc","hra":0,"otherAllow":0}`, status: http.StatusBadRequest},
	}
	for _, tc := range tests {
		rec := post(h, "/salary/structure", tc.body)
		if rec.Code != tc.status {
			t.Fatalf("%s: status = %d, want %d: %s", tc.name, rec.Code, tc.status, rec.Body.String())
		}
		if tc.message == "" {
			continue
		}
		var env struct {
			Data structureResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Data.Message != tc.message {
			t.Fatalf("%s: message = %q, want %q", tc.name, env.Data.Message, tc.message)
		}
	}
}

func TestGenerate(t *testing.T) {
	store := newStore("E001", "E002")
	runner := &recordingRunner{}
	h := newRouter(store, runner, officer)

	rec := post(h, "/salary/generate", `{"monthYear":"06-2025"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data generateResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Message != "Salary generated successfully." || env.Data.MonthYear != "2025-06" || len(env.Data.Generated) != 2 {
		t.Fatalf("unexpected response %+v", env.Data)
	}
	if len(runner.types) != 1 || runner.types[0] != jobs.JobSalaryGeneration {
		t.Fatalf("job runs = %v", runner.types)
	}

	rec = post(h, "/salary/generate", `{"monthYear":"2025-06"}`)
	env.Data = generateResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data.Generated) != 0 || len(env.Data.Skipped) != 2 {
		t.Fatalf("rerun must skip everyone: %+v", env.Data)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		store  *stubStore
		body   string
		status int
	}{
		{name: "bad month", store: newStore("E001"), body: `{"monthYear":"2025-13"}`, status: http.StatusBadRequest},
		{name: "missing month", store: newStore("E001"), body: `{}`, status: http.StatusBadRequest},
		{name: "nobody eligible", store: newStore(), body: `{"monthYear":"2025-06"}`, status: http.StatusNotFound},
	}
	for _, tc := range tests {
		rec := post(newRouter(tc.store, nil, officer), "/salary/generate", tc.body)
		if rec.Code != tc.status {
			t.Fatalf("%s: status = %d, want %d", tc.name, rec.Code, tc.status)
		}
	}
}

func TestHistoryScopes(t *testing.T) {
	h := newRouter(newStore(), nil, auth.UserContext{RoleName: auth.RoleEmployee, EmployeeID: "E001"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/salary/history/E001", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("own empty history status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/salary/history/E002", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("other history status = %d, want 403", rec.Code)
	}
}

func TestDecimalPayloadKeepsPrecision(t *testing.T) {
	store := newStore()
	h := newRouter(store, nil, officer)
	post(h, "/salary/structure", `{"employeeId":"E009","basic":"1000.10","hra":"0.20","otherAllow":0}`)
	got := store.structures["E009"]
	if !got.Basic.Add(got.HRA).Equal(decimal.RequireFromString("1000.30")) {
		t.Fatalf("basic+hra = %s", got.Basic.Add(got.HRA))
	}
}

type captureAudit struct{ entries []audit.Entry }

func (c *captureAudit) Record(_ context.Context, e audit.Entry) error {
	c.entries = append(c.entries, e)
	return nil
}

type stubRuns struct{ filter jobs.RunFilter }

func (s *stubRuns) CountRuns(_ context.Context, filter jobs.RunFilter) (int, error) {
	s.filter = filter
	return 1, nil
}

func (s *stubRuns) ListRuns(_ context.Context, _ jobs.RunFilter, _, _ int) ([]jobs.Run, error) {
	return []jobs.Run{{ID: "r1", JobType: jobs.JobSalaryGeneration, Status: jobs.StatusCompleted}}, nil
}

func TestGenerateRecordsAuditAndRuns(t *testing.T) {
	recorder := &captureAudit{}
	runs := &stubRuns{}
	h := NewHandler(salary.NewService(newStore("E001"), nil, "", nil), &recordingRunner{}, nil, allowAll{})
	h.Audit = recorder
	h.Runs = runs
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), officer)))
		})
	})
	h.RegisterRoutes(r)

	if rec := post(r, "/salary/generate", `{"monthYear":"2025-07"}`); rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(recorder.entries) != 1 {
		t.Fatalf("audit entries = %d", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.Action != audit.ActionSalaryGenerate || entry.EntityID != "2025-07" || entry.ActorID != "u1" {
		t.Fatalf("unexpected entry %+v", entry)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/salary/runs?status=failed", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Total-Count") != "1" {
		t.Fatalf("runs status = %d total = %q", rec.Code, rec.Header().Get("X-Total-Count"))
	}
	if runs.filter.JobType != jobs.JobSalaryGeneration || runs.filter.Status != "failed" {
		t.Fatalf("filter = %+v", runs.filter)
	}
}

package employees

import (
	"context"
	"errors"
	"testing"

	"paydesk/internal/platform/querier"
)

type fakeStore struct {
	StoreAPI
	rows map[string]Employee
}

func (f *fakeStore) Create(ctx context.Context, in Input, enroll Enroll) error {
	if _, ok := f.rows[in.ID]; ok {
		return ErrDuplicate
	}
	if enroll != nil {
		if err := enroll(ctx, nil); err != nil {
			return err
		}
	}
	f.rows[in.ID] = Employee{ID: in.ID, FullName: in.FullName, IsActive: true}
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Employee, error) {
	emp, ok := f.rows[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return emp, nil
}

func (f *fakeStore) Update(_ context.Context, id string, in Input) error {
	emp, ok := f.rows[id]
	if !ok {
		return ErrNotFound
	}
	emp.FullName = in.FullName
	f.rows[id] = emp
	return nil
}

func (f *fakeStore) SetActive(_ context.Context, id string, active bool) error {
	emp, ok := f.rows[id]
	if !ok {
		return ErrNotFound
	}
	emp.IsActive = active
	f.rows[id] = emp
	return nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateEmployees(context.Context) { c.calls++ }

func TestServiceInvalidatesHeadcount(t *testing.T) {
	ctx := context.Background()
	inv := &countingInvalidator{}
	svc := NewService(&fakeStore{rows: map[string]Employee{}}, inv)

	emp, err := svc.Create(ctx, Input{ID: "E001", FullName: "Asha Rao"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if emp.ID != "E001" || !emp.IsActive {
		t.Fatalf("unexpected employee %+v", emp)
	}

	if _, err := svc.Update(ctx, "E001", Input{FullName: "Asha R."}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if inv.calls != 1 {
		t.Fatalf("profile update must not invalidate, calls = %d", inv.calls)
	}

	if err := svc.Deactivate(ctx, "E001"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := svc.Reactivate(ctx, "E001"); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if inv.calls != 3 {
		t.Fatalf("invalidations = %d, want 3", inv.calls)
	}
}

func TestServiceErrorsSkipInvalidation(t *testing.T) {
	ctx := context.Background()
	inv := &countingInvalidator{}
	svc := NewService(&fakeStore{rows: map[string]Employee{"E001": {ID: "E001"}}}, inv)

	if _, err := svc.Create(ctx, Input{ID: "E001"}, nil); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if err := svc.Deactivate(ctx, "E404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if inv.calls != 0 {
		t.Fatalf("invalidations = %d, want 0", inv.calls)
	}
}

func TestServiceWithoutInvalidator(t *testing.T) {
	svc := NewService(&fakeStore{rows: map[string]Employee{}}, nil)
	if _, err := svc.Create(context.Background(), Input{ID: "E002"}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestCreateRollsBackWhenEnrollFails(t *testing.T) {
	store := &fakeStore{rows: map[string]Employee{}}
	inv := &countingInvalidator{}
	svc := NewService(store, inv)
	taken := errors.New("username already belongs to another account")

	_, err := svc.Create(context.Background(), Input{ID: "admin"}, func(context.Context, querier.Querier) error {
		return taken
	})
	if !errors.Is(err, taken) {
		t.Fatalf("expected enroll error, got %v", err)
	}
	if _, ok := store.rows["admin"]; ok {
		t.Fatal("employee row must not survive a failed enroll")
	}
	if inv.calls != 0 {
		t.Fatalf("invalidations = %d, want 0", inv.calls)
	}

	enrolled := 0
	if _, err := svc.Create(context.Background(), Input{ID: "E010"}, func(context.Context, querier.Querier) error {
		enrolled++
		return nil
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if enrolled != 1 {
		t.Fatalf("enroll calls = %d, want 1", enrolled)
	}
}

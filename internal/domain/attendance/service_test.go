package attendance

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	marked   map[string]Entry
	failWith error
	from, to time.Time
}

func (f *fakeStore) ListForDate(context.Context, time.Time) ([]Row, error) { return nil, nil }

func (f *fakeStore) MarkBatch(_ context.Context, _ time.Time, entries []Entry) error {
	if f.failWith != nil {
		return f.failWith
	}
	staged := map[string]Entry{}
	for k, v := range f.marked {
		staged[k] = v
	}
	for _, e := range entries {
		staged[e.EmployeeID] = e
	}
	f.marked = staged
	return nil
}

func (f *fakeStore) ListForEmployee(_ context.Context, _ string, from, to time.Time) ([]Record, error) {
	f.from, f.to = from, to
	return nil, nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateAttendance(context.Context) { c.calls++ }

func TestMarkIsIdempotentAndInvalidates(t *testing.T) {
	store := &fakeStore{}
	inv := &countingInvalidator{}
	svc := NewService(store, inv)
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	entries := []Entry{{EmployeeID: "E1", Status: StatusPresent}, {EmployeeID: "E2", Status: StatusAbsent}}

	for i := 0; i < 2; i++ {
		res, err := svc.Mark(context.Background(), day, entries)
		if err != nil {
			t.Fatalf("mark: %v", err)
		}
		if res.Count != 2 {
			t.Fatalf("expected count 2, got %d", res.Count)
		}
	}
	if len(store.marked) != 2 {
		t.Fatalf("expected two records after repeated marks, got %d", len(store.marked))
	}
	if inv.calls != 2 {
		t.Fatalf("expected invalidation per mark, got %d", inv.calls)
	}
}

func TestMarkFailureLeavesNoWrites(t *testing.T) {
	store := &fakeStore{failWith: &EntryError{EmployeeID: "GHOST", Err: ErrEmployeeUnavailable}}
	inv := &countingInvalidator{}
	svc := NewService(store, inv)

	_, err := svc.Mark(context.Background(), time.Now(), []Entry{{EmployeeID: "GHOST", Status: StatusPresent}})
	if !errors.Is(err, ErrEmployeeUnavailable) {
		t.Fatalf("expected unavailable employee, got %v", err)
	}
	if len(store.marked) != 0 || inv.calls != 0 {
		t.Fatal("expected no writes and no invalidation")
	}
}

func TestListForMonthBounds(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil)
	start := time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.ListForMonth(context.Background(), "E1", start); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !store.from.Equal(start) || !store.to.Equal(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected bounds %v - %v", store.from, store.to)
	}
}

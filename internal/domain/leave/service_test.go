package leave

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"paydesk/internal/domain/notifications"
)

func newTestService(store StoreAPI) *Service {
	svc := NewService(store)
	svc.now = func() time.Time { return time.Date(2025, time.August, 20, 10, 0, 0, 0, time.UTC) }
	return svc
}

func applyInput(employeeID, leaveType string, from, to time.Time) ApplyInput {
	return ApplyInput{
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		FromDate:   from,
		FromTime:   "09:00",
		ToDate:     to,
		ToTime:     "18:00",
		Reason:     "family",
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assertDays(t *testing.T, name string, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: expected %d, got %d", name, want, got)
	}
}

func TestBalanceGetOrCreateIsIdempotent(t *testing.T) {
	store := newFakeStore("E2")
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.Balance(ctx, "E2")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	second, err := svc.Balance(ctx, "E2")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if store.inserts != 1 {
		t.Fatalf("expected one insert, got %d", store.inserts)
	}
	if first != second {
		t.Fatalf("expected identical rows, got %+v and %+v", first, second)
	}
	if first.Year != 2025 {
		t.Fatalf("expected current year 2025, got %d", first.Year)
	}
	assertDays(t, "cl", first.CL, 8)
	assertDays(t, "pl", first.PL, 24)
	assertDays(t, "sl", first.SL, 5)
	assertDays(t, "clTaken", first.CLTaken, 0)
}

func TestApplyApproveScenario(t *testing.T) {
	store := newFakeStore("E2")
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Balance(ctx, "E2"); err != nil {
		t.Fatalf("balance: %v", err)
	}
	id, err := svc.Apply(ctx, applyInput("E2", TypeCL, date(2025, 9, 1), date(2025, 9, 2)))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	pending, _ := svc.ListPending(ctx)
	if len(pending) != 1 || pending[0].Status != StatusPending {
		t.Fatalf("expected one pending transaction, got %+v", pending)
	}

	_, err = svc.Apply(ctx, applyInput("E2", TypeSL, date(2025, 12, 1), date(2025, 12, 1)))
	if !errors.Is(err, ErrPendingExists) {
		t.Fatalf("expected pending conflict, got %v", err)
	}

	txn, err := svc.Decide(ctx, Decision{TransactionID: id, Action: StatusApproved})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if txn.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", txn.Status)
	}
	balance, _ := svc.Balance(ctx, "E2")
	assertDays(t, "cl", balance.CL, 7)
	assertDays(t, "clTaken", balance.CLTaken, 1)
	assertDays(t, "pl", balance.PL, 24)

	if _, err := svc.Decide(ctx, Decision{TransactionID: id, Action: StatusRejected}); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected already processed, got %v", err)
	}
}

func TestApplyOverlapRules(t *testing.T) {
	store := newFakeStore("E1")
	svc := newTestService(store)
	ctx := context.Background()

	id, err := svc.Apply(ctx, applyInput("E1", TypePL, date(2025, 10, 10), date(2025, 10, 15)))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := svc.Decide(ctx, Decision{TransactionID: id, Action: StatusApproved}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	tests := []struct {
		name     string
		from, to time.Time
		wantErr  error
	}{
		{name: "overlapping start", from: date(2025, 10, 14), to: date(2025, 10, 20), wantErr: ErrApprovedOverlap},
		{name: "overlapping end", from: date(2025, 10, 1), to: date(2025, 10, 10), wantErr: ErrApprovedOverlap},
		{name: "disjoint", from: date(2025, 11, 1), to: date(2025, 11, 2)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			newID, err := svc.Apply(ctx, applyInput("E1", TypeCL, tc.from, tc.to))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if err == nil {
				if _, err := svc.Decide(ctx, Decision{TransactionID: newID, Action: StatusRejected}); err != nil {
					t.Fatalf("reject: %v", err)
				}
			}
		})
	}

	// A request that fully contains the approved range passes the overlap check.
	if _, err := svc.Apply(ctx, applyInput("E1", TypeCL, date(2025, 10, 1), date(2025, 10, 31))); err != nil {
		t.Fatalf("expected containing range to be accepted, got %v", err)
	}
}

func TestRejectLeavesBalanceUntouched(t *testing.T) {
	store := newFakeStore("E3")
	svc := newTestService(store)
	ctx := context.Background()

	id, err := svc.Apply(ctx, applyInput("E3", TypeSL, date(2025, 9, 3), date(2025, 9, 3)))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := svc.Decide(ctx, Decision{TransactionID: id, Action: StatusRejected}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	balance, _ := svc.Balance(ctx, "E3")
	assertDays(t, "sl", balance.SL, 5)
	assertDays(t, "slTaken", balance.SLTaken, 0)
}

func TestDecideCorrectsLeaveType(t *testing.T) {
	store := newFakeStore("E4")
	svc := newTestService(store)
	ctx := context.Background()

	id, _ := svc.Apply(ctx, applyInput("E4", TypeCL, date(2025, 9, 3), date(2025, 9, 3)))
	txn, err := svc.Decide(ctx, Decision{TransactionID: id, Action: StatusApproved, LeaveType: TypeSL})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if txn.LeaveType != TypeSL {
		t.Fatalf("expected corrected type SL, got %s", txn.LeaveType)
	}
	balance, _ := svc.Balance(ctx, "E4")
	assertDays(t, "cl", balance.CL, 8)
	assertDays(t, "sl", balance.SL, 4)
}

func TestValidationErrors(t *testing.T) {
	store := newFakeStore("E5")
	svc := newTestService(store)
	ctx := context.Background()

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{name: "unknown apply type", run: func() error {
			_, err := svc.Apply(ctx, applyInput("E5", "ML", date(2025, 9, 1), date(2025, 9, 1)))
			return err
		}, wantErr: ErrInvalidLeaveType},
		{name: "reversed range", run: func() error {
			_, err := svc.Apply(ctx, applyInput("E5", TypeCL, date(2025, 9, 2), date(2025, 9, 1)))
			return err
		}, wantErr: ErrInvalidRange},
		{name: "unknown employee", run: func() error {
			_, err := svc.Apply(ctx, applyInput("NOPE", TypeCL, date(2025, 9, 1), date(2025, 9, 1)))
			return err
		}, wantErr: ErrEmployeeNotFound},
		{name: "invalid action", run: func() error {
			_, err := svc.Decide(ctx, Decision{TransactionID: 1, Action: "Maybe"})
			return err
		}, wantErr: ErrInvalidAction},
		{name: "invalid corrected type", run: func() error {
			_, err := svc.Decide(ctx, Decision{TransactionID: 1, Action: StatusApproved, LeaveType: "XL"})
			return err
		}, wantErr: ErrInvalidLeaveType},
		{name: "missing transaction", run: func() error {
			_, err := svc.Decide(ctx, Decision{TransactionID: 99, Action: StatusApproved})
			return err
		}, wantErr: ErrTransactionNotFound},
		{name: "review history empty", run: func() error {
			_, err := svc.ReviewHistory(ctx, "E5")
			return err
		}, wantErr: ErrNoHistory},
		{name: "reset without row", run: func() error {
			_, err := svc.ResetBalance(ctx, "E5", 2024)
			return err
		}, wantErr: ErrBalanceNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestInitAndResetBalance(t *testing.T) {
	store := newFakeStore("E6")
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.InitBalance(ctx, "E6", 2026); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := svc.InitBalance(ctx, "E6", 2026); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected already initialized, got %v", err)
	}
	store.balances[balanceKey("E6", 2026)].CL = 2
	reset, err := svc.ResetBalance(ctx, "E6", 2026)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	assertDays(t, "cl", reset.CL, 8)
}

type recordedNotice struct{ employeeID, ntype string }

type recordingNotifier struct {
	notices []recordedNotice
	err     error
}

func (r *recordingNotifier) Notify(_ context.Context, employeeID, ntype, _, _ string) error {
	r.notices = append(r.notices, recordedNotice{employeeID, ntype})
	return r.err
}

func TestDecideNotifiesEmployee(t *testing.T) {
	cases := []struct {
		name   string
		action string
		want   string
		err    error
	}{
		{"approved", StatusApproved, notifications.TypeLeaveApproved, nil},
		{"rejected", StatusRejected, notifications.TypeLeaveRejected, nil},
		{"notifier failure keeps decision", StatusApproved, notifications.TypeLeaveApproved, errors.New("down")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(newFakeStore("E7"))
			notifier := &recordingNotifier{err: tc.err}
			svc.Notifier = notifier
			ctx := context.Background()

			id, err := svc.Apply(ctx, applyInput("E7", TypeCL, date(2025, 9, 10), date(2025, 9, 10)))
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if _, err := svc.Decide(ctx, Decision{TransactionID: id, Action: tc.action}); err != nil {
				t.Fatalf("decide: %v", err)
			}
			if len(notifier.notices) != 1 || notifier.notices[0] != (recordedNotice{"E7", tc.want}) {
				t.Fatalf("notices = %v", notifier.notices)
			}
		})
	}
}

func TestFailedDecisionSendsNothing(t *testing.T) {
	svc := newTestService(newFakeStore("E8"))
	notifier := &recordingNotifier{}
	svc.Notifier = notifier
	if _, err := svc.Decide(context.Background(), Decision{TransactionID: 999, Action: StatusApproved}); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(notifier.notices) != 0 {
		t.Fatalf("notices = %v", notifier.notices)
	}
}

func TestInactiveEmployeeGetsNoBalanceRow(t *testing.T) {
	store := newFakeStore("E7")
	store.employees["E7"] = false
	svc := newTestService(store)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
	}{
		{name: "balance", run: func() error {
			_, err := svc.Balance(ctx, "E7")
			return err
		}},
		{name: "init", run: func() error {
			_, err := svc.InitBalance(ctx, "E7", 2025)
			return err
		}},
		{name: "apply", run: func() error {
			_, err := svc.Apply(ctx, applyInput("E7", TypeCL, date(2025, 9, 1), date(2025, 9, 1)))
			return err
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, ErrEmployeeInactive) {
				t.Fatalf("expected inactive, got %v", err)
			}
		})
	}
	if store.inserts != 0 {
		t.Fatalf("inserts = %d, want 0", store.inserts)
	}
}

func TestBalanceEncodesWholeDays(t *testing.T) {
	store := newFakeStore("E8")
	svc := newTestService(store)

	b, err := svc.Balance(context.Background(), "E8")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"employeeId":"E8","year":2025,"cl":8,"pl":24,"sl":5,"clTaken":0,"plTaken":0,"slTaken":0}`
	if string(raw) != want {
		t.Fatalf("json = %s, want %s", raw, want)
	}
}

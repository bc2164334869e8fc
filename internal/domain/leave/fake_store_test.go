package leave

import (
	"context"
	"fmt"
	"sort"
	"time"
)

type fakeStore struct {
	employees    map[string]bool
	balances     map[string]*Balance
	transactions []*Transaction
	inserts      int
	nextID       int64
}

func newFakeStore(employees ...string) *fakeStore {
	f := &fakeStore{employees: map[string]bool{}, balances: map[string]*Balance{}}
	for _, id := range employees {
		f.employees[id] = true
	}
	return f
}

func balanceKey(employeeID string, year int) string {
	return fmt.Sprintf("%s/%d", employeeID, year)
}

func (f *fakeStore) ensure(employeeID string, year int) bool {
	key := balanceKey(employeeID, year)
	if _, ok := f.balances[key]; ok {
		return false
	}
	f.balances[key] = &Balance{EmployeeID: employeeID, Year: year, CL: DefaultCL, PL: DefaultPL, SL: DefaultSL}
	f.inserts++
	return true
}

func (f *fakeStore) employeeActive(employeeID string) error {
	active, ok := f.employees[employeeID]
	if !ok {
		return ErrEmployeeNotFound
	}
	if !active {
		return ErrEmployeeInactive
	}
	return nil
}

func (f *fakeStore) GetOrCreateBalance(_ context.Context, employeeID string, year int) (Balance, error) {
	if err := f.employeeActive(employeeID); err != nil {
		return Balance{}, err
	}
	f.ensure(employeeID, year)
	return *f.balances[balanceKey(employeeID, year)], nil
}

func (f *fakeStore) InitBalance(_ context.Context, employeeID string, year int) (Balance, error) {
	if err := f.employeeActive(employeeID); err != nil {
		return Balance{}, err
	}
	if !f.ensure(employeeID, year) {
		return Balance{}, ErrAlreadyInitialized
	}
	return *f.balances[balanceKey(employeeID, year)], nil
}

func (f *fakeStore) ResetBalance(_ context.Context, employeeID string, year int) (Balance, error) {
	b, ok := f.balances[balanceKey(employeeID, year)]
	if !ok {
		return Balance{}, ErrBalanceNotFound
	}
	*b = Balance{EmployeeID: employeeID, Year: year, CL: DefaultCL, PL: DefaultPL, SL: DefaultSL}
	return *b, nil
}

func (f *fakeStore) Apply(_ context.Context, input ApplyInput) (int64, error) {
	active, ok := f.employees[input.EmployeeID]
	if !ok {
		return 0, ErrEmployeeNotFound
	}
	if !active {
		return 0, ErrEmployeeInactive
	}
	var spans []Span
	for _, t := range f.transactions {
		if t.EmployeeID != input.EmployeeID {
			continue
		}
		if t.Status == StatusPending {
			return 0, ErrPendingExists
		}
		if t.Status == StatusApproved {
			from, _ := time.Parse(dayLayout, t.FromDate)
			to, _ := time.Parse(dayLayout, t.ToDate)
			spans = append(spans, Span{From: from, To: to})
		}
	}
	if OverlapsApproved(spans, input.FromDate, input.ToDate) {
		return 0, ErrApprovedOverlap
	}
	f.nextID++
	f.transactions = append(f.transactions, &Transaction{
		ID:         f.nextID,
		EmployeeID: input.EmployeeID,
		LeaveType:  input.LeaveType,
		FromDate:   input.FromDate.Format(dayLayout),
		ToDate:     input.ToDate.Format(dayLayout),
		Reason:     input.Reason,
		Status:     StatusPending,
		CreatedAt:  time.Unix(f.nextID, 0),
	})
	return f.nextID, nil
}

func (f *fakeStore) Decide(_ context.Context, decision Decision, year int) (Transaction, error) {
	for _, t := range f.transactions {
		if t.ID != decision.TransactionID {
			continue
		}
		if t.Status != StatusPending {
			return Transaction{}, ErrAlreadyProcessed
		}
		if decision.LeaveType != "" {
			t.LeaveType = decision.LeaveType
		}
		if !ValidType(t.LeaveType) {
			return Transaction{}, ErrInvalidLeaveType
		}
		t.Status = decision.Action
		if decision.Action == StatusApproved {
			f.ensure(t.EmployeeID, year)
			b := f.balances[balanceKey(t.EmployeeID, year)]
			switch t.LeaveType {
			case TypeCL:
				b.CL, b.CLTaken = b.CL-1, b.CLTaken+1
			case TypePL:
				b.PL, b.PLTaken = b.PL-1, b.PLTaken+1
			case TypeSL:
				b.SL, b.SLTaken = b.SL-1, b.SLTaken+1
			}
		}
		return *t, nil
	}
	return Transaction{}, ErrTransactionNotFound
}

func (f *fakeStore) History(_ context.Context, employeeID string) ([]Transaction, error) {
	out := []Transaction{}
	for i := len(f.transactions) - 1; i >= 0; i-- {
		if f.transactions[i].EmployeeID == employeeID {
			out = append(out, *f.transactions[i])
		}
	}
	return out, nil
}

func (f *fakeStore) HistoryByFromDate(ctx context.Context, employeeID string) ([]Transaction, error) {
	out, _ := f.History(ctx, employeeID)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FromDate > out[j].FromDate })
	return out, nil
}

func (f *fakeStore) ListPending(context.Context) ([]Transaction, error) {
	out := []Transaction{}
	for _, t := range f.transactions {
		if t.Status == StatusPending {
			out = append(out, *t)
		}
	}
	return out, nil
}

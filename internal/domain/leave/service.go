package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"paydesk/internal/domain/notifications"
)

// Notifier tells an employee about a decision on their request.
type Notifier interface {
	Notify(ctx context.Context, employeeID, ntype, title, body string) error
}

type Service struct {
	Store    StoreAPI
	Notifier Notifier
	now      func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, now: time.Now}
}

func (s *Service) currentYear() int {
	if s.now == nil {
		return time.Now().Year()
	}
	return s.now().Year()
}

// Balance returns the current-year balance, creating it with defaults on first read.
func (s *Service) Balance(ctx context.Context, employeeID string) (Balance, error) {
	return s.Store.GetOrCreateBalance(ctx, employeeID, s.currentYear())
}

func (s *Service) InitBalance(ctx context.Context, employeeID string, year int) (Balance, error) {
	return s.Store.InitBalance(ctx, employeeID, year)
}

func (s *Service) ResetBalance(ctx context.Context, employeeID string, year int) (Balance, error) {
	return s.Store.ResetBalance(ctx, employeeID, year)
}

func (s *Service) Apply(ctx context.Context, input ApplyInput) (int64, error) {
	input.LeaveType = strings.TrimSpace(input.LeaveType)
	if !ValidType(input.LeaveType) {
		return 0, ErrInvalidLeaveType
	}
	if input.ToDate.Before(input.FromDate) {
		return 0, ErrInvalidRange
	}
	return s.Store.Apply(ctx, input)
}

func (s *Service) Decide(ctx context.Context, decision Decision) (Transaction, error) {
	if !ValidAction(decision.Action) {
		return Transaction{}, ErrInvalidAction
	}
	decision.LeaveType = strings.TrimSpace(decision.LeaveType)
	if decision.LeaveType != "" && !ValidType(decision.LeaveType) {
		return Transaction{}, ErrInvalidLeaveType
	}
	txn, err := s.Store.Decide(ctx, decision, s.currentYear())
	if err != nil {
		return Transaction{}, err
	}
	s.notifyDecision(ctx, txn)
	return txn, nil
}

func (s *Service) notifyDecision(ctx context.Context, txn Transaction) {
	if s.Notifier == nil {
		return
	}
	ntype := notifications.TypeLeaveApproved
	if txn.Status == StatusRejected {
		ntype = notifications.TypeLeaveRejected
	}
	title := "Leave " + strings.ToLower(txn.Status)
	body := fmt.Sprintf("Your %s leave from %s to %s was %s.", txn.LeaveType, txn.FromDate, txn.ToDate, strings.ToLower(txn.Status))
	if err := s.Notifier.Notify(ctx, txn.EmployeeID, ntype, title, body); err != nil {
		slog.Warn("leave decision notification failed", "transactionId", txn.ID, "err", err)
	}
}

func (s *Service) History(ctx context.Context, employeeID string) ([]Transaction, error) {
	return s.Store.History(ctx, employeeID)
}

// ReviewHistory lists an employee's transactions by start date for reviewers.
func (s *Service) ReviewHistory(ctx context.Context, employeeID string) ([]Transaction, error) {
	out, err := s.Store.HistoryByFromDate(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoHistory
	}
	return out, nil
}

func (s *Service) ListPending(ctx context.Context) ([]Transaction, error) {
	return s.Store.ListPending(ctx)
}

package leave

import "context"

type StoreAPI interface {
	GetOrCreateBalance(ctx context.Context, employeeID string, year int) (Balance, error)
	InitBalance(ctx context.Context, employeeID string, year int) (Balance, error)
	ResetBalance(ctx context.Context, employeeID string, year int) (Balance, error)
	Apply(ctx context.Context, input ApplyInput) (int64, error)
	Decide(ctx context.Context, decision Decision, year int) (Transaction, error)
	History(ctx context.Context, employeeID string) ([]Transaction, error)
	HistoryByFromDate(ctx context.Context, employeeID string) ([]Transaction, error)
	ListPending(ctx context.Context) ([]Transaction, error)
}

package notifications

import "context"

type StoreAPI interface {
	Create(ctx context.Context, employeeID, ntype, title, body string) error
	EmployeeEmail(ctx context.Context, employeeID string) (string, error)
	List(ctx context.Context, employeeID string, limit, offset int) ([]Notification, error)
	Count(ctx context.Context, employeeID string) (int, error)
	MarkRead(ctx context.Context, employeeID string, id int64) error
}

package attendance

import (
	"context"
	"time"
)

type StoreAPI interface {
	ListForDate(ctx context.Context, date time.Time) ([]Row, error)
	MarkBatch(ctx context.Context, date time.Time, entries []Entry) error
	ListForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
}

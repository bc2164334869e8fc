package attendance

import (
	"context"
	"time"
)

// Invalidator drops cached rollups that depend on attendance.
type Invalidator interface {
	InvalidateAttendance(ctx context.Context)
}

type Service struct {
	Store       StoreAPI
	Invalidator Invalidator
}

func NewService(store StoreAPI, invalidator Invalidator) *Service {
	return &Service{Store: store, Invalidator: invalidator}
}

func (s *Service) ListForDate(ctx context.Context, date time.Time) ([]Row, error) {
	return s.Store.ListForDate(ctx, date)
}

func (s *Service) Mark(ctx context.Context, date time.Time, entries []Entry) (MarkResult, error) {
	if err := ValidateBatch(entries); err != nil {
		return MarkResult{}, err
	}
	if err := s.Store.MarkBatch(ctx, date, entries); err != nil {
		return MarkResult{}, err
	}
	if s.Invalidator != nil {
		s.Invalidator.InvalidateAttendance(ctx)
	}
	return MarkResult{Count: len(entries)}, nil
}

// ListForMonth returns one employee's records for the month starting at monthStart.
func (s *Service) ListForMonth(ctx context.Context, employeeID string, monthStart time.Time) ([]Record, error) {
	return s.Store.ListForEmployee(ctx, employeeID, monthStart, monthStart.AddDate(0, 1, 0))
}

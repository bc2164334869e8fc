package employees

import (
	"context"

	"paydesk/internal/platform/querier"
)

// Invalidator drops cached rollups that count employees.
type Invalidator interface {
	InvalidateEmployees(ctx context.Context)
}

// Enroll runs inside the create transaction after the employee row is
// written; an error rolls the employee back.
type Enroll func(ctx context.Context, tx querier.Querier) error

type Service struct {
	store       StoreAPI
	invalidator Invalidator
}

func NewService(store StoreAPI, invalidator Invalidator) *Service {
	return &Service{store: store, invalidator: invalidator}
}

func (s *Service) changed(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateEmployees(ctx)
	}
}

func (s *Service) ListActive(ctx context.Context) ([]Employee, error) {
	return s.store.ListActive(ctx)
}

func (s *Service) ListAll(ctx context.Context) ([]Employee, error) {
	return s.store.ListAll(ctx)
}

func (s *Service) ListActiveSummaries(ctx context.Context) ([]Summary, error) {
	return s.store.ListActiveSummaries(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	return s.store.Get(ctx, id)
}

// Create inserts the employee and, when enroll is set, its login in one transaction.
func (s *Service) Create(ctx context.Context, in Input, enroll Enroll) (Employee, error) {
	if err := s.store.Create(ctx, in, enroll); err != nil {
		return Employee{}, err
	}
	s.changed(ctx)
	return s.store.Get(ctx, in.ID)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Employee, error) {
	if err := s.store.Update(ctx, id, in); err != nil {
		return Employee{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *Service) Reactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id string, active bool) error {
	if err := s.store.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

func (s *Service) History(ctx context.Context, id string) (History, error) {
	return s.store.History(ctx, id)
}

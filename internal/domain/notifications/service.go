package notifications

import (
	"context"
	"log/slog"

	"paydesk/internal/platform/email"
)

// Service stores in-app notices for employees and mirrors them by email
// when a mailer is configured.
type Service struct {
	store  StoreAPI
	Mailer email.Mailer
	From   string
}

func New(store StoreAPI, mailer email.Mailer, from string) *Service {
	return &Service{store: store, Mailer: mailer, From: from}
}

func (s *Service) Notify(ctx context.Context, employeeID, ntype, title, body string) error {
	if err := s.store.Create(ctx, employeeID, ntype, title, body); err != nil {
		return err
	}
	if s.Mailer == nil {
		return nil
	}

	address, err := s.store.EmployeeEmail(ctx, employeeID)
	if err != nil {
		slog.Warn("notification email lookup failed", "employeeId", employeeID, "err", err)
		return nil
	}
	if address == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.From, address, title, body); err != nil {
		slog.Warn("notification email send failed", "employeeId", employeeID, "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, employeeID string, limit, offset int) ([]Notification, error) {
	return s.store.List(ctx, employeeID, limit, offset)
}

func (s *Service) Count(ctx context.Context, employeeID string) (int, error) {
	return s.store.Count(ctx, employeeID)
}

func (s *Service) MarkRead(ctx context.Context, employeeID string, id int64) error {
	return s.store.MarkRead(ctx, employeeID, id)
}

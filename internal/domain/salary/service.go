package salary

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"paydesk/internal/domain/notifications"
	cryptoutil "paydesk/internal/platform/crypto"
)

// Notifier tells an employee that a payslip is available.
type Notifier interface {
	Notify(ctx context.Context, employeeID, ntype, title, body string) error
}

// Invalidator drops cached rollups that depend on salary transactions.
type Invalidator interface {
	InvalidateSalary(ctx context.Context)
}

type Service struct {
	Store       StoreAPI
	Crypto      *cryptoutil.Service
	PayslipDir  string
	Invalidator Invalidator
	Notifier    Notifier
	now         func() time.Time
}

func NewService(store StoreAPI, crypto *cryptoutil.Service, payslipDir string, invalidator Invalidator) *Service {
	return &Service{Store: store, Crypto: crypto, PayslipDir: payslipDir, Invalidator: invalidator, now: time.Now}
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *Service) CurrentMonth() string {
	return MonthOf(s.clock())
}

// DefineStructure creates or replaces the employee's structure and reports
// whether it was newly created.
func (s *Service) DefineStructure(ctx context.Context, input StructureInput) (Structure, bool, error) {
	if input.Basic.IsNegative() || input.HRA.IsNegative() || input.OtherAllow.IsNegative() {
		return Structure{}, false, ErrNegativeAmount
	}
	return s.Store.UpsertStructure(ctx, input)
}

func (s *Service) GetStructure(ctx context.Context, employeeID string) (Structure, error) {
	return s.Store.GetStructure(ctx, employeeID)
}

func (s *Service) Generate(ctx context.Context, monthYear string) (GenerateResult, error) {
	normalized, err := NormalizeMonth(monthYear)
	if err != nil {
		return GenerateResult{}, err
	}
	result, err := s.Store.Generate(ctx, normalized)
	if err != nil {
		return GenerateResult{}, err
	}
	if len(result.Generated) > 0 && s.Invalidator != nil {
		s.Invalidator.InvalidateSalary(ctx)
	}
	if s.Notifier != nil {
		for _, employeeID := range result.Generated {
			err := s.Notifier.Notify(ctx, employeeID, notifications.TypePayslipPublished,
				"Payslip available", "Your payslip for "+result.MonthYear+" is ready.")
			if err != nil {
				slog.Warn("payslip notification failed", "employeeId", employeeID, "err", err)
			}
		}
	}
	return result, nil
}

// GenerateCurrentMonth runs generation for the month containing now.
func (s *Service) GenerateCurrentMonth(ctx context.Context) (GenerateResult, error) {
	return s.Generate(ctx, s.CurrentMonth())
}

func (s *Service) History(ctx context.Context, employeeID string) ([]Transaction, error) {
	out, err := s.Store.History(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoHistory
	}
	return out, nil
}

func (s *Service) HistoryEmployees(ctx context.Context) ([]EmployeeRef, error) {
	return s.Store.HistoryEmployees(ctx)
}

func (s *Service) StructureEmployees(ctx context.Context) ([]Structure, error) {
	return s.Store.StructureEmployees(ctx)
}

// MonthTotal returns net pay for the month; an empty token means the current month.
func (s *Service) MonthTotal(ctx context.Context, monthYear string) (string, decimal.Decimal, error) {
	if monthYear == "" {
		monthYear = s.CurrentMonth()
	}
	normalized, err := NormalizeMonth(monthYear)
	if err != nil {
		return "", decimal.Zero, err
	}
	total, err := s.Store.MonthTotal(ctx, normalized)
	if err != nil {
		return "", decimal.Zero, err
	}
	return normalized, total, nil
}

package salary

import (
	"context"

	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	UpsertStructure(ctx context.Context, input StructureInput) (Structure, bool, error)
	GetStructure(ctx context.Context, employeeID string) (Structure, error)
	Generate(ctx context.Context, monthYear string) (GenerateResult, error)
	History(ctx context.Context, employeeID string) ([]Transaction, error)
	HistoryEmployees(ctx context.Context) ([]EmployeeRef, error)
	StructureEmployees(ctx context.Context) ([]Structure, error)
	MonthTransactions(ctx context.Context, monthYear string) ([]Transaction, error)
	MonthTotal(ctx context.Context, monthYear string) (decimal.Decimal, error)
	PayslipData(ctx context.Context, employeeID, monthYear string) (PayslipData, error)
}

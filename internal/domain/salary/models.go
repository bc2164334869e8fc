package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

const StatusGenerated = "Generated"

type Structure struct {
	EmployeeID string          `json:"employeeId"`
	FullName   string          `json:"fullName,omitempty"`
	Basic      decimal.Decimal `json:"basic"`
	HRA        decimal.Decimal `json:"hra"`
	OtherAllow decimal.Decimal `json:"otherAllow"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type StructureInput struct {
	EmployeeID string
	Basic      decimal.Decimal
	HRA        decimal.Decimal
	OtherAllow decimal.Decimal
}

type Transaction struct {
	ID         int64           `json:"id"`
	EmployeeID string          `json:"employeeId"`
	FullName   string          `json:"fullName,omitempty"`
	MonthYear  string          `json:"monthYear"`
	Basic      decimal.Decimal `json:"basic"`
	HRA        decimal.Decimal `json:"hra"`
	OtherAllow decimal.Decimal `json:"otherAllow"`
	Gross      decimal.Decimal `json:"gross"`
	Deductions decimal.Decimal `json:"deductions"`
	Net        decimal.Decimal `json:"net"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// GenerateResult lists employees written by a run and those that already had
// a transaction for the month.
type GenerateResult struct {
	MonthYear string   `json:"monthYear"`
	Generated []string `json:"generated"`
	Skipped   []string `json:"skipped"`
}

type EmployeeRef struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

type PayslipData struct {
	Transaction
	Email       string
	Department  string
	Designation string
}

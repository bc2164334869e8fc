package lookups

import (
	"time"

	"github.com/shopspring/decimal"
)

type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required,max=100"`
	CreatedAt time.Time `json:"createdAt"`
}

type Designation struct {
	ID           int64     `json:"id"`
	DepartmentID int64     `json:"departmentId" validate:"required,gte=1"`
	Name         string    `json:"name" validate:"required,max=100"`
	CreatedAt    time.Time `json:"createdAt"`
}

type PayComponent struct {
	ID         int64           `json:"id"`
	EmployeeID string          `json:"employeeId" validate:"required,max=32"`
	Name       string          `json:"name" validate:"required,max=100"`
	Amount     decimal.Decimal `json:"amount"`
	Type       string          `json:"type" validate:"required,oneof=earning deduction"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type TaxSlab struct {
	ID            int64           `json:"id"`
	FromSalary    decimal.Decimal `json:"fromSalary"`
	ToSalary      decimal.Decimal `json:"toSalary"`
	TaxPercentage decimal.Decimal `json:"taxPercentage"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type LeaveType struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required,max=50"`
	MaxDays   int       `json:"maxDays" validate:"gte=0,lte=366"`
	CreatedAt time.Time `json:"createdAt"`
}

// BankDetail carries the plaintext account number on input only; reads
// return the masked form.
type BankDetail struct {
	ID            int64     `json:"id"`
	EmployeeID    string    `json:"employeeId" validate:"required,max=32"`
	BankName      string    `json:"bankName" validate:"required,max=100"`
	AccountNumber string    `json:"accountNumber,omitempty" validate:"required,numeric,min=6,max=20"`
	AccountMasked string    `json:"accountNumberMasked"`
	IFSCCode      string    `json:"ifscCode" validate:"required,alphanum,len=11"`
	CreatedAt     time.Time `json:"createdAt"`
}

type WorkLocation struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required,max=100"`
	Address   string    `json:"address" validate:"required,max=300"`
	CreatedAt time.Time `json:"createdAt"`
}

type PayrollSetting struct {
	ID           int64           `json:"id"`
	SalaryDay    int             `json:"salaryDay" validate:"required,min=1,max=31"`
	OvertimeRate decimal.Decimal `json:"overtimeRate"`
	TaxEnabled   bool            `json:"taxEnabled"`
	CreatedAt    time.Time       `json:"createdAt"`
}

package lookups

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

func ValidatePayComponent(p PayComponent) error {
	if p.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

func ValidateTaxSlab(t TaxSlab) error {
	if t.FromSalary.IsNegative() {
		return ErrNegativeAmount
	}
	if !t.ToSalary.GreaterThan(t.FromSalary) {
		return ErrInvalidSlabRange
	}
	if t.TaxPercentage.IsNegative() || t.TaxPercentage.GreaterThan(hundred) {
		return ErrInvalidRate
	}
	return nil
}

func ValidatePayrollSetting(p PayrollSetting) error {
	if p.OvertimeRate.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

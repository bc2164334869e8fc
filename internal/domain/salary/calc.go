package salary

import "github.com/shopspring/decimal"

const (
	LineEarning   = "earning"
	LineDeduction = "deduction"
)

type Line struct {
	Type   string
	Amount decimal.Decimal
}

type Amounts struct {
	Gross      decimal.Decimal
	Deductions decimal.Decimal
	Net        decimal.Decimal
}

func Compute(basic decimal.Decimal, lines []Line) Amounts {
	gross := basic
	deductions := decimal.Zero
	for _, line := range lines {
		switch line.Type {
		case LineEarning:
			gross = gross.Add(line.Amount)
		case LineDeduction:
			deductions = deductions.Add(line.Amount)
		}
	}
	return Amounts{Gross: gross, Deductions: deductions, Net: gross.Sub(deductions)}
}

// ComputeStructure treats housing and other allowances as earnings with no deductions.
func ComputeStructure(s Structure) Amounts {
	return Compute(s.Basic, []Line{
		{Type: LineEarning, Amount: s.HRA},
		{Type: LineEarning, Amount: s.OtherAllow},
	})
}

package salary

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeStructure(t *testing.T) {
	amounts := ComputeStructure(Structure{
		Basic:      decimal.NewFromInt(20000),
		HRA:        decimal.NewFromInt(8000),
		OtherAllow: decimal.NewFromInt(2000),
	})
	if !amounts.Gross.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("expected gross 30000, got %s", amounts.Gross)
	}
	if !amounts.Deductions.IsZero() {
		t.Fatalf("expected zero deductions, got %s", amounts.Deductions)
	}
	if !amounts.Net.Equal(amounts.Gross) {
		t.Fatalf("expected net equal to gross, got %s", amounts.Net)
	}
}

func TestComputeWithDeductions(t *testing.T) {
	amounts := Compute(decimal.RequireFromString("1000.10"), []Line{
		{Type: LineEarning, Amount: decimal.RequireFromString("0.20")},
		{Type: LineDeduction, Amount: decimal.RequireFromString("100.05")},
		{Type: "ignored", Amount: decimal.NewFromInt(999)},
	})
	if amounts.Gross.String() != "1000.3" {
		t.Fatalf("unexpected gross %s", amounts.Gross)
	}
	if amounts.Net.String() != "900.25" {
		t.Fatalf("unexpected net %s", amounts.Net)
	}
}

package salary

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const registerSheet = "Register"

var registerHeader = []any{"Employee ID", "Name", "Month", "Basic", "HRA", "Other", "Gross", "Deductions", "Net", "Status"}

// ExportRegister builds an .xlsx payroll register for the month with a totals row.
func (s *Service) ExportRegister(ctx context.Context, monthYear string) (string, []byte, error) {
	normalized, err := NormalizeMonth(monthYear)
	if err != nil {
		return "", nil, err
	}
	txns, err := s.Store.MonthTransactions(ctx, normalized)
	if err != nil {
		return "", nil, err
	}
	data, err := BuildRegister(txns)
	if err != nil {
		return "", nil, err
	}
	return normalized, data, nil
}

func BuildRegister(txns []Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), registerSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(registerSheet, "A1", &registerHeader); err != nil {
		return nil, err
	}

	var gross, deductions, net decimal.Decimal
	for i, t := range txns {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			t.EmployeeID, t.FullName, t.MonthYear,
			t.Basic.InexactFloat64(), t.HRA.InexactFloat64(), t.OtherAllow.InexactFloat64(),
			t.Gross.InexactFloat64(), t.Deductions.InexactFloat64(), t.Net.InexactFloat64(),
			t.Status,
		}
		if err := f.SetSheetRow(registerSheet, cell, &row); err != nil {
			return nil, err
		}
		gross = gross.Add(t.Gross)
		deductions = deductions.Add(t.Deductions)
		net = net.Add(t.Net)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(txns)+2)
	if err != nil {
		return nil, err
	}
	totals := []any{"Total", "", "", "", "", "", gross.InexactFloat64(), deductions.InexactFloat64(), net.InexactFloat64(), ""}
	if err := f.SetSheetRow(registerSheet, cell, &totals); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

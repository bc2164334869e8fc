package salary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

func payslipName(employeeID, monthYear string) string {
	return fmt.Sprintf("%s_%s.pdf", employeeID, monthYear)
}

// Payslip returns the PDF for one (employee, month). Rendered files are kept
// under PayslipDir, encrypted when a key is configured.
func (s *Service) Payslip(ctx context.Context, employeeID, monthYear string) ([]byte, error) {
	normalized, err := NormalizeMonth(monthYear)
	if err != nil {
		return nil, err
	}
	data, err := s.Store.PayslipData(ctx, employeeID, normalized)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(s.PayslipDir, payslipName(data.EmployeeID, normalized))
	if s.encrypting() {
		path += ".enc"
	}
	if cached, err := os.ReadFile(path); err == nil {
		if s.encrypting() {
			return s.Crypto.Decrypt(cached)
		}
		return cached, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	pdf, err := RenderPayslip(data)
	if err != nil {
		return nil, err
	}
	stored := pdf
	if s.encrypting() {
		if stored, err = s.Crypto.Encrypt(pdf); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(s.PayslipDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, stored, 0o600); err != nil {
		return nil, err
	}
	return pdf, nil
}

func (s *Service) encrypting() bool {
	return s.Crypto != nil && s.Crypto.Configured()
}

func RenderPayslip(data PayslipData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", data.FullName, data.EmployeeID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", data.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Department: %s / %s", data.Department, data.Designation))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Month: %s", data.MonthYear))
	pdf.Ln(10)

	lines := []struct {
		label  string
		amount string
	}{
		{"Basic", data.Basic.StringFixed(2)},
		{"HRA", data.HRA.StringFixed(2)},
		{"Other allowance", data.OtherAllow.StringFixed(2)},
		{"Gross", data.Gross.StringFixed(2)},
		{"Deductions", data.Deductions.StringFixed(2)},
		{"Net", data.Net.StringFixed(2)},
	}
	for _, line := range lines {
		pdf.CellFormat(60, 8, line.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, line.amount, "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package dashboard

import "github.com/shopspring/decimal"

type AttendanceCounts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
}

// Absence counts active employees not marked Present. Marked and Unmarked
// split that count into explicit Absent rows and employees with no row.
type Absence struct {
	Count    int `json:"count"`
	Marked   int `json:"marked"`
	Unmarked int `json:"unmarked"`
}

type Payroll struct {
	MonthYear string          `json:"monthYear"`
	Total     decimal.Decimal `json:"total"`
}

type Summary struct {
	Date           string  `json:"date"`
	TotalEmployees int     `json:"totalEmployees"`
	PresentToday   int     `json:"presentToday"`
	AbsentToday    Absence `json:"absentToday"`
	MonthlyPayroll Payroll `json:"monthlyPayroll"`
}

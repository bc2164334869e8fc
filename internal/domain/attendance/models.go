package attendance

import "time"

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

const dayLayout = "2006-01-02"

// Row is one active employee joined with their record for a date, if any.
type Row struct {
	EmployeeID string     `json:"employeeId"`
	FullName   string     `json:"fullName"`
	Status     *string    `json:"status"`
	CheckIn    *time.Time `json:"checkIn"`
	CheckOut   *time.Time `json:"checkOut"`
}

type Entry struct {
	EmployeeID string
	Status     string
	CheckIn    *time.Time
	CheckOut   *time.Time
}

type Record struct {
	EmployeeID string     `json:"employeeId"`
	Date       string     `json:"date"`
	Status     string     `json:"status"`
	CheckIn    *time.Time `json:"checkIn"`
	CheckOut   *time.Time `json:"checkOut"`
}

type MarkResult struct {
	Count int `json:"count"`
}

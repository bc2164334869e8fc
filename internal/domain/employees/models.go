package employees

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

const dayLayout = "2006-01-02"

type Employee struct {
	ID              string    `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	DateOfBirth     string    `json:"dateOfBirth"`
	Gender          string    `json:"gender"`
	DepartmentID    int64     `json:"departmentId"`
	DepartmentName  string    `json:"departmentName"`
	DesignationID   int64     `json:"designationId"`
	DesignationName string    `json:"designationName"`
	DateOfJoining   string    `json:"dateOfJoining"`
	WorkLocation    string    `json:"workLocation"`
	IsActive        bool      `json:"isActive"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Input is the writable profile. ID is ignored on update.
type Input struct {
	ID            string
	FullName      string
	Email         string
	Phone         string
	DateOfBirth   time.Time
	Gender        string
	DepartmentID  int64
	DesignationID int64
	DateOfJoining time.Time
	WorkLocation  string
}

type Summary struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

type History struct {
	Basic      Employee            `json:"basic"`
	Attendance []AttendanceHistory `json:"attendance"`
	Leaves     []LeaveHistory      `json:"leaves"`
	Salary     []SalaryHistory     `json:"salary"`
}

type AttendanceHistory struct {
	Date     string     `json:"date"`
	Status   string     `json:"status"`
	CheckIn  *time.Time `json:"checkIn"`
	CheckOut *time.Time `json:"checkOut"`
}

type LeaveHistory struct {
	ID        int64     `json:"id"`
	LeaveType string    `json:"leaveType"`
	FromDate  string    `json:"fromDate"`
	ToDate    string    `json:"toDate"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type SalaryHistory struct {
	MonthYear string          `json:"monthYear"`
	Gross     decimal.Decimal `json:"gross"`
	Net       decimal.Decimal `json:"net"`
	Status    string          `json:"status"`
}

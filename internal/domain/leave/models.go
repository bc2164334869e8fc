package leave

import "time"

const (
	TypeCL = "CL"
	TypePL = "PL"
	TypeSL = "SL"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

const dayLayout = "2006-01-02"

// Balance counts whole leave days; every approval moves exactly one day.
type Balance struct {
	EmployeeID string `json:"employeeId"`
	Year       int    `json:"year"`
	CL         int    `json:"cl"`
	PL         int    `json:"pl"`
	SL         int    `json:"sl"`
	CLTaken    int    `json:"clTaken"`
	PLTaken    int    `json:"plTaken"`
	SLTaken    int    `json:"slTaken"`
}

type Transaction struct {
	ID         int64      `json:"id"`
	EmployeeID string     `json:"employeeId"`
	FullName   string     `json:"fullName,omitempty"`
	LeaveType  string     `json:"leaveType"`
	FromDate   string     `json:"fromDate"`
	FromTime   string     `json:"fromTime"`
	ToDate     string     `json:"toDate"`
	ToTime     string     `json:"toTime"`
	Days       float64    `json:"days"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	ReviewedBy *string    `json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type ApplyInput struct {
	EmployeeID string
	LeaveType  string
	FromDate   time.Time
	FromTime   string
	ToDate     time.Time
	ToTime     string
	Reason     string
}

// Decision is a reviewer's action on a pending transaction. LeaveType, when
// set, corrects the type recorded by the applicant.
type Decision struct {
	TransactionID int64
	Action        string
	LeaveType     string
	ReviewerID    string
}

// Span is an approved leave's inclusive date range.
type Span struct {
	From time.Time
	To   time.Time
}

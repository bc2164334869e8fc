package notifications

import "errors"

const (
	TypeLeaveApproved    = "leave_approved"
	TypeLeaveRejected    = "leave_rejected"
	TypePayslipPublished = "payslip_published"
)

var ErrNotFound = errors.New("notification not found")

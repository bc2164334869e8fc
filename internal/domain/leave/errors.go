package leave

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrEmployeeInactive    = errors.New("employee is inactive")
	ErrPendingExists       = errors.New("pending leave request exists")
	ErrApprovedOverlap     = errors.New("approved leave overlaps the requested range")
	ErrInvalidLeaveType    = errors.New("invalid leave type")
	ErrInvalidAction       = errors.New("invalid action")
	ErrInvalidRange        = errors.New("to date is before from date")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyProcessed    = errors.New("leave request already processed")
	ErrBalanceNotFound     = errors.New("leave master record not found")
	ErrAlreadyInitialized  = errors.New("leave already initialized for this year")
	ErrNoHistory           = errors.New("no leave history found")
)

package attendance

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBatch          = errors.New("attendance list is empty")
	ErrInvalidStatus       = errors.New("status must be Present or Absent")
	ErrDuplicateEmployee   = errors.New("employee listed more than once")
	ErrCheckOutBeforeIn    = errors.New("check-out is before check-in")
	ErrMissingEmployeeID   = errors.New("employee id is required")
	ErrEmployeeUnavailable = errors.New("employee not found or inactive")
)

// EntryError ties a batch validation failure to the offending employee.
type EntryError struct {
	Index      int
	EmployeeID string
	Err        error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("attendance[%d] %s: %v", e.Index, e.EmployeeID, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

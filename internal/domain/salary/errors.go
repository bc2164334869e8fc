package salary

import "errors"

var (
	ErrInvalidMonth        = errors.New("month must be YYYY-MM or MM-YYYY")
	ErrNegativeAmount      = errors.New("salary amounts must be non-negative")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrStructureNotFound   = errors.New("salary structure not found")
	ErrNoEligibleEmployees = errors.New("no active employees with salary structure found")
	ErrNoHistory           = errors.New("no salary history found")
	ErrTransactionNotFound = errors.New("salary transaction not found")
)

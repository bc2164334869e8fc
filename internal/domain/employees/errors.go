package employees

import "errors"

var (
	ErrNotFound         = errors.New("employee not found")
	ErrDuplicate        = errors.New("employee id or email already exists")
	ErrInvalidReference = errors.New("department or designation does not exist")
)

package lookups

import "errors"

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("record already exists")
	ErrInvalidReference = errors.New("referenced record does not exist")
	ErrInUse            = errors.New("record is referenced by other data")
	ErrNegativeAmount   = errors.New("amount must be non-negative")
	ErrInvalidSlabRange = errors.New("to salary must be greater than from salary")
	ErrInvalidRate      = errors.New("percentage must be between 0 and 100")
)

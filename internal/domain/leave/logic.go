package leave

import (
	"errors"
	"time"
)

// Yearly entitlements for a fresh balance row.
const (
	DefaultCL = 8
	DefaultPL = 24
	DefaultSL = 5
)

func ValidType(leaveType string) bool {
	_, _, ok := balanceColumns(leaveType)
	return ok
}

func ValidAction(action string) bool {
	return action == StatusApproved || action == StatusRejected
}

// balanceColumns maps a leave type to its remaining and taken columns. The
// column names come from this fixed table only, never from input.
func balanceColumns(leaveType string) (remaining, taken string, ok bool) {
	switch leaveType {
	case TypeCL:
		return "cl_remaining", "cl_taken", true
	case TypePL:
		return "pl_remaining", "pl_taken", true
	case TypeSL:
		return "sl_remaining", "sl_taken", true
	}
	return "", "", false
}

// OverlapsApproved reports whether the requested range hits an approved span:
// the span contains the requested start, or it contains the requested end.
// A span lying strictly inside the requested range matches neither test and
// is not reported.
func OverlapsApproved(approved []Span, from, to time.Time) bool {
	for _, span := range approved {
		containsFrom := !span.From.After(from) && !span.To.Before(from)
		containsTo := !span.From.After(to) && !span.To.Before(to)
		if containsFrom || containsTo {
			return true
		}
	}
	return false
}

// CalculateDays returns inclusive day count between start and end.
func CalculateDays(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, errors.New("end date before start date")
	}
	return end.Sub(start).Hours()/24 + 1, nil
}

package attendance

import "strings"

func ValidStatus(status string) bool {
	return status == StatusPresent || status == StatusAbsent
}

// ValidateBatch checks a mark request before anything is written.
func ValidateBatch(entries []Entry) error {
	if len(entries) == 0 {
		return ErrEmptyBatch
	}
	seen := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		id := strings.TrimSpace(entry.EmployeeID)
		if id == "" {
			return &EntryError{Index: i, Err: ErrMissingEmployeeID}
		}
		if !ValidStatus(entry.Status) {
			return &EntryError{Index: i, EmployeeID: id, Err: ErrInvalidStatus}
		}
		if _, dup := seen[id]; dup {
			return &EntryError{Index: i, EmployeeID: id, Err: ErrDuplicateEmployee}
		}
		seen[id] = struct{}{}
		if entry.CheckIn != nil && entry.CheckOut != nil && entry.CheckOut.Before(*entry.CheckIn) {
			return &EntryError{Index: i, EmployeeID: id, Err: ErrCheckOutBeforeIn}
		}
	}
	return nil
}

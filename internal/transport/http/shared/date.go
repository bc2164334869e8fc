package shared

import "time"

const DayLayout = "2006-01-02"

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(DayLayout, value)
}

// ParseDay accepts only YYYY-MM-DD and returns midnight UTC.
func ParseDay(value string) (time.Time, error) {
	return time.Parse(DayLayout, value)
}

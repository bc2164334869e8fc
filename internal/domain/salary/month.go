package salary

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	canonicalMonth = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	legacyMonth    = regexp.MustCompile(`^(\d{2})-(\d{4})$`)
)

// NormalizeMonth accepts YYYY-MM or MM-YYYY and returns YYYY-MM.
func NormalizeMonth(token string) (string, error) {
	var year, month string
	if m := canonicalMonth.FindStringSubmatch(token); m != nil {
		year, month = m[1], m[2]
	} else if m := legacyMonth.FindStringSubmatch(token); m != nil {
		year, month = m[2], m[1]
	} else {
		return "", ErrInvalidMonth
	}
	n, err := strconv.Atoi(month)
	if err != nil || n < 1 || n > 12 {
		return "", ErrInvalidMonth
	}
	return fmt.Sprintf("%s-%s", year, month), nil
}

func MonthOf(t time.Time) string {
	return t.Format("2006-01")
}

// MonthStart parses a canonical token into the first day of that month.
func MonthStart(monthYear string) (time.Time, error) {
	normalized, err := NormalizeMonth(monthYear)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse("2006-01", normalized)
}

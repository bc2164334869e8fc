package employees

import "regexp"

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,32}$`)

// ValidID reports whether id can be used as an employee id and login name.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

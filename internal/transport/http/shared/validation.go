package shared

import (
	"cmp"
	"net/http"
	"slices"
	"strings"
	"time"

	"paydesk/internal/transport/http/api"
)

const (
	defaultValidationMessage = "payload validation failed"
	invalidDayReason         = "must be a valid date in YYYY-MM-DD format"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator collects field issues and answers them as one 400 validation_error.
type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Add(field, reason string) {
	reason = strings.TrimSpace(reason)
	if v == nil || reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{Field: strings.TrimSpace(field), Reason: reason})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// Date accepts RFC3339 or YYYY-MM-DD; blank is an issue.
func (v *Validator) Date(field, raw string) (time.Time, bool) {
	parsed, err := ParseDate(strings.TrimSpace(raw))
	if err != nil || parsed.IsZero() {
		v.Add(field, invalidDayReason)
		return time.Time{}, false
	}
	return parsed, true
}

// Day accepts only YYYY-MM-DD.
func (v *Validator) Day(field, raw string) (time.Time, bool) {
	parsed, err := ParseDay(strings.TrimSpace(raw))
	if err != nil {
		v.Add(field, invalidDayReason)
		return time.Time{}, false
	}
	return parsed, true
}

// DateOrder flags both fields when end falls before start. Zero values are skipped.
func (v *Validator) DateOrder(startField string, start time.Time, endField string, end time.Time) {
	if start.IsZero() || end.IsZero() || !end.Before(start) {
		return
	}
	v.Add(startField, "must be on or before "+endField)
	v.Add(endField, "must be on or after "+startField)
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

// Issues returns a copy sorted by field then reason.
func (v *Validator) Issues() []ValidationIssue {
	if !v.HasIssues() {
		return nil
	}
	out := slices.Clone(v.issues)
	slices.SortStableFunc(out, func(a, b ValidationIssue) int {
		if c := cmp.Compare(a.Field, b.Field); c != 0 {
			return c
		}
		return cmp.Compare(a.Reason, b.Reason)
	})
	return out
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	return v.RejectWithMessage(w, requestID, defaultValidationMessage)
}

// RejectWithMessage is Reject with a caller supplied summary message.
func (v *Validator) RejectWithMessage(w http.ResponseWriter, requestID, message string) bool {
	if !v.HasIssues() {
		return false
	}
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", message, map[string]any{"fields": v.Issues()}, requestID)
	return true
}

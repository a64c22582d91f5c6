package validate

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	fieldValidator = validator.New()
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateEmail checks an email address in two stages: a structural check
// followed by a stricter pattern match. The returned message is empty when
// the address is valid.
func ValidateEmail(email string) (bool, string) {
	if email == "" {
		return false, "email required"
	}
	if err := fieldValidator.Var(email, "email"); err != nil {
		return false, "invalid email format"
	}
	if !emailPattern.MatchString(email) {
		return false, "invalid email format"
	}
	return true, ""
}

// ValidateDateRange checks that start precedes end and that the range does
// not exceed two years. Timestamps are RFC 3339.
func ValidateDateRange(start, end string) (bool, string) {
	from, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return false, "invalid date format: " + err.Error()
	}
	to, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return false, "invalid date format: " + err.Error()
	}
	if !from.Before(to) {
		return false, "start date must be before end date"
	}
	if to.Sub(from) > 730*24*time.Hour {
		return false, "date range cannot exceed 2 years"
	}
	return true, ""
}

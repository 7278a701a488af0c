package calc

import (
	"strings"
	"time"
)

// dateLayouts are the date-of-birth formats accepted from forms and imports.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006", // UK day-first
	time.RFC3339,
}

// ParseDate parses a date of birth in any accepted layout.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AgeOn returns the age in whole years on the given date.
func AgeOn(dob, asOf time.Time) int {
	age := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() || (asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		age--
	}
	return age
}

// YearsToTarget returns the whole years from asOf until the person reaches
// targetAge, or 0 if they already have. An unparseable date of birth, or one
// after asOf, yields nil.
func YearsToTarget(dob string, targetAge int, asOf time.Time) *int {
	born, ok := ParseDate(dob)
	if !ok || born.After(asOf) {
		return nil
	}
	years := targetAge - AgeOn(born, asOf)
	if years < 0 {
		years = 0
	}
	return &years
}

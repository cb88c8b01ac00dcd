// Package planning computes chantier date ranges and the monthly calendar
// shown on the planning view.
package planning

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var firstNumber = regexp.MustCompile(`\d+`)

// MaxDurationDays caps every parsed duration (about a century).
const MaxDurationDays = 36500

// ParseDuration converts a free-text duration such as "2 semaines",
// "3 mois" or "10 jours" into a number of days. Weeks count 7 days and
// months 30. Text without a recognised unit is read as days, and text
// without a number counts as one unit. The result never exceeds
// MaxDurationDays.
func ParseDuration(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))

	n := 1
	if m := firstNumber.FindString(s); m != "" {
		v, err := strconv.Atoi(m)
		switch {
		case err == nil:
			n = min(v, MaxDurationDays)
		case errors.Is(err, strconv.ErrRange):
			n = MaxDurationDays
		}
	}

	switch {
	case strings.Contains(s, "semaine"), strings.Contains(s, "sem"):
		n *= 7
	case strings.Contains(s, "mois"):
		n *= 30
	}
	// "jour", "j" and bare numbers are already days
	return min(n, MaxDurationDays)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// ParseDate reads a chantier start date and truncates it to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndDate returns start plus the parsed duration in days.
func EndDate(start time.Time, duration string) time.Time {
	return Day(start).AddDate(0, 0, ParseDuration(duration))
}

// Package util provides shared utilities: ISO date handling, calendar
// distance, email parsing, and error collection helpers.
package util

import (
	"fmt"
	"strings"
	"time"
)

// ─── Date Handling ────────────────────────────────────────────────────────────

const dateLayout = "2006-01-02"

// Today returns the wall-clock date in the local timezone as YYYY-MM-DD.
func Today() string {
	return time.Now().Format(dateLayout)
}

// FormatDate formats a time.Time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a time.Time (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DaysBetween returns the whole calendar days from a to b (b - a).
// Negative when b is earlier than a. Malformed dates count as zero distance.
func DaysBetween(a, b string) int {
	ta, err := ParseDate(a)
	if err != nil {
		return 0
	}
	tb, err := ParseDate(b)
	if err != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// ─── Identity Helpers ─────────────────────────────────────────────────────────

// EmailLocalPart returns the part of an email address before the '@'.
// Used to derive a fallback username from auth claims.
func EmailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

// ─── Error Helpers ────────────────────────────────────────────────────────────

// MultiError collects multiple errors and presents them as one.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

func (m *MultiError) Error() string {
	msgs := make([]string, len(m.Errors))
	for i, e := range m.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

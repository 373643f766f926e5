// Package week resolves Monday-aligned calendar week windows.
package week

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/ufotracker/internal/domain"
)

// DateLayout is the ISO-8601 calendar date layout accepted as a reference date.
const DateLayout = "2006-01-02"

// Window is a half-open UTC interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// LastDay returns the last calendar day inside the window.
func (w Window) LastDay() time.Time { return w.End.AddDate(0, 0, -1) }

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ParseReference parses a YYYY-MM-DD reference date as UTC midnight.
func ParseReference(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", domain.ErrInvalidDate, s)
	}
	return t, nil
}

// Canonical renders a reference date in its canonical ISO form.
func Canonical(ref time.Time) string {
	return ref.Format(DateLayout)
}

// MondayOf returns UTC midnight of the Monday on or before ref's calendar date.
func MondayOf(ref time.Time) time.Time {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	// Sunday is 0; shift so Monday is 0.
	back := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -back)
}

// PreviousWeek returns the full week before the week containing ref.
func PreviousWeek(ref time.Time) Window {
	monday := MondayOf(ref)
	return Window{Start: monday.AddDate(0, 0, -7), End: monday}
}

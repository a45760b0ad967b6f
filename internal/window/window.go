// Package window computes the request window for a target date.
package window

import (
	"errors"
	"fmt"
	"time"
)

const (
	// WireLayout is the timestamp format used in outbound request parameters.
	WireLayout = "2006-01-02T15:04:05Z"

	dateLayout = "2006-01-02"

	// Span is the length of every request window.
	Span = 48 * time.Hour
)

// ErrInvalidDate is returned when the target date is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")

// Window is a UTC [Start, End] interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// ForDate returns the window starting at local midnight of date in loc.
// An empty date or "today" selects the date of now in loc.
func ForDate(date string, now time.Time, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}

	var day time.Time
	switch date {
	case "", "today":
		day = now.In(loc)
	default:
		parsed, err := time.ParseInLocation(dateLayout, date, loc)
		if err != nil {
			return Window{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
		day = parsed
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc).UTC()
	return Window{Start: start, End: start.Add(Span)}, nil
}

// FormatWire converts t to UTC and formats it in WireLayout.
func FormatWire(t time.Time) string {
	return t.UTC().Format(WireLayout)
}

func (w Window) WireStart() string { return FormatWire(w.Start) }

func (w Window) WireEnd() string { return FormatWire(w.End) }

// Interval returns "start/end" in wire format.
func (w Window) Interval() string {
	return w.WireStart() + "/" + w.WireEnd()
}

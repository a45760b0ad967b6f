package fetcher

import (
	"slices"
	"time"
)

// TimePoint is a single value of a series starting at Time.
type TimePoint struct {
	Time  time.Time
	Value float64
}

// Series is a list of points ordered by time.
type Series []TimePoint

// Sort orders the series ascending by time. Points sharing a timestamp
// keep their relative order.
func (s Series) Sort() {
	slices.SortStableFunc(s, func(a, b TimePoint) int {
		return a.Time.Compare(b.Time)
	})
}

// IsSorted reports whether the series is in ascending time order.
func (s Series) IsSorted() bool {
	return slices.IsSortedFunc(s, func(a, b TimePoint) int {
		return a.Time.Compare(b.Time)
	})
}

// First returns the earliest point. ok is false for an empty series.
func (s Series) First() (p TimePoint, ok bool) {
	if len(s) == 0 {
		return TimePoint{}, false
	}
	return s[0], true
}

// Last returns the latest point. ok is false for an empty series.
func (s Series) Last() (p TimePoint, ok bool) {
	if len(s) == 0 {
		return TimePoint{}, false
	}
	return s[len(s)-1], true
}

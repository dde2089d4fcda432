package model

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when a range ends before it starts.
var ErrInvalidRange = errors.New("date range ends before it starts")

// DateRange is an inclusive [From, To] interval.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range, including both ends.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Validate checks that the range is well formed.
func (r DateRange) Validate() error {
	if r.To.Before(r.From) {
		return ErrInvalidRange
	}
	return nil
}

// YearRange returns the range covering the calendar year of t in t's location.
func YearRange(t time.Time) DateRange {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return DateRange{
		From: start,
		To:   start.AddDate(1, 0, 0).Add(-time.Millisecond),
	}
}

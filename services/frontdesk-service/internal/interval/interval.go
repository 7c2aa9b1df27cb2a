// Package interval holds the half-open date arithmetic every availability,
// conflict and timeline computation is built on.
package interval

import (
	"errors"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// ErrInvalidRange is returned when an end date is not strictly after its start date.
var ErrInvalidRange = errors.New("check-out must be after check-in")

// Date truncates t to its calendar date and returns it as UTC midnight.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Validate rejects empty and inverted ranges. It never swaps the bounds.
func Validate(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidRange
	}
	return nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share at least one instant.
// Touching ranges (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Clamp returns the part of [start, end) that lies within [winStart, winEnd).
// ok is false when the two ranges do not overlap.
func Clamp(start, end, winStart, winEnd time.Time) (clampedStart, clampedEnd time.Time, ok bool) {
	if !Overlaps(start, end, winStart, winEnd) {
		return time.Time{}, time.Time{}, false
	}
	clampedStart = start
	if winStart.After(clampedStart) {
		clampedStart = winStart
	}
	clampedEnd = end
	if winEnd.Before(clampedEnd) {
		clampedEnd = winEnd
	}
	return clampedStart, clampedEnd, true
}

// DurationDays counts the calendar days from start to end. Both values are
// reduced to their dates first, so the result is exact across DST shifts.
// Unix seconds are used because time.Duration saturates after about 292 years.
func DurationDays(start, end time.Time) int {
	return int((Date(end).Unix() - Date(start).Unix()) / secondsPerDay)
}

package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
)

var (
	// ErrInvalidTime is returned when a bound matches none of the accepted formats
	ErrInvalidTime = errors.New("invalid time value")

	// ErrInvertedRange is returned when start lies after end
	ErrInvertedRange = errors.New("start is after end")
)

// TimeRange restricts points to an inclusive interval.
// A zero Start or End leaves that side of the interval open.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether neither bound is set
func (r TimeRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t satisfies the range.
// A zero t carries no time and always matches.
func (r TimeRange) Contains(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// String formats the range for logging
func (r TimeRange) String() string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return "*"
		}
		return t.Format(time.RFC3339Nano)
	}
	return format(r.Start) + ".." + format(r.End)
}

// ParseTime parses YYYY-MM-DD or an RFC 3339 timestamp with offset into UTC.
// A date-only value resolves to the first nanosecond of the day, or to the
// last one when endOfDay is set.
func ParseTime(value string, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}

	d, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD or RFC 3339)", ErrInvalidTime, value)
	}

	if endOfDay {
		return d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return d, nil
}

// ParseRange builds a TimeRange from optional start and end strings
func ParseRange(start, end string) (TimeRange, error) {
	var r TimeRange

	if strings.TrimSpace(start) != "" {
		t, err := ParseTime(start, false)
		if err != nil {
			return TimeRange{}, fmt.Errorf("start: %w", err)
		}
		r.Start = t
	}

	if strings.TrimSpace(end) != "" {
		t, err := ParseTime(end, true)
		if err != nil {
			return TimeRange{}, fmt.Errorf("end: %w", err)
		}
		r.End = t
	}

	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return TimeRange{}, fmt.Errorf("%w: %s", ErrInvertedRange, r)
	}

	return r, nil
}

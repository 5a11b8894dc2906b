package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Location resolves a school timezone identifier. Empty or unknown
// identifiers fall back to UTC explicitly rather than failing; every school
// keeps a usable clock.
func Location(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}

	return loc
}

// Clock is a wall-clock time of day in minutes since midnight.
type Clock int

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ParseClock parses a 24-hour "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	const op = "timeutil.ParseClock"

	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%s: %q is not HH:MM", op, s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%s: %q has invalid hour", op, s)
	}

	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%s: %q has invalid minute", op, s)
	}

	return Clock(h*60 + m), nil
}

// MustClock is ParseClock for compile-time-known literals; panics on bad input.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Instant converts a calendar date and a school-local wall time into an
// absolute instant in the given location.
func Instant(date time.Time, clock Clock, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(clock)/60, int(clock)%60, 0, 0, loc)
}

// Overlaps reports strict interval overlap: touching boundaries do not
// overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ClockOverlaps is Overlaps over same-day wall-clock intervals.
func ClockOverlaps(aStart, aEnd, bStart, bEnd Clock) bool {
	return aStart < bEnd && bStart < aEnd
}

// TruncateToDate returns the date with zero time in the given location.
func TruncateToDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDate reports whether two times fall on the same calendar day,
// ignoring location offsets between them.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// EachDate calls fn for every calendar day from from to to inclusive.
func EachDate(from, to time.Time, loc *time.Location, fn func(d time.Time)) {
	for d := TruncateToDate(from, loc); !d.After(TruncateToDate(to, loc)); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

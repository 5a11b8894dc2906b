package schedule

import (
	"time"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/timeutil"
)

// Window is a resolved wall-clock interval on one calendar day.
type Window struct {
	Start timeutil.Clock
	End   timeutil.Clock
}

// ResolveWindow picks the active availability window covering the date's
// weekday from the fetched rows. Nil means the teacher is unavailable that
// day. At most one active row per weekday is assumed; the first active match
// wins.
func ResolveWindow(rows []models.Availability, date time.Time) *Window {
	for _, row := range rows {
		if !row.Active || row.Weekday != date.Weekday() {
			continue
		}

		start, err := timeutil.ParseClock(row.StartTime)
		if err != nil {
			continue
		}
		end, err := timeutil.ParseClock(row.EndTime)
		if err != nil {
			continue
		}

		return &Window{Start: start, End: end}
	}

	return nil
}

// Contains reports whether [start,end) fits fully inside the window.
func (w Window) Contains(start, end timeutil.Clock) bool {
	return start >= w.Start && end <= w.End
}

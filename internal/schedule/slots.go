package schedule

import (
	"time"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/timeutil"
)

// SlotSource bundles the already-fetched scheduling data for one school.
// Unavailability and Bookings are keyed by date in "2006-01-02" form.
type SlotSource struct {
	School         models.School
	Availability   []models.Availability
	Unavailability map[string][]models.Unavailability
	Bookings       map[string][]models.Booking
}

// EnumerateSlots walks every date in [from, to] and every school's
// availability window on that weekday, stepping stepMinutes at a time and
// emitting each interval of durationMinutes that fits the window and clears
// both unavailability and the teacher's existing active bookings. The result
// is eagerly materialized; callers paginate over it.
func EnumerateSlots(teacherID string, sources []SlotSource, from, to time.Time, durationMinutes, stepMinutes int) []models.Slot {
	if durationMinutes <= 0 || stepMinutes <= 0 {
		return nil
	}

	duration := timeutil.Clock(durationMinutes)
	step := timeutil.Clock(stepMinutes)

	var slots []models.Slot

	for _, src := range sources {
		loc := timeutil.Location(src.School.Timezone)

		timeutil.EachDate(from, to, loc, func(date time.Time) {
			window := ResolveWindow(src.Availability, date)
			if window == nil {
				return
			}

			key := date.Format("2006-01-02")
			blocks := src.Unavailability[key]
			booked := src.Bookings[key]

			for start := window.Start; start+duration <= window.End; start += step {
				end := start + duration

				q := ConflictQuery{
					TeacherID: teacherID,
					SchoolID:  src.School.ID,
					Date:      date,
					Start:     start,
					End:       end,
				}
				if UnavailabilityConflict(blocks, q) != nil {
					continue
				}
				if teacherBusy(booked, teacherID, date, start, end) {
					continue
				}

				slots = append(slots, models.Slot{
					TeacherID: teacherID,
					SchoolID:  src.School.ID,
					Date:      key,
					StartTime: start.String(),
					EndTime:   end.String(),
					StartsAt:  timeutil.Instant(date, start, loc),
					EndsAt:    timeutil.Instant(date, end, loc),
				})
			}
		})
	}

	return slots
}

func teacherBusy(bookings []models.Booking, teacherID string, date time.Time, start, end timeutil.Clock) bool {
	for i := range bookings {
		b := &bookings[i]
		if b.TeacherID != teacherID || !b.Status.IsActive() || !timeutil.SameDate(b.Date, date) {
			continue
		}

		bStart, err := timeutil.ParseClock(b.StartTime)
		if err != nil {
			continue
		}
		bEnd, err := timeutil.ParseClock(b.EndTime)
		if err != nil {
			continue
		}

		if timeutil.ClockOverlaps(start, end, bStart, bEnd) {
			return true
		}
	}
	return false
}

package schedule

import (
	"time"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/timeutil"
)

// ConflictQuery is the requested interval the detectors run against. All
// clock values are school-local wall times on Date.
type ConflictQuery struct {
	TeacherID       string
	StudentID       string
	SchoolID        string
	Date            time.Time
	Start           timeutil.Clock
	End             timeutil.Clock
	Kind            models.ClassKind
	MaxParticipants *int
}

// UnavailabilityConflict checks the requested interval against the teacher's
// unavailability entries for that date. Entries are unioned: any overlap
// conflicts. All-day entries block the whole date.
func UnavailabilityConflict(entries []models.Unavailability, q ConflictQuery) *Failure {
	for _, entry := range entries {
		if entry.AllDay {
			f := Failuref(ConflictUnavailability,
				"teacher is unavailable all day on %s", q.Date.Format("2006-01-02"))
			if entry.Reason != "" {
				f.Message += ": " + entry.Reason
			}
			return &f
		}

		start, err := timeutil.ParseClock(entry.StartTime)
		if err != nil {
			continue
		}
		end, err := timeutil.ParseClock(entry.EndTime)
		if err != nil {
			continue
		}

		if timeutil.ClockOverlaps(q.Start, q.End, start, end) {
			f := Failuref(ConflictUnavailability,
				"teacher is unavailable %s-%s on %s", start, end, q.Date.Format("2006-01-02"))
			if entry.Reason != "" {
				f.Message += ": " + entry.Reason
			}
			return &f
		}
	}

	return nil
}

// BookingConflicts checks the requested interval against the existing active
// bookings fetched for the teacher and the student on that date. The buffer
// widens every teacher-side comparison so back-to-back classes keep a break;
// it is always applied, never per call path. Group bookings that are exact
// merge candidates for a group request are skipped, they are handled by the
// capacity manager instead.
func BookingConflicts(existing []models.Booking, q ConflictQuery, bufferMinutes int) []Failure {
	var failures []Failure

	for i := range existing {
		b := &existing[i]
		if !b.Status.IsActive() || !timeutil.SameDate(b.Date, q.Date) {
			continue
		}
		if IsMergeCandidate(b, q) {
			continue
		}

		start, err := timeutil.ParseClock(b.StartTime)
		if err != nil {
			continue
		}
		end, err := timeutil.ParseClock(b.EndTime)
		if err != nil {
			continue
		}

		if b.TeacherID == q.TeacherID {
			buffered := timeutil.Clock(bufferMinutes)
			if timeutil.ClockOverlaps(q.Start-buffered, q.End+buffered, start, end) {
				failures = append(failures, Failuref(ConflictBooking,
					"teacher already has a class %s-%s on %s", start, end, q.Date.Format("2006-01-02")))
				continue
			}
		}

		if b.HasParticipant(q.StudentID) && timeutil.ClockOverlaps(q.Start, q.End, start, end) {
			failures = append(failures, Failuref(ConflictBooking,
				"student already has a class %s-%s on %s", start, end, q.Date.Format("2006-01-02")))
		}
	}

	return failures
}

// IsMergeCandidate reports whether the existing group booking matches a group
// request exactly (teacher, school, date, times, capacity) and is therefore
// joinable rather than conflicting.
func IsMergeCandidate(b *models.Booking, q ConflictQuery) bool {
	if q.Kind != models.ClassGroup || b.Kind != models.ClassGroup {
		return false
	}
	if b.TeacherID != q.TeacherID || b.SchoolID != q.SchoolID || !timeutil.SameDate(b.Date, q.Date) {
		return false
	}
	if b.StartTime != q.Start.String() || b.EndTime != q.End.String() {
		return false
	}
	if b.MaxParticipants == nil || q.MaxParticipants == nil {
		return false
	}
	return *b.MaxParticipants == *q.MaxParticipants
}

// GroupCapacityConflict checks whether the student can join the matched
// group booking.
func GroupCapacityConflict(b *models.Booking, studentID string) *Failure {
	if b.HasParticipant(studentID) {
		f := Failuref(ConflictAlreadyEnrolled, "student is already enrolled in this class")
		return &f
	}
	if b.MaxParticipants != nil && b.ParticipantCount() >= *b.MaxParticipants {
		f := Failuref(ConflictAtCapacity,
			"class is full (%d/%d participants)", b.ParticipantCount(), *b.MaxParticipants)
		return &f
	}
	return nil
}

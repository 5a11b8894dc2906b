package schedule

import (
	"math"
	"time"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/timeutil"
)

// Policy carries the configurable scheduling rules. One value is built from
// config at startup and applied on every call path.
type Policy struct {
	MinimumNoticeHours          int
	CancellationDeadlineHours   int
	BufferMinutes               int
	SlotStepMinutes             int
	MaxDurationMinutes          int
	MaxActualDurationMinutes    int
	MaxBookingsPerStudentPerDay int // 0 disables the limit
	AdminExemptFromDeadline     bool
}

// DefaultPolicy mirrors the config defaults.
func DefaultPolicy() Policy {
	return Policy{
		MinimumNoticeHours:        24,
		CancellationDeadlineHours: 24,
		SlotStepMinutes:           15,
		MaxDurationMinutes:        480,
		MaxActualDurationMinutes:  720,
	}
}

// ValidateDate rejects dates strictly before today in the school's locale.
func ValidateDate(date, now time.Time, loc *time.Location) *Failure {
	today := timeutil.TruncateToDate(now.In(loc), loc)
	day := timeutil.TruncateToDate(date, loc)
	if day.Before(today) {
		f := Failuref(FailPastDate, "date %s is in the past", date.Format("2006-01-02"))
		return &f
	}
	return nil
}

// ValidateClock rejects strings that are not 24-hour HH:MM.
func ValidateClock(field, value string) *Failure {
	if _, err := timeutil.ParseClock(value); err != nil {
		f := Failuref(FailBadTime, "%s %q is not a valid HH:MM time", field, value)
		return &f
	}
	return nil
}

// ValidateDuration bounds the scheduled duration to (0, max] minutes.
func ValidateDuration(minutes, maxMinutes int) *Failure {
	if minutes <= 0 {
		f := Failuref(FailBadDuration, "duration must be a positive number of minutes, got %d", minutes)
		return &f
	}
	if minutes > maxMinutes {
		f := Failuref(FailBadDuration, "duration %d minutes exceeds the maximum of %d", minutes, maxMinutes)
		return &f
	}
	return nil
}

// ValidateKind enforces the kind/capacity invariants: individual classes
// carry no capacity, group classes need one of at least 1.
func ValidateKind(kind models.ClassKind, maxParticipants *int) *Failure {
	switch kind {
	case models.ClassIndividual:
		if maxParticipants != nil {
			f := Failuref(FailKindMismatch, "individual classes do not take max_participants")
			return &f
		}
	case models.ClassGroup:
		if maxParticipants == nil || *maxParticipants < 1 {
			f := Failuref(FailKindMismatch, "group classes need max_participants of at least 1")
			return &f
		}
	default:
		f := Failuref(FailKindMismatch, "unknown class kind %q", kind)
		return &f
	}
	return nil
}

// ValidateMinimumNotice requires the start instant to be at least noticeHours
// ahead of now. The failure names the exact additional hours needed.
func ValidateMinimumNotice(startsAt, now time.Time, noticeHours int) *Failure {
	required := now.Add(time.Duration(noticeHours) * time.Hour)
	if !startsAt.Before(required) {
		return nil
	}

	short := math.Ceil(required.Sub(startsAt).Hours())
	f := Failuref(FailMinimumNotice,
		"bookings need at least %d hours notice; this one is %.0f hours short", noticeHours, short)
	return &f
}

// LimitRule is a pluggable cap on active bookings; it sees the student's
// active bookings already fetched for the requested date.
type LimitRule func(existing []models.Booking) *Failure

// MaxPerDay caps active bookings per student per day. A limit of 0 disables
// the rule.
func MaxPerDay(limit int) LimitRule {
	return func(existing []models.Booking) *Failure {
		if limit <= 0 {
			return nil
		}

		active := 0
		for i := range existing {
			if existing[i].Status.IsActive() {
				active++
			}
		}
		if active >= limit {
			f := Failuref(FailBookingLimit,
				"student already has %d active bookings that day (limit %d)", active, limit)
			return &f
		}
		return nil
	}
}

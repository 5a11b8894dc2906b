package schedule

import (
	"time"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
)

// CanCancelWithinDeadline reports whether a cancellation is still allowed:
// never for terminal bookings, never once the start instant has passed, and
// otherwise only while now is more than deadlineHours before the start.
func CanCancelWithinDeadline(b *models.Booking, startsAt, now time.Time, deadlineHours int) bool {
	if b.Status.IsTerminal() {
		return false
	}
	if !now.Before(startsAt) {
		return false
	}
	deadline := startsAt.Add(-time.Duration(deadlineHours) * time.Hour)
	return now.Before(deadline)
}

// RemainingHours returns the non-negative hours left until the cancellation
// deadline, 0 if the deadline has passed.
func RemainingHours(startsAt, now time.Time, deadlineHours int) float64 {
	deadline := startsAt.Add(-time.Duration(deadlineHours) * time.Hour)
	remaining := deadline.Sub(now).Hours()
	if remaining < 0 {
		return 0
	}
	return remaining
}

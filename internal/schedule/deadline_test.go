package schedule

import (
	"testing"
	"time"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
)

func TestCanCancelWithinDeadline(t *testing.T) {
	startsAt := time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)
	active := &models.Booking{Status: models.BookingConfirmed}

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"two days out", startsAt.Add(-48 * time.Hour), true},
		{"just before the deadline", startsAt.Add(-25 * time.Hour), true},
		{"at the deadline", startsAt.Add(-24 * time.Hour), false},
		{"inside the deadline", startsAt.Add(-2 * time.Hour), false},
		{"already started", startsAt, false},
		{"after the class", startsAt.Add(2 * time.Hour), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanCancelWithinDeadline(active, startsAt, tc.now, 24); got != tc.want {
				t.Errorf("CanCancelWithinDeadline = %v, want %v", got, tc.want)
			}
		})
	}

	terminal := &models.Booking{Status: models.BookingCancelled}
	if CanCancelWithinDeadline(terminal, startsAt, startsAt.Add(-48*time.Hour), 24) {
		t.Error("terminal booking must never be cancellable")
	}
}

func TestRemainingHours(t *testing.T) {
	startsAt := time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)

	if got := RemainingHours(startsAt, startsAt.Add(-48*time.Hour), 24); got != 24 {
		t.Errorf("RemainingHours = %v, want 24", got)
	}
	if got := RemainingHours(startsAt, startsAt.Add(-12*time.Hour), 24); got != 0 {
		t.Errorf("past the deadline should be 0, got %v", got)
	}
	if got := RemainingHours(startsAt, startsAt.Add(time.Hour), 24); got != 0 {
		t.Errorf("after start should be 0, got %v", got)
	}
}

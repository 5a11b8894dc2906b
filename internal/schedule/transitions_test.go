package schedule

import (
	"strings"
	"testing"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
)

func TestCheckTransition(t *testing.T) {
	legal := []struct {
		from, to models.BookingStatus
	}{
		{models.BookingScheduled, models.BookingConfirmed},
		{models.BookingScheduled, models.BookingCancelled},
		{models.BookingScheduled, models.BookingRejected},
		{models.BookingConfirmed, models.BookingCancelled},
		{models.BookingConfirmed, models.BookingCompleted},
		{models.BookingConfirmed, models.BookingNoShow},
	}

	for _, tc := range legal {
		if err := CheckTransition(tc.from, tc.to); err != nil {
			t.Errorf("%s -> %s should be legal: %v", tc.from, tc.to, err)
		}
	}

	all := []models.BookingStatus{
		models.BookingScheduled, models.BookingConfirmed, models.BookingCompleted,
		models.BookingCancelled, models.BookingNoShow, models.BookingRejected,
	}

	isLegal := func(from, to models.BookingStatus) bool {
		for _, tc := range legal {
			if tc.from == from && tc.to == to {
				return true
			}
		}
		return false
	}

	for _, from := range all {
		for _, to := range all {
			err := CheckTransition(from, to)
			if isLegal(from, to) {
				continue
			}
			if err == nil {
				t.Errorf("%s -> %s should be illegal", from, to)
				continue
			}
			if from.IsTerminal() && !err.Terminal {
				t.Errorf("%s -> %s: error should flag the terminal source", from, to)
			}
		}
	}
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	terminal := []models.BookingStatus{
		models.BookingCompleted, models.BookingCancelled,
		models.BookingNoShow, models.BookingRejected,
	}
	targets := []models.BookingStatus{
		models.BookingScheduled, models.BookingConfirmed, models.BookingCompleted,
		models.BookingCancelled, models.BookingNoShow, models.BookingRejected,
	}

	for _, from := range terminal {
		for _, to := range targets {
			err := CheckTransition(from, to)
			if err == nil {
				t.Errorf("terminal %s must not transition to %s", from, to)
				continue
			}
			if !strings.Contains(err.Error(), "final") {
				t.Errorf("error should say the status is final, got %q", err.Error())
			}
		}
	}
}

package schedule

import (
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
)

// transitions is the legal lifecycle graph. Terminal statuses have no entry.
var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingScheduled: {
		models.BookingConfirmed,
		models.BookingCancelled,
		models.BookingRejected,
	},
	models.BookingConfirmed: {
		models.BookingCancelled,
		models.BookingCompleted,
		models.BookingNoShow,
	},
}

// CheckTransition validates a status change against the lifecycle graph.
func CheckTransition(from, to models.BookingStatus) *TransitionError {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return &TransitionError{
		From:     string(from),
		To:       string(to),
		Terminal: from.IsTerminal(),
	}
}

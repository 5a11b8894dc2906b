package schedule

import (
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
)

// FindJoinable scans existing bookings for the first active group class that
// matches the query exactly and still has room for the student. It never
// creates anything.
func FindJoinable(existing []models.Booking, q ConflictQuery) *models.Booking {
	for i := range existing {
		b := &existing[i]
		if !b.Status.IsActive() || !IsMergeCandidate(b, q) {
			continue
		}
		if GroupCapacityConflict(b, q.StudentID) == nil {
			return b
		}
	}
	return nil
}

// Join appends the student to the group booking after re-checking capacity.
func Join(b *models.Booking, studentID string) *Failure {
	if f := GroupCapacityConflict(b, studentID); f != nil {
		return f
	}
	b.Participants = append(b.Participants, studentID)
	return nil
}

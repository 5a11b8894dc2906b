package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/timeutil"
)

var monday = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func query(start, end string) ConflictQuery {
	return ConflictQuery{
		TeacherID: "t1",
		StudentID: "s1",
		SchoolID:  "sch1",
		Date:      monday,
		Start:     timeutil.MustClock(start),
		End:       timeutil.MustClock(end),
		Kind:      models.ClassIndividual,
	}
}

func booking(teacherID, studentID, start, end string, status models.BookingStatus) models.Booking {
	return models.Booking{
		ID:        "b-" + teacherID + "-" + start,
		TeacherID: teacherID,
		StudentID: studentID,
		SchoolID:  "sch1",
		Date:      monday,
		StartTime: start,
		EndTime:   end,
		Kind:      models.ClassIndividual,
		Status:    status,
	}
}

func TestUnavailabilityConflict(t *testing.T) {
	entries := []models.Unavailability{
		{TeacherID: "t1", Date: monday, StartTime: "12:00", EndTime: "13:00", Reason: "lunch"},
	}

	if f := UnavailabilityConflict(entries, query("12:30", "13:30")); f == nil {
		t.Fatal("expected conflict for overlapping window")
	} else if f.Code != ConflictUnavailability {
		t.Errorf("code = %s, want %s", f.Code, ConflictUnavailability)
	} else if !strings.Contains(f.Message, "lunch") {
		t.Errorf("message should carry the reason, got %q", f.Message)
	}

	if f := UnavailabilityConflict(entries, query("13:00", "14:00")); f != nil {
		t.Errorf("touching boundary must not conflict, got %v", f)
	}

	allDay := []models.Unavailability{{TeacherID: "t1", Date: monday, AllDay: true}}
	if f := UnavailabilityConflict(allDay, query("09:00", "10:00")); f == nil {
		t.Error("expected conflict for all-day entry")
	}
}

func TestBookingConflictsTeacherOverlap(t *testing.T) {
	existing := []models.Booking{
		booking("t1", "other", "09:00", "10:00", models.BookingScheduled),
	}

	failures := BookingConflicts(existing, query("09:30", "10:30"), 0)
	if len(failures) != 1 {
		t.Fatalf("got %d failures, want 1: %v", len(failures), failures)
	}
	if failures[0].Code != ConflictBooking {
		t.Errorf("code = %s, want %s", failures[0].Code, ConflictBooking)
	}
	if !strings.Contains(failures[0].Message, "09:00-10:00") {
		t.Errorf("message should name the overlapping class, got %q", failures[0].Message)
	}
}

func TestBookingConflictsBackToBack(t *testing.T) {
	existing := []models.Booking{
		booking("t1", "other", "09:00", "10:00", models.BookingConfirmed),
	}

	// Zero buffer: back-to-back is allowed.
	if failures := BookingConflicts(existing, query("10:00", "11:00"), 0); len(failures) != 0 {
		t.Errorf("zero buffer should allow back-to-back, got %v", failures)
	}

	// A buffer turns the same request into a conflict.
	if failures := BookingConflicts(existing, query("10:00", "11:00"), 15); len(failures) != 1 {
		t.Errorf("15 minute buffer should conflict, got %v", failures)
	}
}

func TestBookingConflictsStudentOverlap(t *testing.T) {
	existing := []models.Booking{
		booking("t2", "s1", "09:00", "10:00", models.BookingScheduled),
	}

	failures := BookingConflicts(existing, query("09:00", "10:00"), 0)
	if len(failures) != 1 {
		t.Fatalf("got %d failures, want 1: %v", len(failures), failures)
	}
	if !strings.Contains(failures[0].Message, "student") {
		t.Errorf("message should name the student side, got %q", failures[0].Message)
	}
}

func TestBookingConflictsIgnoresTerminalBookings(t *testing.T) {
	existing := []models.Booking{
		booking("t1", "other", "09:00", "10:00", models.BookingCancelled),
		booking("t1", "other", "09:00", "10:00", models.BookingRejected),
	}

	if failures := BookingConflicts(existing, query("09:00", "10:00"), 0); len(failures) != 0 {
		t.Errorf("terminal bookings must not conflict, got %v", failures)
	}
}

func TestBookingConflictsSkipsMergeCandidates(t *testing.T) {
	max := 5
	existing := models.Booking{
		ID:              "g1",
		TeacherID:       "t1",
		StudentID:       "other",
		SchoolID:        "sch1",
		Date:            monday,
		StartTime:       "09:00",
		EndTime:         "10:00",
		Kind:            models.ClassGroup,
		MaxParticipants: &max,
		Status:          models.BookingScheduled,
	}

	q := query("09:00", "10:00")
	q.Kind = models.ClassGroup
	q.MaxParticipants = &max

	if failures := BookingConflicts([]models.Booking{existing}, q, 0); len(failures) != 0 {
		t.Errorf("exact group match is a merge candidate, not a conflict: %v", failures)
	}

	// Different capacity at the same slot conflicts.
	other := 3
	q.MaxParticipants = &other
	if failures := BookingConflicts([]models.Booking{existing}, q, 0); len(failures) != 1 {
		t.Errorf("capacity mismatch should conflict, got %v", failures)
	}
}

func TestGroupCapacityConflict(t *testing.T) {
	max := 2
	group := models.Booking{
		ID:              "g1",
		TeacherID:       "t1",
		StudentID:       "s1",
		Participants:    []string{"s2"},
		Date:            monday,
		StartTime:       "09:00",
		EndTime:         "10:00",
		Kind:            models.ClassGroup,
		MaxParticipants: &max,
		Status:          models.BookingScheduled,
	}

	if f := GroupCapacityConflict(&group, "s1"); f == nil || f.Code != ConflictAlreadyEnrolled {
		t.Errorf("primary student should be already enrolled, got %v", f)
	}
	if f := GroupCapacityConflict(&group, "s2"); f == nil || f.Code != ConflictAlreadyEnrolled {
		t.Errorf("participant should be already enrolled, got %v", f)
	}
	if f := GroupCapacityConflict(&group, "s3"); f == nil || f.Code != ConflictAtCapacity {
		t.Errorf("full class should be at capacity, got %v", f)
	}

	max3 := 3
	group.MaxParticipants = &max3
	if f := GroupCapacityConflict(&group, "s3"); f != nil {
		t.Errorf("class with headroom should accept s3, got %v", f)
	}
}

package schedule

import (
	"testing"
	"time"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/timeutil"
)

func slotSource(availability []models.Availability) SlotSource {
	return SlotSource{
		School:         models.School{ID: "sch1", Timezone: "UTC"},
		Availability:   availability,
		Unavailability: map[string][]models.Unavailability{},
		Bookings:       map[string][]models.Booking{},
	}
}

func mondayWindow(start, end string) []models.Availability {
	return []models.Availability{
		{TeacherID: "t1", SchoolID: "sch1", Weekday: time.Monday, StartTime: start, EndTime: end, Active: true},
	}
}

func TestEnumerateSlotsStepsAcrossWindow(t *testing.T) {
	src := slotSource(mondayWindow("09:00", "10:00"))

	slots := EnumerateSlots("t1", []SlotSource{src}, monday, monday, 30, 15)

	// 09:00, 09:15, 09:30 all fit a 30 minute class inside 09:00-10:00.
	want := []string{"09:00", "09:15", "09:30"}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d: %v", len(slots), len(want), slots)
	}
	for i, s := range slots {
		if s.StartTime != want[i] {
			t.Errorf("slot %d starts at %s, want %s", i, s.StartTime, want[i])
		}
		if s.SchoolID != "sch1" || s.Date != "2026-03-02" {
			t.Errorf("slot %d has wrong school/date: %+v", i, s)
		}
		if s.StartsAt.IsZero() || !s.EndsAt.After(s.StartsAt) {
			t.Errorf("slot %d has invalid instants: %+v", i, s)
		}
	}
}

func TestEnumerateSlotsSkipsDaysWithoutAvailability(t *testing.T) {
	src := slotSource(mondayWindow("09:00", "10:00"))
	tuesday := monday.AddDate(0, 0, 1)

	slots := EnumerateSlots("t1", []SlotSource{src}, tuesday, tuesday, 30, 15)
	if len(slots) != 0 {
		t.Errorf("no Tuesday window, got %v", slots)
	}
}

func TestEnumerateSlotsRespectsUnavailability(t *testing.T) {
	src := slotSource(mondayWindow("09:00", "11:00"))
	src.Unavailability["2026-03-02"] = []models.Unavailability{
		{TeacherID: "t1", Date: monday, StartTime: "09:30", EndTime: "10:30"},
	}

	slots := EnumerateSlots("t1", []SlotSource{src}, monday, monday, 30, 30)

	// 09:00-09:30 only touches the block and is allowed; 09:30 and 10:00
	// overlap it; 10:30 is clear.
	want := []string{"09:00", "10:30"}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d: %+v", len(slots), len(want), slots)
	}
	for i, s := range slots {
		if s.StartTime != want[i] {
			t.Errorf("slot %d starts at %s, want %s", i, s.StartTime, want[i])
		}
	}
}

func TestEnumerateSlotsRespectsExistingBookings(t *testing.T) {
	src := slotSource(mondayWindow("09:00", "11:00"))
	src.Bookings["2026-03-02"] = []models.Booking{
		booking("t1", "s9", "09:00", "10:00", models.BookingConfirmed),
		booking("t1", "s9", "10:00", "10:30", models.BookingCancelled), // freed
	}

	slots := EnumerateSlots("t1", []SlotSource{src}, monday, monday, 60, 30)

	want := []string{"10:00"}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d: %+v", len(slots), len(want), slots)
	}
	if slots[0].StartTime != "10:00" {
		t.Errorf("slot starts at %s, want 10:00", slots[0].StartTime)
	}
}

func TestEnumerateSlotsMultipleSchools(t *testing.T) {
	a := slotSource(mondayWindow("09:00", "10:00"))
	b := SlotSource{
		School: models.School{ID: "sch2", Timezone: "America/Sao_Paulo"},
		Availability: []models.Availability{
			{TeacherID: "t1", SchoolID: "sch2", Weekday: time.Monday, StartTime: "14:00", EndTime: "15:00", Active: true},
		},
		Unavailability: map[string][]models.Unavailability{},
		Bookings:       map[string][]models.Booking{},
	}

	slots := EnumerateSlots("t1", []SlotSource{a, b}, monday, monday, 60, 15)

	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2: %+v", len(slots), slots)
	}
	if slots[0].SchoolID != "sch1" || slots[1].SchoolID != "sch2" {
		t.Errorf("expected one slot per school, got %+v", slots)
	}
	// Sao Paulo local 14:00 is a later instant than UTC 09:00 that day.
	if !slots[1].StartsAt.After(slots[0].StartsAt) {
		t.Errorf("absolute instants should reflect the school timezone: %+v", slots)
	}
}

func TestResolveWindow(t *testing.T) {
	rows := []models.Availability{
		{Weekday: time.Monday, StartTime: "09:00", EndTime: "12:00", Active: true},
		{Weekday: time.Tuesday, StartTime: "13:00", EndTime: "17:00", Active: false},
	}

	w := ResolveWindow(rows, monday)
	if w == nil {
		t.Fatal("expected a Monday window")
	}
	if w.Start.String() != "09:00" || w.End.String() != "12:00" {
		t.Errorf("window = %s-%s, want 09:00-12:00", w.Start, w.End)
	}

	if ResolveWindow(rows, monday.AddDate(0, 0, 1)) != nil {
		t.Error("inactive Tuesday row must not resolve")
	}

	if !w.Contains(timeutil.MustClock("09:00"), timeutil.MustClock("12:00")) {
		t.Error("window should contain its own bounds")
	}
	if w.Contains(timeutil.MustClock("08:45"), timeutil.MustClock("09:45")) {
		t.Error("window should reject an early start")
	}
}

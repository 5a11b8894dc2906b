package timeutil

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 9*60 + 30, false},
		{"23:59", 23*60 + 59, false},
		{"24:00", 0, true},
		{"9:30", 0, true},
		{"09:60", 0, true},
		{"0930", 0, true},
		{"", 0, true},
		{"ab:cd", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestClockString(t *testing.T) {
	if got := MustClock("09:05").String(); got != "09:05" {
		t.Errorf("String() = %q, want %q", got, "09:05")
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	if loc := Location(""); loc != time.UTC {
		t.Errorf("Location(\"\") = %v, want UTC", loc)
	}
	if loc := Location("Not/AZone"); loc != time.UTC {
		t.Errorf("Location(invalid) = %v, want UTC", loc)
	}
	if loc := Location("Europe/Lisbon"); loc.String() != "Europe/Lisbon" {
		t.Errorf("Location(Europe/Lisbon) = %v", loc)
	}
}

func TestInstant(t *testing.T) {
	lisbon := Location("Europe/Lisbon")
	date := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)

	got := Instant(date, MustClock("09:00"), lisbon)

	want := time.Date(2026, time.January, 12, 9, 0, 0, 0, lisbon)
	if !got.Equal(want) {
		t.Errorf("Instant = %v, want %v", got, want)
	}
	// Lisbon is UTC+0 in January; the instant is 09:00 UTC.
	if !got.Equal(time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("Instant not anchored to school timezone: %v", got)
	}
}

func TestOverlaps(t *testing.T) {
	at := func(h int) time.Time {
		return time.Date(2026, time.March, 2, h, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		name                   string
		aStart, aEnd, bStart, bEnd time.Time
		want                   bool
	}{
		{"identical", at(9), at(10), at(9), at(10), true},
		{"partial", at(9), at(11), at(10), at(12), true},
		{"contained", at(9), at(12), at(10), at(11), true},
		{"touching boundaries", at(9), at(10), at(10), at(11), false},
		{"disjoint", at(9), at(10), at(11), at(12), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd)
			if got != tc.want {
				t.Errorf("Overlaps = %v, want %v", got, tc.want)
			}

			// Symmetry holds for every pair.
			if sym := Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd); sym != got {
				t.Errorf("Overlaps is not symmetric: %v vs %v", got, sym)
			}
		})
	}
}

func TestClockOverlaps(t *testing.T) {
	if ClockOverlaps(MustClock("09:00"), MustClock("10:00"), MustClock("10:00"), MustClock("11:00")) {
		t.Error("touching clock intervals must not overlap")
	}
	if !ClockOverlaps(MustClock("09:00"), MustClock("10:00"), MustClock("09:30"), MustClock("10:30")) {
		t.Error("expected overlap for 09:00-10:00 vs 09:30-10:30")
	}
}

func TestEachDate(t *testing.T) {
	from := time.Date(2026, time.May, 30, 15, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.June, 2, 3, 0, 0, 0, time.UTC)

	var days []string
	EachDate(from, to, time.UTC, func(d time.Time) {
		days = append(days, d.Format("2006-01-02"))
	})

	want := []string{"2026-05-30", "2026-05-31", "2026-06-01", "2026-06-02"}
	if len(days) != len(want) {
		t.Fatalf("got %d days, want %d: %v", len(days), len(want), days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day %d = %s, want %s", i, days[i], want[i])
		}
	}
}

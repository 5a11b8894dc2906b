package models

import "time"

type BookingStatus string

const (
	BookingScheduled BookingStatus = "scheduled" // created, waiting for teacher action
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingNoShow    BookingStatus = "no_show"
	BookingRejected  BookingStatus = "rejected"
)

// IsTerminal reports whether the status has no outgoing transitions.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingCompleted, BookingCancelled, BookingNoShow, BookingRejected:
		return true
	}
	return false
}

func (s BookingStatus) IsActive() bool {
	return s == BookingScheduled || s == BookingConfirmed
}

type ClassKind string

const (
	ClassIndividual ClassKind = "individual"
	ClassGroup      ClassKind = "group"
)

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
	RoleOwner   Role = "owner"
)

type AuditAction string

const (
	AuditCreated      AuditAction = "created"
	AuditConfirmed    AuditAction = "confirmed"
	AuditCancelled    AuditAction = "cancelled"
	AuditRejected     AuditAction = "rejected"
	AuditCompleted    AuditAction = "completed"
	AuditMarkedNoShow AuditAction = "marked_no_show"
)

// AuditEntry is one immutable lifecycle record owned by its booking.
type AuditEntry struct {
	ID                    string      `db:"id"`
	BookingID             string      `db:"booking_id"`
	Action                AuditAction `db:"action"`
	ActorID               string      `db:"actor_id"`
	At                    time.Time   `db:"at"`
	Reason                string      `db:"reason"`
	Notes                 string      `db:"notes"`
	NoShowType            string      `db:"no_show_type"`
	ActualDurationMinutes *int        `db:"actual_duration_minutes"`
}

// Booking is a scheduled tutoring session. Date is the school-local calendar
// day at midnight UTC; StartTime/EndTime are school-local "HH:MM" wall times.
type Booking struct {
	ID              string        `db:"id"`
	TeacherID       string        `db:"teacher_id"`
	StudentID       string        `db:"student_id"`
	SchoolID        string        `db:"school_id"`
	Date            time.Time     `db:"date"`
	StartTime       string        `db:"start_time"`
	EndTime         string        `db:"end_time"`
	DurationMinutes int           `db:"duration_minutes"`
	Kind            ClassKind     `db:"kind"`
	MaxParticipants *int          `db:"max_participants"`
	Participants    []string      `db:"participants"` // extra students, group only
	Status          BookingStatus `db:"status"`
	Version         int64         `db:"version"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`

	Audit []AuditEntry
}

// ParticipantCount counts the primary student plus any group participants.
func (b *Booking) ParticipantCount() int {
	return 1 + len(b.Participants)
}

// HasParticipant reports whether the student is the primary student or an
// additional group participant.
func (b *Booking) HasParticipant(studentID string) bool {
	if b.StudentID == studentID {
		return true
	}
	for _, p := range b.Participants {
		if p == studentID {
			return true
		}
	}
	return false
}

// Availability is a recurring weekly window during which a teacher may be
// booked at a school. At most one active row per (teacher, school, weekday).
type Availability struct {
	ID        string       `db:"id"`
	TeacherID string       `db:"teacher_id"`
	SchoolID  string       `db:"school_id"`
	Weekday   time.Weekday `db:"weekday"`
	StartTime string       `db:"start_time"`
	EndTime   string       `db:"end_time"`
	Active    bool         `db:"active"`
}

// Unavailability carves time out of a specific date, either all day or a
// window. Multiple rows per date are unioned.
type Unavailability struct {
	ID        string    `db:"id"`
	TeacherID string    `db:"teacher_id"`
	SchoolID  string    `db:"school_id"`
	Date      time.Time `db:"date"`
	AllDay    bool      `db:"all_day"`
	StartTime string    `db:"start_time"`
	EndTime   string    `db:"end_time"`
	Reason    string    `db:"reason"`
}

type School struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Timezone string `db:"timezone"`
}

// Slot is one bookable interval offered to a client, carrying both the
// school-local wall-clock representation and the absolute instants.
type Slot struct {
	TeacherID string    `json:"teacher_id"`
	SchoolID  string    `json:"school_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
}

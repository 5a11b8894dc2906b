package api

import "time"

type BookingRequest struct {
	TeacherID       string `json:"teacher_id"`
	StudentID       string `json:"student_id"`
	SchoolID        string `json:"school_id"`
	Date            string `json:"date"`       // 2006-01-02 in the school's locale
	StartTime       string `json:"start_time"` // HH:MM school-local
	DurationMinutes int    `json:"duration_minutes"`
	Kind            string `json:"kind"` // individual | group
	MaxParticipants *int   `json:"max_participants,omitempty"`
}

type TransitionRequest struct {
	ActorID               string `json:"actor_id"`
	Reason                string `json:"reason,omitempty"`
	Notes                 string `json:"notes,omitempty"`
	NoShowType            string `json:"no_show_type,omitempty"` // student | teacher
	ActualDurationMinutes *int   `json:"actual_duration_minutes,omitempty"`
}

type AuditEntryResponse struct {
	Action                string    `json:"action"`
	ActorID               string    `json:"actor_id"`
	At                    time.Time `json:"at"`
	Reason                string    `json:"reason,omitempty"`
	Notes                 string    `json:"notes,omitempty"`
	NoShowType            string    `json:"no_show_type,omitempty"`
	ActualDurationMinutes *int      `json:"actual_duration_minutes,omitempty"`
}

type BookingResponse struct {
	ID              string               `json:"id"`
	TeacherID       string               `json:"teacher_id"`
	StudentID       string               `json:"student_id"`
	SchoolID        string               `json:"school_id"`
	Date            string               `json:"date"`
	StartTime       string               `json:"start_time"`
	EndTime         string               `json:"end_time"`
	DurationMinutes int                  `json:"duration_minutes"`
	Kind            string               `json:"kind"`
	MaxParticipants *int                 `json:"max_participants,omitempty"`
	Participants    []string             `json:"participants,omitempty"`
	Status          string               `json:"status"`
	Action          string               `json:"action,omitempty"` // set on create
	CanCancel       bool                 `json:"can_cancel"`
	CancelHoursLeft float64              `json:"cancel_hours_left"`
	Audit           []AuditEntryResponse `json:"audit,omitempty"`
}

type ValidationFailure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationResponse struct {
	OK       bool                `json:"ok"`
	Failures []ValidationFailure `json:"failures,omitempty"`
}

type SlotResponse struct {
	TeacherID string    `json:"teacher_id"`
	SchoolID  string    `json:"school_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
}

package schedule

import (
	"fmt"
	"strings"
)

// FailureCode identifies one validation or conflict failure kind.
type FailureCode string

const (
	FailPastDate            FailureCode = "past_date"
	FailBadTime             FailureCode = "bad_time"
	FailBadDuration         FailureCode = "bad_duration"
	FailKindMismatch        FailureCode = "kind_mismatch"
	FailMinimumNotice       FailureCode = "minimum_notice"
	FailBookingLimit        FailureCode = "booking_limit"
	FailNoAvailability      FailureCode = "no_availability"
	FailOutsideAvailability FailureCode = "outside_availability"

	FailCancellationDeadline FailureCode = "cancellation_deadline"
	FailNotFinished          FailureCode = "not_finished"
	FailMissingReason        FailureCode = "missing_reason"

	ConflictUnavailability  FailureCode = "unavailability_conflict"
	ConflictBooking         FailureCode = "booking_conflict"
	ConflictAtCapacity      FailureCode = "at_capacity"
	ConflictAlreadyEnrolled FailureCode = "already_enrolled"
)

// Failure is one recoverable validation or conflict failure, structured
// enough to render to an end user.
type Failure struct {
	Code    FailureCode `json:"code"`
	Message string      `json:"message"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func Failuref(code FailureCode, format string, args ...any) Failure {
	return Failure{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ValidationResult aggregates every applicable failure so a caller can show
// all problems at once.
type ValidationResult struct {
	OK       bool      `json:"ok"`
	Failures []Failure `json:"failures,omitempty"`
}

func (r *ValidationResult) Add(failures ...Failure) {
	r.Failures = append(r.Failures, failures...)
	r.OK = len(r.Failures) == 0
}

func (r *ValidationResult) Error() string {
	if r.OK {
		return "validation passed"
	}
	msgs := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// TransitionError reports an illegal lifecycle transition.
type TransitionError struct {
	From     string
	To       string
	Terminal bool
}

func (e *TransitionError) Error() string {
	if e.Terminal {
		return fmt.Sprintf("cannot move booking to %s: status %s is final", e.To, e.From)
	}
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}

// PermissionError reports that the actor lacks the capability for an action,
// distinct from validation so callers can render 403-style responses.
type PermissionError struct {
	ActorID string
	Action  string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("actor %s is not allowed to %s this booking", e.ActorID, e.Action)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/api"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/notify"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/schedule"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/timeutil"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/pkg/response"
)

// transitionSpec describes one lifecycle operation. check runs after the
// structural and permission gates; whatever it rejects leaves the booking
// untouched, since nothing is written until every check has passed.
type transitionSpec struct {
	verb   string
	target models.BookingStatus
	action models.AuditAction
	event  string
	check  func(s *Service, b *models.Booking, startsAt, endsAt, now time.Time, role models.Role, req *api.TransitionRequest, audit *models.AuditEntry) error
}

// Confirm moves a scheduled booking to confirmed.
func (s *Service) Confirm(ctx context.Context, bookingID string, req *api.TransitionRequest) (*api.BookingResponse, error) {
	return s.transition(ctx, bookingID, req, transitionSpec{
		verb:   "confirm",
		target: models.BookingConfirmed,
		action: models.AuditConfirmed,
		event:  "booking.confirmed",
	})
}

// Cancel moves a scheduled or confirmed booking to cancelled, subject to the
// cancellation deadline unless the actor's role is exempt by policy.
func (s *Service) Cancel(ctx context.Context, bookingID string, req *api.TransitionRequest) (*api.BookingResponse, error) {
	return s.transition(ctx, bookingID, req, transitionSpec{
		verb:   "cancel",
		target: models.BookingCancelled,
		action: models.AuditCancelled,
		event:  "booking.cancelled",
		check: func(s *Service, b *models.Booking, startsAt, _, now time.Time, role models.Role, req *api.TransitionRequest, audit *models.AuditEntry) error {
			exempt := s.policy.AdminExemptFromDeadline &&
				(role == models.RoleAdmin || role == models.RoleOwner)
			if !exempt && !schedule.CanCancelWithinDeadline(b, startsAt, now, s.policy.CancellationDeadlineHours) {
				return schedule.Failuref(schedule.FailCancellationDeadline,
					"cancellations need at least %d hours notice before the class starts",
					s.policy.CancellationDeadlineHours)
			}
			audit.Reason = req.Reason
			return nil
		},
	})
}

// Reject moves a scheduled booking to rejected.
func (s *Service) Reject(ctx context.Context, bookingID string, req *api.TransitionRequest) (*api.BookingResponse, error) {
	return s.transition(ctx, bookingID, req, transitionSpec{
		verb:   "reject",
		target: models.BookingRejected,
		action: models.AuditRejected,
		event:  "booking.rejected",
		check: func(_ *Service, _ *models.Booking, _, _, _ time.Time, _ models.Role, req *api.TransitionRequest, audit *models.AuditEntry) error {
			audit.Reason = req.Reason
			return nil
		},
	})
}

// Complete moves a confirmed booking whose scheduled end is in the past to
// completed, recording the actual duration (defaulting to the scheduled one)
// and optional notes.
func (s *Service) Complete(ctx context.Context, bookingID string, req *api.TransitionRequest) (*api.BookingResponse, error) {
	return s.transition(ctx, bookingID, req, transitionSpec{
		verb:   "complete",
		target: models.BookingCompleted,
		action: models.AuditCompleted,
		event:  "booking.completed",
		check: func(s *Service, b *models.Booking, _, endsAt, now time.Time, _ models.Role, req *api.TransitionRequest, audit *models.AuditEntry) error {
			if !endsAt.Before(now) {
				return schedule.Failuref(schedule.FailNotFinished,
					"class has not finished yet, it ends at %s", endsAt.Format(time.RFC3339))
			}

			actual := b.DurationMinutes
			if req.ActualDurationMinutes != nil {
				actual = *req.ActualDurationMinutes
				if actual <= 0 || actual > s.policy.MaxActualDurationMinutes {
					return schedule.Failuref(schedule.FailBadDuration,
						"actual duration must be between 1 and %d minutes, got %d",
						s.policy.MaxActualDurationMinutes, actual)
				}
			}
			audit.ActualDurationMinutes = &actual
			audit.Notes = req.Notes
			return nil
		},
	})
}

// MarkNoShow moves a confirmed booking whose scheduled end is in the past to
// no_show. A reason and a no-show type (student or teacher) are required.
func (s *Service) MarkNoShow(ctx context.Context, bookingID string, req *api.TransitionRequest) (*api.BookingResponse, error) {
	return s.transition(ctx, bookingID, req, transitionSpec{
		verb:   "mark no-show on",
		target: models.BookingNoShow,
		action: models.AuditMarkedNoShow,
		event:  "booking.no_show",
		check: func(_ *Service, _ *models.Booking, _, endsAt, now time.Time, _ models.Role, req *api.TransitionRequest, audit *models.AuditEntry) error {
			if !endsAt.Before(now) {
				return schedule.Failuref(schedule.FailNotFinished,
					"class has not finished yet, it ends at %s", endsAt.Format(time.RFC3339))
			}
			if req.Reason == "" {
				return schedule.Failuref(schedule.FailMissingReason, "a no-show needs a reason")
			}
			if req.NoShowType != "student" && req.NoShowType != "teacher" {
				return schedule.Failuref(schedule.FailMissingReason,
					"no_show_type must be \"student\" or \"teacher\", got %q", req.NoShowType)
			}
			audit.Reason = req.Reason
			audit.NoShowType = req.NoShowType
			return nil
		},
	})
}

func (s *Service) transition(ctx context.Context, bookingID string, req *api.TransitionRequest, spec transitionSpec) (*api.BookingResponse, error) {
	const op = "service.transition"

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if terr := schedule.CheckTransition(booking.Status, spec.target); terr != nil {
		return nil, fmt.Errorf("%s: %w", op, terr)
	}

	role, err := s.actorRole(ctx, req.ActorID, booking, spec.verb, spec.target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	school, err := s.store.GetSchool(ctx, booking.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: get school: %w", op, err)
	}
	loc := timeutil.Location(school.Timezone)

	now := s.now()
	startsAt, endsAt := bookingInstants(booking, loc)

	audit := &models.AuditEntry{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		Action:    spec.action,
		ActorID:   req.ActorID,
		At:        now,
	}

	if spec.check != nil {
		if err := spec.check(s, booking, startsAt, endsAt, now, role, req, audit); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	updated := *booking
	updated.Status = spec.target
	updated.UpdatedAt = now
	updated.Audit = append(append([]models.AuditEntry(nil), booking.Audit...), *audit)

	if err := s.store.UpdateBooking(ctx, &updated, audit); err != nil {
		return nil, fmt.Errorf("%s: update booking: %w", op, err)
	}

	s.publish(ctx, notify.Event{
		Action:    spec.event,
		BookingID: updated.ID,
		Status:    string(updated.Status),
		ActorID:   req.ActorID,
		At:        now,
	})

	return s.response(&updated, loc), nil
}

// actorRole resolves the actor's role in the booking's school and applies the
// capability rules: admins and owners may do anything in their school,
// teachers only against their own bookings, student participants may only
// cancel. No active membership denies everything.
func (s *Service) actorRole(ctx context.Context, actorID string, b *models.Booking, verb string, target models.BookingStatus) (models.Role, error) {
	role, err := s.store.GetMembershipRole(ctx, actorID, b.SchoolID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return "", &schedule.PermissionError{ActorID: actorID, Action: verb}
		}
		return "", err
	}

	switch role {
	case models.RoleAdmin, models.RoleOwner:
		return role, nil
	case models.RoleTeacher:
		if b.TeacherID == actorID {
			return role, nil
		}
	case models.RoleStudent:
		if target == models.BookingCancelled && b.HasParticipant(actorID) {
			return role, nil
		}
	}

	return "", &schedule.PermissionError{ActorID: actorID, Action: verb}
}

// Get returns a single booking with its audit trail and cancellation status.
func (s *Service) Get(ctx context.Context, bookingID string) (*api.BookingResponse, error) {
	const op = "service.Get"

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	school, err := s.store.GetSchool(ctx, booking.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: get school: %w", op, err)
	}

	return s.response(booking, timeutil.Location(school.Timezone)), nil
}

func bookingInstants(b *models.Booking, loc *time.Location) (time.Time, time.Time) {
	var startsAt, endsAt time.Time
	if clock, err := timeutil.ParseClock(b.StartTime); err == nil {
		startsAt = timeutil.Instant(b.Date, clock, loc)
	}
	if clock, err := timeutil.ParseClock(b.EndTime); err == nil {
		endsAt = timeutil.Instant(b.Date, clock, loc)
	}
	return startsAt, endsAt
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/api"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/lock"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/notify"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/schedule"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/timeutil"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/pkg/response"
)

// Creation outcomes reported alongside the booking.
const (
	ActionCreatedIndividual = "created_individual_class"
	ActionCreatedGroup      = "created_new_group_class"
	ActionJoinedGroup       = "joined_existing_group_class"
)

const createLockTTL = 10 * time.Second

type parsedRequest struct {
	date  time.Time
	start timeutil.Clock
	end   timeutil.Clock
	kind  models.ClassKind
}

// parseRequest runs the raw input checks. Temporal and conflict checks only
// make sense once these pass, so the caller stops on a non-empty result.
func parseRequest(req *api.BookingRequest, policy schedule.Policy) (parsedRequest, []schedule.Failure) {
	var failures []schedule.Failure
	var parsed parsedRequest

	parsed.kind = models.ClassKind(req.Kind)
	if f := schedule.ValidateKind(parsed.kind, req.MaxParticipants); f != nil {
		failures = append(failures, *f)
	}

	if f := schedule.ValidateDuration(req.DurationMinutes, policy.MaxDurationMinutes); f != nil {
		failures = append(failures, *f)
	}

	if f := schedule.ValidateClock("start_time", req.StartTime); f != nil {
		failures = append(failures, *f)
	} else {
		parsed.start = timeutil.MustClock(req.StartTime)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		failures = append(failures, schedule.Failuref(schedule.FailBadTime,
			"date %q is not a valid YYYY-MM-DD date", req.Date))
	} else {
		parsed.date = date
	}

	if len(failures) > 0 {
		return parsed, failures
	}

	parsed.end = parsed.start + timeutil.Clock(req.DurationMinutes)
	if parsed.end > timeutil.Clock(24*60) {
		failures = append(failures, schedule.Failuref(schedule.FailBadDuration,
			"class starting at %s would run past midnight", parsed.start))
	}

	return parsed, failures
}

// Validate runs every applicable check and aggregates all failures instead
// of stopping at the first, so a caller can show every problem at once. It
// reads backing data but never writes.
func (s *Service) Validate(ctx context.Context, req *api.BookingRequest) (*schedule.ValidationResult, error) {
	const op = "service.Validate"

	result := &schedule.ValidationResult{OK: true}

	parsed, rawFailures := parseRequest(req, s.policy)
	if len(rawFailures) > 0 {
		result.Add(rawFailures...)
		return result, nil
	}

	school, err := s.store.GetSchool(ctx, req.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: get school: %w", op, err)
	}
	loc := timeutil.Location(school.Timezone)

	now := s.now()

	if f := schedule.ValidateDate(parsed.date, now, loc); f != nil {
		result.Add(*f)
	}

	startsAt := timeutil.Instant(parsed.date, parsed.start, loc)
	if f := schedule.ValidateMinimumNotice(startsAt, now, s.policy.MinimumNoticeHours); f != nil {
		result.Add(*f)
	}

	availability, err := s.store.ListAvailability(ctx, req.TeacherID, req.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: list availability: %w", op, err)
	}

	window := schedule.ResolveWindow(availability, parsed.date)
	switch {
	case window == nil:
		result.Add(schedule.Failuref(schedule.FailNoAvailability,
			"teacher has no availability on %s", parsed.date.Weekday()))
	case !window.Contains(parsed.start, parsed.end):
		result.Add(schedule.Failuref(schedule.FailOutsideAvailability,
			"requested %s-%s falls outside the teacher's %s-%s window",
			parsed.start, parsed.end, window.Start, window.End))
	}

	q := schedule.ConflictQuery{
		TeacherID:       req.TeacherID,
		StudentID:       req.StudentID,
		SchoolID:        req.SchoolID,
		Date:            parsed.date,
		Start:           parsed.start,
		End:             parsed.end,
		Kind:            parsed.kind,
		MaxParticipants: req.MaxParticipants,
	}

	unavailability, err := s.store.ListUnavailability(ctx, req.TeacherID, req.SchoolID, parsed.date)
	if err != nil {
		return nil, fmt.Errorf("%s: list unavailability: %w", op, err)
	}
	if f := schedule.UnavailabilityConflict(unavailability, q); f != nil {
		result.Add(*f)
	}

	teacherBookings, err := s.store.ListActiveBookingsForTeacher(ctx, req.TeacherID, parsed.date)
	if err != nil {
		return nil, fmt.Errorf("%s: list teacher bookings: %w", op, err)
	}
	studentBookings, err := s.store.ListActiveBookingsForStudent(ctx, req.StudentID, parsed.date)
	if err != nil {
		return nil, fmt.Errorf("%s: list student bookings: %w", op, err)
	}

	result.Add(schedule.BookingConflicts(mergeBookings(teacherBookings, studentBookings), q, s.policy.BufferMinutes)...)

	if f := schedule.MaxPerDay(s.policy.MaxBookingsPerStudentPerDay)(studentBookings); f != nil {
		result.Add(*f)
	}

	if parsed.kind == models.ClassGroup {
		if f := groupJoinFailure(teacherBookings, q); f != nil {
			result.Add(*f)
		}
	}

	result.OK = len(result.Failures) == 0
	return result, nil
}

// groupJoinFailure reports the capacity problem when merge candidates exist
// but none is joinable for this student.
func groupJoinFailure(teacherBookings []models.Booking, q schedule.ConflictQuery) *schedule.Failure {
	var firstFailure *schedule.Failure
	for i := range teacherBookings {
		b := &teacherBookings[i]
		if !b.Status.IsActive() || !schedule.IsMergeCandidate(b, q) {
			continue
		}
		f := schedule.GroupCapacityConflict(b, q.StudentID)
		if f == nil {
			return nil
		}
		if firstFailure == nil {
			firstFailure = f
		}
	}
	return firstFailure
}

func mergeBookings(lists ...[]models.Booking) []models.Booking {
	seen := make(map[string]struct{})
	var merged []models.Booking
	for _, list := range lists {
		for _, b := range list {
			if _, ok := seen[b.ID]; ok {
				continue
			}
			seen[b.ID] = struct{}{}
			merged = append(merged, b)
		}
	}
	return merged
}

// Create re-validates the request and then either joins an existing group
// class or creates a new booking in scheduled state. Exactly one booking is
// created or mutated per successful call. The teacher's day is locked around
// the read-then-write so two concurrent creates serialize.
func (s *Service) Create(ctx context.Context, req *api.BookingRequest) (*api.BookingResponse, error) {
	const op = "service.Create"

	parsed, rawFailures := parseRequest(req, s.policy)
	if len(rawFailures) > 0 {
		result := &schedule.ValidationResult{}
		result.Add(rawFailures...)
		return nil, fmt.Errorf("%s: %w", op, result)
	}

	lockKey := lock.ScheduleKey(req.TeacherID, parsed.date)
	locked, err := s.locker.Lock(ctx, lockKey, createLockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	result, err := s.Validate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !result.OK {
		return nil, fmt.Errorf("%s: %w", op, result)
	}

	school, err := s.store.GetSchool(ctx, req.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: get school: %w", op, err)
	}
	loc := timeutil.Location(school.Timezone)

	now := s.now()

	if parsed.kind == models.ClassGroup {
		teacherBookings, err := s.store.ListActiveBookingsForTeacher(ctx, req.TeacherID, parsed.date)
		if err != nil {
			return nil, fmt.Errorf("%s: list teacher bookings: %w", op, err)
		}

		q := schedule.ConflictQuery{
			TeacherID:       req.TeacherID,
			StudentID:       req.StudentID,
			SchoolID:        req.SchoolID,
			Date:            parsed.date,
			Start:           parsed.start,
			End:             parsed.end,
			Kind:            parsed.kind,
			MaxParticipants: req.MaxParticipants,
		}

		if candidate := schedule.FindJoinable(teacherBookings, q); candidate != nil {
			return s.joinGroup(ctx, candidate, req.StudentID, loc, now)
		}
	}

	booking := &models.Booking{
		ID:              uuid.NewString(),
		TeacherID:       req.TeacherID,
		StudentID:       req.StudentID,
		SchoolID:        req.SchoolID,
		Date:            parsed.date,
		StartTime:       parsed.start.String(),
		EndTime:         parsed.end.String(),
		DurationMinutes: req.DurationMinutes,
		Kind:            parsed.kind,
		MaxParticipants: req.MaxParticipants,
		Status:          models.BookingScheduled,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	audit := &models.AuditEntry{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		Action:    models.AuditCreated,
		ActorID:   req.StudentID,
		At:        now,
	}
	booking.Audit = append(booking.Audit, *audit)

	if err := s.store.InsertBooking(ctx, booking, audit); err != nil {
		return nil, fmt.Errorf("%s: insert booking: %w", op, err)
	}

	s.publish(ctx, notify.Event{
		Action:    "booking.created",
		BookingID: booking.ID,
		Status:    string(booking.Status),
		ActorID:   req.StudentID,
		At:        now,
	})

	action := ActionCreatedIndividual
	if parsed.kind == models.ClassGroup {
		action = ActionCreatedGroup
	}

	resp := s.response(booking, loc)
	resp.Action = action
	return resp, nil
}

func (s *Service) joinGroup(ctx context.Context, candidate *models.Booking, studentID string, loc *time.Location, now time.Time) (*api.BookingResponse, error) {
	const op = "service.joinGroup"

	updated := *candidate
	updated.Participants = append([]string(nil), candidate.Participants...)

	if f := schedule.Join(&updated, studentID); f != nil {
		return nil, fmt.Errorf("%s: %w", op, *f)
	}
	updated.UpdatedAt = now

	audit := &models.AuditEntry{
		ID:        uuid.NewString(),
		BookingID: updated.ID,
		Action:    models.AuditCreated,
		ActorID:   studentID,
		At:        now,
	}
	updated.Audit = append(append([]models.AuditEntry(nil), candidate.Audit...), *audit)

	if err := s.store.UpdateBooking(ctx, &updated, audit); err != nil {
		return nil, fmt.Errorf("%s: update booking: %w", op, err)
	}

	s.publish(ctx, notify.Event{
		Action:    "booking.created",
		BookingID: updated.ID,
		Status:    string(updated.Status),
		ActorID:   studentID,
		At:        now,
	})

	resp := s.response(&updated, loc)
	resp.Action = ActionJoinedGroup
	return resp, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/api"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/schedule"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/timeutil"
)

// AvailableSlots enumerates every bookable slot for the teacher across the
// given schools and date range. The whole sequence is materialized per call;
// callers paginate over it.
func (s *Service) AvailableSlots(ctx context.Context, teacherID string, schoolIDs []string, from, to time.Time, durationMinutes int) ([]api.SlotResponse, error) {
	const op = "service.AvailableSlots"

	if to.Before(from) {
		return nil, fmt.Errorf("%s: range end is before range start", op)
	}

	sources := make([]schedule.SlotSource, 0, len(schoolIDs))

	for _, schoolID := range schoolIDs {
		school, err := s.store.GetSchool(ctx, schoolID)
		if err != nil {
			return nil, fmt.Errorf("%s: get school %s: %w", op, schoolID, err)
		}

		availability, err := s.store.ListAvailability(ctx, teacherID, schoolID)
		if err != nil {
			return nil, fmt.Errorf("%s: list availability: %w", op, err)
		}

		src := schedule.SlotSource{
			School:         *school,
			Availability:   availability,
			Unavailability: make(map[string][]models.Unavailability),
			Bookings:       make(map[string][]models.Booking),
		}

		loc := timeutil.Location(school.Timezone)

		var fetchErr error
		timeutil.EachDate(from, to, loc, func(date time.Time) {
			if fetchErr != nil {
				return
			}
			key := date.Format("2006-01-02")

			blocks, err := s.store.ListUnavailability(ctx, teacherID, schoolID, date)
			if err != nil {
				fetchErr = fmt.Errorf("list unavailability for %s: %w", key, err)
				return
			}
			src.Unavailability[key] = blocks

			booked, err := s.store.ListActiveBookingsForTeacher(ctx, teacherID, date)
			if err != nil {
				fetchErr = fmt.Errorf("list bookings for %s: %w", key, err)
				return
			}
			src.Bookings[key] = booked
		})
		if fetchErr != nil {
			return nil, fmt.Errorf("%s: %w", op, fetchErr)
		}

		sources = append(sources, src)
	}

	slots := schedule.EnumerateSlots(teacherID, sources, from, to, durationMinutes, s.policy.SlotStepMinutes)

	result := make([]api.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		result = append(result, api.SlotResponse{
			TeacherID: slot.TeacherID,
			SchoolID:  slot.SchoolID,
			Date:      slot.Date,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			StartsAt:  slot.StartsAt,
			EndsAt:    slot.EndsAt,
		})
	}

	return result, nil
}

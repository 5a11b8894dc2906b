package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/lock"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/notify"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/schedule"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/timeutil"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/api"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/pkg/sl"
)

// Store is the persistence collaborator. Writes carry the audit entry so the
// implementation can persist both in one transaction; UpdateBooking must
// guard on the booking's version and fail with response.ErrVersionConflict
// when another writer got there first.
type Store interface {
	GetSchool(ctx context.Context, id string) (*models.School, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListActiveBookingsForTeacher(ctx context.Context, teacherID string, date time.Time) ([]models.Booking, error)
	ListActiveBookingsForStudent(ctx context.Context, studentID string, date time.Time) ([]models.Booking, error)
	ListAvailability(ctx context.Context, teacherID, schoolID string) ([]models.Availability, error)
	ListUnavailability(ctx context.Context, teacherID, schoolID string, date time.Time) ([]models.Unavailability, error)
	InsertBooking(ctx context.Context, b *models.Booking, audit *models.AuditEntry) error
	UpdateBooking(ctx context.Context, b *models.Booking, audit *models.AuditEntry) error
	GetMembershipRole(ctx context.Context, userID, schoolID string) (models.Role, error)
}

type Service struct {
	store    Store
	locker   lock.Locker
	notifier notify.Publisher
	policy   schedule.Policy
	log      *slog.Logger
	now      func() time.Time
}

func NewService(store Store, locker lock.Locker, notifier notify.Publisher, policy schedule.Policy, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		locker:   locker,
		notifier: notifier,
		policy:   policy,
		log:      log,
		now:      time.Now,
	}
}

// publish is fire-and-forget: delivery problems are logged, never returned.
func (s *Service) publish(ctx context.Context, event notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish booking event",
			slog.String("booking_id", event.BookingID),
			slog.String("action", event.Action),
			sl.Err(err),
		)
	}
}

func (s *Service) response(b *models.Booking, loc *time.Location) *api.BookingResponse {
	startsAt := time.Time{}
	if clock, err := timeutil.ParseClock(b.StartTime); err == nil {
		startsAt = timeutil.Instant(b.Date, clock, loc)
	}

	now := s.now()
	resp := &api.BookingResponse{
		ID:              b.ID,
		TeacherID:       b.TeacherID,
		StudentID:       b.StudentID,
		SchoolID:        b.SchoolID,
		Date:            b.Date.Format("2006-01-02"),
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		DurationMinutes: b.DurationMinutes,
		Kind:            string(b.Kind),
		MaxParticipants: b.MaxParticipants,
		Participants:    b.Participants,
		Status:          string(b.Status),
		CanCancel:       schedule.CanCancelWithinDeadline(b, startsAt, now, s.policy.CancellationDeadlineHours),
		CancelHoursLeft: schedule.RemainingHours(startsAt, now, s.policy.CancellationDeadlineHours),
	}

	for _, entry := range b.Audit {
		resp.Audit = append(resp.Audit, api.AuditEntryResponse{
			Action:                string(entry.Action),
			ActorID:               entry.ActorID,
			At:                    entry.At,
			Reason:                entry.Reason,
			Notes:                 entry.Notes,
			NoShowType:            entry.NoShowType,
			ActualDurationMinutes: entry.ActualDurationMinutes,
		})
	}

	return resp
}

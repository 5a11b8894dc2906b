package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/models"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/pkg/response"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) GetSchool(ctx context.Context, id string) (*models.School, error) {
	const op = "storage.postgres.GetSchool"

	var school models.School

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, timezone FROM schools WHERE id=$1`, id,
	).Scan(&school.ID, &school.Name, &school.Timezone)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &school, nil
}

const bookingColumns = `id, teacher_id, student_id, school_id, date, start_time, end_time,
	duration_minutes, kind, max_participants, participants, status, version, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var b models.Booking
	var participants pq.StringArray

	err := row.Scan(
		&b.ID, &b.TeacherID, &b.StudentID, &b.SchoolID, &b.Date, &b.StartTime, &b.EndTime,
		&b.DurationMinutes, &b.Kind, &b.MaxParticipants, &participants, &b.Status,
		&b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Participants = []string(participants)
	return &b, nil
}

func (s *Storage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.postgres.GetBooking"

	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)

	booking, err := scanBooking(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, booking_id, action, actor_id, at, reason, notes, no_show_type, actual_duration_minutes
		 FROM booking_audit WHERE booking_id=$1 ORDER BY at`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.AuditEntry
		err := rows.Scan(&entry.ID, &entry.BookingID, &entry.Action, &entry.ActorID,
			&entry.At, &entry.Reason, &entry.Notes, &entry.NoShowType, &entry.ActualDurationMinutes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		booking.Audit = append(booking.Audit, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return booking, nil
}

func (s *Storage) listBookings(ctx context.Context, op, query string, args ...any) ([]models.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

func (s *Storage) ListActiveBookingsForTeacher(ctx context.Context, teacherID string, date time.Time) ([]models.Booking, error) {
	const op = "storage.postgres.ListActiveBookingsForTeacher"

	return s.listBookings(ctx, op,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE teacher_id=$1 AND date=$2 AND status IN ('scheduled', 'confirmed')
		 ORDER BY start_time`,
		teacherID, date.Format("2006-01-02"))
}

func (s *Storage) ListActiveBookingsForStudent(ctx context.Context, studentID string, date time.Time) ([]models.Booking, error) {
	const op = "storage.postgres.ListActiveBookingsForStudent"

	return s.listBookings(ctx, op,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE date=$2 AND status IN ('scheduled', 'confirmed')
		   AND (student_id=$1 OR $1 = ANY(participants))
		 ORDER BY start_time`,
		studentID, date.Format("2006-01-02"))
}

func (s *Storage) ListAvailability(ctx context.Context, teacherID, schoolID string) ([]models.Availability, error) {
	const op = "storage.postgres.ListAvailability"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, teacher_id, school_id, weekday, start_time, end_time, active
		 FROM availability WHERE teacher_id=$1 AND school_id=$2 AND active`,
		teacherID, schoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Availability
	for rows.Next() {
		var a models.Availability
		var weekday int
		err := rows.Scan(&a.ID, &a.TeacherID, &a.SchoolID, &weekday, &a.StartTime, &a.EndTime, &a.Active)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.Weekday = time.Weekday(weekday)
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) ListUnavailability(ctx context.Context, teacherID, schoolID string, date time.Time) ([]models.Unavailability, error) {
	const op = "storage.postgres.ListUnavailability"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, teacher_id, school_id, date, all_day, COALESCE(start_time, ''), COALESCE(end_time, ''), reason
		 FROM unavailability WHERE teacher_id=$1 AND school_id=$2 AND date=$3`,
		teacherID, schoolID, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Unavailability
	for rows.Next() {
		var u models.Unavailability
		err := rows.Scan(&u.ID, &u.TeacherID, &u.SchoolID, &u.Date, &u.AllDay, &u.StartTime, &u.EndTime, &u.Reason)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func insertAuditTx(ctx context.Context, tx *sql.Tx, audit *models.AuditEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO booking_audit (id, booking_id, action, actor_id, at, reason, notes, no_show_type, actual_duration_minutes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		audit.ID, audit.BookingID, audit.Action, audit.ActorID, audit.At,
		audit.Reason, audit.Notes, audit.NoShowType, audit.ActualDurationMinutes)
	return err
}

func (s *Storage) InsertBooking(ctx context.Context, b *models.Booking, audit *models.AuditEntry) error {
	const op = "storage.postgres.InsertBooking"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		b.ID, b.TeacherID, b.StudentID, b.SchoolID, b.Date.Format("2006-01-02"),
		b.StartTime, b.EndTime, b.DurationMinutes, b.Kind, b.MaxParticipants,
		pq.Array(b.Participants), b.Status, b.Version, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := insertAuditTx(ctx, tx, audit); err != nil {
		return fmt.Errorf("%s: insert audit: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// UpdateBooking writes the mutated booking guarded by its version: if
// another writer committed first, no row matches and ErrVersionConflict is
// returned with nothing written.
func (s *Storage) UpdateBooking(ctx context.Context, b *models.Booking, audit *models.AuditEntry) error {
	const op = "storage.postgres.UpdateBooking"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings
		 SET status=$1, participants=$2, updated_at=$3, version=version+1
		 WHERE id=$4 AND version=$5`,
		b.Status, pq.Array(b.Participants), b.UpdatedAt, b.ID, b.Version)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrVersionConflict)
	}

	if err := insertAuditTx(ctx, tx, audit); err != nil {
		return fmt.Errorf("%s: insert audit: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	b.Version++
	return nil
}

func (s *Storage) GetMembershipRole(ctx context.Context, userID, schoolID string) (models.Role, error) {
	const op = "storage.postgres.GetMembershipRole"

	var role models.Role

	err := s.db.QueryRowContext(ctx,
		`SELECT role FROM school_memberships WHERE user_id=$1 AND school_id=$2 AND active`,
		userID, schoolID,
	).Scan(&role)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return role, nil
}

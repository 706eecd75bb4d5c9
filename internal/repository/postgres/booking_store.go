package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"multitenantbooking/internal/domain"
)

type bookingStore struct {
	DB *sql.DB
}

// NewBookingStore returns the transactional writer used at booking time. The
// appointments table carries an exclusion constraint over (staff_id, date,
// time range) for non-cancelled rows, so two concurrent bookings of
// overlapping slots cannot both commit regardless of what the services saw.
func NewBookingStore(db *sql.DB) domain.BookingStore {
	return &bookingStore{
		DB: db,
	}
}

func (s *bookingStore) SaveBooking(ctx context.Context, appt *domain.Appointment, availability *domain.StaffDailyAvailability) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO appointments (id, business_id, client_id, staff_id, service_id, date, start_time, end_time, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.ExecContext(ctx, insert,
		appt.ID, appt.BusinessID, appt.ClientID, appt.StaffID, appt.ServiceID,
		appt.Date, appt.Slot.Start, appt.Slot.End, appt.Status, appt.Notes,
		appt.CreatedAt, appt.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && (pqErr.Code == "23505" || pqErr.Code == "23P01") {
			return domain.ErrSlotConflict
		}
		return err
	}

	if err := saveAvailability(ctx, tx, availability); err != nil {
		return err
	}
	return tx.Commit()
}

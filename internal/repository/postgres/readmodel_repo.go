package postgres

import (
	"context"
	"database/sql"
	"time"

	"multitenantbooking/internal/domain"
)

type readModelRepository struct {
	DB *sql.DB
}

func NewReadModelRepository(db *sql.DB) domain.ReadModelRepository {
	return &readModelRepository{
		DB: db,
	}
}

func (r *readModelRepository) ReplaceForStaffDate(ctx context.Context, staffID string, date time.Time, slots []*domain.AvailableBookingSlot, schedule []*domain.StaffScheduleEntry) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM available_booking_slots WHERE staff_id = $1 AND date = $2`, staffID, date); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM staff_schedule_entries WHERE staff_id = $1 AND date = $2`, staffID, date); err != nil {
		return err
	}

	slotInsert := `
		INSERT INTO available_booking_slots (business_id, service_id, staff_id, date, start_time, end_time, service_duration_minutes, service_name, staff_name, service_price_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, slot := range slots {
		if _, err := tx.ExecContext(ctx, slotInsert,
			slot.BusinessID, slot.ServiceID, slot.StaffID, slot.Date,
			slot.Slot.Start, slot.Slot.End, slot.ServiceDurationMinutes,
			slot.ServiceName, slot.StaffName, slot.ServicePriceCents,
		); err != nil {
			return err
		}
	}

	entryInsert := `
		INSERT INTO staff_schedule_entries (staff_id, staff_name, business_id, date, start_time, end_time, kind, appointment_id, service_name, client_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, entry := range schedule {
		if _, err := tx.ExecContext(ctx, entryInsert,
			entry.StaffID, entry.StaffName, entry.BusinessID, entry.Date,
			entry.Slot.Start, entry.Slot.End, entry.Kind,
			entry.AppointmentID, entry.ServiceName, entry.ClientName,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *readModelRepository) DeleteSlotsOverlapping(ctx context.Context, staffID string, date time.Time, slot domain.TimeSlot) error {
	query := `
		DELETE FROM available_booking_slots
		WHERE staff_id = $1 AND date = $2 AND start_time < $4 AND $3 < end_time
	`
	_, err := r.DB.ExecContext(ctx, query, staffID, date, slot.Start, slot.End)
	return err
}

const slotColumns = `business_id, service_id, staff_id, date, start_time, end_time, service_duration_minutes, service_name, staff_name, service_price_cents`

func (r *readModelRepository) ListSlots(ctx context.Context, businessID, serviceID string, date time.Time, staffID string) ([]*domain.AvailableBookingSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM available_booking_slots
		WHERE business_id = $1 AND service_id = $2 AND date = $3 AND ($4 = '' OR staff_id = $4)
		ORDER BY start_time, staff_name
	`
	rows, err := r.DB.QueryContext(ctx, query, businessID, serviceID, date, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSlots(rows)
}

func (r *readModelRepository) ListSlotsInRange(ctx context.Context, businessID, serviceID string, from, to time.Time, staffID string) ([]*domain.AvailableBookingSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM available_booking_slots
		WHERE business_id = $1 AND service_id = $2 AND date BETWEEN $3 AND $4 AND ($5 = '' OR staff_id = $5)
		ORDER BY date, start_time, staff_name
	`
	rows, err := r.DB.QueryContext(ctx, query, businessID, serviceID, from, to, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSlots(rows)
}

func scanSlots(rows *sql.Rows) ([]*domain.AvailableBookingSlot, error) {
	slots := make([]*domain.AvailableBookingSlot, 0)
	for rows.Next() {
		s := &domain.AvailableBookingSlot{}
		if err := rows.Scan(
			&s.BusinessID, &s.ServiceID, &s.StaffID, &s.Date,
			&s.Slot.Start, &s.Slot.End, &s.ServiceDurationMinutes,
			&s.ServiceName, &s.StaffName, &s.ServicePriceCents,
		); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *readModelRepository) ListScheduleForStaffDate(ctx context.Context, staffID string, date time.Time) ([]*domain.StaffScheduleEntry, error) {
	query := `
		SELECT staff_id, staff_name, business_id, date, start_time, end_time, kind, appointment_id, service_name, client_name
		FROM staff_schedule_entries
		WHERE staff_id = $1 AND date = $2
		ORDER BY start_time
	`
	rows, err := r.DB.QueryContext(ctx, query, staffID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]*domain.StaffScheduleEntry, 0)
	for rows.Next() {
		e := &domain.StaffScheduleEntry{}
		var apptNull, serviceNull, clientNull sql.NullString
		if err := rows.Scan(
			&e.StaffID, &e.StaffName, &e.BusinessID, &e.Date,
			&e.Slot.Start, &e.Slot.End, &e.Kind,
			&apptNull, &serviceNull, &clientNull,
		); err != nil {
			return nil, err
		}
		e.AppointmentID = apptNull.String
		e.ServiceName = serviceNull.String
		e.ClientName = clientNull.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *readModelRepository) UpsertClientAppointment(ctx context.Context, view *domain.ClientAppointmentView) error {
	query := `
		INSERT INTO client_appointments (appointment_id, business_id, business_name, client_id, client_name, staff_id, staff_name, service_id, service_name, date, start_time, end_time, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (appointment_id) DO UPDATE SET
			client_name = EXCLUDED.client_name,
			staff_name = EXCLUDED.staff_name,
			service_name = EXCLUDED.service_name,
			status = EXCLUDED.status,
			notes = EXCLUDED.notes
	`
	_, err := r.DB.ExecContext(ctx, query,
		view.AppointmentID, view.BusinessID, view.BusinessName,
		view.ClientID, view.ClientName, view.StaffID, view.StaffName,
		view.ServiceID, view.ServiceName, view.Date,
		view.Slot.Start, view.Slot.End, view.Status, view.Notes,
	)
	return err
}

func (r *readModelRepository) ListClientAppointments(ctx context.Context, clientID string) ([]*domain.ClientAppointmentView, error) {
	query := `
		SELECT appointment_id, business_id, business_name, client_id, client_name, staff_id, staff_name, service_id, service_name, date, start_time, end_time, status, notes
		FROM client_appointments
		WHERE client_id = $1
		ORDER BY date DESC, start_time DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views := make([]*domain.ClientAppointmentView, 0)
	for rows.Next() {
		v := &domain.ClientAppointmentView{}
		var notesNull sql.NullString
		if err := rows.Scan(
			&v.AppointmentID, &v.BusinessID, &v.BusinessName,
			&v.ClientID, &v.ClientName, &v.StaffID, &v.StaffName,
			&v.ServiceID, &v.ServiceName, &v.Date,
			&v.Slot.Start, &v.Slot.End, &v.Status, &notesNull,
		); err != nil {
			return nil, err
		}
		v.Notes = notesNull.String
		views = append(views, v)
	}
	return views, rows.Err()
}

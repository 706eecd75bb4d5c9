package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"multitenantbooking/internal/domain"
)

type appointmentRepository struct {
	DB *sql.DB
}

func NewAppointmentRepository(db *sql.DB) domain.AppointmentRepository {
	return &appointmentRepository{
		DB: db,
	}
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	query := `
		SELECT id, business_id, client_id, staff_id, service_id, date, start_time, end_time, status, notes, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	a := &domain.Appointment{}
	var notesNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.BusinessID, &a.ClientID, &a.StaffID, &a.ServiceID,
		&a.Date, &a.Slot.Start, &a.Slot.End, &a.Status, &notesNull,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if notesNull.Valid {
		a.Notes = notesNull.String
	}
	return a, nil
}

func (r *appointmentRepository) ListActiveByStaffAndDate(ctx context.Context, staffID string, date time.Time) ([]*domain.Appointment, error) {
	query := `
		SELECT id, business_id, client_id, staff_id, service_id, date, start_time, end_time, status, notes, created_at, updated_at
		FROM appointments
		WHERE staff_id = $1 AND date = $2 AND status <> 'CANCELLED'
		ORDER BY start_time
	`
	rows, err := r.DB.QueryContext(ctx, query, staffID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		a := &domain.Appointment{}
		var notesNull sql.NullString
		if err := rows.Scan(
			&a.ID, &a.BusinessID, &a.ClientID, &a.StaffID, &a.ServiceID,
			&a.Date, &a.Slot.Start, &a.Slot.End, &a.Status, &notesNull,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if notesNull.Valid {
			a.Notes = notesNull.String
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func (r *appointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	query := `
		UPDATE appointments
		SET status = $2, notes = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, appt.ID, appt.Status, appt.Notes, appt.UpdatedAt)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

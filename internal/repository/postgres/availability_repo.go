package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"multitenantbooking/internal/domain"
)

// execer is the common surface of *sql.DB and *sql.Tx the repositories need,
// so the booking store can reuse the availability write inside its transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type availabilityRepository struct {
	DB *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) domain.AvailabilityRepository {
	return &availabilityRepository{
		DB: db,
	}
}

func (r *availabilityRepository) GetByStaffAndDate(ctx context.Context, staffID string, date time.Time) (*domain.StaffDailyAvailability, error) {
	query := `
		SELECT id, staff_id, business_id, date
		FROM staff_availabilities
		WHERE staff_id = $1 AND date = $2
	`
	av := &domain.StaffDailyAvailability{}
	err := r.DB.QueryRowContext(ctx, query, staffID, date).Scan(&av.ID, &av.StaffID, &av.BusinessID, &av.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoAvailability
		}
		return nil, err
	}

	slotQuery := `
		SELECT start_time, end_time
		FROM availability_slots
		WHERE availability_id = $1
		ORDER BY start_time
	`
	rows, err := r.DB.QueryContext(ctx, slotQuery, av.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var slot domain.TimeSlot
		if err := rows.Scan(&slot.Start, &slot.End); err != nil {
			return nil, err
		}
		av.Slots = append(av.Slots, slot)
	}
	return av, rows.Err()
}

func (r *availabilityRepository) Save(ctx context.Context, availability *domain.StaffDailyAvailability) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveAvailability(ctx, tx, availability); err != nil {
		return err
	}
	return tx.Commit()
}

// saveAvailability upserts the availability record and replaces its slot set.
// Runs inside the caller's transaction.
func saveAvailability(ctx context.Context, db execer, availability *domain.StaffDailyAvailability) error {
	upsert := `
		INSERT INTO staff_availabilities (id, staff_id, business_id, date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (staff_id, date) DO UPDATE SET business_id = EXCLUDED.business_id
		RETURNING id
	`
	var id string
	if err := db.QueryRowContext(ctx, upsert, availability.ID, availability.StaffID, availability.BusinessID, availability.Date).Scan(&id); err != nil {
		return err
	}
	availability.ID = id

	if _, err := db.ExecContext(ctx, `DELETE FROM availability_slots WHERE availability_id = $1`, id); err != nil {
		return err
	}
	insert := `
		INSERT INTO availability_slots (availability_id, start_time, end_time)
		VALUES ($1, $2, $3)
	`
	for _, slot := range availability.Slots {
		if _, err := db.ExecContext(ctx, insert, id, slot.Start, slot.End); err != nil {
			return err
		}
	}
	return nil
}

func (r *availabilityRepository) Delete(ctx context.Context, staffID string, date time.Time) error {
	query := `DELETE FROM staff_availabilities WHERE staff_id = $1 AND date = $2`
	result, err := r.DB.ExecContext(ctx, query, staffID, date)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNoAvailability
	}
	return nil
}

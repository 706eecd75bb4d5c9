package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"multitenantbooking/internal/domain"
)

var apptColumns = []string{
	"id", "business_id", "client_id", "staff_id", "service_id",
	"date", "start_time", "end_time", "status", "notes",
	"created_at", "updated_at",
}

func TestAppointmentRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Appointment
		wantErr error
	}{
		{
			name: "success",
			id:   "appt-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, business_id, client_id, staff_id, service_id, date, start_time, end_time, status, notes, created_at, updated_at`).
					WithArgs("appt-1").
					WillReturnRows(sqlmock.NewRows(apptColumns).AddRow(
						"appt-1", "biz-1", "client-1", "staff-1", "svc-1",
						date, "09:00:00", "09:30:00", "SCHEDULED", "walk-in",
						created, created,
					))
			},
			want: &domain.Appointment{
				ID:         "appt-1",
				BusinessID: "biz-1",
				ClientID:   "client-1",
				StaffID:    "staff-1",
				ServiceID:  "svc-1",
				Date:       date,
				Slot:       domain.TimeSlot{Start: 9 * 60, End: 9*60 + 30},
				Status:     domain.StatusScheduled,
				Notes:      "walk-in",
				CreatedAt:  created,
				UpdatedAt:  created,
			},
		},
		{
			name: "not found",
			id:   "missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, business_id`).
					WithArgs("missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewAppointmentRepository(db)
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAppointmentRepository_ListActiveByStaffAndDate(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, business_id, client_id, staff_id, service_id, date, start_time, end_time, status, notes, created_at, updated_at`).
		WithArgs("staff-1", date).
		WillReturnRows(sqlmock.NewRows(apptColumns).
			AddRow("appt-1", "biz-1", "client-1", "staff-1", "svc-1", date, "09:00:00", "09:30:00", "SCHEDULED", nil, created, created).
			AddRow("appt-2", "biz-1", "client-2", "staff-1", "svc-1", date, "10:00:00", "10:30:00", "CONFIRMED", nil, created, created))

	repo := NewAppointmentRepository(db)
	got, err := repo.ListActiveByStaffAndDate(ctx, "staff-1", date)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "appt-1", got[0].ID)
	require.Equal(t, domain.StatusConfirmed, got[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_Update(t *testing.T) {
	ctx := context.Background()
	updated := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		appt    *domain.Appointment
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			appt: &domain.Appointment{ID: "appt-1", Status: domain.StatusConfirmed, Notes: "", UpdatedAt: updated},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE appointments`).
					WithArgs("appt-1", "CONFIRMED", "", updated).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing row returns ErrNotFound",
			appt: &domain.Appointment{ID: "gone", Status: domain.StatusCancelled, UpdatedAt: updated},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE appointments`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewAppointmentRepository(db)
			err = repo.Update(ctx, tt.appt)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"multitenantbooking/internal/domain"
)

// DirectoryRepository reads staff, business, and client master data. It
// implements domain.StaffDirectory and the notifier's contact lookup.
type DirectoryRepository struct {
	DB *sql.DB
}

func NewDirectoryRepository(db *sql.DB) *DirectoryRepository {
	return &DirectoryRepository{
		DB: db,
	}
}

func (r *DirectoryRepository) GetStaff(ctx context.Context, staffID string) (*domain.StaffInfo, error) {
	query := `
		SELECT st.id, st.business_id, st.name, b.name
		FROM staff st
		JOIN businesses b ON b.id = st.business_id
		WHERE st.id = $1
	`
	s := &domain.StaffInfo{}
	err := r.DB.QueryRowContext(ctx, query, staffID).Scan(&s.ID, &s.BusinessID, &s.Name, &s.BusinessName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *DirectoryRepository) GetClientName(ctx context.Context, clientID string) (string, error) {
	query := `SELECT name FROM clients WHERE id = $1`
	var name string
	err := r.DB.QueryRowContext(ctx, query, clientID).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return name, nil
}

func (r *DirectoryRepository) GetClientContact(ctx context.Context, clientID string) (string, string, error) {
	query := `SELECT name, COALESCE(email, '') FROM clients WHERE id = $1`
	var name, email string
	err := r.DB.QueryRowContext(ctx, query, clientID).Scan(&name, &email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", domain.ErrNotFound
		}
		return "", "", err
	}
	return name, email, nil
}

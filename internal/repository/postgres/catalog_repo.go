package postgres

import (
	"context"
	"database/sql"
	"errors"

	"multitenantbooking/internal/domain"
)

type serviceCatalogRepository struct {
	DB *sql.DB
}

func NewServiceCatalogRepository(db *sql.DB) domain.ServiceCatalog {
	return &serviceCatalogRepository{
		DB: db,
	}
}

func (r *serviceCatalogRepository) GetService(ctx context.Context, serviceID string) (*domain.ServiceInfo, error) {
	query := `
		SELECT id, business_id, name, duration_minutes, price_cents
		FROM services
		WHERE id = $1
	`
	s := &domain.ServiceInfo{}
	err := r.DB.QueryRowContext(ctx, query, serviceID).Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMinutes, &s.PriceCents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}
	return s, nil
}

type eligibilityRepository struct {
	DB *sql.DB
}

// NewEligibilityRepository answers staff/service pairing questions from the
// staff_services join table.
func NewEligibilityRepository(db *sql.DB) domain.StaffServiceEligibility {
	return &eligibilityRepository{
		DB: db,
	}
}

func (r *eligibilityRepository) CanPerform(ctx context.Context, staffID, serviceID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM staff_services WHERE staff_id = $1 AND service_id = $2
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, staffID, serviceID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *eligibilityRepository) ServicesForStaff(ctx context.Context, staffID string) ([]*domain.ServiceInfo, error) {
	query := `
		SELECT s.id, s.business_id, s.name, s.duration_minutes, s.price_cents
		FROM services s
		JOIN staff_services ss ON ss.service_id = s.id
		WHERE ss.staff_id = $1
		ORDER BY s.name
	`
	rows, err := r.DB.QueryContext(ctx, query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	services := make([]*domain.ServiceInfo, 0)
	for rows.Next() {
		s := &domain.ServiceInfo{}
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMinutes, &s.PriceCents); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *eligibilityRepository) StaffForService(ctx context.Context, serviceID string) ([]*domain.StaffInfo, error) {
	query := `
		SELECT st.id, st.business_id, st.name, b.name
		FROM staff st
		JOIN staff_services ss ON ss.staff_id = st.id
		JOIN businesses b ON b.id = st.business_id
		WHERE ss.service_id = $1
		ORDER BY st.name
	`
	rows, err := r.DB.QueryContext(ctx, query, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	staff := make([]*domain.StaffInfo, 0)
	for rows.Next() {
		s := &domain.StaffInfo{}
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.BusinessName); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

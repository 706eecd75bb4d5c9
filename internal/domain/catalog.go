package domain

import "context"

// ServiceInfo is the master-data view of a bookable service.
type ServiceInfo struct {
	ID              string `json:"id"`
	BusinessID      string `json:"business_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
}

// StaffInfo is the master-data view of a staff member.
type StaffInfo struct {
	ID           string `json:"id"`
	BusinessID   string `json:"business_id"`
	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
}

// ServiceCatalog looks up service master data. Maintained outside the booking
// core; consumed read-only.
type ServiceCatalog interface {
	// GetService returns the service, or ErrServiceNotFound.
	GetService(ctx context.Context, serviceID string) (*ServiceInfo, error)
}

// StaffDirectory looks up staff, business, and client display data.
type StaffDirectory interface {
	// GetStaff returns the staff member with business name, or ErrNotFound.
	GetStaff(ctx context.Context, staffID string) (*StaffInfo, error)
	// GetClientName returns the client's display name, or ErrNotFound.
	GetClientName(ctx context.Context, clientID string) (string, error)
}

// StaffServiceEligibility answers which staff can perform which services.
type StaffServiceEligibility interface {
	CanPerform(ctx context.Context, staffID, serviceID string) (bool, error)
	ServicesForStaff(ctx context.Context, staffID string) ([]*ServiceInfo, error)
	StaffForService(ctx context.Context, serviceID string) ([]*StaffInfo, error)
}

package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for account operations.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AccountRole distinguishes staff and client logins.
type AccountRole string

const (
	RoleStaff  AccountRole = "staff"
	RoleClient AccountRole = "client"
)

// Account is a login identity tied to either a staff member or a client.
// Master data (names, business membership) lives outside the booking core.
type Account struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Salt         string      `json:"-"`
	Role         AccountRole `json:"role"`
	SubjectID    string      `json:"subject_id"` // staff or client ID, depending on Role
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// AccountRepository defines storage for login accounts.
type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues bearer tokens for an authenticated account.
type TokenIssuer interface {
	Issue(subjectID string, role AccountRole, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns the subject ID and role.
type TokenVerifier interface {
	Verify(token string) (subjectID string, role AccountRole, err error)
}

// AuthService authenticates accounts and issues tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, account *Account, err error)
}

// Mailer sends a single email. Implementations may be SES-backed or no-op.
type Mailer interface {
	Send(to, subject, html, text string) error
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"multitenantbooking/internal/domain"
)

type accountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) domain.AccountRepository {
	return &accountRepository{
		DB: db,
	}
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT id, email, password_hash, salt, role, subject_id, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`
	a := &domain.Account{}
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Salt, &a.Role, &a.SubjectID,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return a, nil
}

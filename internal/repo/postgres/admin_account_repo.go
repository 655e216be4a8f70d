package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAdminAccountNotFound = errors.New("admin account not found")

// AdminAccount is a console operator. These accounts are provisioned by ops
// tooling, not by the public registration flow.
type AdminAccount struct {
	ID           int64
	Email        string
	DisplayName  string
	Role         string
	PasswordHash string
	IsActive     bool
}

type AdminAccountRepo struct {
	pool *pgxpool.Pool
}

func NewAdminAccountRepo(pool *pgxpool.Pool) *AdminAccountRepo {
	return &AdminAccountRepo{pool: pool}
}

func (r *AdminAccountRepo) FindByEmail(ctx context.Context, email string) (AdminAccount, error) {
	if r.pool == nil {
		return AdminAccount{}, fmt.Errorf("postgres pool is nil")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return AdminAccount{}, fmt.Errorf("admin email is required")
	}

	var account AdminAccount
	err := r.pool.QueryRow(ctx, `
SELECT id, email, COALESCE(display_name, ''), role, password_hash, is_active
FROM admin_accounts
WHERE LOWER(email) = $1
`, email).Scan(
		&account.ID,
		&account.Email,
		&account.DisplayName,
		&account.Role,
		&account.PasswordHash,
		&account.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AdminAccount{}, ErrAdminAccountNotFound
		}
		return AdminAccount{}, fmt.Errorf("find admin account by email: %w", err)
	}

	return account, nil
}

func (r *AdminAccountRepo) FindByID(ctx context.Context, id int64) (AdminAccount, error) {
	if r.pool == nil {
		return AdminAccount{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return AdminAccount{}, fmt.Errorf("invalid admin account id")
	}

	var account AdminAccount
	err := r.pool.QueryRow(ctx, `
SELECT id, email, COALESCE(display_name, ''), role, password_hash, is_active
FROM admin_accounts
WHERE id = $1
`, id).Scan(
		&account.ID,
		&account.Email,
		&account.DisplayName,
		&account.Role,
		&account.PasswordHash,
		&account.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AdminAccount{}, ErrAdminAccountNotFound
		}
		return AdminAccount{}, fmt.Errorf("find admin account by id: %w", err)
	}

	return account, nil
}

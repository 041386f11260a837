package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/repository"
)

const accountsTable = "accounts"

var accountColumns = []string{
	"id",
	"email",
	"name",
	"phone",
	"password_hash",
	"role",
	"vendor_id",
	"auth_method",
	"is_email_verified",
	"created_at",
	"updated_at",
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository wires a PostgreSQL-backed account repository.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: newBuilder(),
	}
}

// Create inserts a new account row.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	var phoneValue any
	if account.Phone != nil && *account.Phone != "" {
		phoneValue = *account.Phone
	}

	var vendorValue any
	if id, ok := account.LinkedVendorID(); ok {
		vendorValue = id
	}

	stmt, args, err := r.builder.Insert(accountsTable).
		Columns(accountColumns...).
		Values(
			account.ID,
			account.Email,
			account.Name,
			phoneValue,
			account.PasswordHash,
			string(account.Role),
			vendorValue,
			account.AuthMethod,
			account.IsEmailVerified,
			account.CreatedAt,
			account.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "by id")
}

// GetByEmail retrieves an account by its normalized email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email}, "by email")
}

func (r *AccountRepository) getOne(ctx context.Context, where squirrel.Eq, label string) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From(accountsTable).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account %s sql: %w", label, err)
	}

	var (
		account domain.Account
		role    string
	)

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&account.ID,
		&account.Email,
		&account.Name,
		&account.Phone,
		&account.PasswordHash,
		&role,
		&account.VendorID,
		&account.AuthMethod,
		&account.IsEmailVerified,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account %s: %w", label, err)
	}

	account.Role = domain.Role(role)
	return &account, nil
}

// UpdatePassword overwrites the stored credential.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error {
	return r.update(ctx, id, "password", map[string]any{
		"password_hash": passwordHash,
		"updated_at":    changedAt,
	})
}

// UpdateEmail changes the login email and marks it verified.
func (r *AccountRepository) UpdateEmail(ctx context.Context, id string, email string, changedAt time.Time) error {
	return r.update(ctx, id, "email", map[string]any{
		"email":             email,
		"is_email_verified": true,
		"updated_at":        changedAt,
	})
}

// UpdateRole changes the role and vendor link of an account.
func (r *AccountRepository) UpdateRole(ctx context.Context, id string, role domain.Role, vendorID *string, changedAt time.Time) error {
	var vendorValue any
	if vendorID != nil && *vendorID != "" {
		vendorValue = *vendorID
	}
	return r.update(ctx, id, "role", map[string]any{
		"role":       string(role),
		"vendor_id":  vendorValue,
		"updated_at": changedAt,
	})
}

func (r *AccountRepository) update(ctx context.Context, id, label string, fields map[string]any) error {
	stmt, args, err := r.builder.Update(accountsTable).
		SetMap(fields).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update account %s sql: %w", label, err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("update account %s: %w", label, err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes an account row.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete(accountsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete account sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)

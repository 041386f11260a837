package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/repository"
)

const vendorsTable = "vendors"

var vendorColumns = []string{
	"id",
	"company_name",
	"slug",
	"contact_email",
	"password",
	"owner_id",
	"created_at",
}

// VendorRepository implements port.VendorRepository using PostgreSQL.
type VendorRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewVendorRepository wires a PostgreSQL-backed vendor repository.
func NewVendorRepository(exec pgExecutor) *VendorRepository {
	return &VendorRepository{
		exec:    exec,
		builder: newBuilder(),
	}
}

// Create inserts a vendor profile.
func (r *VendorRepository) Create(ctx context.Context, vendor domain.Vendor) error {
	var ownerValue any
	if vendor.OwnerID != nil && *vendor.OwnerID != "" {
		ownerValue = *vendor.OwnerID
	}

	stmt, args, err := r.builder.Insert(vendorsTable).
		Columns(vendorColumns...).
		Values(
			vendor.ID,
			vendor.CompanyName,
			vendor.Slug,
			vendor.ContactEmail,
			vendor.Password,
			ownerValue,
			vendor.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert vendor sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert vendor: %w", err)
	}

	return nil
}

// GetByID retrieves a vendor profile by identifier.
func (r *VendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "by id")
}

// GetByContactEmail retrieves the vendor whose contact email matches case-insensitively.
// Legacy rows may carry mixed-case emails, so the comparison lowercases the column.
func (r *VendorRepository) GetByContactEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	return r.getOne(ctx, squirrel.Expr("lower(contact_email) = ?", email), "by contact email")
}

func (r *VendorRepository) getOne(ctx context.Context, where squirrel.Sqlizer, label string) (*domain.Vendor, error) {
	stmt, args, err := r.builder.
		Select(vendorColumns...).
		From(vendorsTable).
		Where(where).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select vendor %s sql: %w", label, err)
	}

	var vendor domain.Vendor
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&vendor.ID,
		&vendor.CompanyName,
		&vendor.Slug,
		&vendor.ContactEmail,
		&vendor.Password,
		&vendor.OwnerID,
		&vendor.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan vendor %s: %w", label, err)
	}

	return &vendor, nil
}

// SlugExists reports whether a vendor already uses slug.
func (r *VendorRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		Prefix("SELECT EXISTS (").
		From(vendorsTable).
		Where(squirrel.Eq{"slug": slug}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build vendor slug exists sql: %w", err)
	}

	var exists bool
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("scan vendor slug exists: %w", err)
	}

	return exists, nil
}

// UpdatePassword overwrites the legacy vendor credential.
func (r *VendorRepository) UpdatePassword(ctx context.Context, id string, password string) error {
	return r.update(ctx, id, "password", "password", password)
}

// SetOwner links the vendor profile to the account that claimed it.
func (r *VendorRepository) SetOwner(ctx context.Context, id string, ownerID string) error {
	return r.update(ctx, id, "owner", "owner_id", ownerID)
}

// UpdateContactEmail moves the vendor's contact address along with its owner's email.
func (r *VendorRepository) UpdateContactEmail(ctx context.Context, id string, email string) error {
	return r.update(ctx, id, "contact email", "contact_email", email)
}

func (r *VendorRepository) update(ctx context.Context, id, label, column string, value any) error {
	stmt, args, err := r.builder.Update(vendorsTable).
		Set(column, value).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update vendor %s sql: %w", label, err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update vendor %s: %w", label, err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes the vendor profile.
func (r *VendorRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete(vendorsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete vendor sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete vendor: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.VendorRepository = (*VendorRepository)(nil)

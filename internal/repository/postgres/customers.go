package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
)

// CustomerProfileRepository implements port.CustomerProfileRepository using PostgreSQL.
type CustomerProfileRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCustomerProfileRepository wires a PostgreSQL-backed customer profile repository.
func NewCustomerProfileRepository(exec pgExecutor) *CustomerProfileRepository {
	return &CustomerProfileRepository{
		exec:    exec,
		builder: newBuilder(),
	}
}

// Ensure creates the customer profile unless one already exists.
func (r *CustomerProfileRepository) Ensure(ctx context.Context, profile domain.CustomerProfile) error {
	stmt, args, err := r.builder.Insert("customer_profiles").
		Columns("user_id", "created_at").
		Values(profile.UserID, profile.CreatedAt).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert customer profile sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert customer profile: %w", err)
	}

	return nil
}

// Delete removes the customer profile; a missing profile is not an error.
func (r *CustomerProfileRepository) Delete(ctx context.Context, userID string) error {
	stmt, args, err := r.builder.Delete("customer_profiles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete customer profile sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete customer profile: %w", err)
	}

	return nil
}

var _ port.CustomerProfileRepository = (*CustomerProfileRepository)(nil)

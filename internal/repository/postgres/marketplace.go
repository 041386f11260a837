package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
)

// MarketplaceCleaner removes marketplace rows owned by a vendor or customer.
type MarketplaceCleaner struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewMarketplaceCleaner wires a PostgreSQL-backed marketplace cleaner.
func NewMarketplaceCleaner(exec pgExecutor) *MarketplaceCleaner {
	return &MarketplaceCleaner{
		exec:    exec,
		builder: newBuilder(),
	}
}

// DeleteVendorCatalog deletes products, orders and stores, in that order.
func (c *MarketplaceCleaner) DeleteVendorCatalog(ctx context.Context, vendorID string) error {
	for _, table := range []string{"products", "orders", "stores"} {
		if err := c.deleteWhere(ctx, table, squirrel.Eq{"vendor_id": vendorID}); err != nil {
			return err
		}
	}
	return nil
}

// DeleteCustomerData deletes saved addresses and the cart of a customer.
func (c *MarketplaceCleaner) DeleteCustomerData(ctx context.Context, userID string) error {
	for _, table := range []string{"addresses", "carts"} {
		if err := c.deleteWhere(ctx, table, squirrel.Eq{"user_id": userID}); err != nil {
			return err
		}
	}
	return nil
}

func (c *MarketplaceCleaner) deleteWhere(ctx context.Context, table string, where squirrel.Eq) error {
	stmt, args, err := c.builder.Delete(table).Where(where).ToSql()
	if err != nil {
		return fmt.Errorf("build delete %s sql: %w", table, err)
	}

	if _, err := c.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}

	return nil
}

var _ port.MarketplaceCleaner = (*MarketplaceCleaner)(nil)

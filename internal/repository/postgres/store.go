package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
)

// txBeginner is satisfied by *pgxpool.Pool and pgxmock pools.
type txBeginner interface {
	pgExecutor
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store implements port.Store on top of a pgx pool.
type Store struct {
	db     txBeginner
	repos  port.Repositories
	logger *zap.Logger
}

// NewStore wires every repository against db.
func NewStore(db txBeginner, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:     db,
		repos:  newRepositories(db),
		logger: logger,
	}
}

func newRepositories(exec pgExecutor) port.Repositories {
	return port.Repositories{
		Accounts:    NewAccountRepository(exec),
		Vendors:     NewVendorRepository(exec),
		Customers:   NewCustomerProfileRepository(exec),
		Codes:       NewVerificationCodeRepository(exec),
		Marketplace: NewMarketplaceCleaner(exec),
	}
}

// Repositories returns repositories bound to the pool.
func (s *Store) Repositories() port.Repositories {
	return s.repos
}

// WithinTx runs fn inside a transaction and commits only when fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos port.Repositories) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("rollback transaction failed", zap.Error(rbErr))
		}
	}()

	if err = fn(ctx, newRepositories(tx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

var _ port.Store = (*Store)(nil)

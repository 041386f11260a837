package port

import "context"

// Repositories bundles repositories that share one executor.
type Repositories struct {
	Accounts    AccountRepository
	Vendors     VendorRepository
	Customers   CustomerProfileRepository
	Codes       VerificationCodeRepository
	Marketplace MarketplaceCleaner
}

// Store hands out repositories and runs multi-step flows atomically.
type Store interface {
	Repositories() Repositories
	// WithinTx runs fn against transaction-bound repositories; a returned error rolls back every write.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

package port

import (
	"context"
	"time"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
)

// AccountRepository exposes persistence behavior for unified accounts.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error
	UpdateEmail(ctx context.Context, id string, email string, changedAt time.Time) error
	UpdateRole(ctx context.Context, id string, role domain.Role, vendorID *string, changedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// VendorRepository exposes persistence behavior for legacy vendor profiles.
type VendorRepository interface {
	Create(ctx context.Context, vendor domain.Vendor) error
	GetByID(ctx context.Context, id string) (*domain.Vendor, error)
	GetByContactEmail(ctx context.Context, email string) (*domain.Vendor, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	UpdatePassword(ctx context.Context, id string, password string) error
	SetOwner(ctx context.Context, id string, ownerID string) error
	UpdateContactEmail(ctx context.Context, id string, email string) error
	Delete(ctx context.Context, id string) error
}

// CustomerProfileRepository manages the customer-side profile row.
type CustomerProfileRepository interface {
	Ensure(ctx context.Context, profile domain.CustomerProfile) error
	Delete(ctx context.Context, userID string) error
}

// VerificationCodeRepository persists verification codes.
// Consume and Redeem are single conditional updates and report whether a row was claimed.
type VerificationCodeRepository interface {
	Create(ctx context.Context, code domain.VerificationCode) error
	Latest(ctx context.Context, email string, purpose domain.VerificationPurpose) (*domain.VerificationCode, error)
	InvalidateUnused(ctx context.Context, email string, purpose domain.VerificationPurpose) (int64, error)
	FindValid(ctx context.Context, email, code string, purpose domain.VerificationPurpose, now time.Time) (*domain.VerificationCode, error)
	Consume(ctx context.Context, id string, now time.Time) (bool, error)
	Redeem(ctx context.Context, email, code string, purpose domain.VerificationPurpose, now time.Time) (bool, error)
	MarkUsed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteByEmail(ctx context.Context, email string) (int64, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// MarketplaceCleaner removes marketplace data owned by a vendor or customer.
type MarketplaceCleaner interface {
	DeleteVendorCatalog(ctx context.Context, vendorID string) error
	DeleteCustomerData(ctx context.Context, userID string) error
}

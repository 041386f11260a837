package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/repository"
)

// CredentialStore reads and writes credential values on accounts and legacy vendor profiles.
type CredentialStore struct {
	repos port.Repositories
	now   func() time.Time
}

// NewCredentialStore binds a credential store to a repository set, usually a transaction-bound one.
func NewCredentialStore(repos port.Repositories, now func() time.Time) *CredentialStore {
	if now == nil {
		now = time.Now
	}
	return &CredentialStore{repos: repos, now: now}
}

// Get returns the stored credential value. repository.ErrNotFound is returned when the owner is missing.
func (s *CredentialStore) Get(ctx context.Context, ref domain.CredentialRef) (string, error) {
	switch ref.Owner {
	case domain.CredentialOwnerAccount:
		account, err := s.repos.Accounts.GetByID(ctx, ref.ID)
		if err != nil {
			return "", err
		}
		return account.PasswordHash, nil
	case domain.CredentialOwnerVendor:
		vendor, err := s.repos.Vendors.GetByID(ctx, ref.ID)
		if err != nil {
			return "", err
		}
		return vendor.Password, nil
	default:
		return "", fmt.Errorf("unknown credential owner %q", ref.Owner)
	}
}

// Set overwrites the stored credential value.
func (s *CredentialStore) Set(ctx context.Context, ref domain.CredentialRef, value string) error {
	switch ref.Owner {
	case domain.CredentialOwnerAccount:
		return s.repos.Accounts.UpdatePassword(ctx, ref.ID, value, s.now().UTC())
	case domain.CredentialOwnerVendor:
		return s.repos.Vendors.UpdatePassword(ctx, ref.ID, value)
	default:
		return fmt.Errorf("unknown credential owner %q", ref.Owner)
	}
}

// SetAll writes the same credential value to the account and its linked vendor profile, if any.
// A linked vendor that no longer exists is skipped.
func (s *CredentialStore) SetAll(ctx context.Context, account domain.Account, value string) error {
	if err := s.Set(ctx, domain.AccountCredential(account.ID), value); err != nil {
		return fmt.Errorf("update account credential: %w", err)
	}
	vendorID, ok := account.LinkedVendorID()
	if !ok {
		return nil
	}
	if err := s.Set(ctx, domain.VendorCredential(vendorID), value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("update vendor credential: %w", err)
	}
	return nil
}

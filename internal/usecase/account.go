package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/repository"
)

// DeleteVendorInput carries a vendor self-deletion request.
type DeleteVendorInput struct {
	UserID string
	Code   string
}

// ChangePasswordInput carries a password change for a known account.
type ChangePasswordInput struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
}

// AccountService manages account lifecycle operations outside login and signup.
type AccountService struct {
	store    port.Store
	ledger   *VerificationLedger
	resolver *AccountResolver
	hasher   port.CredentialHasher
	policy   port.PasswordPolicyValidator
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccountService constructs an AccountService.
func NewAccountService(store port.Store, ledger *VerificationLedger, resolver *AccountResolver, hasher port.CredentialHasher, policy port.PasswordPolicyValidator) *AccountService {
	return &AccountService{
		store:    store,
		ledger:   ledger,
		resolver: resolver,
		hasher:   hasher,
		policy:   policy,
		events:   nopPublisher{},
		logger:   zap.NewNop(),
		now:      time.Now,
	}
}

// WithLogger overrides the service logger.
func (s *AccountService) WithLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// WithEvents overrides the event publisher.
func (s *AccountService) WithEvents(events port.EventPublisher) {
	if events != nil {
		s.events = events
	}
}

// WithClock overrides the time source (primarily for tests).
func (s *AccountService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// GetAccount returns the account without its credential.
func (s *AccountService) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := lookupAccount(ctx, s.store.Repositories(), userID)
	if err != nil {
		return nil, err
	}
	account.PasswordHash = ""
	return account, nil
}

// DeleteVendorAccount removes the vendor profile and its catalog and demotes the account to a customer.
// The code must have been addressed to the account's current email.
func (s *AccountService) DeleteVendorAccount(ctx context.Context, in DeleteVendorInput) error {
	code := strings.TrimSpace(in.Code)
	if strings.TrimSpace(in.UserID) == "" || code == "" {
		return invalidInput("userId and code are required")
	}

	account, err := lookupAccount(ctx, s.store.Repositories(), in.UserID)
	if err != nil {
		return err
	}
	if !account.IsVendor() {
		return ErrNotVendor
	}

	record, err := s.ledger.Check(ctx, account.Email, code, domain.PurposeDeleteVendorAccount)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	vendorID, linked := account.LinkedVendorID()
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		if linked {
			if err := repos.Marketplace.DeleteVendorCatalog(ctx, vendorID); err != nil {
				return fmt.Errorf("delete vendor catalog: %w", err)
			}
			if err := repos.Vendors.Delete(ctx, vendorID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("delete vendor profile: %w", err)
			}
		}
		if err := repos.Accounts.UpdateRole(ctx, account.ID, domain.RoleCustomer, nil, now); err != nil {
			return fmt.Errorf("demote account: %w", err)
		}
		if err := repos.Customers.Ensure(ctx, domain.CustomerProfile{UserID: account.ID, CreatedAt: now}); err != nil {
			return fmt.Errorf("ensure customer profile: %w", err)
		}
		return s.ledger.Consume(ctx, repos.Codes, record)
	})
	if err != nil {
		return err
	}

	s.logger.Info("vendor profile deleted", zap.String("user_id", account.ID), zap.String("vendor_id", vendorID))
	s.publishDeleted(ctx, account, true, now)
	return nil
}

// DeleteAccount removes every record owned by the account, then the account itself.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	now := s.now().UTC()

	var deleted *domain.Account
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		account, err := lookupAccount(ctx, repos, userID)
		if err != nil {
			return err
		}

		if vendorID, ok := account.LinkedVendorID(); ok {
			if err := repos.Marketplace.DeleteVendorCatalog(ctx, vendorID); err != nil {
				return fmt.Errorf("delete vendor catalog: %w", err)
			}
			if err := repos.Vendors.Delete(ctx, vendorID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("delete vendor profile: %w", err)
			}
		}
		if err := repos.Customers.Delete(ctx, account.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("delete customer profile: %w", err)
		}
		if err := repos.Marketplace.DeleteCustomerData(ctx, account.ID); err != nil {
			return fmt.Errorf("delete customer data: %w", err)
		}
		if _, err := repos.Codes.DeleteByEmail(ctx, account.Email); err != nil {
			return fmt.Errorf("delete verification codes: %w", err)
		}
		if err := repos.Accounts.Delete(ctx, account.ID); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}

		deleted = account
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("account deleted", zap.String("user_id", deleted.ID))
	s.publishDeleted(ctx, deleted, false, now)
	return nil
}

// ChangePassword verifies the current password through the login credential chain, so a legacy
// credential still authenticates, and writes the new hash to the account and its linked vendor.
func (s *AccountService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if strings.TrimSpace(in.UserID) == "" || in.CurrentPassword == "" || in.NewPassword == "" {
		return invalidInput("userId, currentPassword and newPassword are required")
	}

	account, err := lookupAccount(ctx, s.store.Repositories(), in.UserID)
	if err != nil {
		return err
	}
	if s.policy != nil {
		if err := s.policy.Validate(in.NewPassword, domain.PasswordContext{
			Email:   account.Email,
			Name:    account.Name,
			Current: in.CurrentPassword,
		}); err != nil {
			return fmt.Errorf("%w: %v", ErrWeakPassword, err)
		}
	}

	hashed, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		current, err := lookupAccount(ctx, repos, account.ID)
		if err != nil {
			return err
		}
		if _, err := s.resolver.verifyAccount(ctx, repos, *current, in.CurrentPassword); err != nil {
			return err
		}
		return NewCredentialStore(repos, s.now).SetAll(ctx, *current, hashed)
	})
	if err != nil {
		return err
	}

	event := domain.PasswordChangedEvent{UserID: account.ID, ChangedAt: s.now().UTC(), Reason: passwordChangeReason}
	if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
		s.logger.Warn("publish password changed event failed", zap.String("user_id", account.ID), zap.Error(err))
	}
	return nil
}

func (s *AccountService) publishDeleted(ctx context.Context, account *domain.Account, vendorOnly bool, at time.Time) {
	event := domain.AccountDeletedEvent{
		UserID:     account.ID,
		VendorID:   account.VendorID,
		DeletedAt:  at,
		VendorOnly: vendorOnly,
	}
	if err := s.events.PublishAccountDeleted(ctx, event); err != nil {
		s.logger.Warn("publish account deleted event failed", zap.String("user_id", account.ID), zap.Error(err))
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/logger"
	"github.com/danielolamide0/WurldMarket-sub001/internal/repository"
)

const (
	loginOutcomeSuccess     = "success"
	loginOutcomeClaimed     = "claimed"
	loginOutcomeInvalid     = "invalid_credentials"
	loginOutcomeInvalidForm = "invalid_input"
	loginOutcomeError       = "error"
)

// AccountResolver resolves an email and password to a single account, bridging legacy vendor
// credentials and migrating plaintext values to hashes as they are used.
type AccountResolver struct {
	store   port.Store
	hasher  port.CredentialHasher
	events  port.EventPublisher
	metrics port.AuthMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewAccountResolver constructs a resolver over the store and hasher.
func NewAccountResolver(store port.Store, hasher port.CredentialHasher) *AccountResolver {
	return &AccountResolver{
		store:   store,
		hasher:  hasher,
		events:  nopPublisher{},
		metrics: nopMetrics{},
		logger:  zap.NewNop(),
		now:     time.Now,
	}
}

// WithLogger overrides the resolver logger.
func (r *AccountResolver) WithLogger(logger *zap.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// WithEvents overrides the event publisher.
func (r *AccountResolver) WithEvents(events port.EventPublisher) {
	if events != nil {
		r.events = events
	}
}

// WithMetrics overrides the metrics sink.
func (r *AccountResolver) WithMetrics(metrics port.AuthMetrics) {
	if metrics != nil {
		r.metrics = metrics
	}
}

// WithClock overrides the time source (primarily for tests).
func (r *AccountResolver) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// resolution describes what a successful credential check changed.
type resolution struct {
	account  domain.Account
	claimed  bool
	migrated []domain.CredentialOwner
	healed   int
}

// Login authenticates the pair. Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (r *AccountResolver) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		r.metrics.ObserveLogin(loginOutcomeInvalidForm)
		return nil, ErrInvalidEmail
	}
	if password == "" {
		r.metrics.ObserveLogin(loginOutcomeInvalidForm)
		return nil, invalidInput("password is required")
	}

	var res resolution
	err := r.store.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		account, err := repos.Accounts.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				res, err = r.claimVendor(ctx, repos, email, password)
				return err
			}
			return fmt.Errorf("lookup account: %w", err)
		}

		res, err = r.verifyAccount(ctx, repos, *account, password)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			r.metrics.ObserveLogin(loginOutcomeInvalid)
			r.logger.Info("login rejected", zap.String("email", logger.MaskEmail(email)))
		} else {
			r.metrics.ObserveLogin(loginOutcomeError)
		}
		return nil, err
	}

	if res.claimed {
		r.metrics.ObserveLogin(loginOutcomeClaimed)
	} else {
		r.metrics.ObserveLogin(loginOutcomeSuccess)
	}
	r.publishResolution(ctx, res)

	account := res.account
	account.PasswordHash = ""
	return &account, nil
}

// verifyAccount walks the account's credential chain: its own credential first, then the linked
// vendor credential. On a match every source in the chain converges on one canonical hash.
func (r *AccountResolver) verifyAccount(ctx context.Context, repos port.Repositories, account domain.Account, password string) (resolution, error) {
	chain := []domain.CredentialRef{domain.AccountCredential(account.ID)}
	if vendorID, ok := account.LinkedVendorID(); ok {
		chain = append(chain, domain.VendorCredential(vendorID))
	}

	creds := NewCredentialStore(repos, r.now)
	canonical, migrated, healed, err := r.verifyChain(ctx, creds, chain, password)
	if err != nil {
		return resolution{}, err
	}

	account.PasswordHash = canonical
	return resolution{account: account, migrated: migrated, healed: healed}, nil
}

type chainSource struct {
	ref    domain.CredentialRef
	stored string
}

func (r *AccountResolver) verifyChain(ctx context.Context, creds *CredentialStore, chain []domain.CredentialRef, password string) (string, []domain.CredentialOwner, int, error) {
	sources := make([]chainSource, 0, len(chain))
	for _, ref := range chain {
		stored, err := creds.Get(ctx, ref)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return "", nil, 0, fmt.Errorf("load %s credential: %w", ref.Owner, err)
		}
		sources = append(sources, chainSource{ref: ref, stored: stored})
	}

	matched := -1
	var verification domain.CredentialVerification
	for i, src := range sources {
		v, err := r.hasher.Verify(password, src.stored)
		if err != nil {
			r.logger.Warn("stored credential unreadable", zap.String("owner", string(src.ref.Owner)), zap.String("id", src.ref.ID), zap.Error(err))
			continue
		}
		if v.Match {
			matched, verification = i, v
			break
		}
	}
	if matched < 0 {
		return "", nil, 0, ErrInvalidCredentials
	}

	canonical, err := r.canonicalHash(password, sources[matched].stored, verification)
	if err != nil {
		return "", nil, 0, err
	}

	var (
		migrated []domain.CredentialOwner
		healed   int
	)
	for i, src := range sources {
		if src.stored == canonical {
			continue
		}
		if err := creds.Set(ctx, src.ref, canonical); err != nil {
			return "", nil, 0, fmt.Errorf("persist %s credential: %w", src.ref.Owner, err)
		}
		if i == matched && verification.Migrate {
			migrated = append(migrated, src.ref.Owner)
			continue
		}
		healed++
	}

	return canonical, migrated, healed, nil
}

// claimVendor materializes an account for an unclaimed legacy vendor whose credential matches.
func (r *AccountResolver) claimVendor(ctx context.Context, repos port.Repositories, email, password string) (resolution, error) {
	vendor, err := repos.Vendors.GetByContactEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return resolution{}, ErrInvalidCredentials
		}
		return resolution{}, fmt.Errorf("lookup vendor: %w", err)
	}
	if vendor.OwnerID != nil && *vendor.OwnerID != "" {
		// Claimed vendors authenticate through their owning account only.
		return resolution{}, ErrInvalidCredentials
	}

	v, err := r.hasher.Verify(password, vendor.Password)
	if err != nil {
		r.logger.Warn("stored credential unreadable", zap.String("owner", string(domain.CredentialOwnerVendor)), zap.String("id", vendor.ID), zap.Error(err))
		return resolution{}, ErrInvalidCredentials
	}
	if !v.Match {
		return resolution{}, ErrInvalidCredentials
	}

	canonical, err := r.canonicalHash(password, vendor.Password, v)
	if err != nil {
		return resolution{}, err
	}

	now := r.now().UTC()
	vendorID := vendor.ID
	account := domain.Account{
		ID:              uuid.NewString(),
		Email:           email,
		Name:            vendor.CompanyName,
		PasswordHash:    canonical,
		Role:            domain.RoleVendor,
		VendorID:        &vendorID,
		AuthMethod:      domain.AuthMethodPassword,
		IsEmailVerified: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := repos.Accounts.Create(ctx, account); err != nil {
		return resolution{}, fmt.Errorf("create claimed account: %w", err)
	}

	res := resolution{account: account, claimed: true}
	if vendor.Password != canonical {
		if err := repos.Vendors.UpdatePassword(ctx, vendor.ID, canonical); err != nil {
			return resolution{}, fmt.Errorf("persist vendor credential: %w", err)
		}
		if v.Migrate {
			res.migrated = append(res.migrated, domain.CredentialOwnerVendor)
		}
	}
	if err := repos.Vendors.SetOwner(ctx, vendor.ID, account.ID); err != nil {
		return resolution{}, fmt.Errorf("link vendor owner: %w", err)
	}

	return res, nil
}

// canonicalHash is the stored value when it is already hashed, otherwise a fresh hash of the input.
// A plaintext match that only held after trimming hashes the trimmed input.
func (r *AccountResolver) canonicalHash(password, stored string, v domain.CredentialVerification) (string, error) {
	if v.Kind == domain.CredentialHashed {
		return stored, nil
	}
	if password != stored {
		password = strings.TrimSpace(password)
	}
	hashed, err := r.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return hashed, nil
}

func (r *AccountResolver) publishResolution(ctx context.Context, res resolution) {
	now := r.now().UTC()
	account := res.account

	if res.claimed {
		vendorID, _ := account.LinkedVendorID()
		r.logger.Info("legacy vendor account claimed",
			zap.String("user_id", account.ID),
			zap.String("vendor_id", vendorID),
		)
		if err := r.events.PublishAccountClaimed(ctx, domain.AccountClaimedEvent{
			UserID:    account.ID,
			VendorID:  vendorID,
			ClaimedAt: now,
		}); err != nil {
			r.logger.Warn("publish account claimed event failed", zap.String("user_id", account.ID), zap.Error(err))
		}
	}

	for _, owner := range res.migrated {
		r.metrics.ObserveCredentialMigration(owner)
		r.logger.Info("legacy credential migrated", zap.String("user_id", account.ID), zap.String("source", string(owner)))
		if err := r.events.PublishCredentialMigrated(ctx, domain.CredentialMigratedEvent{
			UserID:     account.ID,
			Source:     owner,
			MigratedAt: now,
		}); err != nil {
			r.logger.Warn("publish credential migrated event failed", zap.String("user_id", account.ID), zap.Error(err))
		}
	}

	if res.healed > 0 {
		r.logger.Info("credential drift healed", zap.String("user_id", account.ID), zap.Int("sources", res.healed))
	}
}

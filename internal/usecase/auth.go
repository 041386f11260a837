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
	passwordResetReason  = "password_reset"
	passwordChangeReason = "password_change"
)

// SendCodeInput carries a verification code request. UserID is required for purposes that
// act on an existing account.
type SendCodeInput struct {
	Purpose string
	Email   string
	UserID  string
}

// SignupInput captures the payload for creating a verified account.
type SignupInput struct {
	Email       string
	Code        string
	Password    string
	Name        string
	Phone       string
	Role        string
	CompanyName string
}

// SignupResult describes the created account and, for vendors, the vendor profile id.
type SignupResult struct {
	Account  domain.Account
	VendorID string
}

// ResetPasswordInput carries a password reset confirmation.
type ResetPasswordInput struct {
	Email       string
	Code        string
	NewPassword string
}

// UpdateEmailInput carries an email change confirmation.
type UpdateEmailInput struct {
	UserID   string
	NewEmail string
	Code     string
}

// codeTarget resolves which address a verification code goes to. issue=false skips issuing
// while still reporting success to the caller.
type codeTarget func(ctx context.Context, s *AuthService, in SendCodeInput) (email string, issue bool, err error)

var sendCodeRules = map[domain.VerificationPurpose]codeTarget{
	domain.PurposeSignup:              signupTarget,
	domain.PurposePasswordReset:       passwordResetTarget,
	domain.PurposeEmailChange:         emailChangeTarget,
	domain.PurposeDeleteVendorAccount: deleteVendorTarget,
}

// AuthService orchestrates the verification-code backed authentication flows.
type AuthService struct {
	store    port.Store
	ledger   *VerificationLedger
	resolver *AccountResolver
	hasher   port.CredentialHasher
	policy   port.PasswordPolicyValidator
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(store port.Store, ledger *VerificationLedger, resolver *AccountResolver, hasher port.CredentialHasher, policy port.PasswordPolicyValidator) *AuthService {
	return &AuthService{
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
func (s *AuthService) WithLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// WithEvents overrides the event publisher.
func (s *AuthService) WithEvents(events port.EventPublisher) {
	if events != nil {
		s.events = events
	}
}

// WithClock overrides the time source (primarily for tests).
func (s *AuthService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Login delegates to the account resolver.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	return s.resolver.Login(ctx, email, password)
}

// SendCode validates the request against the rules of its purpose and issues a code.
func (s *AuthService) SendCode(ctx context.Context, in SendCodeInput) error {
	purpose, ok := domain.ParsePurpose(strings.TrimSpace(in.Purpose))
	if !ok {
		return ErrUnknownPurpose
	}

	target, issue, err := sendCodeRules[purpose](ctx, s, in)
	if err != nil {
		return err
	}
	if !issue {
		s.logger.Info("verification code suppressed",
			zap.String("purpose", string(purpose)),
			zap.String("email", logger.MaskEmail(target)),
		)
		return nil
	}

	if _, err := s.ledger.Issue(ctx, target, purpose); err != nil {
		return err
	}
	return nil
}

func signupTarget(ctx context.Context, s *AuthService, in SendCodeInput) (string, bool, error) {
	email, err := requireEmail(in.Email)
	if err != nil {
		return "", false, err
	}
	taken, err := emailRegistered(ctx, s.store.Repositories(), email, "")
	if err != nil {
		return "", false, err
	}
	if taken {
		return "", false, ErrEmailTaken
	}
	return email, true, nil
}

func passwordResetTarget(ctx context.Context, s *AuthService, in SendCodeInput) (string, bool, error) {
	email, err := requireEmail(in.Email)
	if err != nil {
		return "", false, err
	}
	if _, err := s.store.Repositories().Accounts.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return email, false, nil
		}
		return "", false, fmt.Errorf("lookup account: %w", err)
	}
	return email, true, nil
}

func emailChangeTarget(ctx context.Context, s *AuthService, in SendCodeInput) (string, bool, error) {
	account, err := lookupAccount(ctx, s.store.Repositories(), in.UserID)
	if err != nil {
		return "", false, err
	}
	email, err := requireEmail(in.Email)
	if err != nil {
		return "", false, err
	}
	if email == account.Email {
		return "", false, invalidInput("new email matches the current email")
	}
	taken, err := emailRegistered(ctx, s.store.Repositories(), email, account.ID)
	if err != nil {
		return "", false, err
	}
	if taken {
		return "", false, ErrEmailTaken
	}
	return email, true, nil
}

func deleteVendorTarget(ctx context.Context, s *AuthService, in SendCodeInput) (string, bool, error) {
	account, err := lookupAccount(ctx, s.store.Repositories(), in.UserID)
	if err != nil {
		return "", false, err
	}
	if !account.IsVendor() {
		return "", false, ErrNotVendor
	}
	return account.Email, true, nil
}

// VerifyCode validates and consumes a code in one step.
func (s *AuthService) VerifyCode(ctx context.Context, email, code, purpose string) error {
	p, ok := domain.ParsePurpose(strings.TrimSpace(purpose))
	if !ok {
		return ErrUnknownPurpose
	}
	normalized, err := requireEmail(email)
	if err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return invalidInput("code is required")
	}

	ok, err = s.ledger.Redeem(ctx, normalized, code, p)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}
	return nil
}

// Signup creates a verified account, its vendor or customer profile, and consumes the signup code
// in one transaction.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	email, err := requireEmail(in.Email)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || in.Password == "" || name == "" {
		return nil, invalidInput("email, verificationCode, password and name are required")
	}

	role := domain.RoleCustomer
	if r := strings.TrimSpace(in.Role); r != "" {
		role = domain.Role(strings.ToLower(r))
		if !role.Valid() {
			return nil, invalidInput("role must be customer or vendor")
		}
	}

	var slug, companyName string
	if role == domain.RoleVendor {
		companyName = strings.TrimSpace(in.CompanyName)
		slug = domain.Slugify(companyName)
		if slug == "" {
			return nil, invalidInput("companyName is required for vendors")
		}
	}

	if err := s.validatePassword(in.Password, domain.PasswordContext{Email: email, Name: name}); err != nil {
		return nil, err
	}

	// Conflicts win over code validity so a repeated signup reports the duplicate email.
	if err := checkSignupConflicts(ctx, s.store.Repositories(), email, slug); err != nil {
		return nil, err
	}

	record, err := s.ledger.Check(ctx, email, code, domain.PurposeSignup)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:              uuid.NewString(),
		Email:           email,
		Name:            name,
		PasswordHash:    hashed,
		Role:            role,
		AuthMethod:      domain.AuthMethodPassword,
		IsEmailVerified: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		account.Phone = &phone
	}

	var vendorID string
	if role == domain.RoleVendor {
		vendorID = uuid.NewString()
		account.VendorID = &vendorID
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		if err := checkSignupConflicts(ctx, repos, email, slug); err != nil {
			return err
		}

		if err := repos.Accounts.Create(ctx, account); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create account: %w", err)
		}

		if role == domain.RoleVendor {
			ownerID := account.ID
			vendor := domain.Vendor{
				ID:           vendorID,
				CompanyName:  companyName,
				Slug:         slug,
				ContactEmail: email,
				Password:     hashed,
				OwnerID:      &ownerID,
				CreatedAt:    now,
			}
			if err := repos.Vendors.Create(ctx, vendor); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return ErrSlugTaken
				}
				return fmt.Errorf("create vendor profile: %w", err)
			}
		} else if err := repos.Customers.Ensure(ctx, domain.CustomerProfile{UserID: account.ID, CreatedAt: now}); err != nil {
			return fmt.Errorf("create customer profile: %w", err)
		}

		return s.ledger.Consume(ctx, repos.Codes, record)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		zap.String("user_id", account.ID),
		zap.String("role", string(role)),
		zap.String("email", logger.MaskEmail(email)),
	)

	event := domain.AccountRegisteredEvent{
		UserID:       account.ID,
		Email:        email,
		Role:         role,
		VendorID:     account.VendorID,
		RegisteredAt: now,
	}
	if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
		s.logger.Warn("publish account registered event failed", zap.String("user_id", account.ID), zap.Error(err))
	}

	account.PasswordHash = ""
	return &SignupResult{Account: account, VendorID: vendorID}, nil
}

// ResetPassword overwrites the account password (and linked vendor credential) and consumes
// the password-reset code in one transaction. The new password is always treated as plaintext.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	email, err := requireEmail(in.Email)
	if err != nil {
		return err
	}
	code := strings.TrimSpace(in.Code)
	if code == "" || in.NewPassword == "" {
		return invalidInput("email, code and newPassword are required")
	}
	if err := s.validatePassword(in.NewPassword, domain.PasswordContext{Email: email}); err != nil {
		return err
	}

	record, err := s.ledger.Check(ctx, email, code, domain.PurposePasswordReset)
	if err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var userID string
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		account, err := repos.Accounts.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("lookup account: %w", err)
		}
		userID = account.ID

		if err := NewCredentialStore(repos, s.now).SetAll(ctx, *account, hashed); err != nil {
			return err
		}
		return s.ledger.Consume(ctx, repos.Codes, record)
	})
	if err != nil {
		return err
	}

	s.publishPasswordChanged(ctx, userID, passwordResetReason)
	return nil
}

// UpdateEmail moves the account to a new email proven by an email-change code.
func (s *AuthService) UpdateEmail(ctx context.Context, in UpdateEmailInput) (*domain.Account, error) {
	userID := strings.TrimSpace(in.UserID)
	code := strings.TrimSpace(in.Code)
	if userID == "" || code == "" {
		return nil, invalidInput("userId, newEmail and code are required")
	}
	email, err := requireEmail(in.NewEmail)
	if err != nil {
		return nil, err
	}

	record, err := s.ledger.Check(ctx, email, code, domain.PurposeEmailChange)
	if err != nil {
		return nil, err
	}

	var updated *domain.Account
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		account, err := lookupAccount(ctx, repos, userID)
		if err != nil {
			return err
		}

		taken, err := emailRegistered(ctx, repos, email, account.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}

		if err := repos.Accounts.UpdateEmail(ctx, account.ID, email, s.now().UTC()); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrEmailTaken
			}
			return fmt.Errorf("update account email: %w", err)
		}
		if vendorID, ok := account.LinkedVendorID(); ok {
			err := repos.Vendors.UpdateContactEmail(ctx, vendorID, email)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("update vendor contact email: %w", err)
			}
		}
		if err := s.ledger.Consume(ctx, repos.Codes, record); err != nil {
			return err
		}

		updated, err = repos.Accounts.GetByID(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("reload account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.events.PublishEmailChanged(ctx, domain.EmailChangedEvent{UserID: updated.ID, ChangedAt: s.now().UTC()}); err != nil {
		s.logger.Warn("publish email changed event failed", zap.String("user_id", updated.ID), zap.Error(err))
	}

	updated.PasswordHash = ""
	return updated, nil
}

func (s *AuthService) validatePassword(password string, pctx domain.PasswordContext) error {
	if s.policy == nil {
		return nil
	}
	if err := s.policy.Validate(password, pctx); err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}
	return nil
}

func (s *AuthService) publishPasswordChanged(ctx context.Context, userID, reason string) {
	event := domain.PasswordChangedEvent{UserID: userID, ChangedAt: s.now().UTC(), Reason: reason}
	if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
		s.logger.Warn("publish password changed event failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func lookupAccount(ctx context.Context, repos port.Repositories, id string) (*domain.Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalidInput("userId is required")
	}
	account, err := repos.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return account, nil
}

// checkSignupConflicts rejects an email claimed anywhere and, when slug is set, a taken vendor slug.
func checkSignupConflicts(ctx context.Context, repos port.Repositories, email, slug string) error {
	taken, err := emailRegistered(ctx, repos, email, "")
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	if slug == "" {
		return nil
	}
	exists, err := repos.Vendors.SlugExists(ctx, slug)
	if err != nil {
		return fmt.Errorf("check vendor slug: %w", err)
	}
	if exists {
		return ErrSlugTaken
	}
	return nil
}

func requireEmail(raw string) (string, error) {
	email := domain.NormalizeEmail(raw)
	if email == "" || !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// emailRegistered reports whether an account or vendor contact other than exceptAccountID
// already claims the email.
func emailRegistered(ctx context.Context, repos port.Repositories, email, exceptAccountID string) (bool, error) {
	account, err := repos.Accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if account.ID != exceptAccountID {
			return true, nil
		}
	case !errors.Is(err, repository.ErrNotFound):
		return false, fmt.Errorf("lookup account by email: %w", err)
	}

	vendor, err := repos.Vendors.GetByContactEmail(ctx, email)
	switch {
	case err == nil:
		owned := exceptAccountID != "" && vendor.OwnerID != nil && *vendor.OwnerID == exceptAccountID
		return !owned, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("lookup vendor by email: %w", err)
	}
}

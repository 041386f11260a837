package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/logger"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/security"
	"github.com/danielolamide0/WurldMarket-sub001/internal/repository"
)

const (
	defaultCodeTTL        = 15 * time.Minute
	defaultResendCooldown = 60 * time.Second
	defaultRetentionGrace = time.Hour
)

// LedgerOptions tunes verification code lifetimes. Zero values fall back to defaults.
type LedgerOptions struct {
	CodeTTL        time.Duration
	ResendCooldown time.Duration
	RetentionGrace time.Duration
}

// VerificationLedger issues, validates and retires single-use verification codes.
type VerificationLedger struct {
	store    port.Store
	sender   port.CodeSender
	metrics  port.AuthMetrics
	logger   *zap.Logger
	now      func() time.Time
	generate func() (string, error)

	ttl      time.Duration
	cooldown time.Duration
	grace    time.Duration
}

// NewVerificationLedger constructs a ledger backed by the store and delivering codes through sender.
func NewVerificationLedger(store port.Store, sender port.CodeSender, opts LedgerOptions) *VerificationLedger {
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = defaultCodeTTL
	}
	if opts.ResendCooldown <= 0 {
		opts.ResendCooldown = defaultResendCooldown
	}
	if opts.RetentionGrace <= 0 {
		opts.RetentionGrace = defaultRetentionGrace
	}

	return &VerificationLedger{
		store:    store,
		sender:   sender,
		metrics:  nopMetrics{},
		logger:   zap.NewNop(),
		now:      time.Now,
		generate: security.GenerateVerificationCode,
		ttl:      opts.CodeTTL,
		cooldown: opts.ResendCooldown,
		grace:    opts.RetentionGrace,
	}
}

// WithLogger overrides the ledger logger.
func (l *VerificationLedger) WithLogger(logger *zap.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// WithMetrics overrides the metrics sink.
func (l *VerificationLedger) WithMetrics(metrics port.AuthMetrics) {
	if metrics != nil {
		l.metrics = metrics
	}
}

// WithClock overrides the time source (primarily for tests).
func (l *VerificationLedger) WithClock(now func() time.Time) {
	if now != nil {
		l.now = now
	}
}

// WithCodeGenerator overrides the code generator (primarily for tests).
func (l *VerificationLedger) WithCodeGenerator(generate func() (string, error)) {
	if generate != nil {
		l.generate = generate
	}
}

// Issue creates a fresh code for the pair, invalidates older unused codes and dispatches it.
// A *RateLimitedError is returned when an unexpired code was issued within the cooldown.
func (l *VerificationLedger) Issue(ctx context.Context, email string, purpose domain.VerificationPurpose) (*domain.VerificationCode, error) {
	email = domain.NormalizeEmail(email)
	now := l.now().UTC()
	codes := l.store.Repositories().Codes

	latest, err := codes.Latest(ctx, email, purpose)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup latest verification code: %w", err)
	}
	if latest != nil && now.Before(latest.ExpiresAt) {
		if elapsed := now.Sub(latest.CreatedAt); elapsed < l.cooldown {
			l.metrics.ObserveCodeCooldown(purpose)
			return nil, &RateLimitedError{RetryAfter: l.cooldown - elapsed, Window: l.cooldown}
		}
	}

	value, err := l.generate()
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}

	record := domain.VerificationCode{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      value,
		Purpose:   purpose,
		ExpiresAt: now.Add(l.ttl),
		CreatedAt: now,
	}

	err = l.store.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		if _, err := repos.Codes.InvalidateUnused(ctx, email, purpose); err != nil {
			return fmt.Errorf("invalidate previous codes: %w", err)
		}
		if err := repos.Codes.Create(ctx, record); err != nil {
			return fmt.Errorf("store verification code: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	msg := port.VerificationMessage{Email: email, Code: value, Purpose: purpose, ExpiresAt: record.ExpiresAt}
	if err := l.sender.SendVerificationCode(ctx, msg); err != nil {
		l.logger.Error("verification code dispatch failed",
			zap.String("email", logger.MaskEmail(email)),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
		l.retire(ctx, record.ID)
		return nil, fmt.Errorf("%w: %v", ErrCodeDeliveryFailed, err)
	}

	l.metrics.ObserveCodeIssued(purpose)
	l.logger.Info("verification code issued",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("purpose", string(purpose)),
		zap.Time("expires_at", record.ExpiresAt),
	)

	return &record, nil
}

// retire makes an undelivered code unredeemable, deleting it or marking it used as a fallback.
func (l *VerificationLedger) retire(ctx context.Context, id string) {
	codes := l.store.Repositories().Codes
	err := codes.Delete(ctx, id)
	if err == nil {
		return
	}
	l.logger.Warn("delete undelivered verification code failed", zap.String("code_id", id), zap.Error(err))

	if err := codes.MarkUsed(ctx, id); err != nil {
		l.logger.Error("retire undelivered verification code failed", zap.String("code_id", id), zap.Error(err))
	}
}

// Redeem validates and consumes a code in one conditional update.
func (l *VerificationLedger) Redeem(ctx context.Context, email, code string, purpose domain.VerificationPurpose) (bool, error) {
	email = domain.NormalizeEmail(email)
	ok, err := l.store.Repositories().Codes.Redeem(ctx, email, code, purpose, l.now().UTC())
	if err != nil {
		return false, fmt.Errorf("redeem verification code: %w", err)
	}
	return ok, nil
}

// Check returns the valid record matching the code without consuming it.
func (l *VerificationLedger) Check(ctx context.Context, email, code string, purpose domain.VerificationPurpose) (*domain.VerificationCode, error) {
	email = domain.NormalizeEmail(email)
	record, err := l.store.Repositories().Codes.FindValid(ctx, email, code, purpose, l.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("lookup verification code: %w", err)
	}
	return record, nil
}

// Consume marks a previously checked record used through the given repository,
// which is usually bound to the transaction of the flow that checked it.
// ErrInvalidCode is returned when the record was consumed or expired in the meantime.
func (l *VerificationLedger) Consume(ctx context.Context, codes port.VerificationCodeRepository, record *domain.VerificationCode) error {
	if record == nil {
		return ErrInvalidCode
	}
	ok, err := codes.Consume(ctx, record.ID, l.now().UTC())
	if err != nil {
		return fmt.Errorf("consume verification code: %w", err)
	}
	if !ok {
		return ErrInvalidCode
	}
	return nil
}

// Reclaim deletes records that expired more than the retention grace ago.
func (l *VerificationLedger) Reclaim(ctx context.Context) (int64, error) {
	cutoff := l.now().UTC().Add(-l.grace)
	removed, err := l.store.Repositories().Codes.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("reclaim verification codes: %w", err)
	}
	if removed > 0 {
		l.metrics.ObserveCodesReclaimed(int(removed))
		l.logger.Debug("verification codes reclaimed", zap.Int64("count", removed))
	}
	return removed, nil
}

// VerificationJanitor periodically reclaims expired verification codes.
type VerificationJanitor struct {
	ledger   *VerificationLedger
	interval time.Duration
	logger   *zap.Logger
}

// NewVerificationJanitor constructs a janitor running every interval.
func NewVerificationJanitor(ledger *VerificationLedger, interval time.Duration, logger *zap.Logger) *VerificationJanitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationJanitor{ledger: ledger, interval: interval, logger: logger}
}

// Run reclaims once immediately and then on every tick until ctx is cancelled.
func (j *VerificationJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if _, err := j.ledger.Reclaim(ctx); err != nil && ctx.Err() == nil {
			j.logger.Warn("verification code reclamation failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

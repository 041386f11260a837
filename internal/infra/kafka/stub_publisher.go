package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
)

// StubPublisher logs events instead of sending them. Used when no brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a log-only event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, fields ...zap.Field) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	base := []zap.Field{
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
	}
	p.logger.Info("Stub event published", append(base, fields...)...)
}

// PublishAccountRegistered logs auth.account.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	p.logEvent(EventAccountRegistered, event.UserID, event.RegisteredAt, zap.String("role", string(event.Role)))
	return nil
}

// PublishAccountClaimed logs auth.account.claimed events.
func (p *StubPublisher) PublishAccountClaimed(_ context.Context, event domain.AccountClaimedEvent) error {
	p.logEvent(EventAccountClaimed, event.UserID, event.ClaimedAt, zap.String("vendor_id", event.VendorID))
	return nil
}

// PublishCredentialMigrated logs auth.account.credential_migrated events.
func (p *StubPublisher) PublishCredentialMigrated(_ context.Context, event domain.CredentialMigratedEvent) error {
	p.logEvent(EventCredentialMigrated, event.UserID, event.MigratedAt, zap.String("source", string(event.Source)))
	return nil
}

// PublishPasswordChanged logs auth.account.password_changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.logEvent(EventPasswordChanged, event.UserID, event.ChangedAt, zap.String("reason", event.Reason))
	return nil
}

// PublishEmailChanged logs auth.account.email_changed events.
func (p *StubPublisher) PublishEmailChanged(_ context.Context, event domain.EmailChangedEvent) error {
	p.logEvent(EventEmailChanged, event.UserID, event.ChangedAt)
	return nil
}

// PublishAccountDeleted logs account and vendor deletion events.
func (p *StubPublisher) PublishAccountDeleted(_ context.Context, event domain.AccountDeletedEvent) error {
	eventType := EventAccountDeleted
	if event.VendorOnly {
		eventType = EventVendorDeleted
	}
	p.logEvent(eventType, event.UserID, event.DeletedAt, zap.Bool("vendor_only", event.VendorOnly))
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)

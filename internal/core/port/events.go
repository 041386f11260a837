package port

import (
	"context"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishAccountClaimed(ctx context.Context, event domain.AccountClaimedEvent) error
	PublishCredentialMigrated(ctx context.Context, event domain.CredentialMigratedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishEmailChanged(ctx context.Context, event domain.EmailChangedEvent) error
	PublishAccountDeleted(ctx context.Context, event domain.AccountDeletedEvent) error
}

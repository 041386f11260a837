package usecase

import (
	"context"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
)

type nopMetrics struct{}

func (nopMetrics) ObserveLogin(string) {}
func (nopMetrics) ObserveCredentialMigration(domain.CredentialOwner) {}
func (nopMetrics) ObserveCodeIssued(domain.VerificationPurpose) {}
func (nopMetrics) ObserveCodeCooldown(domain.VerificationPurpose) {}
func (nopMetrics) ObserveCodesReclaimed(int) {}

type nopPublisher struct{}

func (nopPublisher) PublishAccountRegistered(context.Context, domain.AccountRegisteredEvent) error {
	return nil
}

func (nopPublisher) PublishAccountClaimed(context.Context, domain.AccountClaimedEvent) error {
	return nil
}

func (nopPublisher) PublishCredentialMigrated(context.Context, domain.CredentialMigratedEvent) error {
	return nil
}

func (nopPublisher) PublishPasswordChanged(context.Context, domain.PasswordChangedEvent) error {
	return nil
}

func (nopPublisher) PublishEmailChanged(context.Context, domain.EmailChangedEvent) error {
	return nil
}

func (nopPublisher) PublishAccountDeleted(context.Context, domain.AccountDeletedEvent) error {
	return nil
}

var (
	_ port.AuthMetrics    = nopMetrics{}
	_ port.EventPublisher = nopPublisher{}
)

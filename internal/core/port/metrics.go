package port

import "github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"

// AuthMetrics records authentication outcomes.
type AuthMetrics interface {
	ObserveLogin(outcome string)
	ObserveCredentialMigration(owner domain.CredentialOwner)
	ObserveCodeIssued(purpose domain.VerificationPurpose)
	ObserveCodeCooldown(purpose domain.VerificationPurpose)
	ObserveCodesReclaimed(count int)
}

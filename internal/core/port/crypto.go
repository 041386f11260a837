package port

import "github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"

// PasswordPolicyValidator enforces password strength requirements.
type PasswordPolicyValidator interface {
	Validate(password string, ctx domain.PasswordContext) error
}

// Argon2Params captures tunable parameters for the Argon2id hashing algorithm.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// CredentialHasher hashes new passwords and verifies input against stored credentials.
type CredentialHasher interface {
	Hash(password string) (string, error)
	Verify(password string, stored string) (domain.CredentialVerification, error)
}

package security

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
)

const (
	// AlgorithmArgon2id hashes new credentials with Argon2id.
	AlgorithmArgon2id = "argon2id"
	// AlgorithmBcrypt hashes new credentials with bcrypt.
	AlgorithmBcrypt = "bcrypt"
)

// ErrUnsupportedAlgorithm is returned when the configured hashing algorithm is unknown.
var ErrUnsupportedAlgorithm = errors.New("security: unsupported hashing algorithm")

// hashFormats maps fixed-length format tags to the algorithm that produced them.
var hashFormats = []struct {
	tag       string
	algorithm string
}{
	{tag: argon2Tag, algorithm: AlgorithmArgon2id},
	{tag: "$2a$", algorithm: AlgorithmBcrypt},
	{tag: "$2b$", algorithm: AlgorithmBcrypt},
	{tag: "$2y$", algorithm: AlgorithmBcrypt},
}

func hashAlgorithm(stored string) (string, bool) {
	for _, f := range hashFormats {
		if strings.HasPrefix(stored, f.tag) {
			return f.algorithm, true
		}
	}
	return "", false
}

// ClassifyCredential reports whether a stored value is a recognised hash, legacy plaintext, or empty.
func ClassifyCredential(stored string) domain.CredentialKind {
	if stored == "" {
		return domain.CredentialAbsent
	}
	if _, ok := hashAlgorithm(stored); ok {
		return domain.CredentialHashed
	}
	return domain.CredentialLegacyPlaintext
}

// CredentialHasher hashes new passwords with the configured algorithm and verifies
// input against any supported stored format, flagging legacy plaintext for migration.
type CredentialHasher struct {
	algorithm  string
	bcryptCost int
}

// HasherOption customises a CredentialHasher.
type HasherOption func(*CredentialHasher)

// WithAlgorithm selects the algorithm used for new hashes.
func WithAlgorithm(algorithm string) HasherOption {
	return func(h *CredentialHasher) {
		if algorithm != "" {
			h.algorithm = strings.ToLower(strings.TrimSpace(algorithm))
		}
	}
}

// WithBcryptCost overrides the bcrypt work factor.
func WithBcryptCost(cost int) HasherOption {
	return func(h *CredentialHasher) {
		if cost > 0 {
			h.bcryptCost = cost
		}
	}
}

// NewCredentialHasher constructs a hasher, defaulting to Argon2id.
func NewCredentialHasher(opts ...HasherOption) (*CredentialHasher, error) {
	h := &CredentialHasher{
		algorithm:  AlgorithmArgon2id,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(h)
	}

	switch h.algorithm {
	case AlgorithmArgon2id:
	case AlgorithmBcrypt:
		if h.bcryptCost < bcrypt.MinCost || h.bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("security: bcrypt cost %d out of range", h.bcryptCost)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, h.algorithm)
	}

	return h, nil
}

// Algorithm returns the algorithm used for new hashes.
func (h *CredentialHasher) Algorithm() string {
	return h.algorithm
}

// Hash produces a freshly salted, format-tagged hash of password.
func (h *CredentialHasher) Hash(password string) (string, error) {
	switch h.algorithm {
	case AlgorithmBcrypt:
		sum, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: hash password: %w", err)
		}
		return string(sum), nil
	default:
		return hashArgon2(password)
	}
}

// Verify checks input against a stored credential.
// Hashed values are compared in constant time and never flagged for migration.
// Legacy plaintext matches on exact equality or equality after trimming surrounding
// whitespace on both sides, and a match is always flagged for migration.
func (h *CredentialHasher) Verify(input, stored string) (domain.CredentialVerification, error) {
	kind := ClassifyCredential(stored)
	result := domain.CredentialVerification{Kind: kind}

	switch kind {
	case domain.CredentialAbsent:
		return result, nil
	case domain.CredentialLegacyPlaintext:
		result.Match = constantTimeEqual(input, stored) ||
			constantTimeEqual(strings.TrimSpace(input), strings.TrimSpace(stored))
		result.Migrate = result.Match
		return result, nil
	}

	algorithm, _ := hashAlgorithm(stored)
	switch algorithm {
	case AlgorithmBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(input))
		if err == nil {
			result.Match = true
			return result, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return result, nil
		}
		return result, fmt.Errorf("bcrypt: verify password: %w", err)
	default:
		ok, err := verifyArgon2(input, stored)
		if err != nil {
			return result, err
		}
		result.Match = ok
		return result, nil
	}
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

var _ port.CredentialHasher = (*CredentialHasher)(nil)
